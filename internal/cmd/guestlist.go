package cmd

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fair-invitations/internal/guestlist"
	"fair-invitations/internal/models"
	"fair-invitations/internal/source"
)

var (
	dryRun       bool
	useSemicolon bool
	statusFilter string
	guestRow     int
)

var parseCmd = &cobra.Command{
	Use:   "parse <file>",
	Short: "Load and validate a guest list",
	Long: `Parse a comma- or semicolon-separated guest list and make it the current
session. The file may be a local path or an s3://bucket/key location.

The header must contain the columns "Imię i nazwisko gościa" and "adres-email"
(in any order, case and accents ignored). Rows with an invalid e-mail are kept
but never sent.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		var doc *guestlist.Document
		if dryRun {
			rc, err := a.opener.Open(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to read guest list: %w", err)
			}
			defer rc.Close()

			if doc, err = guestlist.ReadAll(rc); err != nil {
				return err
			}
		} else {
			raw, err := source.ReadText(cmd.Context(), a.opener, args[0])
			if err != nil {
				return fmt.Errorf("failed to read guest list: %w", err)
			}
			if doc, err = a.invitations.LoadGuestList(exhibitionID, args[0], raw); err != nil {
				return err
			}
		}

		printGuests(cmd.OutOrStdout(), doc.Records)
		fmt.Fprintf(cmd.OutOrStdout(), "\nDelimiter %q: %d valid, %d invalid\n", doc.Delimiter.String(), doc.Valid, doc.Invalid)
		if !dryRun {
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Guest list loaded")
		}
		return nil
	},
}

var templateCmd = &cobra.Command{
	Use:   "template [output]",
	Short: "Write an empty guest list template",
	Long: `Write a guest list template with the required header row and one example
guest. Without an argument the template is printed to stdout. An s3://bucket/key
output uploads it to the configured bucket.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := guestlist.Comma
		if useSemicolon {
			d = guestlist.Semicolon
		}

		var buf bytes.Buffer
		if err := guestlist.WriteTemplate(&buf, d); err != nil {
			return err
		}

		if len(args) == 0 {
			_, err := cmd.OutOrStdout().Write(buf.Bytes())
			return err
		}

		output := args[0]
		if strings.HasPrefix(output, "s3://") {
			a, err := newApp(cmd.Context(), cfg, logger, appOptions{})
			if err != nil {
				return err
			}
			defer a.Close()

			if a.s3 == nil {
				return fmt.Errorf("cannot upload %s: S3 is not configured", output)
			}
			if err := a.s3.Upload(cmd.Context(), output, "text/csv; charset=utf-8", &buf); err != nil {
				return err
			}
		} else if err := os.WriteFile(output, buf.Bytes(), 0644); err != nil {
			return fmt.Errorf("failed to write template: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Template written to %s\n", output)
		return nil
	},
}

var guestsCmd = &cobra.Command{
	Use:   "guests",
	Short: "List the guests of the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		if guestRow > 0 {
			g, err := a.storage.GetGuest(guestRow)
			if err != nil {
				return fmt.Errorf("row %d: %w", guestRow, err)
			}
			printGuests(cmd.OutOrStdout(), []models.GuestRecord{*g})
			return nil
		}

		guests := a.storage.GetAllGuests()
		if statusFilter != "" {
			status := models.SendStatus(statusFilter)
			if !status.Valid() {
				return fmt.Errorf("unknown status %q", statusFilter)
			}
			guests = a.storage.GetGuestsByStatus(status)
		}

		if len(guests) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No guests found.")
			return nil
		}
		printGuests(cmd.OutOrStdout(), guests)
		return nil
	},
}

var resetFailedCmd = &cobra.Command{
	Use:   "reset-failed",
	Short: "Make failed sends pending again",
	Long: `Move every guest whose send failed back to pending so the next "send"
retries them. Rows rejected for an invalid e-mail stay as they are.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.invitations.ResetFailed()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d guest(s) reset to pending\n", n)
		return nil
	},
}

func printGuests(w io.Writer, guests []models.GuestRecord) {
	fmt.Fprintf(w, "%-5s %-30s %-35s %-8s %s\n", "ROW", "NAME", "EMAIL", "STATUS", "ERROR")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, g := range guests {
		fmt.Fprintf(w, "%-5d %-30s %-35s %-8s %s\n", g.Row, g.FullName, g.Email, g.Status, g.Error)
	}
}

func init() {
	parseCmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate only, keep the current session")
	templateCmd.Flags().BoolVar(&useSemicolon, "semicolon", false, "use ';' as the delimiter")
	guestsCmd.Flags().IntVar(&guestRow, "row", 0, "show a single guest by row number")
	guestsCmd.Flags().StringVar(&statusFilter, "status", "", "only guests with this status (pending, sending, success, error)")
}
