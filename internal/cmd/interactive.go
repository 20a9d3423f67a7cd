package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"fair-invitations/internal/guestlist"
	"fair-invitations/internal/handler"
	"fair-invitations/internal/models"
	"fair-invitations/internal/source"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Menu-driven guest list import and sending",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("📨 Trade-fair invitations")
		fmt.Println("=========================")

		a, err := newApp(cmd.Context(), cfg, logger, appOptions{needPortal: true, notify: true})
		if err != nil {
			return err
		}
		defer a.Close()

		startCLI(cmd.Context(), a, os.Stdin)
		fmt.Println("Goodbye! 👋")
		return nil
	},
}

func startCLI(ctx context.Context, a *app, in io.Reader) {
	scanner := bufio.NewScanner(in)

	for {
		fmt.Println("\nCommands:")
		fmt.Println("  1. Load guest list")
		fmt.Println("  2. Download guest list template")
		fmt.Println("  3. Send all")
		fmt.Println("  4. View all guests")
		fmt.Println("  5. View guests by status")
		fmt.Println("  6. Reset failed")
		fmt.Println("  7. Exit")
		fmt.Print("\nEnter command (1-7): ")

		if !scanner.Scan() {
			return
		}

		switch strings.TrimSpace(scanner.Text()) {
		case "1":
			loadGuestList(ctx, scanner, a)
		case "2":
			downloadTemplate(scanner)
		case "3":
			sendAll(ctx, scanner, a)
		case "4":
			viewGuests(a.storage.GetAllGuests(), "")
		case "5":
			viewGuestsByStatus(scanner, a)
		case "6":
			n, err := a.invitations.ResetFailed()
			if err != nil {
				fmt.Printf("❌ %v\n", err)
			} else {
				fmt.Printf("✅ %d guest(s) reset to pending\n", n)
			}
		case "7":
			return
		default:
			fmt.Println("Invalid command. Please try again.")
		}
	}
}

func prompt(scanner *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

func loadGuestList(ctx context.Context, scanner *bufio.Scanner, a *app) {
	location, ok := prompt(scanner, "Enter file path or s3:// location: ")
	if !ok || location == "" {
		return
	}

	exhibition := a.exhibition()
	if exhibition == "" {
		if exhibition, ok = prompt(scanner, "Enter exhibition id: "); !ok {
			return
		}
	}

	raw, err := source.ReadText(ctx, a.opener, location)
	if err != nil {
		fmt.Printf("❌ Error reading guest list: %v\n", err)
		return
	}

	doc, err := a.invitations.LoadGuestList(exhibition, location, raw)
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	fmt.Printf("✅ Loaded %d guests (%d invalid)\n", doc.Valid+doc.Invalid, doc.Invalid)
}

func downloadTemplate(scanner *bufio.Scanner) {
	path, ok := prompt(scanner, fmt.Sprintf("Save template as [%s]: ", guestlist.TemplateFileName))
	if !ok {
		return
	}
	if path == "" {
		path = guestlist.TemplateFileName
	}

	f, err := os.Create(path)
	if err != nil {
		fmt.Printf("❌ Error creating file: %v\n", err)
		return
	}
	defer f.Close()

	if err := guestlist.WriteTemplate(f, guestlist.Comma); err != nil {
		fmt.Printf("❌ Error writing template: %v\n", err)
		return
	}
	fmt.Printf("✅ Template saved to %s\n", path)
}

func sendAll(ctx context.Context, scanner *bufio.Scanner, a *app) {
	pc, err := a.invitations.LoadPageContext(ctx, a.exhibition())
	if err != nil {
		fmt.Printf("❌ %v\n", err)
		return
	}
	if len(pc.Templates) == 0 {
		fmt.Println("No invitation templates for this exhibition.")
		return
	}

	fmt.Println("\nTemplates:")
	for i, t := range pc.Templates {
		fmt.Printf("  %d. %s\n", i+1, t.Title)
	}
	choice, ok := prompt(scanner, fmt.Sprintf("Select template (1-%d): ", len(pc.Templates)))
	if !ok {
		return
	}
	var n int
	if _, err := fmt.Sscanf(choice, "%d", &n); err != nil || n < 1 || n > len(pc.Templates) {
		fmt.Println("Invalid choice.")
		return
	}

	if _, err := runSend(ctx, a, handler.SendRequest{
		ExhibitionID: pc.ExhibitionID,
		TemplateID:   pc.Templates[n-1].ID,
	}); err != nil {
		fmt.Printf("❌ Error sending invitations: %v\n", err)
	}
}

func viewGuestsByStatus(scanner *bufio.Scanner, a *app) {
	fmt.Println("\nSelect status:")
	fmt.Println("  1. Pending")
	fmt.Println("  2. Success")
	fmt.Println("  3. Error")
	choice, ok := prompt(scanner, "Enter choice (1-3): ")
	if !ok {
		return
	}

	var status models.SendStatus
	switch choice {
	case "1":
		status = models.StatusPending
	case "2":
		status = models.StatusSuccess
	case "3":
		status = models.StatusError
	default:
		fmt.Println("Invalid choice.")
		return
	}

	viewGuests(a.storage.GetGuestsByStatus(status), status)
}

func viewGuests(guests []models.GuestRecord, status models.SendStatus) {
	if len(guests) == 0 {
		if status == "" {
			fmt.Println("\nNo guests found.")
		} else {
			fmt.Printf("\nNo guests with status '%s'.\n", status)
		}
		return
	}

	fmt.Printf("\n📋 Guests (%d total):\n", len(guests))
	printGuests(os.Stdout, guests)
}
