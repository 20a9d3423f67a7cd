package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fair-invitations/internal/handler"
	"fair-invitations/internal/models"
	"fair-invitations/internal/source"
)

var (
	templateID    string
	recipientName string
	htmlFile      string
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render an invitation template for one recipient",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger, appOptions{needPortal: true})
		if err != nil {
			return err
		}
		defer a.Close()

		pc, err := a.invitations.LoadPageContext(cmd.Context(), a.exhibition())
		if err != nil {
			return err
		}
		html, err := a.invitations.Preview(cmd.Context(), pc, templateID, recipientName)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), html)
		return nil
	},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send invitations to every pending guest",
	Long: `Send invitations to every pending guest of the current session, one at a
time and in list order. A failed send is recorded on its row and the run moves on.
Press Ctrl+C to stop after the invitation currently being sent.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, logger, appOptions{needPortal: true, notify: true})
		if err != nil {
			return err
		}
		defer a.Close()

		req := handler.SendRequest{
			ExhibitionID: exhibitionID,
			TemplateID:   templateID,
		}
		if htmlFile != "" {
			override, err := source.ReadText(ctx, a.opener, htmlFile)
			if err != nil {
				return fmt.Errorf("failed to read html override: %w", err)
			}
			req.HTMLOverride = override
		}

		result, err := runSend(ctx, a, req)
		if err != nil {
			return err
		}
		if result.Failed > 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Run \"invitations reset-failed\" to retry the failed guests.")
		}
		return nil
	},
}

// runSend runs a batch with live row and progress output
func runSend(ctx context.Context, a *app, req handler.SendRequest) (models.DispatchResult, error) {
	req.OnRecord = func(rec models.GuestRecord) {
		switch rec.Status {
		case models.StatusSuccess:
			fmt.Printf("  ✅ %d. %s <%s>\n", rec.Row, rec.FullName, rec.Email)
		case models.StatusError:
			fmt.Printf("  ❌ %d. %s <%s>: %s\n", rec.Row, rec.FullName, rec.Email, rec.Error)
		}
	}
	req.OnProgress = func(p int) {
		fmt.Printf("     %d%%\n", p)
	}

	result, err := a.invitations.SendAll(ctx, req)
	if err != nil {
		return result, err
	}

	if result.Total == 0 {
		fmt.Println("No pending guests to send to.")
		return result, nil
	}
	if result.Aborted {
		fmt.Println("\n⏹ Sending stopped.")
	}
	fmt.Printf("\nSent %d of %d, %d failed.\n", result.Success, result.Total, result.Failed)
	return result, nil
}

func init() {
	previewCmd.Flags().StringVarP(&templateID, "template", "t", "", "invitation template id")
	previewCmd.Flags().StringVarP(&recipientName, "name", "n", "", "recipient name used in the greeting")
	_ = previewCmd.MarkFlagRequired("template")

	sendCmd.Flags().StringVarP(&templateID, "template", "t", "", "invitation template id")
	sendCmd.Flags().StringVar(&htmlFile, "html", "", "send this HTML file verbatim instead of the rendered template")
	_ = sendCmd.MarkFlagRequired("template")
}
