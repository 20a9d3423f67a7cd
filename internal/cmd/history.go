package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past dispatch runs, or the attempts of one run",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger, appOptions{})
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()

		if len(args) == 1 {
			attempts, err := a.history.ListAttempts(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(attempts) == 0 {
				fmt.Fprintf(out, "No attempts recorded for run %s.\n", args[0])
				return nil
			}
			for _, at := range attempts {
				fmt.Fprintf(out, "%-5d %-30s %-35s %-8s %s\n", at.Row, at.FullName, at.Email, at.Status, at.Error)
			}
			return nil
		}

		exhibition := a.exhibition()
		if exhibition == "" {
			return fmt.Errorf("no exhibition: pass --exhibition or load a guest list first")
		}

		runs, err := a.history.ListRuns(cmd.Context(), exhibition, historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(out, "No dispatch runs recorded.")
			return nil
		}
		for _, r := range runs {
			state := ""
			if r.Aborted {
				state = " (aborted)"
			}
			fmt.Fprintf(out, "%s  %s  template %s  %d/%d sent, %d failed%s\n",
				r.FinishedAt.Local().Format("2006-01-02 15:04:05"), r.ID, r.TemplateID, r.Success, r.Total, r.Failed, state)
		}
		return nil
	},
}

var recipientsCmd = &cobra.Command{
	Use:   "recipients",
	Short: "List invitations the portal has already sent",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cfg, logger, appOptions{needPortal: true})
		if err != nil {
			return err
		}
		defer a.Close()

		recipients, err := a.invitations.SentRecipients(cmd.Context(), a.exhibition())
		if err != nil {
			return err
		}
		if len(recipients) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No invitations sent yet.")
			return nil
		}
		for _, r := range recipients {
			fmt.Fprintf(cmd.OutOrStdout(), "%-30s %-35s %-10s %s\n", r.FullName, r.Email, r.Status, r.SentAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of runs to show")
}
