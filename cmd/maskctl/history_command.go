package main

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"maskctl/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [session-id]",
		Short: "Show past edit sessions, or the changes of one session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				if len(args) == 1 {
					return showSession(cmd, ctx, store, args[0])
				}
				sessions, err := store.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if ctx.JSONMode() {
					if sessions == nil {
						sessions = []history.Session{}
					}
					return writeJSON(cmd, sessions)
				}
				out := cmd.OutOrStdout()
				if len(sessions) == 0 {
					fmt.Fprintln(out, "No sessions recorded")
					return nil
				}
				rows := make([][]string, 0, len(sessions))
				for _, s := range sessions {
					rows = append(rows, []string{
						s.ID,
						s.StartedAt.Local().Format("2006-01-02 15:04"),
						strconv.Itoa(s.RecordCount),
						strconv.Itoa(s.ChangedCount),
						strconv.Itoa(s.UpdatedCount),
						string(s.Status),
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"Session", "Started", "Records", "Changed", "Updated", "Status"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum number of sessions to show")
	return cmd
}

func showSession(cmd *cobra.Command, ctx *commandContext, store *history.Store, id string) error {
	session, err := store.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	if session == nil {
		return errors.New("session " + id + " not found")
	}
	changes, err := store.Changes(cmd.Context(), id)
	if err != nil {
		return err
	}
	if ctx.JSONMode() {
		if changes == nil {
			changes = []history.Change{}
		}
		return writeJSON(cmd, map[string]any{"session": session, "changes": changes})
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Session:  %s\n", session.ID)
	fmt.Fprintf(out, "Started:  %s\n", session.StartedAt.Local().Format(time.DateTime))
	if session.FinishedAt != nil {
		fmt.Fprintf(out, "Finished: %s\n", session.FinishedAt.Local().Format(time.DateTime))
	}
	fmt.Fprintf(out, "Status:   %s\n", session.Status)
	if session.Remote != "" {
		fmt.Fprintf(out, "Remote:   %s (pushed: %s)\n", session.Remote, yesNo(session.Pushed))
	}
	if session.ErrorMessage != "" {
		fmt.Fprintf(out, "Error:    [%s] %s\n", session.ErrorKind, session.ErrorMessage)
	}
	if len(changes) == 0 {
		fmt.Fprintln(out, "No field changes recorded")
		return nil
	}
	rows := make([][]string, 0, len(changes))
	for _, c := range changes {
		rows = append(rows, []string{
			c.Email,
			c.Field,
			displayValue(c.OldValue),
			displayValue(c.NewValue),
			c.Outcome,
		})
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, renderTable([]string{"Alias", "Field", "Old", "New", "Outcome"}, rows, nil))
	return nil
}
