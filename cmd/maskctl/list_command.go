package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"maskctl/internal/config"
	"maskctl/internal/maskedemail"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var state string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List masked e-mail aliases",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.maskedEmails(cfg)
			if err != nil {
				return err
			}
			records, err := store.Get(cmd.Context())
			if err != nil {
				return err
			}
			records = filterByState(records, state)

			if ctx.JSONMode() {
				return writeJSON(cmd, records)
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No aliases found")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					r.Email,
					r.Description,
					r.ForDomain,
					maskedemail.Deref(r.URL),
					r.State,
					shortDate(maskedemail.Deref(r.LastMessageAt)),
				})
			}
			fmt.Fprint(out, renderTable(
				[]string{"Alias", "Description", "Domain", "URL", "State", "Last message"},
				rows,
				nil,
			))
			fmt.Fprintf(out, "Total: %d aliases\n", len(records))
			return nil
		},
	}

	cmd.Flags().StringVar(&state, "state", "", "Only show aliases in this state (enabled, disabled, deleted, pending)")
	return cmd
}

func filterByState(records []maskedemail.Record, state string) []maskedemail.Record {
	state = strings.TrimSpace(state)
	if state == "" {
		return records
	}
	filtered := make([]maskedemail.Record, 0, len(records))
	for _, r := range records {
		if strings.EqualFold(r.State, state) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func shortDate(value string) string {
	if len(value) >= len("2006-01-02") {
		return value[:len("2006-01-02")]
	}
	return value
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every alias field as quoted, semicolon-separated text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := ctx.maskedEmails(cfg)
			if err != nil {
				return err
			}
			records, err := store.Get(cmd.Context())
			if err != nil {
				return err
			}

			target := strings.TrimSpace(outputPath)
			if target == "" || target == "-" {
				return maskedemail.WriteExport(cmd.OutOrStdout(), records)
			}
			path, err := config.ExpandPath(target)
			if err != nil {
				return err
			}
			file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := maskedemail.WriteExport(file, records); err != nil {
				file.Close()
				return fmt.Errorf("write export: %w", err)
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("close export file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d aliases to %s\n", len(records), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}
