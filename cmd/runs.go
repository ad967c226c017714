package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/quillaudio/quill/internal/store"
)

var (
	runsPath      string
	runsASIN      string
	runsOnlyValid bool
	runsLimit     int
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Browse resolution history",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded resolution runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Path:      runsPath,
			ASIN:      runsASIN,
			OnlyValid: runsOnlyValid,
			Limit:     runsLimit,
		})
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"Run", "Path", "ASIN", "Valid", "Completeness", "Created"})
		for _, r := range runs {
			t.AppendRow(table.Row{
				shortID(r.ID), r.Path, r.ASIN, r.Valid,
				fmt.Sprintf("%.2f", r.Completeness),
				r.CreatedAt.Format("2006-01-02 15:04"),
			})
		}
		t.Render()
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run in full",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.GetRun(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(run)
	},
}

// shortID abbreviates a run id for table display. Ids are normally
// uuids, but migrated rows may carry shorter ones.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	runsListCmd.Flags().StringVar(&runsPath, "path", "", "filter by item path")
	runsListCmd.Flags().StringVar(&runsASIN, "asin", "", "filter by catalog identifier")
	runsListCmd.Flags().BoolVar(&runsOnlyValid, "valid", false, "only show runs that passed validation")
	runsListCmd.Flags().IntVar(&runsLimit, "limit", 50, "maximum rows")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}
