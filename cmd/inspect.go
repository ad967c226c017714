package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/quillaudio/quill/internal/engine"
	"github.com/quillaudio/quill/internal/model"
	"github.com/quillaudio/quill/internal/source"
)

var (
	inspectFile string
	inspectASIN string
	inspectJSON bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <path>",
	Short: "Resolve an item and show each source's contribution",
	Long:  "Runs the full pipeline and prints every source's raw field set alongside the merged record, its provenance, and the validation verdict.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, err := buildEngine(cfg)
		if err != nil {
			return err
		}

		res, err := eng.ResolveWithDetail(cmd.Context(), source.Request{
			Path:      args[0],
			MediaFile: inspectFile,
			ASIN:      inspectASIN,
		})
		if err != nil {
			return eris.Wrapf(err, "inspect %s", args[0])
		}

		if inspectJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		printRawSets(res)
		printMerged(res)
		printVerdict(res)
		return nil
	},
}

func printRawSets(res *engine.Result) {
	for _, fs := range res.RawSets {
		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle("source: %s", fs.Source())
		t.AppendHeader(table.Row{"Field", "Value"})
		for _, name := range fs.FieldNames() {
			t.AppendRow(table.Row{name, renderValue(fs[name])})
		}
		t.Render()
		fmt.Println()
	}
}

func printMerged(res *engine.Result) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("merged record")
	t.AppendHeader(table.Row{"Field", "Value", "Provenance"})
	for _, name := range res.Record.FieldNames() {
		t.AppendRow(table.Row{
			name,
			renderValue(res.Record.Fields[name]),
			strings.Join(res.Record.Provenance[name], ", "),
		})
	}
	t.Render()
	fmt.Println()
}

func printVerdict(res *engine.Result) {
	v := res.Validation
	fmt.Printf("run %s  valid=%v  completeness=%.2f\n", res.RunID, v.Valid, v.Completeness)
	for _, e := range v.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	for _, w := range v.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}

// renderValue keeps table cells compact for list and chapter values.
func renderValue(v any) string {
	switch val := v.(type) {
	case []string:
		return strings.Join(val, "; ")
	case []model.Chapter:
		return fmt.Sprintf("%d chapters", len(val))
	case string:
		if len(val) > 80 {
			return val[:77] + "..."
		}
		return val
	default:
		return fmt.Sprint(v)
	}
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFile, "file", "", "primary media file within the item")
	inspectCmd.Flags().StringVar(&inspectASIN, "asin", "", "catalog identifier override")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "emit the full result as JSON")
	rootCmd.AddCommand(inspectCmd)
}
