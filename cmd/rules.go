package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/quillaudio/quill/internal/merge"
	"github.com/quillaudio/quill/internal/model"
)

var rulesFileFlag string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect precedence rules",
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active precedence rule set",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules, err := activeRules()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetTitle("rule set %s", rules.Version)
		t.AppendHeader(table.Row{"Field", "Strategy", "Sources"})
		for _, r := range rules.Rules {
			t.AppendRow(table.Row{r.Field, string(r.Strategy), strings.Join(r.Sources, " > ")})
		}
		t.Render()
		return nil
	},
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Validate a precedence rules file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		known := []string{model.SourcePathInfo, model.SourceEmbedded, model.SourceCatalog}
		rules, err := merge.LoadRuleSet(args[0], known)
		if err != nil {
			return err
		}
		fmt.Printf("%s: ok (%s, %d rules)\n", args[0], rules.Version, len(rules.Rules))
		return nil
	},
}

// activeRules loads the configured rule set, or the built-in one.
func activeRules() (*model.RuleSet, error) {
	known := []string{model.SourcePathInfo, model.SourceEmbedded, model.SourceCatalog}
	path := rulesFileFlag
	if path == "" {
		path = cfg.Rules.File
	}
	if path != "" {
		return merge.LoadRuleSet(path, known)
	}
	return merge.DefaultRuleSet(known)
}

func init() {
	rulesShowCmd.Flags().StringVar(&rulesFileFlag, "file", "", "rules file to show instead of the configured one")
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesCheckCmd)
	rootCmd.AddCommand(rulesCmd)
}
