package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/quillaudio/quill/internal/engine"
	"github.com/quillaudio/quill/internal/model"
	"github.com/quillaudio/quill/internal/source"
	"github.com/quillaudio/quill/internal/store"
)

var (
	resolveFile    string
	resolveASIN    string
	resolveTarget  string
	resolveNoStore bool
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Resolve metadata for a single item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		eng, err := buildEngine(cfg)
		if err != nil {
			return err
		}

		req := source.Request{
			Path:      args[0],
			MediaFile: resolveFile,
			ASIN:      resolveASIN,
		}

		res, err := eng.ResolveWithDetail(ctx, req)
		if err != nil {
			return eris.Wrapf(err, "resolve %s", req.Path)
		}

		if !resolveNoStore {
			if err := saveRun(ctx, req.Path, res); err != nil {
				zap.L().Warn("history save failed", zap.Error(err))
			}
		}

		out := map[string]any{
			"run_id":     res.RunID,
			"record":     res.Record.Fields,
			"provenance": res.Record.Provenance,
			"validation": res.Validation,
		}

		if resolveTarget != "" {
			fm, err := loadTarget(cfg, resolveTarget)
			if err != nil {
				return err
			}
			out["payload"] = fm.Map(res.Record)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

// saveRun persists one run's outcome to the history store.
func saveRun(ctx context.Context, path string, res *engine.Result) error {
	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	recordJSON, err := json.Marshal(res.Record)
	if err != nil {
		return eris.Wrap(err, "marshal record")
	}

	return st.SaveRun(ctx, store.Run{
		ID:           res.RunID,
		Path:         path,
		ASIN:         res.Record.String(model.FieldASIN),
		ContentType:  res.ContentType,
		Valid:        res.Validation.Valid,
		Completeness: res.Validation.Completeness,
		Errors:       res.Validation.Errors,
		Warnings:     res.Validation.Warnings,
		Record:       string(recordJSON),
	})
}

func init() {
	resolveCmd.Flags().StringVar(&resolveFile, "file", "", "primary media file within the item")
	resolveCmd.Flags().StringVar(&resolveASIN, "asin", "", "catalog identifier override")
	resolveCmd.Flags().StringVar(&resolveTarget, "target", "", "include an upload payload for this target")
	resolveCmd.Flags().BoolVar(&resolveNoStore, "no-store", false, "skip recording the run in history")
	rootCmd.AddCommand(resolveCmd)
}
