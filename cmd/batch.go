package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quillaudio/quill/internal/model"
	"github.com/quillaudio/quill/internal/source"
	"github.com/quillaudio/quill/internal/store"
)

var (
	batchList    string
	batchNoStore bool
)

// batchOutcome is one line of the batch summary.
type batchOutcome struct {
	Path         string  `json:"path"`
	RunID        string  `json:"run_id,omitempty"`
	Valid        bool    `json:"valid"`
	Completeness float64 `json:"completeness"`
	Warnings     int     `json:"warnings"`
	Error        string  `json:"error,omitempty"`
}

var batchCmd = &cobra.Command{
	Use:   "batch [path...]",
	Short: "Resolve metadata for many items concurrently",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		paths := append([]string(nil), args...)
		if batchList != "" {
			listed, err := readPathList(batchList)
			if err != nil {
				return err
			}
			paths = append(paths, listed...)
		}
		if len(paths) == 0 {
			return eris.New("no items: give paths as arguments or --list")
		}

		eng, err := buildEngine(cfg)
		if err != nil {
			return err
		}

		var st store.Store
		if !batchNoStore {
			st, err = initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
		}

		outcomes := make([]batchOutcome, len(paths))
		var mu sync.Mutex

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(max(cfg.Batch.MaxConcurrentItems, 1))

		for i, path := range paths {
			i, path := i, path
			g.Go(func() error {
				out := batchOutcome{Path: path}
				res, err := eng.ResolveWithDetail(gctx, source.Request{Path: path})
				if err != nil {
					out.Error = err.Error()
					zap.L().Error("item failed", zap.String("path", path), zap.Error(err))
				} else {
					out.RunID = res.RunID
					out.Valid = res.Validation.Valid
					out.Completeness = res.Validation.Completeness
					out.Warnings = len(res.Validation.Warnings)

					if st != nil {
						recordJSON, _ := json.Marshal(res.Record)
						mu.Lock()
						serr := st.SaveRun(gctx, store.Run{
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
						mu.Unlock()
						if serr != nil {
							zap.L().Warn("history save failed", zap.String("path", path), zap.Error(serr))
						}
					}
				}
				outcomes[i] = out
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		var failed int
		enc := json.NewEncoder(os.Stdout)
		for _, out := range outcomes {
			if out.Error != "" || !out.Valid {
				failed++
			}
			if err := enc.Encode(out); err != nil {
				return err
			}
		}
		fmt.Fprintf(os.Stderr, "%d items, %d failed or invalid\n", len(outcomes), failed)
		return nil
	},
}

// readPathList reads item paths from a file, one per line, skipping
// blanks and # comments.
func readPathList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open list %s", path)
	}
	defer f.Close()

	var paths []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	return paths, eris.Wrapf(sc.Err(), "read list %s", path)
}

func init() {
	batchCmd.Flags().StringVar(&batchList, "list", "", "file of item paths, one per line")
	batchCmd.Flags().BoolVar(&batchNoStore, "no-store", false, "skip recording runs in history")
	rootCmd.AddCommand(batchCmd)
}
