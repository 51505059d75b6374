package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var (
	batchFile   string
	batchOutDir string
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run research queries from a file, one per line",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		raw, err := os.ReadFile(batchFile)
		if err != nil {
			return eris.Wrapf(err, "read %s", batchFile)
		}

		var queries []string
		for _, line := range strings.Split(string(raw), "\n") {
			if line = strings.TrimSpace(line); line != "" && !strings.HasPrefix(line, "#") {
				queries = append(queries, line)
			}
		}
		if len(queries) == 0 {
			return eris.Errorf("no queries in %s", batchFile)
		}

		engine, err := initEngine()
		if err != nil {
			return err
		}

		if batchOutDir != "" {
			if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
				return eris.Wrapf(err, "create %s", batchOutDir)
			}
		}

		// Each query runs its own sequential pipeline; queries run
		// concurrently up to the configured limit.
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(cfg.Batch.MaxConcurrent)

		reports := make([]string, len(queries))
		for i, q := range queries {
			g.Go(func() error {
				result := engine.Analyze(gCtx, q, nil)
				reports[i] = result.Report
				zap.L().Info("batch: query complete",
					zap.Int("index", i),
					zap.String("company", result.Company),
					zap.Strings("degraded_stages", result.Degraded),
				)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return eris.Wrap(err, "batch run")
		}

		for i, report := range reports {
			if batchOutDir == "" {
				fmt.Println(report)
				fmt.Print("\n---\n\n")
				continue
			}
			path := filepath.Join(batchOutDir, fmt.Sprintf("report_%03d.md", i+1))
			if err := os.WriteFile(path, []byte(report+"\n"), 0o644); err != nil {
				return eris.Wrapf(err, "write %s", path)
			}
		}

		if batchOutDir != "" {
			fmt.Printf("%d reports written to %s\n", len(reports), batchOutDir)
		}
		return nil
	},
}

func init() {
	batchCmd.Flags().StringVarP(&batchFile, "file", "f", "", "file of queries, one per line")
	batchCmd.Flags().StringVarP(&batchOutDir, "out-dir", "d", "", "directory to write one report file per query")
	_ = batchCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(batchCmd)
}
