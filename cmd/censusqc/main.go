// Command censusqc validates a census file from the command line:
// load, detect, optionally auto-fix, then export the cleaned table and
// print a quality report.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"censusqc/internal/census"
	"censusqc/internal/config"
	"censusqc/internal/services"
)

func main() {
	in := flag.String("in", "", "input census file (.csv or .xlsx)")
	out := flag.String("out", "", "output path for the cleaned table (optional)")
	format := flag.String("format", "csv", "export format: csv | xlsx")
	autoFix := flag.Bool("fix", false, "apply all auto-fixable fixes before exporting")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *in == "" {
		fmt.Fprintln(os.Stderr, "usage: censusqc -in <census.csv|census.xlsx> [-fix] [-out cleaned.csv] [-format csv|xlsx]")
		os.Exit(2)
	}

	if err := run(*in, *out, *format, *autoFix, logger); err != nil {
		logger.Error("censusqc failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(in, out, format string, autoFix bool, logger *slog.Logger) error {
	table, err := loadTable(in)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", in, err)
	}
	logger.Info("census file loaded",
		slog.String("file", in),
		slog.Int("rows", table.RowCount()),
		slog.Int("columns", len(table.Columns())))

	cfg := config.Default()
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Detection.Timeout)
	defer cancel()

	manager := services.NewManager(logger, nil)
	session := manager.Create(table)

	issues, score, err := session.Validate(ctx)
	if err != nil {
		return fmt.Errorf("validation run failed: %w", err)
	}
	logger.Info("validation complete",
		slog.Int("issues", len(issues)),
		slog.Float64("score", score.Overall))

	if autoFix {
		result, err := session.ApplyAllAutoFixes(ctx, "censusqc-cli")
		if err != nil {
			return fmt.Errorf("auto-fix failed: %w", err)
		}
		logger.Info("auto-fixes applied",
			slog.Int("applied", result.Applied),
			slog.Int("attempted", result.Attempted))

		// Re-validate so the report reflects the cleaned table.
		issues, score, err = session.Validate(ctx)
		if err != nil {
			return fmt.Errorf("re-validation failed: %w", err)
		}
	}

	if out != "" {
		data, f, err := session.Export(format)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		logger.Info("cleaned table exported",
			slog.String("file", out),
			slog.String("format", string(f)))
	}

	report := map[string]interface{}{
		"file":   in,
		"rows":   session.RowCount(),
		"issues": len(issues),
		"score":  score,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func loadTable(path string) (*census.Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return census.LoadXLSX(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return census.LoadCSV(f)
	default:
		return nil, fmt.Errorf("unsupported file type %s, expected .csv or .xlsx", filepath.Ext(path))
	}
}
