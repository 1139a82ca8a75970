// Package main provides the CLI entry point for sheetschema-go.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/notify"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/output"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/parser"
)

const version = "0.1.0"

var (
	outputPath      string
	pretty          bool
	format          string
	configPath      string
	rowLimit        int
	colLimit        int
	strategy        string
	mode            string
	correctionsPath string
	snapshotDir     string
	sheetsDir       string
	apiKey          string
	password        string
	logLevel        string
	quiet           bool
)

func main() {
	rootCmd := newRootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetschema [input.xlsx]",
		Short: "Infer a relational schema from Excel workbooks",
		Long: `sheetschema-go normalizes every visible sheet of a workbook (merged cells,
hidden columns, trailing blank rows), infers tables, columns, data types and
semantic roles, applies optional corrections, and outputs the schema as JSON or YAML.`,
		Args:         cobra.ExactArgs(1),
		RunE:         run,
		SilenceUsage: true,
		Version:      version,
	}

	flags := rootCmd.Flags()
	flags.StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	flags.BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")
	flags.StringVar(&format, "format", "json", "Output format: json, yaml")
	flags.StringVar(&configPath, "config", "", "YAML options file")
	flags.IntVar(&rowLimit, "rows", parser.DefaultRowLimit, "Maximum rows sampled per sheet")
	flags.IntVar(&colLimit, "cols", parser.DefaultColLimit, "Maximum columns sampled per sheet")
	flags.StringVar(&strategy, "strategy", "first", "Sample strategy: first, majority")
	flags.StringVar(&mode, "mode", "local", "Analysis mode: local, mock")
	flags.StringVar(&correctionsPath, "corrections", "", "YAML corrections file applied before export")
	flags.StringVar(&snapshotDir, "snapshot-dir", "", "Directory for per-sheet PNG snapshots")
	flags.StringVar(&sheetsDir, "sheets-dir", "", "Directory for per-sheet output files")
	flags.StringVar(&apiKey, "api-key", os.Getenv("SHEETSCHEMA_API_KEY"), "Analysis service key (env SHEETSCHEMA_API_KEY)")
	flags.StringVar(&password, "password", "", "Password for encrypted workbooks")

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")

	rootCmd.AddCommand(newServeCmd())
	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	logger, err := newLogger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	// Validate input file exists
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", sheetschema.ErrFileNotFound, inputPath)
	}

	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	outFormat, err := sheetschema.ParseFormat(format)
	if err != nil {
		return err
	}

	var corrections []sheetschema.Correction
	if correctionsPath != "" {
		corrections, err = sheetschema.LoadCorrections(correctionsPath)
		if err != nil {
			return err
		}
	}

	sinks := []notify.Sink{notify.NewLogSink(logger)}
	var snapshots *snapshotWriter
	if snapshotDir != "" {
		snapshots = &snapshotWriter{dir: snapshotDir}
		sinks = append(sinks, snapshots)
	}

	session, err := sheetschema.NewSession(opts, notify.Multi(sinks...))
	if err != nil {
		return err
	}

	// Analyze
	key := apiKey
	if key == "" {
		key = sheetschema.MockCredential
	}
	if err := session.SetCredential(cmd.Context(), key); err != nil {
		return err
	}
	dec := parser.FileDecoder{Path: inputPath, Password: opts.Password}
	if err := session.Upload(cmd.Context(), dec); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	if snapshots != nil && snapshots.err != nil {
		return fmt.Errorf("failed to write snapshots: %w", snapshots.err)
	}

	// Apply corrections
	if err := session.ApplyCorrections(corrections); err != nil {
		return err
	}

	// Write output
	if outputPath != "" {
		if err := writeExport(session, outputPath, outFormat); err != nil {
			return err
		}
	} else if sheetsDir == "" {
		if err := session.Export(cmd.OutOrStdout(), outFormat, pretty); err != nil {
			return err
		}
	}

	// Write per-sheet files
	if sheetsDir != "" {
		if err := writeSheetFiles(session, sheetsDir); err != nil {
			return fmt.Errorf("failed to write sheet files: %w", err)
		}
	}

	return nil
}

func loadOptions(cmd *cobra.Command) (sheetschema.Options, error) {
	opts := sheetschema.DefaultOptions()
	if configPath != "" {
		var err error
		opts, err = sheetschema.LoadOptions(configPath)
		if err != nil {
			return sheetschema.Options{}, err
		}
	}

	// Flags override the options file only when set explicitly.
	flags := cmd.Flags()
	if flags.Changed("rows") || configPath == "" {
		opts.RowLimit = rowLimit
	}
	if flags.Changed("cols") || configPath == "" {
		opts.ColLimit = colLimit
	}
	if flags.Changed("strategy") || configPath == "" {
		opts.Strategy = strategy
	}
	if flags.Changed("mode") || configPath == "" {
		opts.Mode = sheetschema.Mode(mode)
	}
	if flags.Changed("password") || configPath == "" {
		opts.Password = password
	}
	return opts, opts.Validate()
}

func newLogger(w io.Writer) (*slog.Logger, error) {
	if quiet {
		w = io.Discard
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", logLevel)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), nil
}

func writeExport(session *sheetschema.Session, path string, f sheetschema.Format) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := session.Export(file, f, pretty); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func writeSheetFiles(session *sheetschema.Session, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	doc, err := session.Document()
	if err != nil {
		return err
	}
	for _, sheet := range doc.Sheets {
		jsonData, err := output.SheetToJSON(&sheet, pretty)
		if err != nil {
			return err
		}

		filename := filepath.Join(dir, safeFileName(sheet.SheetName)+".json")
		if err := os.WriteFile(filename, jsonData, 0644); err != nil {
			return err
		}
	}

	return nil
}

// snapshotWriter saves every bitmap attachment as a PNG file. The first
// write error is kept and later snapshots are skipped.
type snapshotWriter struct {
	dir string
	n   int
	err error
}

func (w *snapshotWriter) Notify(e notify.Event) {
	img, ok := e.Attachment.(notify.BitmapImage)
	if !ok || w.err != nil {
		return
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		w.err = err
		return
	}
	w.n++
	name := strings.TrimPrefix(img.Label, "Vision Snapshot: ")
	filename := filepath.Join(w.dir, fmt.Sprintf("%02d_%s.png", w.n, safeFileName(name)))
	if err := os.WriteFile(filename, img.PNG, 0644); err != nil {
		w.err = fmt.Errorf("snapshot %q: %w", img.Label, err)
	}
}

func safeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, name)
}
