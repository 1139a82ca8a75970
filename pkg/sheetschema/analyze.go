package sheetschema

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/tiendc/go-deepcopy"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/notify"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/parser"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/schema"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/vision"
)

// Result is the outcome of one successful analysis run.
type Result struct {
	// Source is the workbook name.
	Source string
	// Sheets holds one analysis per visible sheet, in tab order.
	Sheets []models.SheetAnalysis
	// Skipped lists hidden sheets that never entered the pipeline.
	Skipped []string
	// Warnings lists visible sheets with little or no tabular data.
	Warnings []EmptySheetWarning
}

// Analyze decodes a workbook and infers the schema of every visible sheet,
// one sheet at a time. Progress is reported to sink in order. Any failure
// aborts the run and no partial result is returned.
func Analyze(ctx context.Context, dec parser.Decoder, opts Options, sink notify.Sink) (*Result, error) {
	p, err := newPipeline(opts, newEmitter(sink, ""))
	if err != nil {
		return nil, err
	}
	return p.run(ctx, dec)
}

// emitter stamps events with a time and session id.
type emitter struct {
	sink    notify.Sink
	session string
	now     func() time.Time
}

func newEmitter(sink notify.Sink, session string) *emitter {
	if sink == nil {
		sink = notify.Discard
	}
	return &emitter{sink: sink, session: session, now: time.Now}
}

func (e *emitter) emit(sev notify.Severity, msg string, att notify.Attachment) {
	e.sink.Notify(notify.Event{
		Time:       e.now(),
		Session:    e.session,
		Severity:   sev,
		Message:    msg,
		Attachment: att,
	})
}

// fail reports err as the terminal error notification and returns it.
func (e *emitter) fail(err error) error {
	e.emit(notify.Error, "Error: "+err.Error(), nil)
	return err
}

type pipeline struct {
	*emitter
	opts     Options
	analyzer vision.Analyzer
	params   parser.TableDetectionParams
}

func newPipeline(opts Options, em *emitter) (*pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	analyzer, err := opts.NewAnalyzer()
	if err != nil {
		return nil, err
	}
	return &pipeline{
		emitter:  em,
		opts:     opts,
		analyzer: analyzer,
		params:   parser.DefaultTableParams(),
	}, nil
}

type preparedSheet struct {
	name string
	grid models.Grid
}

func (p *pipeline) run(ctx context.Context, dec parser.Decoder) (*Result, error) {
	source := sourceName(dec)
	p.emit(notify.Info, "Processing file: "+source, nil)
	p.emit(notify.Info, "Reading binary data stream...", nil)

	wb, err := dec.Decode(ctx)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = fmt.Errorf("%w: %w", ErrFileNotFound, err)
		}
		return nil, p.fail(&DecodeError{Source: source, Err: err})
	}
	if wb.Name != "" {
		source = wb.Name
	}

	res := &Result{Source: source, Sheets: []models.SheetAnalysis{}}
	var visible []preparedSheet
	for _, raw := range wb.Sheets {
		if raw.Hidden {
			p.emit(notify.Warning, fmt.Sprintf(`Skipping hidden sheet: "%s"`, raw.Name), nil)
			res.Skipped = append(res.Skipped, raw.Name)
			continue
		}

		n := parser.Normalize(raw)
		if n.MergedRegions > 0 {
			p.emit(notify.Success, fmt.Sprintf(`[Stage 1] Normalized %d merged regions in "%s"`, n.MergedRegions, raw.Name), nil)
		}
		if n.HiddenColumns > 0 {
			p.emit(notify.Info, fmt.Sprintf(`[Stage 1] Dropped %d hidden columns in "%s"`, n.HiddenColumns, raw.Name), nil)
		}
		if !parser.HasTableData(n.Grid, p.params) {
			w := EmptySheetWarning{SheetName: raw.Name}
			res.Warnings = append(res.Warnings, w)
			p.emit(notify.Warning, w.Error(), nil)
		}
		visible = append(visible, preparedSheet{name: raw.Name, grid: n.Grid})
	}
	p.emit(notify.Success, fmt.Sprintf("Detected %d visible sheet(s)", len(visible)), nil)

	for _, s := range visible {
		analysis, err := p.analyzeSheet(ctx, s.name, s.grid)
		if err != nil {
			return nil, p.fail(err)
		}
		res.Sheets = append(res.Sheets, analysis)
	}

	p.emit(notify.Success, "Analysis complete!", nil)
	return res, nil
}

func (p *pipeline) analyzeSheet(ctx context.Context, name string, grid models.Grid) (models.SheetAnalysis, error) {
	if err := ctx.Err(); err != nil {
		return models.SheetAnalysis{}, err
	}

	sample := parser.Sample(grid, p.opts.RowLimit, p.opts.ColLimit)
	p.emit(notify.Info, fmt.Sprintf(`[Stage 2] Preparing Analysis for "%s"...`, name), nil)

	req, err := vision.NewRequest(name, sample)
	if err != nil {
		return models.SheetAnalysis{}, &AnalysisServiceError{SheetName: name, Err: fmt.Errorf("render snapshot: %w", err)}
	}
	if len(req.Image) > 0 {
		p.emit(notify.AI, fmt.Sprintf("[Stage 2] Snapshot generated (%.1f KB).", float64(len(req.Image))/1024),
			notify.BitmapImage{Label: "Vision Snapshot: " + name, PNG: req.Image})
	}
	if sim, ok := p.analyzer.(vision.Simulated); ok && sim.Simulated() {
		p.emit(notify.Warning, "[Stage 3] DEMO MODE: Using mock schema detection", nil)
	}

	tables, err := p.analyzer.Analyze(ctx, req)
	if err != nil {
		return models.SheetAnalysis{}, &AnalysisServiceError{SheetName: name, Err: err}
	}
	if tables == nil {
		tables = []models.Table{}
	}
	analysis := models.SheetAnalysis{SheetName: name, Tables: tables, Grid: sample}
	if err := schema.CheckTables(analysis); err != nil {
		return models.SheetAnalysis{}, &AnalysisServiceError{SheetName: name, Err: err}
	}

	var parsed []models.Table
	if err := deepcopy.Copy(&parsed, tables); err != nil {
		return models.SheetAnalysis{}, &AnalysisServiceError{SheetName: name, Err: err}
	}
	p.emit(notify.Success, fmt.Sprintf(`[Stage 4] Successfully parsed schema for "%s".`, name),
		notify.StructuredDocument{Label: "Parsed Schema: " + name, Value: parsed})

	for _, table := range tables {
		p.emit(notify.AI, fmt.Sprintf(`Detected Table: "%s" (Confidence: %.0f%%)`, table.Name, table.Confidence*100), nil)
		for _, col := range table.Columns {
			switch col.SemanticRole {
			case models.RoleHierarchy:
				p.emit(notify.Success, fmt.Sprintf(`  ↳ Detected Hierarchy: "%s"`, col.SuggestedName), nil)
			case models.RoleTimestamp:
				p.emit(notify.Success, fmt.Sprintf(`  ↳ Detected Time Dimension: "%s"`, col.SuggestedName), nil)
			}
		}
	}
	return analysis, nil
}

func sourceName(dec parser.Decoder) string {
	if s, ok := dec.(interface{ Source() string }); ok && s.Source() != "" {
		return s.Source()
	}
	return "workbook"
}
