package sheetschema

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/notify"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/parser"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/schema"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/vision"
	"github.com/xuri/excelize/v2"
)

// fixtureDecoder serves a prebuilt workbook.
type fixtureDecoder struct {
	wb  *models.Workbook
	err error
}

func (d fixtureDecoder) Decode(ctx context.Context) (*models.Workbook, error) {
	if d.err != nil {
		return nil, d.err
	}
	return d.wb, nil
}

func (d fixtureDecoder) Source() string { return "sales.xlsx" }

func rawSheet(name string, rows ...[]models.CellValue) models.RawSheet {
	cells := make(map[models.CellRef]models.CellValue)
	for r, row := range rows {
		for c, v := range row {
			if v.IsAbsent() {
				continue
			}
			cells[models.CellRef{Row: r, Col: c}] = v
		}
	}
	return models.RawSheet{Name: name, Cells: cells}
}

func salesSheet() models.RawSheet {
	return rawSheet("Sales",
		[]models.CellValue{models.Text("Name"), models.Text("Revenue"), models.Text("OrderDate")},
		[]models.CellValue{models.Text("Acme"), models.Number(100), models.Text("2024-01-01")},
		[]models.CellValue{models.Text("Globex"), models.Number(200), models.Text("2024-02-01")},
	)
}

func salesWorkbook() *models.Workbook {
	return &models.Workbook{
		Name: "sales.xlsx",
		Sheets: []models.RawSheet{
			salesSheet(),
			{Name: "Archive", Hidden: true},
		},
	}
}

func TestAnalyzeEventOrder(t *testing.T) {
	rec := &notify.Recorder{}
	_, err := Analyze(context.Background(), fixtureDecoder{wb: salesWorkbook()}, DefaultOptions(), rec)
	require.NoError(t, err)

	msgs := rec.Messages()
	require.Len(t, msgs, 10)
	assert.Equal(t, []string{
		"Processing file: sales.xlsx",
		"Reading binary data stream...",
		`Skipping hidden sheet: "Archive"`,
		"Detected 1 visible sheet(s)",
		`[Stage 2] Preparing Analysis for "Sales"...`,
	}, msgs[:5])
	assert.True(t, strings.HasPrefix(msgs[5], "[Stage 2] Snapshot generated ("), msgs[5])
	assert.Equal(t, []string{
		`[Stage 4] Successfully parsed schema for "Sales".`,
		`Detected Table: "Sales Data Table" (Confidence: 90%)`,
		`  ↳ Detected Time Dimension: "OrderDate"`,
		"Analysis complete!",
	}, msgs[6:])

	events := rec.Events()
	assert.Equal(t, notify.Warning, events[2].Severity)
	assert.Equal(t, notify.AI, events[5].Severity)
	require.NotNil(t, events[5].Attachment)
	assert.Equal(t, notify.KindBitmapImage, events[5].Attachment.Kind())
	assert.Equal(t, "Vision Snapshot: Sales", events[5].Attachment.Title())
	require.NotNil(t, events[6].Attachment)
	assert.Equal(t, notify.KindStructuredDocument, events[6].Attachment.Kind())
	assert.Equal(t, "Parsed Schema: Sales", events[6].Attachment.Title())
}

func TestAnalyzeResult(t *testing.T) {
	res, err := Analyze(context.Background(), fixtureDecoder{wb: salesWorkbook()}, DefaultOptions(), nil)
	require.NoError(t, err)

	assert.Equal(t, "sales.xlsx", res.Source)
	assert.Equal(t, []string{"Archive"}, res.Skipped)
	assert.Empty(t, res.Warnings)
	require.Len(t, res.Sheets, 1)

	sheet := res.Sheets[0]
	assert.Equal(t, "Sales", sheet.SheetName)
	assert.Len(t, sheet.Grid, 3)
	require.Len(t, sheet.Tables, 1)
	table := sheet.Tables[0]
	assert.Equal(t, 0, table.StartRow)
	assert.Equal(t, 2, table.EndRow)

	want := []struct {
		dt   models.DataType
		role models.SemanticRole
	}{
		{models.DataTypeString, models.RoleDimension},
		{models.DataTypeNumber, models.RoleMetric},
		{models.DataTypeDate, models.RoleTimestamp},
	}
	require.Len(t, table.Columns, len(want))
	for i, w := range want {
		assert.Equal(t, w.dt, table.Columns[i].DataType, "column %d", i)
		assert.Equal(t, w.role, table.Columns[i].SemanticRole, "column %d", i)
	}
}

func TestAnalyzeNormalizationNotices(t *testing.T) {
	org := rawSheet("Org",
		[]models.CellValue{models.Text("Division"), models.Text("Team"), models.Text("Secret")},
		[]models.CellValue{models.Text("East"), models.Text("Alpha"), models.Text("x")},
		[]models.CellValue{models.Absent(), models.Text("Beta"), models.Text("y")},
	)
	org.Merges = []models.MergeRegion{{StartRow: 1, StartCol: 0, EndRow: 2, EndCol: 0}}
	org.HiddenCols = []int{2}

	rec := &notify.Recorder{}
	res, err := Analyze(context.Background(), fixtureDecoder{wb: &models.Workbook{Sheets: []models.RawSheet{org}}}, DefaultOptions(), rec)
	require.NoError(t, err)

	assert.Contains(t, rec.Messages(), `[Stage 1] Normalized 1 merged regions in "Org"`)
	assert.Contains(t, rec.Messages(), `[Stage 1] Dropped 1 hidden columns in "Org"`)

	grid := res.Sheets[0].Grid
	require.Len(t, grid, 3)
	assert.Len(t, grid[0], 2)
	assert.Equal(t, models.Text("East"), grid[2][0])
	assert.Equal(t, "sales.xlsx", res.Source, "falls back to the decoder source when the workbook has no name")
}

func TestAnalyzeEmptySheetWarning(t *testing.T) {
	wb := &models.Workbook{Sheets: []models.RawSheet{
		salesSheet(),
		rawSheet("Notes", []models.CellValue{models.Text("draft")}),
	}}

	rec := &notify.Recorder{}
	res, err := Analyze(context.Background(), fixtureDecoder{wb: wb}, DefaultOptions(), rec)
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Equal(t, "Notes", res.Warnings[0].SheetName)
	assert.Contains(t, rec.Messages(), `sheet "Notes" has little or no tabular data`)
	require.Len(t, res.Sheets, 2, "the sheet is still analyzed")
	assert.Len(t, res.Sheets[1].Tables, 1)
}

func TestAnalyzeDecodeError(t *testing.T) {
	rec := &notify.Recorder{}
	res, err := Analyze(context.Background(), fixtureDecoder{err: errors.New("zip: not a valid zip file")}, DefaultOptions(), rec)
	require.Error(t, err)
	assert.Nil(t, res)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "sales.xlsx", decodeErr.Source)

	events := rec.Events()
	last := events[len(events)-1]
	assert.Equal(t, notify.Error, last.Severity)
	assert.Equal(t, "Error: "+err.Error(), last.Message)
}

func TestAnalyzeFileNotFound(t *testing.T) {
	dec := parser.FileDecoder{Path: filepath.Join(t.TempDir(), "missing.xlsx")}
	_, err := Analyze(context.Background(), dec, DefaultOptions(), nil)
	assert.ErrorIs(t, err, ErrFileNotFound)

	var decodeErr *DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "missing.xlsx", decodeErr.Source)
}

func TestAnalyzeServiceErrorAbortsRun(t *testing.T) {
	wb := &models.Workbook{Sheets: []models.RawSheet{
		salesSheet(),
		rawSheet("Second", []models.CellValue{models.Text("a"), models.Text("b"), models.Text("c")}),
	}}
	boom := errors.New("service unavailable")

	opts := DefaultOptions()
	local := vision.NewLocalAnalyzer(nil)
	opts.Analyzer = vision.AnalyzerFunc(func(ctx context.Context, req vision.Request) ([]models.Table, error) {
		if req.SheetName == "Second" {
			return nil, boom
		}
		return local.Analyze(ctx, req)
	})

	rec := &notify.Recorder{}
	res, err := Analyze(context.Background(), fixtureDecoder{wb: wb}, opts, rec)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)

	var svcErr *AnalysisServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "Second", svcErr.SheetName)
	assert.NotContains(t, rec.Messages(), "Analysis complete!")
	assert.Contains(t, rec.Messages(), `[Stage 4] Successfully parsed schema for "Sales".`)
}

func TestAnalyzeRejectsDuplicateColumnIDs(t *testing.T) {
	opts := DefaultOptions()
	opts.Analyzer = vision.AnalyzerFunc(func(ctx context.Context, req vision.Request) ([]models.Table, error) {
		col := models.Column{ID: "dup", DataType: models.DataTypeString, SemanticRole: models.RoleDimension}
		return []models.Table{{Name: "t", Columns: []models.Column{col, col}}}, nil
	})

	_, err := Analyze(context.Background(), fixtureDecoder{wb: salesWorkbook()}, opts, nil)
	assert.ErrorIs(t, err, schema.ErrDuplicateColumnID)
	var svcErr *AnalysisServiceError
	assert.ErrorAs(t, err, &svcErr)
}

func TestAnalyzeRejectsInvalidTables(t *testing.T) {
	valid := func() models.Table {
		return models.Table{
			Name:       "t",
			EndRow:     2,
			Confidence: 0.9,
			Columns: []models.Column{{
				ID: "c", DataType: models.DataTypeString, SemanticRole: models.RoleDimension, Confidence: 0.8,
			}},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*models.Table)
		wantErr error
	}{
		{"unknown data type", func(tb *models.Table) { tb.Columns[0].DataType = "Text" }, models.ErrInvalidDataType},
		{"unknown semantic role", func(tb *models.Table) { tb.Columns[0].SemanticRole = "" }, models.ErrInvalidSemanticRole},
		{"column confidence above one", func(tb *models.Table) { tb.Columns[0].Confidence = 3 }, schema.ErrInvalidTable},
		{"table confidence below zero", func(tb *models.Table) { tb.Confidence = -0.1 }, schema.ErrInvalidTable},
		{"reversed rows", func(tb *models.Table) { tb.StartRow, tb.EndRow = 3, 1 }, schema.ErrInvalidTable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Analyzer = vision.AnalyzerFunc(func(ctx context.Context, req vision.Request) ([]models.Table, error) {
				table := valid()
				tt.mutate(&table)
				return []models.Table{table}, nil
			})

			rec := &notify.Recorder{}
			res, err := Analyze(context.Background(), fixtureDecoder{wb: salesWorkbook()}, opts, rec)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, tt.wantErr)
			var svcErr *AnalysisServiceError
			require.ErrorAs(t, err, &svcErr)
			assert.Equal(t, "Sales", svcErr.SheetName)
			assert.NotContains(t, rec.Messages(), `[Stage 4] Successfully parsed schema for "Sales".`)
		})
	}
}

func TestAnalyzeMockMode(t *testing.T) {
	opts := DefaultOptions()
	opts.Mode = ModeMock

	rec := &notify.Recorder{}
	_, err := Analyze(context.Background(), fixtureDecoder{wb: salesWorkbook()}, opts, rec)
	require.NoError(t, err)

	var demo *notify.Event
	for _, e := range rec.Events() {
		if e.Message == "[Stage 3] DEMO MODE: Using mock schema detection" {
			e := e
			demo = &e
		}
	}
	require.NotNil(t, demo)
	assert.Equal(t, notify.Warning, demo.Severity)
}

func TestAnalyzeSamplesGrid(t *testing.T) {
	opts := DefaultOptions()
	opts.RowLimit = 2
	opts.ColLimit = 1

	res, err := Analyze(context.Background(), fixtureDecoder{wb: salesWorkbook()}, opts, nil)
	require.NoError(t, err)

	table := res.Sheets[0].Tables[0]
	assert.Equal(t, 1, table.EndRow)
	assert.Len(t, table.Columns, 1)
	assert.Len(t, res.Sheets[0].Grid, 2)
}

func TestAnalyzeInvalidOptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Strategy = "median"
	_, err := Analyze(context.Background(), fixtureDecoder{wb: salesWorkbook()}, opts, nil)
	assert.Error(t, err)
}

func TestAnalyzeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Analyze(ctx, fixtureDecoder{wb: salesWorkbook()}, DefaultOptions(), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeWorkbookFile(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "Sales"))
	rows := [][]any{
		{"Name", "Revenue", "OrderDate"},
		{"Acme", 100, "2024-01-01"},
		{"Globex", 200, "2024-02-01"},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sales", cell, &row))
	}
	_, err := f.NewSheet("Archive")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Archive", "A1", "old"))
	require.NoError(t, f.SetSheetVisible("Archive", false))

	path := filepath.Join(t.TempDir(), "sales.xlsx")
	require.NoError(t, f.SaveAs(path))

	res, err := Analyze(context.Background(), parser.FileDecoder{Path: path}, DefaultOptions(), nil)
	require.NoError(t, err)

	assert.Equal(t, "sales.xlsx", res.Source)
	assert.Equal(t, []string{"Archive"}, res.Skipped)
	require.Len(t, res.Sheets, 1)
	cols := res.Sheets[0].Tables[0].Columns
	require.Len(t, cols, 3)
	assert.Equal(t, models.DataTypeNumber, cols[1].DataType)
	assert.Equal(t, models.DataTypeDate, cols[2].DataType)
	assert.Equal(t, []string{"100", "200"}, cols[1].SampleValues)
}
