// Package inference derives tables, columns, data types and semantic roles
// from a sampled grid.
package inference

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultColumnConfidence is the confidence assigned to every column.
	DefaultColumnConfidence = 0.85
	// DefaultTableConfidence is the confidence assigned to every table.
	DefaultTableConfidence = 0.90
	// DefaultSampleValues is the number of sample values kept per column.
	DefaultSampleValues = 5
)

var (
	isoDatePrefix = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	entityMarkers = []string{"id", "code", "key"}
)

// Config configures an Engine.
type Config struct {
	// Strategy picks the representative value per column. Nil means FirstSample.
	Strategy Strategy
	// ColumnConfidence and TableConfidence are clamped to [0, 1].
	ColumnConfidence float64
	TableConfidence  float64
	// SampleValues caps Column.SampleValues. Zero keeps none.
	SampleValues int
}

// DefaultConfig returns the reference heuristic configuration.
func DefaultConfig() Config {
	return Config{
		Strategy:         FirstSample{},
		ColumnConfidence: DefaultColumnConfidence,
		TableConfidence:  DefaultTableConfidence,
		SampleValues:     DefaultSampleValues,
	}
}

// Engine infers a schema from one sheet's grid. It is safe for concurrent use.
type Engine struct {
	cfg Config
}

// New creates an Engine.
func New(cfg Config) *Engine {
	if cfg.Strategy == nil {
		cfg.Strategy = FirstSample{}
	}
	cfg.ColumnConfidence = clamp01(cfg.ColumnConfidence)
	cfg.TableConfidence = clamp01(cfg.TableConfidence)
	if cfg.SampleValues < 0 {
		cfg.SampleValues = 0
	}
	return &Engine{cfg: cfg}
}

// Strategy returns the engine's sampling strategy.
func (e *Engine) Strategy() Strategy { return e.cfg.Strategy }

// Infer returns the tables found in grid. The first row is the header row and
// every later row is data. An empty grid yields no tables. grid is not
// modified.
func (e *Engine) Infer(sheetName string, grid models.Grid) []models.Table {
	if len(grid) == 0 {
		return []models.Table{}
	}

	const tableIdx = 0
	header := grid[0]
	data := grid[1:]

	columns := make([]models.Column, len(header))
	for colIdx, headerCell := range header {
		columns[colIdx] = e.inferColumn(sheetName, tableIdx, colIdx, headerCell, data)
	}

	return []models.Table{{
		ID:          models.TableID(sheetName, tableIdx),
		Name:        fmt.Sprintf("%s Data Table", sheetName),
		StartRow:    0,
		EndRow:      len(grid) - 1,
		Description: fmt.Sprintf("Primary data table with %d columns", len(columns)),
		Confidence:  e.cfg.TableConfidence,
		Columns:     columns,
	}}
}

func (e *Engine) inferColumn(sheetName string, tableIdx, colIdx int, headerCell models.CellValue, data models.Grid) models.Column {
	var values []models.CellValue
	for _, row := range data {
		v := row.Cell(colIdx)
		if v.IsBlank() {
			continue
		}
		values = append(values, v)
	}

	dataType, role := models.DataTypeString, models.RoleDimension
	if sample, ok := e.cfg.Strategy.Representative(values); ok {
		dataType, role = classify(sample)
	}

	headerText := headerCell.String()
	folded := norm.NFKC.String(headerText)
	if hasEntityMarker(cases.Fold().String(folded)) {
		role = models.RoleEntity
	}

	originalName := headerText
	nameSource := strings.TrimSpace(folded)
	if emptyHeader(headerCell) {
		originalName = fmt.Sprintf("Column%d", colIdx+1)
		nameSource = originalName
	}

	return models.Column{
		ID:            models.ColumnID(sheetName, tableIdx, colIdx),
		OriginalName:  originalName,
		SuggestedName: SuggestName(nameSource),
		DataType:      dataType,
		SemanticRole:  role,
		Confidence:    e.cfg.ColumnConfidence,
		Reasoning:     fmt.Sprintf("Inferred from %d sample values", len(values)),
		SampleValues:  e.samples(values),
	}
}

func (e *Engine) samples(values []models.CellValue) []string {
	out := make([]string, 0, min(len(values), e.cfg.SampleValues))
	for _, v := range values {
		if len(out) == e.cfg.SampleValues {
			break
		}
		out = append(out, v.String())
	}
	return out
}

// classify maps a representative value to its data type and semantic role.
func classify(v models.CellValue) (models.DataType, models.SemanticRole) {
	switch v.Kind {
	case models.KindNumber:
		return models.DataTypeNumber, models.RoleMetric
	case models.KindBool:
		return models.DataTypeBoolean, models.RoleDimension
	case models.KindDate:
		return models.DataTypeDate, models.RoleTimestamp
	}
	if isoDatePrefix.MatchString(v.String()) {
		return models.DataTypeDate, models.RoleTimestamp
	}
	return models.DataTypeString, models.RoleDimension
}

// emptyHeader reports whether a header cell yields a generated placeholder:
// absent, whitespace-only text, false, or zero.
func emptyHeader(v models.CellValue) bool {
	switch v.Kind {
	case models.KindText:
		return strings.TrimSpace(v.Text) == ""
	case models.KindNumber:
		return v.Num == 0 || math.IsNaN(v.Num)
	case models.KindBool:
		return !v.Bool
	case models.KindDate:
		return false
	}
	return true
}

func hasEntityMarker(header string) bool {
	for _, m := range entityMarkers {
		if strings.Contains(header, m) {
			return true
		}
	}
	return false
}

// SuggestName collapses every Unicode whitespace run in name to a single
// underscore and drops leading and trailing whitespace.
func SuggestName(name string) string {
	return strings.Join(strings.Fields(name), "_")
}

func clamp01(f float64) float64 {
	switch {
	case f < 0:
		return 0
	case f > 1:
		return 1
	}
	return f
}
