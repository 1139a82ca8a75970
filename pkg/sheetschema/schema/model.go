// Package schema holds the mutable schema state a user reviews and corrects.
package schema

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/tiendc/go-deepcopy"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
)

// ErrColumnNotFound indicates no column with the given id exists at the given
// sheet and table coordinates.
var ErrColumnNotFound = errors.New("column not found")

// ErrDuplicateColumnID indicates two columns of one sheet share an id.
var ErrDuplicateColumnID = errors.New("duplicate column id")

// ErrInvalidTable indicates a table or column value outside its allowed range.
var ErrInvalidTable = errors.New("invalid table")

// ColumnUpdate lists the user-editable fields of a column. Nil fields are
// left unchanged.
type ColumnUpdate struct {
	SuggestedName *string
	DataType      *models.DataType
	SemanticRole  *models.SemanticRole
}

// Empty reports whether the update changes nothing.
func (u ColumnUpdate) Empty() bool {
	return u.SuggestedName == nil && u.DataType == nil && u.SemanticRole == nil
}

// Validate checks that enum fields hold members of their enumerations.
func (u ColumnUpdate) Validate() error {
	if u.DataType != nil && !u.DataType.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidDataType, string(*u.DataType))
	}
	if u.SemanticRole != nil && !u.SemanticRole.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidSemanticRole, string(*u.SemanticRole))
	}
	return nil
}

// Model owns the analysed sheets. Updates are serialized and applied whole,
// so readers never observe a partially updated column.
type Model struct {
	mu     sync.RWMutex
	sheets []models.SheetAnalysis
}

// NewModel takes ownership of sheets. It fails when a sheet has duplicate
// column ids.
func NewModel(sheets []models.SheetAnalysis) (*Model, error) {
	for _, s := range sheets {
		if err := CheckColumnIDs(s); err != nil {
			return nil, err
		}
	}
	return &Model{sheets: sheets}, nil
}

// CheckColumnIDs reports ErrDuplicateColumnID when two columns of the sheet
// share an id.
func CheckColumnIDs(s models.SheetAnalysis) error {
	seen := make(map[string]struct{})
	for _, t := range s.Tables {
		for _, c := range t.Columns {
			if _, ok := seen[c.ID]; ok {
				return fmt.Errorf("%w %q in sheet %q", ErrDuplicateColumnID, c.ID, s.SheetName)
			}
			seen[c.ID] = struct{}{}
		}
	}
	return nil
}

// CheckTables reports the first table or column of the sheet that falls
// outside the schema's domain: an unknown data type or semantic role, a
// confidence outside [0, 1], a row range that ends before it starts, or a
// duplicated column id.
func CheckTables(s models.SheetAnalysis) error {
	for _, t := range s.Tables {
		if err := checkConfidence(t.Confidence); err != nil {
			return fmt.Errorf("table %q: %w", t.Name, err)
		}
		if t.StartRow < 0 || t.EndRow < t.StartRow {
			return fmt.Errorf("%w: table %q rows %d..%d", ErrInvalidTable, t.Name, t.StartRow, t.EndRow)
		}
		for _, c := range t.Columns {
			if !c.DataType.Valid() {
				return fmt.Errorf("column %q: %w: %q", c.ID, models.ErrInvalidDataType, string(c.DataType))
			}
			if !c.SemanticRole.Valid() {
				return fmt.Errorf("column %q: %w: %q", c.ID, models.ErrInvalidSemanticRole, string(c.SemanticRole))
			}
			if err := checkConfidence(c.Confidence); err != nil {
				return fmt.Errorf("column %q: %w", c.ID, err)
			}
		}
	}
	return CheckColumnIDs(s)
}

func checkConfidence(c float64) error {
	if math.IsNaN(c) || c < 0 || c > 1 {
		return fmt.Errorf("%w: confidence %g", ErrInvalidTable, c)
	}
	return nil
}

// ApplyColumnUpdate merges u into the column with the given id in the given
// sheet and table. id, original name, confidence and reasoning never change.
// An invalid update or unknown column leaves the model unchanged.
func (m *Model) ApplyColumnUpdate(sheetIdx, tableIdx int, columnID string, u ColumnUpdate) error {
	if err := u.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	col, err := m.lookup(sheetIdx, tableIdx, columnID)
	if err != nil {
		return err
	}
	if u.SuggestedName != nil {
		col.SuggestedName = *u.SuggestedName
	}
	if u.DataType != nil {
		col.DataType = *u.DataType
	}
	if u.SemanticRole != nil {
		col.SemanticRole = *u.SemanticRole
	}
	return nil
}

// Column returns a copy of the column with the given id.
func (m *Model) Column(sheetIdx, tableIdx int, columnID string) (models.Column, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	col, err := m.lookup(sheetIdx, tableIdx, columnID)
	if err != nil {
		return models.Column{}, err
	}
	out := *col
	out.SampleValues = append([]string(nil), col.SampleValues...)
	return out, nil
}

// Sheets returns a deep copy of the current state.
func (m *Model) Sheets() ([]models.SheetAnalysis, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.SheetAnalysis, len(m.sheets))
	for i, s := range m.sheets {
		var tables []models.Table
		if err := deepcopy.Copy(&tables, s.Tables); err != nil {
			return nil, fmt.Errorf("copy sheet %q: %w", s.SheetName, err)
		}
		out[i] = models.SheetAnalysis{
			SheetName: s.SheetName,
			Tables:    tables,
			Grid:      s.Grid.Clone(),
		}
	}
	return out, nil
}

func (m *Model) lookup(sheetIdx, tableIdx int, columnID string) (*models.Column, error) {
	if sheetIdx < 0 || sheetIdx >= len(m.sheets) {
		return nil, fmt.Errorf("%w: sheet index %d out of range", ErrColumnNotFound, sheetIdx)
	}
	sheet := &m.sheets[sheetIdx]
	if tableIdx < 0 || tableIdx >= len(sheet.Tables) {
		return nil, fmt.Errorf("%w: table index %d out of range in sheet %q", ErrColumnNotFound, tableIdx, sheet.SheetName)
	}
	table := &sheet.Tables[tableIdx]
	for i := range table.Columns {
		if table.Columns[i].ID == columnID {
			return &table.Columns[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q in table %q", ErrColumnNotFound, columnID, table.Name)
}
