package sheetschema

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/notify"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/schema"
)

// Correction is one reviewed change to an inferred column. A corrections
// file is a YAML sequence of entries such as
//
//	{sheet: Sales, table: 0, column: Sales-table-0-col-1, set: {dataType: Category}}
type Correction struct {
	Sheet  string            `yaml:"sheet"`
	Table  int               `yaml:"table"`
	Column string            `yaml:"column"`
	Set    map[string]string `yaml:"set"`
}

// LoadCorrections reads a YAML corrections file.
func LoadCorrections(path string) ([]Correction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corrections: %w", err)
	}
	return ParseCorrections(data)
}

// ParseCorrections decodes a YAML list of corrections. Field changes are
// checked here so a bad file fails before anything is applied.
func ParseCorrections(data []byte) ([]Correction, error) {
	var out []Correction
	if err := yaml.UnmarshalWithOptions(data, &out, yaml.DisallowUnknownField()); err != nil {
		return nil, fmt.Errorf("parse corrections: %w", err)
	}
	for i, c := range out {
		if c.Sheet == "" || c.Column == "" {
			return nil, fmt.Errorf("correction %d: sheet and column are required", i+1)
		}
		if _, err := schema.ParseColumnUpdate(c.Set); err != nil {
			return nil, fmt.Errorf("correction %d: %w", i+1, err)
		}
	}
	return out, nil
}

// ApplyCorrections applies corrections in order and stops at the first one
// that fails. Corrections applied before the failure are kept.
func (s *Session) ApplyCorrections(corrections []Correction) error {
	for i, c := range corrections {
		u, err := schema.ParseColumnUpdate(c.Set)
		if err != nil {
			return fmt.Errorf("correction %d: %w", i+1, err)
		}
		sheetIdx, err := s.SheetIndex(c.Sheet)
		if err != nil {
			return fmt.Errorf("correction %d: %w", i+1, err)
		}
		if err := s.ApplyColumnUpdate(sheetIdx, c.Table, c.Column, u); err != nil {
			return fmt.Errorf("correction %d: %w", i+1, err)
		}
	}
	if len(corrections) > 0 {
		s.emit(notify.Info, fmt.Sprintf("Applied %d correction(s)", len(corrections)), nil)
	}
	return nil
}
