package schema

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
)

// ErrImmutableField indicates an attempt to change a field that is fixed
// after inference.
var ErrImmutableField = errors.New("field is immutable")

// ErrUnknownField indicates a field name that columns do not have.
var ErrUnknownField = errors.New("unknown column field")

const (
	FieldSuggestedName = "suggestedName"
	FieldDataType      = "dataType"
	FieldSemanticRole  = "semanticRole"
)

var immutableFields = map[string]bool{
	"id":           true,
	"originalName": true,
	"confidence":   true,
	"reasoning":    true,
	"sampleValues": true,
}

// ParseColumnUpdate converts raw field changes, keyed by export field name,
// into a ColumnUpdate. Unknown or immutable field names and values outside
// the DataType and SemanticRole enumerations are rejected.
func ParseColumnUpdate(fields map[string]string) (ColumnUpdate, error) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var u ColumnUpdate
	for _, k := range keys {
		v := fields[k]
		switch k {
		case FieldSuggestedName:
			name := v
			u.SuggestedName = &name
		case FieldDataType:
			dt, err := models.ParseDataType(v)
			if err != nil {
				return ColumnUpdate{}, err
			}
			u.DataType = &dt
		case FieldSemanticRole:
			r, err := models.ParseSemanticRole(v)
			if err != nil {
				return ColumnUpdate{}, err
			}
			u.SemanticRole = &r
		default:
			if immutableFields[k] {
				return ColumnUpdate{}, fmt.Errorf("%w: %s", ErrImmutableField, k)
			}
			return ColumnUpdate{}, fmt.Errorf("%w: %s", ErrUnknownField, k)
		}
	}
	return u, nil
}
