package models

import (
	"errors"
	"fmt"
)

// ErrInvalidDataType indicates a value outside the DataType enumeration.
var ErrInvalidDataType = errors.New("invalid data type")

// ErrInvalidSemanticRole indicates a value outside the SemanticRole enumeration.
var ErrInvalidSemanticRole = errors.New("invalid semantic role")

// DataType is the inferred storage type of a column.
type DataType string

const (
	// DataTypeString holds free text.
	DataTypeString DataType = "String"
	// DataTypeNumber holds numeric values.
	DataTypeNumber DataType = "Number"
	// DataTypeBoolean holds true/false values.
	DataTypeBoolean DataType = "Boolean"
	// DataTypeDate holds dates or date-times.
	DataTypeDate DataType = "Date"
	// DataTypeCategory holds a small set of repeated labels.
	DataTypeCategory DataType = "Category"
	// DataTypeUnknown marks a column whose type could not be determined.
	DataTypeUnknown DataType = "Unknown"
)

// DataTypes lists every DataType in declaration order.
func DataTypes() []DataType {
	return []DataType{
		DataTypeString, DataTypeNumber, DataTypeBoolean,
		DataTypeDate, DataTypeCategory, DataTypeUnknown,
	}
}

// Valid reports whether t is a member of the enumeration.
func (t DataType) Valid() bool {
	switch t {
	case DataTypeString, DataTypeNumber, DataTypeBoolean,
		DataTypeDate, DataTypeCategory, DataTypeUnknown:
		return true
	}
	return false
}

// ParseDataType converts s into a DataType, rejecting unknown names.
func ParseDataType(s string) (DataType, error) {
	t := DataType(s)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidDataType, s)
	}
	return t, nil
}

func (t DataType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDataType, string(t))
	}
	return []byte(t), nil
}

func (t *DataType) UnmarshalText(b []byte) error {
	v, err := ParseDataType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// SemanticRole is the inferred business meaning of a column.
type SemanticRole string

const (
	// RoleDimension describes or groups rows.
	RoleDimension SemanticRole = "Dimension"
	// RoleMetric is a measure that can be aggregated.
	RoleMetric SemanticRole = "Metric"
	// RoleEntity identifies a row, such as an id or code.
	RoleEntity SemanticRole = "Entity"
	// RoleTimestamp places a row in time.
	RoleTimestamp SemanticRole = "Timestamp"
	// RoleHierarchy is one level of a parent/child grouping.
	RoleHierarchy SemanticRole = "Hierarchy"
	// RoleIgnored marks a column with no analytical use.
	RoleIgnored SemanticRole = "Ignored"
)

// SemanticRoles lists every SemanticRole in declaration order.
func SemanticRoles() []SemanticRole {
	return []SemanticRole{
		RoleDimension, RoleMetric, RoleEntity,
		RoleTimestamp, RoleHierarchy, RoleIgnored,
	}
}

// Valid reports whether r is a member of the enumeration.
func (r SemanticRole) Valid() bool {
	switch r {
	case RoleDimension, RoleMetric, RoleEntity,
		RoleTimestamp, RoleHierarchy, RoleIgnored:
		return true
	}
	return false
}

// ParseSemanticRole converts s into a SemanticRole, rejecting unknown names.
func ParseSemanticRole(s string) (SemanticRole, error) {
	r := SemanticRole(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSemanticRole, s)
	}
	return r, nil
}

func (r SemanticRole) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSemanticRole, string(r))
	}
	return []byte(r), nil
}

func (r *SemanticRole) UnmarshalText(b []byte) error {
	v, err := ParseSemanticRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// Column represents one inferred column of a table.
type Column struct {
	// ID is stable for the lifetime of the schema and unique within a sheet.
	ID string `json:"id" yaml:"id"`
	// OriginalName is the header text, or a generated placeholder.
	OriginalName string `json:"originalName" yaml:"originalName"`
	// SuggestedName is the user-editable identifier-friendly name.
	SuggestedName string `json:"suggestedName" yaml:"suggestedName"`
	// DataType is the inferred storage type.
	DataType DataType `json:"dataType" yaml:"dataType"`
	// SemanticRole is the inferred business meaning.
	SemanticRole SemanticRole `json:"semanticRole" yaml:"semanticRole"`
	// Confidence is in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`
	// Reasoning explains how the inference was made.
	Reasoning string `json:"reasoning" yaml:"reasoning"`
	// SampleValues holds a few non-empty values seen in the column.
	SampleValues []string `json:"sampleValues" yaml:"sampleValues"`
}

// Table represents one inferred table within a sheet.
type Table struct {
	// ID is derived from the sheet name and table index.
	ID string `json:"id" yaml:"id"`
	// Name is the display name.
	Name string `json:"name" yaml:"name"`
	// StartRow is the first row of the table (0-based, inclusive).
	StartRow int `json:"startRow" yaml:"startRow"`
	// EndRow is the last row of the table (0-based, inclusive).
	EndRow int `json:"endRow" yaml:"endRow"`
	// Description summarises the table.
	Description string `json:"description" yaml:"description"`
	// Confidence is in [0, 1].
	Confidence float64 `json:"confidence" yaml:"confidence"`
	// Columns lists the table's columns in sheet order.
	Columns []Column `json:"columns" yaml:"columns"`
}

// TableID composes the identifier of table t in the named sheet.
func TableID(sheetName string, t int) string {
	return fmt.Sprintf("%s-table-%d", sheetName, t)
}

// ColumnID composes the identifier of column c of table t in the named sheet.
func ColumnID(sheetName string, t, c int) string {
	return fmt.Sprintf("%s-table-%d-col-%d", sheetName, t, c)
}
