package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
)

// ToJSON serializes an export document, indented when pretty is set.
func ToJSON(doc *models.ExportDocument, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}

// SheetToJSON serializes a single sheet entry.
func SheetToJSON(sheet *models.ExportSheet, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(sheet, "", "  ")
	}
	return json.Marshal(sheet)
}

// FromJSON reads an export document back. Unknown fields and enum values
// outside DataType and SemanticRole are rejected, and the document must
// pass Validate.
func FromJSON(data []byte) (*models.ExportDocument, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var doc models.ExportDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if doc.Version != models.ExportVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidDocument, doc.Version)
	}
	return &doc, nil
}
