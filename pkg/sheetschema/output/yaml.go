package output

import (
	"github.com/goccy/go-yaml"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
)

// ToYAML serializes an export document as YAML.
func ToYAML(doc *models.ExportDocument) ([]byte, error) {
	return yaml.Marshal(doc)
}
