package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/notify"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/parser"
)

// MetadataInferSpreadsheetSchema describes the infer_spreadsheet_schema tool.
var MetadataInferSpreadsheetSchema = &mcp.Tool{
	Name: "infer_spreadsheet_schema",
	Description: "Infer a relational schema from an xlsx workbook on disk. " +
		"Merged cells are filled, hidden sheets and columns are skipped, and each visible sheet " +
		"is sampled to a bounded grid before inference. " +
		"Every column gets a data type (String, Number, Boolean, Date, Category, Unknown), " +
		"a semantic role (Dimension, Metric, Entity, Timestamp, Hierarchy, Ignored) and a confidence score. " +
		"Optional corrections (YAML list of {sheet, table, column, set}) are applied before the export document is returned.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"path"},
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path to the xlsx workbook",
			},
			"row_limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum rows sampled per sheet (default 50)",
				"minimum":     0,
			},
			"col_limit": map[string]interface{}{
				"type":        "integer",
				"description": "Maximum columns sampled per sheet (default 40)",
				"minimum":     0,
			},
			"strategy": map[string]interface{}{
				"type":        "string",
				"description": "Representative sample strategy. first uses the first non-empty value, majority uses the most common type.",
				"enum":        []string{"first", "majority"},
			},
			"mode": map[string]interface{}{
				"type":        "string",
				"description": "Analysis mode. local runs in process, mock simulates the remote analysis service.",
				"enum":        []string{"local", "mock"},
			},
			"password": map[string]interface{}{
				"type":        "string",
				"description": "Password for encrypted workbooks",
			},
			"corrections": map[string]interface{}{
				"type":        "string",
				"description": "Optional YAML corrections applied to the inferred schema before export",
			},
		},
	},
}

// InputInferSpreadsheetSchema is the input for the InferSpreadsheetSchema tool.
type InputInferSpreadsheetSchema struct {
	Path        string `json:"path"`
	RowLimit    int    `json:"row_limit"`
	ColLimit    int    `json:"col_limit"`
	Strategy    string `json:"strategy"`
	Mode        string `json:"mode"`
	Password    string `json:"password"`
	Corrections string `json:"corrections"`
}

// OutputInferSpreadsheetSchema is the output for the InferSpreadsheetSchema tool.
type OutputInferSpreadsheetSchema struct {
	// Document is the export document for every visible sheet.
	Document *models.ExportDocument `json:"document"`
	// Log holds the progress messages in emission order.
	Log []string `json:"log"`
	// Warnings holds the warning-severity messages, such as skipped hidden
	// sheets and sheets with little tabular data.
	Warnings []string `json:"warnings"`
}

func (in InputInferSpreadsheetSchema) options() (sheetschema.Options, error) {
	opts := sheetschema.DefaultOptions()
	if in.RowLimit > 0 {
		opts.RowLimit = in.RowLimit
	}
	if in.ColLimit > 0 {
		opts.ColLimit = in.ColLimit
	}
	if in.Strategy != "" {
		opts.Strategy = in.Strategy
	}
	if in.Mode != "" {
		opts.Mode = sheetschema.Mode(in.Mode)
	}
	opts.Password = in.Password
	return opts, opts.Validate()
}

// InferSpreadsheetSchema analyzes the workbook, applies any corrections and
// returns the export document.
func InferSpreadsheetSchema(ctx context.Context, _ *mcp.CallToolRequest, input InputInferSpreadsheetSchema) (*mcp.CallToolResult, OutputInferSpreadsheetSchema, error) {
	if input.Path == "" {
		return nil, OutputInferSpreadsheetSchema{}, fmt.Errorf("path is required")
	}
	opts, err := input.options()
	if err != nil {
		return nil, OutputInferSpreadsheetSchema{}, err
	}
	var corrections []sheetschema.Correction
	if input.Corrections != "" {
		corrections, err = sheetschema.ParseCorrections([]byte(input.Corrections))
		if err != nil {
			return nil, OutputInferSpreadsheetSchema{}, err
		}
	}

	rec := &notify.Recorder{}
	var warnings []string
	sink := notify.Multi(rec, notify.SinkFunc(func(e notify.Event) {
		if e.Severity == notify.Warning {
			warnings = append(warnings, e.Message)
		}
	}))
	session, err := sheetschema.NewSession(opts, sink)
	if err != nil {
		return nil, OutputInferSpreadsheetSchema{}, err
	}
	if err := session.SetCredential(ctx, sheetschema.MockCredential); err != nil {
		return nil, OutputInferSpreadsheetSchema{}, err
	}
	dec := parser.FileDecoder{Path: input.Path, Password: opts.Password}
	if err := session.Upload(ctx, dec); err != nil {
		return nil, OutputInferSpreadsheetSchema{}, err
	}
	if err := session.ApplyCorrections(corrections); err != nil {
		return nil, OutputInferSpreadsheetSchema{}, err
	}
	doc, err := session.Document()
	if err != nil {
		return nil, OutputInferSpreadsheetSchema{}, err
	}

	if warnings == nil {
		warnings = []string{}
	}
	return nil, OutputInferSpreadsheetSchema{
		Document: doc,
		Log:      rec.Messages(),
		Warnings: warnings,
	}, nil
}
