package output

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
)

// ErrInvalidDocument indicates an export document that does not match the
// document schema.
var ErrInvalidDocument = errors.New("invalid export document")

//go:embed export.cue
var exportSchema string

var (
	schemaOnce sync.Once
	schemaCtx  *cue.Context
	schemaDef  cue.Value
	schemaErr  error

	// cue evaluation is not safe for concurrent use on a shared context.
	schemaMu sync.Mutex
)

func documentSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		v := schemaCtx.CompileString(exportSchema, cue.Filename("export.cue"))
		if err := v.Err(); err != nil {
			schemaErr = fmt.Errorf("compile export schema: %w", err)
			return
		}
		schemaDef = v.LookupPath(cue.ParsePath("#ExportDocument"))
		schemaErr = schemaDef.Err()
	})
	return schemaCtx, schemaDef, schemaErr
}

// Validate checks encoded JSON against the export document schema, then
// checks what the schema cannot express: row ranges are ordered, the
// timestamp is RFC 3339, and column ids are unique within each sheet.
func Validate(data []byte) error {
	ctx, def, err := documentSchema()
	if err != nil {
		return err
	}

	schemaMu.Lock()
	v := ctx.CompileBytes(data, cue.Filename("document.json"))
	if err := v.Err(); err != nil {
		schemaMu.Unlock()
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	err = def.Unify(v).Validate(cue.Concrete(true))
	schemaMu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	var doc models.ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return checkDocument(&doc)
}

// ValidateDocument encodes doc and validates it.
func ValidateDocument(doc *models.ExportDocument) error {
	data, err := ToJSON(doc, false)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return Validate(data)
}

func checkDocument(doc *models.ExportDocument) error {
	if _, err := time.Parse(time.RFC3339Nano, doc.Timestamp); err != nil {
		return fmt.Errorf("%w: timestamp: %v", ErrInvalidDocument, err)
	}
	for _, sheet := range doc.Sheets {
		seen := make(map[string]struct{})
		for _, table := range sheet.Tables {
			if table.RowRange[0] > table.RowRange[1] {
				return fmt.Errorf("%w: table %q: row range [%d, %d] is reversed",
					ErrInvalidDocument, table.Name, table.RowRange[0], table.RowRange[1])
			}
			for _, col := range table.Columns {
				if _, ok := seen[col.ID]; ok {
					return fmt.Errorf("%w: duplicate column id %q in sheet %q", ErrInvalidDocument, col.ID, sheet.SheetName)
				}
				seen[col.ID] = struct{}{}
			}
		}
	}
	return nil
}
