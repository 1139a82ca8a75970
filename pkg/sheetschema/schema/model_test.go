package schema_test

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/inference"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/models"
	"github.com/ukaji3/sheetschema-go/pkg/sheetschema/schema"
)

func newModel(t *testing.T) *schema.Model {
	t.Helper()
	grid := models.Grid{
		{models.Text("Name"), models.Text("Revenue"), models.Text("OrderDate")},
		{models.Text("Acme"), models.Number(100), models.Text("2024-01-01")},
	}
	engine := inference.New(inference.DefaultConfig())
	m, err := schema.NewModel([]models.SheetAnalysis{{
		SheetName: "Sales",
		Tables:    engine.Infer("Sales", grid),
		Grid:      grid,
	}})
	require.NoError(t, err)
	return m
}

func ptr[T any](v T) *T { return &v }

func snapshotJSON(t *testing.T, m *schema.Model) string {
	t.Helper()
	sheets, err := m.Sheets()
	require.NoError(t, err)
	b, err := json.Marshal(sheets)
	require.NoError(t, err)
	return string(b)
}

func TestModel_ApplyColumnUpdate(t *testing.T) {
	m := newModel(t)
	before, err := m.Column(0, 0, "Sales-table-0-col-1")
	require.NoError(t, err)

	err = m.ApplyColumnUpdate(0, 0, "Sales-table-0-col-1", schema.ColumnUpdate{
		DataType: ptr(models.DataTypeCategory),
	})
	require.NoError(t, err)

	after, err := m.Column(0, 0, "Sales-table-0-col-1")
	require.NoError(t, err)

	assert.Equal(t, models.DataTypeCategory, after.DataType)
	before.DataType = models.DataTypeCategory
	assert.Equal(t, before, after, "only dataType should change")
}

func TestModel_ApplyAllEditableFields(t *testing.T) {
	m := newModel(t)
	err := m.ApplyColumnUpdate(0, 0, "Sales-table-0-col-0", schema.ColumnUpdate{
		SuggestedName: ptr("customer_name"),
		DataType:      ptr(models.DataTypeCategory),
		SemanticRole:  ptr(models.RoleHierarchy),
	})
	require.NoError(t, err)

	col, err := m.Column(0, 0, "Sales-table-0-col-0")
	require.NoError(t, err)
	assert.Equal(t, "customer_name", col.SuggestedName)
	assert.Equal(t, models.RoleHierarchy, col.SemanticRole)
	assert.Equal(t, "Name", col.OriginalName)
	assert.Equal(t, "Sales-table-0-col-0", col.ID)
}

func TestModel_UnknownColumnLeavesModelUnchanged(t *testing.T) {
	tests := []struct {
		name     string
		sheet    int
		table    int
		columnID string
	}{
		{"unknown id", 0, 0, "Sales-table-0-col-9"},
		{"sheet out of range", 3, 0, "Sales-table-0-col-1"},
		{"table out of range", 0, 1, "Sales-table-0-col-1"},
		{"negative sheet", -1, 0, "Sales-table-0-col-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newModel(t)
			before := snapshotJSON(t, m)

			err := m.ApplyColumnUpdate(tt.sheet, tt.table, tt.columnID, schema.ColumnUpdate{
				DataType: ptr(models.DataTypeCategory),
			})
			assert.ErrorIs(t, err, schema.ErrColumnNotFound)
			assert.Equal(t, before, snapshotJSON(t, m))
		})
	}
}

func TestModel_InvalidEnumRejected(t *testing.T) {
	m := newModel(t)
	before := snapshotJSON(t, m)

	err := m.ApplyColumnUpdate(0, 0, "Sales-table-0-col-1", schema.ColumnUpdate{
		SuggestedName: ptr("renamed"),
		DataType:      ptr(models.DataType("Currency")),
	})
	assert.ErrorIs(t, err, models.ErrInvalidDataType)
	assert.Equal(t, before, snapshotJSON(t, m), "no field may change when validation fails")

	err = m.ApplyColumnUpdate(0, 0, "Sales-table-0-col-1", schema.ColumnUpdate{
		SemanticRole: ptr(models.SemanticRole("Measure")),
	})
	assert.ErrorIs(t, err, models.ErrInvalidSemanticRole)
}

func TestModel_SheetsIsACopy(t *testing.T) {
	m := newModel(t)
	sheets, err := m.Sheets()
	require.NoError(t, err)

	sheets[0].Tables[0].Columns[0].SuggestedName = "tampered"
	sheets[0].Grid[0][0] = models.Text("tampered")

	col, err := m.Column(0, 0, "Sales-table-0-col-0")
	require.NoError(t, err)
	assert.Equal(t, "Name", col.SuggestedName)

	again, err := m.Sheets()
	require.NoError(t, err)
	assert.Equal(t, "Name", again[0].Grid[0][0].Text)
}

func TestModel_RejectsDuplicateIDs(t *testing.T) {
	col := models.Column{ID: "dup", DataType: models.DataTypeString, SemanticRole: models.RoleDimension}
	_, err := schema.NewModel([]models.SheetAnalysis{{
		SheetName: "S",
		Tables: []models.Table{
			{Columns: []models.Column{col}},
			{Columns: []models.Column{col}},
		},
	}})
	assert.ErrorIs(t, err, schema.ErrDuplicateColumnID)
}

func TestModel_ConcurrentUpdatesAreAtomic(t *testing.T) {
	m := newModel(t)
	const id = "Sales-table-0-col-1"

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			u := schema.ColumnUpdate{SuggestedName: ptr("metric"), DataType: ptr(models.DataTypeNumber)}
			if i%2 == 0 {
				u = schema.ColumnUpdate{SuggestedName: ptr("category"), DataType: ptr(models.DataTypeCategory)}
			}
			assert.NoError(t, m.ApplyColumnUpdate(0, 0, id, u))
		}(i)
		go func() {
			defer wg.Done()
			col, err := m.Column(0, 0, id)
			if !assert.NoError(t, err) {
				return
			}
			switch col.SuggestedName {
			case "metric":
				assert.Equal(t, models.DataTypeNumber, col.DataType)
			case "category":
				assert.Equal(t, models.DataTypeCategory, col.DataType)
			}
		}()
	}
	wg.Wait()
}

func TestParseColumnUpdate(t *testing.T) {
	tests := []struct {
		name    string
		fields  map[string]string
		wantErr error
		check   func(t *testing.T, u schema.ColumnUpdate)
	}{
		{
			name:   "data type only",
			fields: map[string]string{"dataType": "Category"},
			check: func(t *testing.T, u schema.ColumnUpdate) {
				require.NotNil(t, u.DataType)
				assert.Equal(t, models.DataTypeCategory, *u.DataType)
				assert.Nil(t, u.SuggestedName)
				assert.Nil(t, u.SemanticRole)
			},
		},
		{
			name:   "all fields",
			fields: map[string]string{"suggestedName": "x", "dataType": "Date", "semanticRole": "Timestamp"},
			check: func(t *testing.T, u schema.ColumnUpdate) {
				assert.Equal(t, "x", *u.SuggestedName)
				assert.Equal(t, models.RoleTimestamp, *u.SemanticRole)
			},
		},
		{name: "empty is allowed", fields: map[string]string{}, check: func(t *testing.T, u schema.ColumnUpdate) { assert.True(t, u.Empty()) }},
		{name: "bad data type", fields: map[string]string{"dataType": "Text"}, wantErr: models.ErrInvalidDataType},
		{name: "bad role", fields: map[string]string{"semanticRole": "Fact"}, wantErr: models.ErrInvalidSemanticRole},
		{name: "immutable id", fields: map[string]string{"id": "other"}, wantErr: schema.ErrImmutableField},
		{name: "immutable confidence", fields: map[string]string{"confidence": "1"}, wantErr: schema.ErrImmutableField},
		{name: "unknown field", fields: map[string]string{"color": "red"}, wantErr: schema.ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := schema.ParseColumnUpdate(tt.fields)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, u)
		})
	}
}
