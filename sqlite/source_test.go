package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/asaidimu/go-rsql/core/collection"
	"github.com/asaidimu/go-rsql/core/schema"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE users (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER,
		active BOOLEAN,
		price DECIMAL(10,2),
		tags JSON,
		address JSON,
		created DATETIME,
		note VARCHAR(20)
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO users (name, age, active, price, tags, address, created, note) VALUES
		('alice', 30, 1, 9.99, '["x"]', '{"city": "Nairobi", "zip": 100}', '2024-01-02 03:04:05', 'first'),
		('bob', 17, 0, 12.5, '["y", "z"]', '{"city": "Mombasa"}', '2023-06-30 23:59:59', NULL),
		('carol', 45, 1, 3, '[]', NULL, '2024-03-01 00:00:00', 'last')`)
	require.NoError(t, err)
	return db
}

func TestSource_LoadTable(t *testing.T) {
	src := NewSource(openTestDB(t), nil)
	docs, err := src.LoadTable(context.Background(), "users")
	require.NoError(t, err)
	require.Len(t, docs, 3)

	alice := docs[0]
	assert.Equal(t, "alice", alice["name"])
	assert.Equal(t, int64(30), alice["age"])
	assert.Equal(t, true, alice["active"])
	assert.Equal(t, []any{"x"}, alice["tags"])
	assert.Equal(t, map[string]any{"city": "Nairobi", "zip": json.Number("100")}, alice["address"])
	assert.Equal(t, "2024-01-02T03:04:05.000000000Z", alice["created"])
	assert.Equal(t, "first", alice["note"])

	bob := docs[1]
	assert.Equal(t, false, bob["active"])
	assert.Nil(t, bob["note"])
	assert.Nil(t, docs[2]["address"])
}

func TestSource_Search(t *testing.T) {
	src := NewSource(openTestDB(t), nil)
	docs, err := src.LoadTable(context.Background(), "users")
	require.NoError(t, err)

	tests := []struct {
		filter string
		want   []string
	}{
		{"age>=18;tags==x", []string{"alice"}},
		{"active==true", []string{"alice", "carol"}},
		{"address.city==mom*", []string{"bob"}},
		{"address.zip==100.0", []string{"alice"}},
		{"price>9;price<10", []string{"alice"}},
		{"created>=2024-01-01", []string{"alice", "carol"}},
		{"note=out=(first,last)", []string{"bob"}},
		{"tags=in=(z)", []string{"bob"}},
	}

	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got, err := collection.Search(context.Background(), tt.filter, docs)
			require.NoError(t, err)
			names := make([]string, len(got))
			for i, d := range got {
				names[i] = d["name"].(string)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSource_Load(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	src := NewSource(openTestDB(t), zap.New(core))

	docs, err := src.Load(context.Background(), "SELECT name, age * 2 AS doubled FROM users WHERE age > ? ORDER BY age", 20)
	require.NoError(t, err)
	assert.Equal(t, []schema.Document{
		{"name": "alice", "doubled": int64(60)},
		{"name": "carol", "doubled": int64(90)},
	}, docs)

	entries := logs.FilterMessage("Loaded documents").AllUntimed()
	require.Len(t, entries, 1)
	assert.Equal(t, int64(2), entries[0].ContextMap()["count"])

	docs, err = src.Load(context.Background(), "SELECT * FROM users WHERE age > 100")
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestSource_Transaction(t *testing.T) {
	db := openTestDB(t)
	tx, err := db.Begin()
	require.NoError(t, err)
	defer tx.Rollback()

	_, err = tx.Exec("INSERT INTO users (name, age) VALUES ('dan', 60)")
	require.NoError(t, err)

	docs, err := NewSource(tx, nil).Load(context.Background(), "SELECT name FROM users WHERE age >= 60")
	require.NoError(t, err)
	assert.Equal(t, []schema.Document{{"name": "dan"}}, docs)
}

func TestSource_Errors(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	src := NewSource(openTestDB(t), zap.New(core))
	ctx := context.Background()

	exists, err := src.TableExists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = src.LoadTable(ctx, "missing")
	assert.ErrorContains(t, err, "does not exist")

	_, err = src.Load(ctx, "SELECT nope FROM users")
	assert.ErrorContains(t, err, "failed to execute SELECT query")
	assert.Equal(t, 1, logs.FilterMessage("Failed to execute SELECT query").Len())
}

func TestSource_InvalidJSON(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO users (name, tags) VALUES ('eve', 'not json')`)
	require.NoError(t, err)

	core, logs := observer.New(zap.WarnLevel)
	docs, err := NewSource(db, zap.New(core)).Load(context.Background(), "SELECT tags FROM users WHERE name = 'eve'")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "not json", docs[0]["tags"])
	assert.Equal(t, 1, logs.FilterMessage("Column is not valid JSON, using raw value").Len())
}

func TestColumnType(t *testing.T) {
	tests := map[string]schema.FieldType{
		"INTEGER":       schema.FieldTypeNumber,
		"bigint":        schema.FieldTypeNumber,
		"REAL":          schema.FieldTypeNumber,
		"DOUBLE":        schema.FieldTypeNumber,
		"DECIMAL(10,2)": schema.FieldTypeNumber,
		"TEXT":          schema.FieldTypeString,
		"VARCHAR(20)":   schema.FieldTypeString,
		"BOOLEAN":       schema.FieldTypeBoolean,
		"json":          schema.FieldTypeObject,
		"BLOB":          schema.FieldTypeNull,
		"":              schema.FieldTypeNull,
	}
	for decl, want := range tests {
		assert.Equal(t, want, columnType(decl), decl)
	}
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"users"`, quoteIdentifier("users"))
	assert.Equal(t, `"a""b"`, quoteIdentifier(`a"b`))
}
