// Package sqlite loads records from a SQLite database into memory so they can
// be filtered. Rows become schema.Documents keyed by column name, with values
// converted according to each column's declared type.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/asaidimu/go-rsql/core/schema"
	"go.uber.org/zap"
)

// dbRunner is the subset of *sql.DB, *sql.Conn and *sql.Tx used to read
// rows, so a Source can read inside a transaction.
type dbRunner interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// timeLayout renders UTC timestamps with a fixed width so they order
// correctly as strings.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Source reads documents from a SQLite database.
type Source struct {
	db     dbRunner
	logger *zap.Logger
}

// NewSource creates a Source reading through db.
func NewSource(db dbRunner, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{db: db, logger: logger}
}

// Load runs a query and returns every row as a document.
func (s *Source) Load(ctx context.Context, query string, args ...any) ([]schema.Document, error) {
	s.logger.Debug("Executing SQL SELECT", zap.String("sql", query), zap.Any("params", args))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("Failed to execute SELECT query", zap.Error(err), zap.String("sql", query))
		return nil, fmt.Errorf("failed to execute SELECT query: %w", err)
	}
	defer rows.Close()

	docs, err := readRows(s.logger, rows)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("Loaded documents", zap.Int("count", len(docs)))
	return docs, nil
}

// LoadTable returns every row of a table.
func (s *Source) LoadTable(ctx context.Context, table string) ([]schema.Document, error) {
	exists, err := s.TableExists(ctx, table)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("table %s does not exist", table)
	}
	return s.Load(ctx, "SELECT * FROM "+quoteIdentifier(table))
}

// TableExists checks if a table exists in the database.
func (s *Source) TableExists(ctx context.Context, table string) (bool, error) {
	query := "SELECT name FROM sqlite_master WHERE type='table' AND name = ?;"

	var name string
	err := s.db.QueryRowContext(ctx, query, table).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up table %s: %w", table, err)
	}
	return true, nil
}

// quoteIdentifier properly quotes an identifier for SQLite.
func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// columnType maps a declared SQLite column type to the kind of value the
// column holds, following SQLite's type affinity rules. Columns without a
// recognised declaration map to FieldTypeNull and are passed through.
func columnType(decl string) schema.FieldType {
	decl = strings.ToUpper(decl)
	switch {
	case decl == "BOOLEAN" || decl == "BOOL":
		return schema.FieldTypeBoolean
	case decl == "JSON" || decl == "JSONB":
		return schema.FieldTypeObject
	case strings.Contains(decl, "INT"),
		strings.Contains(decl, "REAL"),
		strings.Contains(decl, "FLOA"),
		strings.Contains(decl, "DOUB"),
		strings.Contains(decl, "NUMERIC"),
		strings.Contains(decl, "DECIMAL"):
		return schema.FieldTypeNumber
	case strings.Contains(decl, "CHAR"),
		strings.Contains(decl, "CLOB"),
		strings.Contains(decl, "TEXT"):
		return schema.FieldTypeString
	default:
		return schema.FieldTypeNull
	}
}

// readRows reads all rows from a *sql.Rows object and converts them into a slice
// of schema.Document maps. It also handles type conversions for different column types.
func readRows(logger *zap.Logger, rows *sql.Rows) ([]schema.Document, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	columnTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, fmt.Errorf("failed to get column types: %w", err)
	}
	types := make([]schema.FieldType, len(columns))
	for i, ct := range columnTypes {
		types[i] = columnType(ct.DatabaseTypeName())
	}

	results := []schema.Document{}
	for rows.Next() {
		row := make(schema.Document, len(columns))
		values := make([]any, len(columns))
		scanArgs := make([]any, len(columns))
		for i := range values {
			scanArgs[i] = &values[i]
		}

		if err := rows.Scan(scanArgs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		for i, col := range columns {
			row[col] = convertValue(logger, col, types[i], values[i])
		}
		results = append(results, row)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning rows: %w", err)
	}
	return results, nil
}

func convertValue(logger *zap.Logger, col string, typ schema.FieldType, val any) any {
	switch v := val.(type) {
	case nil:
		return nil
	case time.Time:
		return v.UTC().Format(timeLayout)
	case []byte:
		val = string(v)
	}

	switch typ {
	case schema.FieldTypeBoolean:
		if intVal, isInt := val.(int64); isInt {
			return intVal != 0
		}
	case schema.FieldTypeNumber:
		if strVal, isString := val.(string); isString {
			if _, ok := schema.ParseNumber(strVal); ok {
				return json.Number(strVal)
			}
		}
	case schema.FieldTypeObject:
		if strVal, isString := val.(string); isString {
			dec := json.NewDecoder(strings.NewReader(strVal))
			dec.UseNumber()
			var decoded any
			if err := dec.Decode(&decoded); err != nil {
				logger.Warn("Column is not valid JSON, using raw value", zap.String("column", col), zap.Error(err))
				return strVal
			}
			return decoded
		}
	}
	return val
}
