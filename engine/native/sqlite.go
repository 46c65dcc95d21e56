package native

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/dataframe"
	rschema "github.com/go-rondo/rondo/schema"

	// SQLite driver backing the ephemeral relational store
	_ "modernc.org/sqlite"
)

// SQLiteEngine is the default SQL sub-engine: every Select materializes its
// inputs into a fresh in-memory SQLite store, executes the statement, and
// discards the store on return. Tables never leak across calls.
type SQLiteEngine struct {
	engine rondo.ExecutionEngine
}

// CreateSQLiteEngine builds a SQLiteEngine bound to its execution engine
func CreateSQLiteEngine(engine rondo.ExecutionEngine) *SQLiteEngine {
	return &SQLiteEngine{engine: engine}
}

// Select executes a SQL statement against the given named dataframes.
// Table names are taken verbatim from the collection and replace any
// pre-existing table of the same name.
func (s *SQLiteEngine) Select(dfs *rondo.DataFrames, statement string) (rondo.DataFrame, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	defer db.Close()
	err = dfs.ForEach(func(name string, df rondo.DataFrame) error {
		local, err := dataframe.ToLocalBounded(df)
		if err != nil {
			return err
		}
		return loadTable(db, name, local)
	})
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(statement)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query: %w", err)
	}
	defer rows.Close()
	return readResult(rows)
}

func loadTable(db *sql.DB, name string, df rondo.LocalDataFrame) error {
	schema := df.Schema()
	colDefs := make([]string, schema.NumColumns())
	colTypes := schema.ColumnTypes()
	for i, colName := range schema.ColumnNames() {
		def := quoteIdent(colName)
		if affinity := colTypes[i].SQLType(); len(affinity) > 0 {
			def += " " + affinity
		}
		colDefs[i] = def
	}
	if _, err := db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdent(name))); err != nil {
		return fmt.Errorf("sqlite: drop %s: %w", name, err)
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(colDefs, ", "))
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("sqlite: create %s: %w", name, err)
	}
	if df.Count() == 0 {
		return nil
	}
	placeholders := make([]string, schema.NumColumns())
	for i := range placeholders {
		placeholders[i] = "?"
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("sqlite: begin: %w", err)
	}
	stmt, err := tx.Prepare(fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), strings.Join(placeholders, ", ")))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert into %s: %w", name, err)
	}
	for _, row := range df.Rows() {
		if _, err := stmt.Exec(row...); err != nil {
			stmt.Close()
			tx.Rollback()
			return fmt.Errorf("sqlite: insert into %s: %w", name, err)
		}
	}
	stmt.Close()
	return tx.Commit()
}

func readResult(rows *sql.Rows) (rondo.DataFrame, error) {
	colNames, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	data := [][]interface{}{}
	for rows.Next() {
		cells := make([]interface{}, len(colNames))
		scan := make([]interface{}, len(colNames))
		for i := range cells {
			scan[i] = &cells[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		data = append(data, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	schema, err := inferSchema(colNames, data)
	if err != nil {
		return nil, err
	}
	return dataframe.CreateArrayDataFrame(data, schema)
}

// inferSchema derives a result schema from the first non-nil value seen in
// each column; columns with no values fall back to the any type
func inferSchema(colNames []string, data [][]interface{}) (rondo.Schema, error) {
	types := make([]rondo.ColumnType, len(colNames))
	for i := range colNames {
		types[i] = &rondo.AnyColumnType{}
		for _, row := range data {
			switch row[i].(type) {
			case nil:
				continue
			case int64:
				types[i] = &rondo.IntColumnType{}
			case float64:
				types[i] = &rondo.FloatColumnType{}
			case string:
				types[i] = &rondo.StringColumnType{}
			case []byte:
				types[i] = &rondo.BytesColumnType{}
			case bool:
				types[i] = &rondo.BoolColumnType{}
			}
			break
		}
	}
	return rschema.CreateSchema(colNames, types)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
