// Package fileio loads and saves dataframes over an afero filesystem.
// Supported formats are csv (header row, typed value parsing) and jsonl
// (one JSON object per line). The engine delegates Load/Save here; nothing
// in this package interprets partitioning.
package fileio

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-rondo/rondo"
	"github.com/go-rondo/rondo/dataframe"
	rschema "github.com/go-rondo/rondo/schema"
	"github.com/spf13/afero"
	"github.com/tidwall/gjson"
)

// Save modes
const (
	// SaveModeOverwrite replaces an existing file
	SaveModeOverwrite = "overwrite"
	// SaveModeError fails if the target file already exists
	SaveModeError = "error"
)

// Load reads a DataFrame from fs. The format is taken from formatHint, or
// inferred from the path extension when the hint is empty. A non-empty
// columns list restricts the result to those columns, in the given order.
// Column types are inferred from the data.
func Load(fs afero.Fs, path string, formatHint string, columns []string) (rondo.DataFrame, error) {
	return LoadWithSchema(fs, path, formatHint, columns, nil)
}

// LoadWithSchema is Load with a caller-declared schema: values are parsed
// according to the declared column types instead of inferred.
func LoadWithSchema(fs afero.Fs, path string, formatHint string, columns []string, declared rondo.Schema) (rondo.DataFrame, error) {
	format, err := resolveFormat(path, formatHint)
	if err != nil {
		return nil, err
	}
	var local rondo.LocalDataFrame
	switch format {
	case "csv":
		local, err = loadCSV(fs, path, declared)
	case "jsonl":
		local, err = loadJSONL(fs, path, declared)
	}
	if err != nil {
		return nil, err
	}
	if len(columns) > 0 {
		return local.SelectColumns(columns)
	}
	return local, nil
}

// Save writes a LocalDataFrame to fs. mode is SaveModeOverwrite or
// SaveModeError; an empty mode overwrites.
func Save(fs afero.Fs, df rondo.LocalDataFrame, path string, formatHint string, mode string) error {
	format, err := resolveFormat(path, formatHint)
	if err != nil {
		return err
	}
	switch mode {
	case "", SaveModeOverwrite:
	case SaveModeError:
		exists, err := afero.Exists(fs, path)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%s already exists", path)
		}
	default:
		return fmt.Errorf("unknown save mode %q", mode)
	}
	if dir := filepath.Dir(path); dir != "." && dir != "/" {
		if err := fs.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	switch format {
	case "csv":
		return saveCSV(fs, df, path)
	default:
		return saveJSONL(fs, df, path)
	}
}

func resolveFormat(path string, formatHint string) (string, error) {
	format := strings.ToLower(formatHint)
	if len(format) == 0 {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch format {
	case "csv":
		return "csv", nil
	case "jsonl", "ndjson":
		return "jsonl", nil
	}
	return "", fmt.Errorf("unknown file format %q for %s", format, path)
}

func loadCSV(fs afero.Fs, path string, declared rondo.Schema) (rondo.LocalDataFrame, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csv: read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("csv: %s has no header row", path)
	}
	header := records[0]
	cells := records[1:]
	fileSchema := declared
	if fileSchema == nil {
		types := make([]rondo.ColumnType, len(header))
		for i := range header {
			types[i] = inferCSVColumn(cells, i)
		}
		fileSchema, err = rschema.CreateSchema(header, types)
		if err != nil {
			return nil, err
		}
	} else if err := checkHeader(header, fileSchema); err != nil {
		return nil, err
	}
	colTypes := fileSchema.ColumnTypes()
	rows := make([][]interface{}, len(cells))
	for i, record := range cells {
		if len(record) != len(header) {
			return nil, fmt.Errorf("csv: row %d of %s has %d values for %d columns", i+1, path, len(record), len(header))
		}
		row := make([]interface{}, len(record))
		for j, cell := range record {
			row[j], err = parseCSVCell(cell, colTypes[j])
			if err != nil {
				return nil, fmt.Errorf("csv: row %d column %s of %s: %w", i+1, header[j], path, err)
			}
		}
		rows[i] = row
	}
	return dataframe.CreateArrayDataFrame(rows, fileSchema)
}

func checkHeader(header []string, declared rondo.Schema) error {
	if len(header) != declared.NumColumns() {
		return fmt.Errorf("csv: header has %d columns, schema declares %d", len(header), declared.NumColumns())
	}
	for i, name := range declared.ColumnNames() {
		if header[i] != name {
			return fmt.Errorf("csv: header column %d is %q, schema declares %q", i, header[i], name)
		}
	}
	return nil
}

// inferCSVColumn picks the narrowest type every non-empty cell of the
// column parses as, falling back to str
func inferCSVColumn(cells [][]string, col int) rondo.ColumnType {
	isInt, isFloat, isBool := true, true, true
	seen := false
	for _, record := range cells {
		if col >= len(record) || len(record[col]) == 0 {
			continue
		}
		seen = true
		cell := record[col]
		if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
			isInt = false
		}
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			isFloat = false
		}
		if cell != "true" && cell != "false" {
			isBool = false
		}
	}
	switch {
	case !seen:
		return &rondo.StringColumnType{}
	case isInt:
		return &rondo.IntColumnType{}
	case isFloat:
		return &rondo.FloatColumnType{}
	case isBool:
		return &rondo.BoolColumnType{}
	}
	return &rondo.StringColumnType{}
}

// parseCSVCell converts a textual cell into the column's value type. An
// empty cell of a non-string column is nil.
func parseCSVCell(cell string, colType rondo.ColumnType) (interface{}, error) {
	switch colType.(type) {
	case *rondo.StringColumnType, *rondo.AnyColumnType:
		return cell, nil
	}
	if len(cell) == 0 {
		return nil, nil
	}
	switch colType.(type) {
	case *rondo.IntColumnType:
		v, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			return nil, err
		}
		return int(v), nil
	case *rondo.FloatColumnType:
		return strconv.ParseFloat(cell, 64)
	case *rondo.BoolColumnType:
		return strconv.ParseBool(cell)
	case *rondo.BytesColumnType:
		return []byte(cell), nil
	}
	return cell, nil
}

func loadJSONL(fs afero.Fs, path string, declared rondo.Schema) (rondo.LocalDataFrame, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var names []string
	var types []rondo.ColumnType
	if declared != nil {
		names = declared.ColumnNames()
		types = declared.ColumnTypes()
	}
	rows := [][]interface{}{}
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 {
			continue
		}
		doc := gjson.Parse(line)
		if !doc.IsObject() {
			return nil, fmt.Errorf("jsonl: line %d of %s is not an object", lineNo, path)
		}
		// the first object fixes column names and inferred types
		if names == nil {
			doc.ForEach(func(key, value gjson.Result) bool {
				names = append(names, key.String())
				types = append(types, inferJSONColumn(value))
				return true
			})
		}
		row := make([]interface{}, len(names))
		for i, name := range names {
			row[i] = jsonCell(doc.Get(name), types[i])
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("jsonl: read %s: %w", path, err)
	}
	fileSchema := declared
	if fileSchema == nil {
		if names == nil {
			return nil, fmt.Errorf("jsonl: %s is empty and no schema was declared", path)
		}
		fileSchema, err = rschema.CreateSchema(names, types)
		if err != nil {
			return nil, err
		}
	}
	return dataframe.CreateArrayDataFrame(rows, fileSchema)
}

func inferJSONColumn(value gjson.Result) rondo.ColumnType {
	switch value.Type {
	case gjson.Number:
		if strings.ContainsAny(value.Raw, ".eE") {
			return &rondo.FloatColumnType{}
		}
		return &rondo.IntColumnType{}
	case gjson.True, gjson.False:
		return &rondo.BoolColumnType{}
	case gjson.String:
		return &rondo.StringColumnType{}
	}
	return &rondo.AnyColumnType{}
}

func jsonCell(value gjson.Result, colType rondo.ColumnType) interface{} {
	if !value.Exists() || value.Type == gjson.Null {
		return nil
	}
	switch colType.(type) {
	case *rondo.IntColumnType:
		return int(value.Int())
	case *rondo.FloatColumnType:
		return value.Float()
	case *rondo.BoolColumnType:
		return value.Bool()
	case *rondo.StringColumnType:
		return value.String()
	case *rondo.BytesColumnType:
		return []byte(value.String())
	}
	return value.Value()
}

func saveCSV(fs afero.Fs, df rondo.LocalDataFrame, path string) error {
	file, err := fs.Create(path)
	if err != nil {
		return err
	}
	writer := csv.NewWriter(file)
	if err := writer.Write(df.Schema().ColumnNames()); err != nil {
		file.Close()
		return err
	}
	record := make([]string, df.Schema().NumColumns())
	for _, row := range df.Rows() {
		for i, v := range row {
			record[i] = formatCSVCell(v)
		}
		if err := writer.Write(record); err != nil {
			file.Close()
			return err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func formatCSVCell(v interface{}) string {
	switch c := v.(type) {
	case nil:
		return ""
	case string:
		return c
	case []byte:
		return string(c)
	case bool:
		return strconv.FormatBool(c)
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(c), 'g', -1, 32)
	}
	return fmt.Sprintf("%v", v)
}

func saveJSONL(fs afero.Fs, df rondo.LocalDataFrame, path string) error {
	file, err := fs.Create(path)
	if err != nil {
		return err
	}
	writer := bufio.NewWriter(file)
	names := df.Schema().ColumnNames()
	for _, row := range df.Rows() {
		line, err := encodeJSONRow(names, row)
		if err != nil {
			file.Close()
			return err
		}
		if _, err := writer.WriteString(line + "\n"); err != nil {
			file.Close()
			return err
		}
	}
	if err := writer.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// encodeJSONRow writes the object fields in schema order, which
// encoding/json's map marshalling would not preserve
func encodeJSONRow(names []string, row []interface{}) (string, error) {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range names {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return "", err
		}
		cell := row[i]
		if raw, ok := cell.([]byte); ok {
			cell = string(raw)
		}
		value, err := json.Marshal(cell)
		if err != nil {
			return "", err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(value)
	}
	b.WriteByte('}')
	return b.String(), nil
}
