package extract

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column holds one named column of raw cell text. Empty raw cells count as
// missing values.
type Column struct {
	Name    string
	Numeric bool
	Raw     []string
	Values  []float64 // parsed values, NaN where missing; only set when Numeric
}

// Table is the in-memory tabular abstraction shared by the summary computation
// and the AutoML fit.
type Table struct {
	Columns []Column
	Rows    int
}

// ColumnNames returns the ordered column names.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// NumericColumns returns the columns detected as numeric, in order.
func (t *Table) NumericColumns() []*Column {
	var cols []*Column
	for i := range t.Columns {
		if t.Columns[i].Numeric {
			cols = append(cols, &t.Columns[i])
		}
	}
	return cols
}

// LoadTable loads a tabular file (CSV, spreadsheet, or JSON) into a Table.
// Parse problems are reported as ErrLoadFailed, never as a panic or a raw
// library error escaping the package.
func LoadTable(path string) (*Table, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".csv":
		return loadCSV(path)
	case ".xlsx", ".xls":
		return loadSpreadsheet(path)
	case ".json":
		return loadJSON(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

func loadCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open csv: %v", ErrLoadFailed, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", ErrLoadFailed, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty csv", ErrLoadFailed)
	}
	return fromRecords(records[0], records[1:])
}

func loadSpreadsheet(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open spreadsheet: %v", ErrLoadFailed, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %s: %v", ErrLoadFailed, sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty sheet", ErrLoadFailed)
	}
	return fromRecords(rows[0], rows[1:])
}

// loadJSON accepts either an array of objects or line-delimited objects.
func loadJSON(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read json: %v", ErrLoadFailed, err)
	}

	var objects []map[string]any
	if err := json.Unmarshal(data, &objects); err != nil {
		objects = objects[:0]
		sc := bufio.NewScanner(strings.NewReader(string(data)))
		sc.Buffer(make([]byte, 1024*1024), 16*1024*1024)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			var obj map[string]any
			if err := json.Unmarshal([]byte(line), &obj); err != nil {
				return nil, fmt.Errorf("%w: parse json line: %v", ErrLoadFailed, err)
			}
			objects = append(objects, obj)
		}
	}
	if len(objects) == 0 {
		return nil, fmt.Errorf("%w: no json records", ErrLoadFailed)
	}

	// Column order is first-seen across records.
	var names []string
	seen := make(map[string]bool)
	for _, obj := range objects {
		for k := range obj {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	records := make([][]string, len(objects))
	for i, obj := range objects {
		row := make([]string, len(names))
		for j, name := range names {
			row[j] = jsonCell(obj[name])
		}
		records[i] = row
	}
	return fromRecords(names, records)
}

func jsonCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, _ := json.Marshal(x)
		return string(b)
	}
}

func fromRecords(header []string, rows [][]string) (*Table, error) {
	if len(header) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrLoadFailed)
	}
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("%w: blank column name", ErrLoadFailed)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrLoadFailed, name)
		}
		seen[name] = true
	}

	t := &Table{Rows: len(rows)}
	for j, name := range header {
		col := Column{Name: strings.TrimSpace(name), Raw: make([]string, len(rows))}
		for i, row := range rows {
			if j < len(row) {
				col.Raw[i] = strings.TrimSpace(row[j])
			}
		}
		detectNumeric(&col)
		t.Columns = append(t.Columns, col)
	}
	return t, nil
}

// detectNumeric marks a column numeric when every non-missing cell parses as
// a float and at least one cell is present.
func detectNumeric(col *Column) {
	present := 0
	values := make([]float64, len(col.Raw))
	for i, raw := range col.Raw {
		if raw == "" {
			values[i] = math.NaN()
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return
		}
		values[i] = v
		present++
	}
	if present == 0 {
		return
	}
	col.Numeric = true
	col.Values = values
}

// MissingCount returns the number of empty cells in the column.
func (c *Column) MissingCount() int {
	n := 0
	for _, raw := range c.Raw {
		if raw == "" {
			n++
		}
	}
	return n
}

// Present returns the finite, non-missing values of a numeric column.
func (c *Column) Present() []float64 {
	var out []float64
	for _, v := range c.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Dtype reports a pandas-style type tag for the upload response.
func (c *Column) Dtype() string {
	if c.Numeric {
		return "float64"
	}
	return "object"
}
