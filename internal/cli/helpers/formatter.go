package helpers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"

	"github.com/vmihailenco/msgpack/v5"
)

// OutputFormat represents the desired output format.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatCSV   OutputFormat = "csv"

	// FormatMsgpack writes the same records as FormatJSON in MessagePack,
	// for piping into other tools.
	FormatMsgpack OutputFormat = "msgpack"
)

// SupportedFormats lists every format NewFormatter accepts.
var SupportedFormats = []OutputFormat{FormatTable, FormatJSON, FormatCSV, FormatMsgpack}

// Formatter renders rows of command output.
type Formatter interface {
	Format(data any, writer io.Writer) error
}

// NewFormatter creates a new Formatter for the given format.
func NewFormatter(format OutputFormat) (Formatter, error) {
	switch format {
	case FormatTable:
		return TableFormatter{}, nil
	case FormatJSON:
		return JSONFormatter{}, nil
	case FormatCSV:
		return CSVFormatter{}, nil
	case FormatMsgpack:
		return MsgpackFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// JSONFormatter writes data as indented JSON.
type JSONFormatter struct{}

func (JSONFormatter) Format(data any, writer io.Writer) error {
	enc := json.NewEncoder(writer)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// MsgpackFormatter writes data as a single MessagePack value, using the
// json struct tags for keys.
type MsgpackFormatter struct{}

func (MsgpackFormatter) Format(data any, writer io.Writer) error {
	enc := msgpack.NewEncoder(writer)
	enc.SetCustomStructTag("json")
	return enc.Encode(data)
}

// TableFormatter writes a slice of structs as aligned columns. Only fields
// with a `header` tag are shown.
type TableFormatter struct{}

func (TableFormatter) Format(data any, writer io.Writer) error {
	headers, rows, err := tabulate(data)
	if err != nil || headers == nil {
		return err
	}

	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', 0)
	for _, line := range append([][]string{headers}, rows...) {
		if _, err := fmt.Fprintln(w, strings.Join(line, "\t")); err != nil {
			return err
		}
	}
	return w.Flush()
}

// CSVFormatter writes a slice of structs as CSV with a header line.
type CSVFormatter struct{}

func (CSVFormatter) Format(data any, writer io.Writer) error {
	headers, rows, err := tabulate(data)
	if err != nil || headers == nil {
		return err
	}

	w := csv.NewWriter(writer)
	if err := w.Write(headers); err != nil {
		return err
	}
	if err := w.WriteAll(rows); err != nil {
		return err
	}
	return w.Error()
}

// tabulate extracts headers and cell values from a slice of structs. An
// empty slice yields nil headers.
func tabulate(data any) ([]string, [][]string, error) {
	val := reflect.ValueOf(data)
	if val.Kind() != reflect.Slice {
		return nil, nil, fmt.Errorf("data must be a slice")
	}
	if val.Len() == 0 {
		return nil, nil, nil
	}

	elem := val.Type().Elem()
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}
	if elem.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("slice elements must be structs, got %s", elem)
	}

	var headers []string
	var columns []int
	for i := 0; i < elem.NumField(); i++ {
		if h := elem.Field(i).Tag.Get("header"); h != "" {
			headers = append(headers, h)
			columns = append(columns, i)
		}
	}

	rows := make([][]string, val.Len())
	for r := range rows {
		v := reflect.Indirect(val.Index(r))
		row := make([]string, len(columns))
		for c, i := range columns {
			row[c] = fmt.Sprintf("%v", v.Field(i).Interface())
		}
		rows[r] = row
	}

	return headers, rows, nil
}
