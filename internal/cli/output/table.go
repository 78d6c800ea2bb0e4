package output

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/PerchunPak/nonbloat-db/internal/core/domain"
	"github.com/PerchunPak/nonbloat-db/internal/storage/codec"
)

// TableFormatter formats data as an aligned plain-text table.
//
// Supported data: *Table, *domain.Object (KEY/VALUE rows), domain.Value
// (objects as rows, anything else as a single line), []string (one value
// per line) and structs or pointers to structs (FIELD/VALUE rows).
type TableFormatter struct {
	NoHeaders bool
}

// Format formats data as a table.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	switch d := data.(type) {
	case *Table:
		return d.RenderWithOptions(w, f.NoHeaders)
	case Table:
		return d.RenderWithOptions(w, f.NoHeaders)
	case *domain.Object:
		return objectTable(d).RenderWithOptions(w, f.NoHeaders)
	case domain.Value:
		if obj, ok := d.AsObject(); ok {
			return objectTable(obj).RenderWithOptions(w, f.NoHeaders)
		}
		s, err := cell(d)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, s)
		return err
	case []string:
		for _, s := range d {
			if _, err := fmt.Fprintln(w, s); err != nil {
				return err
			}
		}
		return nil
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return fmt.Errorf("output: cannot render %T as a table", data)
	}
	return structTable(v).RenderWithOptions(w, f.NoHeaders)
}

func objectTable(o *domain.Object) *Table {
	t := &Table{Headers: []string{"KEY", "VALUE"}}
	o.Range(func(key string, v domain.Value) bool {
		s, err := cell(v)
		if err != nil {
			s = "<" + err.Error() + ">"
		}
		t.AddRow(key, s)
		return true
	})
	return t
}

// cell renders strings bare and every other value as compact JSON.
func cell(v domain.Value) (string, error) {
	if s, ok := v.AsString(); ok {
		return s, nil
	}
	b, err := codec.MarshalValue(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// structTable converts a single struct to a FIELD/VALUE table. Field names
// come from json tags when present.
func structTable(v reflect.Value) *Table {
	t := &Table{Headers: []string{"FIELD", "VALUE"}}

	typ := v.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() || field.Tag.Get("table") == "-" {
			continue
		}

		name := field.Name
		if tag := field.Tag.Get("json"); tag != "" {
			if n, _, _ := strings.Cut(tag, ","); n != "" && n != "-" {
				name = n
			}
		}
		t.AddRow(name, formatValue(v.Field(i), field.Tag.Get("table")))
	}
	return t
}

func formatValue(v reflect.Value, hint string) string {
	if !v.IsValid() {
		return "-"
	}
	if v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "-"
		}
		v = v.Elem()
	}

	switch x := v.Interface().(type) {
	case time.Time:
		if x.IsZero() {
			return "-"
		}
		return x.Format(time.RFC3339)
	case time.Duration:
		return x.String()
	case error:
		return x.Error()
	}

	switch v.Kind() {
	case reflect.String:
		if v.String() == "" {
			return "-"
		}
		return v.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if hint == "bytes" {
			return HumanBytes(v.Int())
		}
		return fmt.Sprintf("%d", v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return fmt.Sprintf("%d", v.Uint())
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%g", v.Float())
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return fmt.Sprintf("[%d bytes]", v.Len())
		}
		return fmt.Sprintf("[%d items]", v.Len())
	default:
		return fmt.Sprintf("%v", v.Interface())
	}
}

// Table represents tabular data.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Render renders the table to the writer.
func (t *Table) Render(w io.Writer) error {
	return t.RenderWithOptions(w, false)
}

// RenderWithOptions renders the table with options.
func (t *Table) RenderWithOptions(w io.Writer, noHeaders bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	if !noHeaders && len(t.Headers) > 0 {
		fmt.Fprintln(tw, strings.Join(t.Headers, "\t"))
	}
	for _, row := range t.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cells ...string) {
	t.Rows = append(t.Rows, cells)
}
