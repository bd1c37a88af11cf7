package model

import (
	"reflect"
	"strconv"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// DateLayout is the calendar-date format used for input and export.
const DateLayout = "2006-01-02"

// Decode builds a record of category c from form values keyed by field
// name. Values are coerced to the declared field types; unknown keys and
// values that cannot be coerced are reported as a ValidationError.
func Decode(c Category, fields map[string]string) (Record, error) {
	rec, err := New(c)
	if err != nil {
		return nil, err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "field",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(DateLayout),
		Result:           rec,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(fields); err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	return rec, nil
}

// Field is one exported column of a record.
type Field struct {
	Name  string
	Value string
}

// Columns lists the exported field names of category c in declaration order.
func Columns(c Category) []string {
	rec, err := New(c)
	if err != nil {
		return nil
	}
	fields := Fields(rec)
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns the exported fields of r formatted as text.
func Fields(r Record) []Field {
	v := reflect.ValueOf(r)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}
	t := v.Type()

	var out []Field
	for i := 0; i < t.NumField(); i++ {
		name := t.Field(i).Tag.Get("field")
		if name == "" || name == "-" {
			continue
		}
		out = append(out, Field{Name: name, Value: format(v.Field(i))})
	}
	return out
}

func format(v reflect.Value) string {
	if t, ok := v.Interface().(time.Time); ok {
		if t.IsZero() {
			return ""
		}
		return t.Format(DateLayout)
	}
	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Int, reflect.Int64, reflect.Int32:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Float64, reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	}
	return ""
}
