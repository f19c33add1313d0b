package config

import (
	"fmt"
	"reflect"
	"sync"
)

// Field is one leaf setting of Config, addressed by its dotted koanf path.
type Field struct {
	Path      string
	EnvVar    string
	Sensitive bool
	index     []int
}

var (
	fieldsOnce   sync.Once
	cachedFields []Field
)

// Fields lists every leaf setting of Config in declaration order.
func Fields() []Field {
	fieldsOnce.Do(func() {
		cachedFields = collectFields(reflect.TypeOf(Config{}), "", nil)
	})
	return cachedFields
}

func collectFields(t reflect.Type, prefix string, index []int) []Field {
	var fields []Field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("koanf")
		if !sf.IsExported() || tag == "" || tag == "-" {
			continue
		}
		path := tag
		if prefix != "" {
			path = prefix + "." + tag
		}
		idx := append(append([]int(nil), index...), i)
		if sf.Type.Kind() == reflect.Struct && sf.Type.PkgPath() != "time" {
			fields = append(fields, collectFields(sf.Type, path, idx)...)
			continue
		}
		env := sf.Tag.Get("env")
		if env == "-" {
			env = ""
		}
		fields = append(fields, Field{
			Path:      path,
			EnvVar:    env,
			Sensitive: sf.Tag.Get("sensitive") == "true",
			index:     idx,
		})
	}
	return fields
}

// EnvToPath maps each declared environment variable to its config path.
func EnvToPath() map[string]string {
	out := make(map[string]string)
	for _, f := range Fields() {
		if f.EnvVar != "" {
			out[f.EnvVar] = f.Path
		}
	}
	return out
}

// Values renders every setting of c by path. Sensitive values print redacted.
func (c *Config) Values() map[string]string {
	v := reflect.ValueOf(c).Elem()
	out := make(map[string]string, len(Fields()))
	for _, f := range Fields() {
		out[f.Path] = fmt.Sprint(v.FieldByIndex(f.index).Interface())
	}
	return out
}
