// Package ini implements the std.ini standard-library object: a small
// section-scoped INI format, grounded on ini.cpp's do_ini_parse,
// do_format_key, and do_format_check_scalar.
package ini

import (
	"os"
	"strings"

	"asteria/internal/failure"
	"asteria/internal/global"
	"asteria/internal/value"
)

// forbidden lists the characters do_format_key/do_format_check_scalar
// reject in emitted keys and values.
const forbidden = "[]=;#"

// Register builds the std.ini object.
func Register() *value.Object {
	obj := value.NewObject()
	obj.Set("format", native("format", formatFn))
	obj.Set("parse", native("parse", parseFn))
	obj.Set("parse_file", native("parse_file", parseFileFn))
	return obj
}

func native(name string, fn value.NativeFn) value.Value {
	return value.FuncVal(&value.Function{Name: name, Native: fn})
}

func formatFn(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	if len(args) == 0 || args[0].Kind() != value.ObjectKind {
		return value.Value{}, failure.New(failure.Argument, "format requires an object")
	}
	var sb strings.Builder
	if err := formatRoot(&sb, args[0].Object()); err != nil {
		return value.Value{}, err
	}
	return value.Str(sb.String()), nil
}

func formatRoot(sb *strings.Builder, obj *value.Object) *failure.Failure {
	var sections []string
	for _, key := range obj.Keys() {
		v, _ := obj.Get(key)
		if v.Kind() == value.ObjectKind {
			sections = append(sections, key)
			continue
		}
		if err := writeScalarLine(sb, key, v); err != nil {
			return err
		}
	}
	for _, key := range sections {
		if err := checkKey(key); err != nil {
			return err
		}
		sb.WriteByte('[')
		sb.WriteString(key)
		sb.WriteString("]\n")
		v, _ := obj.Get(key)
		for _, k2 := range v.Object().Keys() {
			v2, _ := v.Object().Get(k2)
			if v2.Kind() == value.ObjectKind {
				return failure.New(failure.Argument, "ini sections cannot be nested")
			}
			if err := writeScalarLine(sb, k2, v2); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeScalarLine(sb *strings.Builder, key string, v value.Value) *failure.Failure {
	if err := checkKey(key); err != nil {
		return err
	}
	s := v.Render(false)
	if err := checkScalar(s); err != nil {
		return err
	}
	sb.WriteString(key)
	sb.WriteString(" = ")
	sb.WriteString(s)
	sb.WriteByte('\n')
	return nil
}

func checkKey(key string) *failure.Failure {
	if key == "" || key != strings.TrimSpace(key) {
		return failure.New(failure.Argument, "ini key %q has leading/trailing whitespace", key)
	}
	if strings.ContainsAny(key, forbidden) {
		return failure.New(failure.Argument, "ini key %q contains a forbidden character", key)
	}
	return nil
}

func checkScalar(s string) *failure.Failure {
	if s != strings.TrimSpace(s) {
		return failure.New(failure.Argument, "ini value %q has leading/trailing whitespace", s)
	}
	if strings.ContainsAny(s, forbidden) {
		return failure.New(failure.Argument, "ini value %q contains a forbidden character", s)
	}
	return nil
}

func parseFn(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	if len(args) == 0 || args[0].Kind() != value.String {
		return value.Value{}, failure.New(failure.Argument, "parse requires a string")
	}
	return parseText(args[0].String_())
}

func parseFileFn(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	if len(args) == 0 || args[0].Kind() != value.String {
		return value.Value{}, failure.New(failure.Argument, "parse_file requires a path string")
	}
	data, err := os.ReadFile(args[0].String_())
	if err != nil {
		return value.Value{}, global.RaiseHostError(failure.Resource, err)
	}
	return parseText(string(data))
}

// parseText implements do_ini_parse: lines are terminated by LF with an
// optional preceding CR; bracket headers open (or reopen) a section;
// everything else is a `key = value` pair bound into the most recently
// opened section, or the root before any header appears. Comments begin
// with `;` or `#` and run to end of line.
func parseText(text string) (value.Value, *failure.Failure) {
	root := value.NewObject()
	current := root

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSuffix(raw, "\r")
		line = stripComment(line)
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			name := strings.TrimSpace(line[1 : len(line)-1])
			if existing, ok := root.Get(name); ok && existing.Kind() == value.ObjectKind {
				current = existing.Object()
				continue
			}
			section := value.NewObject()
			root.Set(name, value.ObjectVal(section))
			current = section
			continue
		}
		eq := strings.IndexByte(line, '=')
		if eq < 0 {
			return value.Value{}, failure.New(failure.Argument, "malformed ini line %q", raw)
		}
		key := strings.TrimSpace(line[:eq])
		val := strings.TrimSpace(line[eq+1:])
		current.Set(key, value.Str(val))
	}
	return value.ObjectVal(root), nil
}

func stripComment(line string) string {
	for i, r := range line {
		if r == ';' || r == '#' {
			return line[:i]
		}
	}
	return line
}
