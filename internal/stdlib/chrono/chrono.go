// Package chrono implements the std.chrono standard-library object: wall
// clock and monotonic time queries plus UTC/local conversion and the
// textual formats bindings_chrono.cpp defines.
package chrono

import (
	"fmt"
	"strings"
	"time"

	"asteria/internal/failure"
	"asteria/internal/value"
)

// Clamp bounds, taken from bindings_chrono.cpp: 1601-01-01
// (Windows FILETIME epoch) through 9999-01-01, expressed as milliseconds
// since the Unix epoch.
const (
	MinMillis int64 = -11644473600000
	MaxMillis int64 = 253370764800000
)

func clamp(ms int64) int64 {
	switch {
	case ms < MinMillis:
		return MinMillis
	case ms > MaxMillis:
		return MaxMillis
	default:
		return ms
	}
}

var startMono = time.Now()

// Register builds the std.chrono object.
func Register() *value.Object {
	obj := value.NewObject()
	obj.Set("utc_now", native("utc_now", utcNow))
	obj.Set("local_now", native("local_now", localNow))
	obj.Set("hires_now", native("hires_now", hiresNow))
	obj.Set("steady_now", native("steady_now", steadyNow))
	obj.Set("utc_from_local", native("utc_from_local", utcFromLocal))
	obj.Set("local_from_utc", native("local_from_utc", localFromUtc))
	obj.Set("utc_format", native("utc_format", utcFormat))
	obj.Set("utc_parse", native("utc_parse", utcParse))
	return obj
}

func native(name string, fn value.NativeFn) value.Value {
	return value.FuncVal(&value.Function{Name: name, Native: fn})
}

func utcNow(_ interface{}, _ value.Value, _ []value.Value) (value.Value, *failure.Failure) {
	return value.Int(clamp(time.Now().UTC().UnixMilli())), nil
}

func localNow(_ interface{}, _ value.Value, _ []value.Value) (value.Value, *failure.Failure) {
	return value.Int(clamp(time.Now().UnixMilli())), nil
}

// hiresNow returns a high-resolution monotonic reading in milliseconds,
// not tied to the wall clock and not comparable across processes.
func hiresNow(_ interface{}, _ value.Value, _ []value.Value) (value.Value, *failure.Failure) {
	return value.Int(time.Since(startMono).Nanoseconds() / int64(time.Millisecond)), nil
}

func steadyNow(_ interface{}, _ value.Value, _ []value.Value) (value.Value, *failure.Failure) {
	return hiresNow(nil, value.Value{}, nil)
}

func utcFromLocal(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	ms, err := requireInt(args, 0, "utc_from_local")
	if err != nil {
		return value.Value{}, err
	}
	t := time.UnixMilli(ms)
	_, offset := t.Local().Zone()
	return value.Int(clamp(ms - int64(offset)*1000)), nil
}

func localFromUtc(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	ms, err := requireInt(args, 0, "local_from_utc")
	if err != nil {
		return value.Value{}, err
	}
	t := time.UnixMilli(ms).UTC()
	_, offset := t.Local().Zone()
	return value.Int(clamp(ms + int64(offset)*1000)), nil
}

// Below MinMillis and above MaxMillis bindings_chrono.cpp renders these
// literal sentinel strings rather than a Gregorian date string.
const (
	sentinelMin    = "1601-01-01 00:00:00"
	sentinelMinMs  = "1601-01-01 00:00:00.000"
	sentinelMax    = "9999-01-01 00:00:00"
	sentinelMaxMs  = "9999-01-01 00:00:00.000"
)

func utcFormat(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	ms, err := requireInt(args, 0, "utc_format")
	if err != nil {
		return value.Value{}, err
	}
	withMs := len(args) > 1 && args[1].Kind() == value.Boolean && args[1].Bool()

	if ms <= MinMillis {
		if withMs {
			return value.Str(sentinelMinMs), nil
		}
		return value.Str(sentinelMin), nil
	}
	if ms >= MaxMillis {
		if withMs {
			return value.Str(sentinelMaxMs), nil
		}
		return value.Str(sentinelMax), nil
	}
	t := time.UnixMilli(ms).UTC()
	layout := "2006-01-02 15:04:05"
	out := t.Format(layout)
	if withMs {
		out += fmt.Sprintf(".%03d", t.Nanosecond()/1_000_000)
	}
	return value.Str(out), nil
}

// utcParse accepts `-` or `/` as date separator, space or `T` as
// date/time separator, and `.` or `,` as fractional separator; trailing
// whitespace is ignored; a malformed string yields null rather than a
// failure, matching bindings_chrono.cpp's parser.
func utcParse(_ interface{}, _ value.Value, args []value.Value) (value.Value, *failure.Failure) {
	if len(args) == 0 || args[0].Kind() != value.String {
		return value.Value{}, failure.New(failure.Argument, "utc_parse requires a string")
	}
	s := strings.TrimRight(args[0].String_(), " \t\r\n")
	s = strings.Map(func(r rune) rune {
		switch r {
		case '/':
			return '-'
		case 'T':
			return ' '
		case ',':
			return '.'
		}
		return r
	}, s)
	layouts := []string{
		"2006-01-02 15:04:05.000",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return value.Int(clamp(t.UTC().UnixMilli())), nil
		}
	}
	return value.Null_, nil
}

func requireInt(args []value.Value, i int, name string) (int64, *failure.Failure) {
	if i >= len(args) || args[i].Kind() != value.Integer {
		return 0, failure.New(failure.Argument, "%s requires an integer argument", name)
	}
	return args[i].Int(), nil
}
