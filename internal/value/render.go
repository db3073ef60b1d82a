package value

import (
	"math"
	"strconv"
	"strings"
)

// Render produces a textual form of the value. For scalars it is
// round-trippable (parsing the rendered text back reproduces an equal
// value); for containers it is structural, recursing into elements with
// quote set so that nested strings are always escaped regardless of the
// top-level call.
func (v Value) Render(quote bool) string {
	switch v.kind {
	case Null:
		return "null"
	case Boolean:
		if v.b {
			return "true"
		}
		return "false"
	case Integer:
		return strconv.FormatInt(v.i, 10)
	case Real:
		return renderReal(v.r)
	case String:
		if quote {
			return QuoteString(v.s)
		}
		return v.s
	case OpaqueKind:
		return "<opaque>"
	case FunctionKind:
		return "<function " + v.fn.Name + ">"
	case ArrayKind:
		var sb strings.Builder
		sb.WriteByte('[')
		for i, e := range v.arr.Elements {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.Render(true))
		}
		sb.WriteByte(']')
		return sb.String()
	case ObjectKind:
		var sb strings.Builder
		sb.WriteByte('{')
		for i, k := range v.obj.keys {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(QuoteString(k))
			sb.WriteString(": ")
			sb.WriteString(v.obj.m[k].Render(true))
		}
		sb.WriteByte('}')
		return sb.String()
	default:
		return "<unknown>"
	}
}

func renderReal(r float64) string {
	switch {
	case math.IsNaN(r):
		return "nan"
	case math.IsInf(r, 1):
		return "infinity"
	case math.IsInf(r, -1):
		return "-infinity"
	}
	s := strconv.FormatFloat(r, 'g', -1, 64)
	// Ensure round-trippability as `real`: an integral value must still
	// read back as real, not integer, on re-parse.
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// QuoteString escapes str the way src/misc.cpp's quote_string does:
// standard single-character escapes plus \xHH for any other control or
// non-ASCII-printable byte.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\a':
			sb.WriteString(`\a`)
		case '\b':
			sb.WriteString(`\b`)
		case '\f':
			sb.WriteString(`\f`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\v':
			sb.WriteString(`\v`)
		default:
			if c < 0x20 || c > 0x7E {
				sb.WriteString(`\x`)
				const hex = "0123456789abcdef"
				sb.WriteByte(hex[c>>4])
				sb.WriteByte(hex[c&0xF])
			} else {
				sb.WriteByte(c)
			}
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
