package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteEDN writes a strict EDN representation.
//
// The encoder targets the subset our payloads need (maps, vectors, strings,
// numbers, booleans, nil). Structs are routed through JSON first so the
// existing json tags decide field naming.
func WriteEDN(w io.Writer, v any, pretty bool) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var x any
	if err := json.Unmarshal(b, &x); err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := ednEncoder{pretty: pretty, indent: 2}
	enc.writeAny(&buf, x, 0)
	buf.WriteByte('\n')
	_, err = w.Write(buf.Bytes())
	return err
}

type ednEncoder struct {
	pretty bool
	indent int
}

func (e ednEncoder) writeAny(buf *bytes.Buffer, v any, level int) {
	switch t := v.(type) {
	case nil:
		buf.WriteString("nil")
	case bool:
		buf.WriteString(strconv.FormatBool(t))
	case string:
		buf.WriteString(strconv.Quote(t))
	case float64:
		// JSON numbers arrive as float64; print whole values as ints.
		if float64(int64(t)) == t {
			buf.WriteString(strconv.FormatInt(int64(t), 10))
			return
		}
		buf.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	case []any:
		items := make([]func(*bytes.Buffer), 0, len(t))
		for _, it := range t {
			it := it
			items = append(items, func(b *bytes.Buffer) { e.writeAny(b, it, level+1) })
		}
		e.writeColl(buf, '[', ']', items, level)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		items := make([]func(*bytes.Buffer), 0, len(keys))
		for _, k := range keys {
			k := k
			items = append(items, func(b *bytes.Buffer) {
				b.WriteByte(':')
				b.WriteString(ednKeyword(k))
				b.WriteByte(' ')
				e.writeAny(b, t[k], level+1)
			})
		}
		e.writeColl(buf, '{', '}', items, level)
	default:
		// Fallback: stringify.
		buf.WriteString(strconv.Quote(fmt.Sprintf("%v", v)))
	}
}

// writeColl lays out a collection, one item per line in pretty mode.
func (e ednEncoder) writeColl(buf *bytes.Buffer, opener, closer byte, items []func(*bytes.Buffer), level int) {
	buf.WriteByte(opener)
	if len(items) == 0 {
		buf.WriteByte(closer)
		return
	}
	if e.pretty {
		buf.WriteByte('\n')
	}
	for i, item := range items {
		if e.pretty {
			buf.WriteString(strings.Repeat(" ", (level+1)*e.indent))
		}
		item(buf)
		if i != len(items)-1 {
			if e.pretty {
				buf.WriteByte('\n')
			} else {
				buf.WriteByte(' ')
			}
		}
	}
	if e.pretty {
		buf.WriteByte('\n')
		buf.WriteString(strings.Repeat(" ", level*e.indent))
	}
	buf.WriteByte(closer)
}

func ednKeyword(s string) string {
	// Keep it simple: allow common JSON field name chars.
	// Replace spaces just in case.
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, " ", "-")
	return s
}
