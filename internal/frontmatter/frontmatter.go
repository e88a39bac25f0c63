// Package frontmatter splits a content document into its YAML header and body
// and decodes the header into a fully-populated record.
package frontmatter

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Header is the decoded document header. Every field is always populated:
//   - Title defaults to the document slug when absent or null; an explicit
//     empty string is kept
//   - Date defaults to ""
//   - Tags defaults to an empty, non-nil slice
//   - Excerpt defaults to "" (callers derive one from the body)
type Header struct {
	Title   string
	Date    string
	Tags    []string
	Excerpt string
}

// Document is a decoded content file.
type Document struct {
	Header Header
	Body   string
	// Raw holds the undecoded header map; nil when the file had no valid header.
	Raw map[string]any
}

// Decode parses data and applies header defaults. It never fails: a missing or
// malformed header leaves the whole file as body with default header values.
func Decode(data []byte, slug string) Document {
	raw, body := split(data)
	h := Header{
		Title: slug,
		Tags:  []string{},
	}
	if raw != nil {
		if s, ok := scalarString(raw["title"]); ok {
			h.Title = s
		}
		if s, ok := scalarString(raw["date"]); ok {
			h.Date = s
		}
		if s, ok := scalarString(raw["excerpt"]); ok {
			h.Excerpt = s
		}
		h.Tags = tagList(raw["tags"])
	}
	return Document{Header: h, Body: body, Raw: raw}
}

// split separates YAML front matter (between leading --- delimiters) from the
// body. Without a closing delimiter, or with invalid YAML, everything is body.
func split(data []byte) (map[string]any, string) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data)
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, string(data)
	}
	if fm == nil {
		fm = map[string]any{}
	}
	return fm, body
}

// scalarString renders a YAML scalar as a string. YAML timestamps come back as
// time.Time and are formatted as a date, or RFC 3339 when they carry a time.
func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case time.Time:
		return formatDate(x), true
	case int, int64, float64, bool:
		return fmt.Sprint(x), true
	default:
		return "", false
	}
}

func formatDate(t time.Time) string {
	if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
		return t.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

// tagList accepts a YAML sequence or a comma-separated scalar. Header order is
// kept and empty entries are dropped.
func tagList(v any) []string {
	out := []string{}
	switch x := v.(type) {
	case []any:
		for _, item := range x {
			if s, ok := scalarString(item); ok {
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			}
		}
	case string:
		for _, part := range strings.Split(x, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
