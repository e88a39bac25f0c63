package content

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
)

// RenderHTML converts a Markdown body to HTML. Raw HTML and embedded
// component tags are omitted by goldmark's default renderer.
func RenderHTML(body string) template.HTML {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(body), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(body))
	}
	return template.HTML(buf.String())
}
