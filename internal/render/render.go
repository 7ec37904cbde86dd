// Package render turns a terminal response body into display text.
package render

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/minoru-f/yomu/internal/httpmsg"
)

// Render produces the display string for a final response. JSON bodies are
// pretty-printed; everything else goes through tag stripping. Neither path
// fails: unparseable input comes back as-is.
func Render(resp *httpmsg.Response) string {
	if strings.Contains(strings.ToLower(resp.ContentType()), "application/json") {
		return JSON(resp.Body)
	}
	return Text(resp.Body)
}

// JSON re-serializes a JSON document with 2-space indentation. Invalid JSON
// falls back to the raw text unchanged.
func JSON(body []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}

// Text strips markup for terminal display: style and script subtrees are
// removed wholesale so their contents never leak into the output, remaining
// tags are dropped, and whitespace runs collapse to single spaces with the
// ends trimmed. Plain text passes through (modulo whitespace collapsing).
func Text(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return collapse(string(body))
	}
	doc.Find("script, style").Remove()
	return collapse(doc.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
