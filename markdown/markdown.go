// Package markdown renders a single segmented paragraph of post text as
// HTML. Images are never inline: they are placed by the composer.
package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold        = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reItalic      = regexp.MustCompile(`\*([^*]+)\*`)
	reInlineCode  = regexp.MustCompile("`([^`]+)`")
	reLink        = regexp.MustCompile(`\[(.*?)\]\((.*?)\)(\^)?`)
	reOrderedItem = regexp.MustCompile(`^\d+\.\s`)
	reHeading     = regexp.MustCompile(`^(#{1,3})\s+`)
)

// Paragraph returns a templ.Component rendering one paragraph.
func Paragraph(text string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderParagraph(&buf, text)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// RenderParagraph writes text as one block element. The block type is picked
// from the first line: heading, fenced code, list, quote or rule; anything
// else is a <p> whose lines are joined by spaces.
func RenderParagraph(buf *bytes.Buffer, text string) {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	first := lines[0]

	switch {
	case strings.HasPrefix(first, "```"):
		writeCode(buf, lines)
	case reHeading.MatchString(first) && len(lines) == 1:
		level := strconv.Itoa(len(reHeading.FindStringSubmatch(first)[1]))
		buf.WriteString("<h" + level + ">")
		buf.WriteString(FormatInline(reHeading.ReplaceAllString(first, "")))
		buf.WriteString("</h" + level + ">")
	case first == "---" && len(lines) == 1:
		buf.WriteString("<hr/>")
	case allPrefixed(lines, func(l string) bool { return strings.HasPrefix(l, "- ") }):
		writeList(buf, "ul", lines, func(l string) string { return l[2:] })
	case allPrefixed(lines, reOrderedItem.MatchString):
		writeList(buf, "ol", lines, func(l string) string { return reOrderedItem.ReplaceAllString(l, "") })
	case allPrefixed(lines, func(l string) bool { return strings.HasPrefix(l, ">") }):
		buf.WriteString("<blockquote><p>")
		for i, l := range lines {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString(FormatInline(strings.TrimSpace(strings.TrimPrefix(l, ">"))))
		}
		buf.WriteString("</p></blockquote>")
	default:
		buf.WriteString("<p>")
		for i, l := range lines {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString(FormatInline(strings.TrimSpace(l)))
		}
		buf.WriteString("</p>")
	}
}

func allPrefixed(lines []string, match func(string) bool) bool {
	for _, l := range lines {
		if !match(strings.TrimRight(l, "\r")) {
			return false
		}
	}
	return true
}

func writeList(buf *bytes.Buffer, tag string, lines []string, item func(string) string) {
	buf.WriteString("<" + tag + ">")
	for _, l := range lines {
		buf.WriteString("<li>")
		buf.WriteString(FormatInline(strings.TrimSpace(item(l))))
		buf.WriteString("</li>")
	}
	buf.WriteString("</" + tag + ">")
}

// writeCode renders a fenced block. A fence split by a blank line ends up in
// two paragraphs; each half still renders as code.
func writeCode(buf *bytes.Buffer, lines []string) {
	lang := strings.TrimSpace(strings.TrimPrefix(lines[0], "```"))
	body := lines[1:]
	if n := len(body); n > 0 && strings.TrimSpace(body[n-1]) == "```" {
		body = body[:n-1]
	}
	if lang != "" {
		buf.WriteString(`<pre class="code-block"><code class="language-` + html.EscapeString(lang) + `">`)
	} else {
		buf.WriteString(`<pre class="code-block"><code>`)
	}
	for i, l := range body {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(html.EscapeString(l))
	}
	buf.WriteString("</code></pre>")
}

// applyOutsideTags applies fn only to text between HTML tags so emphasis
// never rewrites attribute values.
func applyOutsideTags(s string, fn func(string) string) string {
	var buf strings.Builder
	for len(s) > 0 {
		lt := strings.Index(s, "<")
		if lt < 0 {
			buf.WriteString(fn(s))
			break
		}
		if lt > 0 {
			buf.WriteString(fn(s[:lt]))
		}
		gt := strings.Index(s[lt:], ">")
		if gt < 0 {
			buf.WriteString(s[lt:])
			break
		}
		buf.WriteString(s[lt : lt+gt+1])
		s = s[lt+gt+1:]
	}
	return buf.String()
}

// FormatInline escapes s and applies links, inline code, bold and italic.
func FormatInline(s string) string {
	escaped := html.EscapeString(s)

	var code []string
	escaped = reInlineCode.ReplaceAllStringFunc(escaped, func(m string) string {
		code = append(code, "<code>"+reInlineCode.FindStringSubmatch(m)[1]+"</code>")
		return "\x00" + strconv.Itoa(len(code)-1) + "\x00"
	})
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := SafeURL(match[2])
		if href == "" {
			return match[1]
		}
		attrs := ""
		if match[3] == "^" {
			attrs = ` target="_blank" rel="noopener noreferrer"`
		}
		return `<a href="` + href + `"` + attrs + `>` + match[1] + `</a>`
	})
	escaped = applyOutsideTags(escaped, func(seg string) string {
		seg = reBold.ReplaceAllString(seg, "<strong>$1</strong>")
		return reItalic.ReplaceAllString(seg, "<em>$1</em>")
	})
	for i, c := range code {
		escaped = strings.Replace(escaped, "\x00"+strconv.Itoa(i)+"\x00", c, 1)
	}
	return escaped
}

// SafeURL returns raw HTML-escaped when it is a site path, fragment or an
// http(s)/mailto/tel URL, and "" otherwise.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if (strings.HasPrefix(val, "/") && !strings.HasPrefix(val, "//")) || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	}
	return ""
}

// ImageSrc is SafeURL widened to data:image URIs, for image references.
func ImageSrc(raw string) string {
	if strings.HasPrefix(strings.TrimSpace(raw), "data:image/") {
		return strings.TrimSpace(raw)
	}
	return html.UnescapeString(SafeURL(raw))
}
