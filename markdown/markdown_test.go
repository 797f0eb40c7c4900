package markdown

import (
	"bytes"
	"strings"
	"testing"
)

func render(text string) string {
	var buf bytes.Buffer
	RenderParagraph(&buf, text)
	return buf.String()
}

func TestFormatInline(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"text *italic* more", "text <em>italic</em> more"},
		{"**bold *italic* text**", "<strong>bold <em>italic</em> text</strong>"},
		{"a `*not italic*` b", "a <code>*not italic*</code> b"},
		{"<script>", "&lt;script&gt;"},
		{"[Go](https://go.dev)", `<a href="https://go.dev">Go</a>`},
		{"[Go](https://go.dev)^", `<a href="https://go.dev" target="_blank" rel="noopener noreferrer">Go</a>`},
		{"[bad](javascript:void)", "bad"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input)
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineLinkWithUnderscores(t *testing.T) {
	got := FormatInline("[x](https://example.com/a*b*c)")
	if strings.Contains(got, "<em>") {
		t.Errorf("emphasis leaked into href: %q", got)
	}
}

func TestRenderParagraph(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Plain text.", "<p>Plain text.</p>"},
		{"line one\nline two", "<p>line one line two</p>"},
		{"# Title", "<h1>Title</h1>"},
		{"### Small", "<h3>Small</h3>"},
		{"---", "<hr/>"},
		{"- a\n- b", "<ul><li>a</li><li>b</li></ul>"},
		{"1. a\n2. b", "<ol><li>a</li><li>b</li></ol>"},
		{"> quoted\n> more", "<blockquote><p>quoted more</p></blockquote>"},
		{"- a\nnot a list", "<p>- a not a list</p>"},
		{"```go\nx := 1 < 2\n```", `<pre class="code-block"><code class="language-go">x := 1 &lt; 2</code></pre>`},
	}
	for _, tt := range tests {
		if got := render(tt.input); got != tt.expected {
			t.Errorf("RenderParagraph(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"/blog/x/", "/blog/x/"},
		{"#top", "#top"},
		{"https://a.example/?q=1&r=2", "https://a.example/?q=1&amp;r=2"},
		{"mailto:me@example.com", "mailto:me@example.com"},
		{"javascript:alert(1)", ""},
		{"//evil.example", ""},
		{"relative/path", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestImageSrc(t *testing.T) {
	if got := ImageSrc("data:image/png;base64,AAAA"); got != "data:image/png;base64,AAAA" {
		t.Errorf("ImageSrc data URI = %q", got)
	}
	if got := ImageSrc("https://a.example/x.jpg?w=1&h=2"); got != "https://a.example/x.jpg?w=1&h=2" {
		t.Errorf("ImageSrc url = %q", got)
	}
	if got := ImageSrc("data:text/html,<b>"); got != "" {
		t.Errorf("ImageSrc non-image data URI = %q, want empty", got)
	}
}
