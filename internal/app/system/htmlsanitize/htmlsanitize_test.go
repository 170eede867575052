package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/gatherhub/internal/app/system/htmlsanitize"
)

func TestPlainText_Empty(t *testing.T) {
	if got := htmlsanitize.PlainText(""); got != "" {
		t.Errorf("expected empty string, got %q", got)
	}
}

func TestPlainText_Unchanged(t *testing.T) {
	if got := htmlsanitize.PlainText("Book club"); got != "Book club" {
		t.Errorf("expected plain text unchanged, got %q", got)
	}
}

func TestPlainText_StripsTags(t *testing.T) {
	got := htmlsanitize.PlainText("<b>Book</b> club<script>alert('x')</script>")
	if got != "Book club" {
		t.Errorf("expected tags stripped, got %q", got)
	}
}

func TestPlainText_KeepsAmpersand(t *testing.T) {
	if got := htmlsanitize.PlainText("Tom & Jerry"); got != "Tom & Jerry" {
		t.Errorf("expected ampersand preserved, got %q", got)
	}
}

func TestPlainText_Trims(t *testing.T) {
	if got := htmlsanitize.PlainText("  Lunch  "); got != "Lunch" {
		t.Errorf("expected trimmed text, got %q", got)
	}
}

func TestSanitize_SafeHTML(t *testing.T) {
	input := "<p><strong>Bold</strong> and <em>italic</em></p>"
	if got := htmlsanitize.Sanitize(input); got != input {
		t.Errorf("expected safe HTML preserved, got %q", got)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	got := htmlsanitize.Sanitize("<p>Hello</p><script>alert('xss')</script>")
	if got != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", got)
	}
}

func TestSanitize_RemovesOnclick(t *testing.T) {
	got := htmlsanitize.Sanitize(`<p onclick="alert('xss')">Click</p>`)
	if strings.Contains(got, "onclick") {
		t.Errorf("expected onclick attribute removed, got %q", got)
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="javascript:alert('xss')">Click</a>`)
	if strings.Contains(got, "javascript:") {
		t.Errorf("expected javascript: href removed, got %q", got)
	}
}

func TestSanitize_AllowsSafeLinks(t *testing.T) {
	got := htmlsanitize.Sanitize(`<a href="https://example.com">Link</a>`)
	if !strings.Contains(got, "https://example.com") {
		t.Errorf("expected safe link preserved, got %q", got)
	}
}

func TestIsPlainText(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"Hello, World!", true},
		{"5 < 10", true},
		{"5 > 3", true},
		{"<p>Hello</p>", false},
	}
	for _, tt := range tests {
		if got := htmlsanitize.IsPlainText(tt.in); got != tt.want {
			t.Errorf("IsPlainText(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
