// Copyright Answer Search Gateway Authors
// SPDX-License-Identifier: Apache-2.0

package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestText_Article(t *testing.T) {
	page := `<!DOCTYPE html>
<html>
<head><title>Paris</title></head>
<body>
<nav>Home | About</nav>
<article>
<h1>Paris</h1>
<p>Paris is the capital and largest city of France. It has been one of
Europe's major centres of finance, diplomacy, commerce and science for
centuries.</p>
<p>The City of Paris is the centre of the Île-de-France region, with an
official estimated population of over two million residents.</p>
</article>
<script>trackPageView();</script>
<footer>Copyright notice</footer>
</body>
</html>`

	text, err := Text([]byte(page), "https://en.wikipedia.org/wiki/Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "capital and largest city of France") {
		t.Errorf("expected main content in extraction, got %q", text)
	}
	if strings.Contains(text, "trackPageView") {
		t.Errorf("expected script content to be stripped, got %q", text)
	}
}

func TestText_FallbackOnBareMarkup(t *testing.T) {
	// Too little structure for the article extractors; the plain text
	// walk should still recover something.
	page := `<html><body><div>just a single line of visible text</div></body></html>`

	text, err := Text([]byte(page), "https://example.com/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(text, "just a single line of visible text") {
		t.Errorf("expected fallback text, got %q", text)
	}
}

func TestText_Empty(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "no visible text", body: "<html><body><script>var x=1;</script></body></html>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Text([]byte(tt.body), "https://example.com/")
			if !errors.Is(err, ErrNoContent) {
				t.Errorf("expected ErrNoContent, got %v", err)
			}
		})
	}
}

func TestText_BadURL(t *testing.T) {
	if _, err := Text([]byte("<html></html>"), "://not-a-url"); err == nil {
		t.Error("expected error for unparseable URL")
	}
}
