package usecase

import (
	"archive/zip"
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	bundleIndex      = "index.html"
	bundleStylesheet = "styles.css"
)

// PreviewDocument makes rendered output viewable on its own. A fragment is
// wrapped in a minimal document; a full document gets the stylesheet inlined
// at the top of its <head>, or right after <html> when it has none.
func PreviewDocument(body, css, title string) string {
	if at := tagEnd(body, "html"); at >= 0 {
		if css == "" {
			return body
		}
		if i := tagEnd(body, "head"); i >= 0 {
			at = i
		}
		return body[:at] + "<style>" + css + "</style>" + body[at:]
	}

	if title == "" {
		title = "Portfolio"
	}
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<title>" + html.EscapeString(title) + "</title>\n")
	if css != "" {
		b.WriteString("<style>" + css + "</style>\n")
	}
	b.WriteString("</head>\n<body>\n")
	b.WriteString(body)
	b.WriteString("\n</body>\n</html>\n")
	return b.String()
}

// tagEnd returns the offset just past the first <name ...> start tag in s,
// matched case-insensitively, or -1.
func tagEnd(s, name string) int {
	for i := 0; ; {
		k := strings.IndexByte(s[i:], '<')
		if k < 0 {
			return -1
		}
		i += k + 1
		j := i + len(name)
		if j > len(s) || !strings.EqualFold(s[i:j], name) {
			continue
		}
		if j < len(s) && !strings.ContainsRune(">/ \t\r\n\f", rune(s[j])) {
			continue
		}
		if end := strings.IndexByte(s[j:], '>'); end >= 0 {
			return j + end + 1
		}
		return -1
	}
}

// Bundle packs the rendered page and its stylesheet into a ZIP archive with
// exactly two entries, index.html and styles.css.
func Bundle(index, css string) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range []struct{ name, body string }{
		{bundleIndex, index},
		{bundleStylesheet, css},
	} {
		w, err := zw.Create(f.name)
		if err != nil {
			return nil, fmt.Errorf("zip %s: %w", f.name, err)
		}
		if _, err := w.Write([]byte(f.body)); err != nil {
			return nil, fmt.Errorf("zip %s: %w", f.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip close: %w", err)
	}
	return buf.Bytes(), nil
}

// Slug turns a display name into a lowercase file name fragment.
func Slug(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func filename(prefix, name, ext string) string {
	if s := Slug(name); s != "" {
		return prefix + "-" + s + ext
	}
	return prefix + ext
}

// pageCount returns 0 when the document cannot be parsed.
func pageCount(b []byte) (n int) {
	// the reader panics on some truncated files
	defer func() {
		if recover() != nil {
			n = 0
		}
	}()
	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return 0
	}
	return r.NumPage()
}
