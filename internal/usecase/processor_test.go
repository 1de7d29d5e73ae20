package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"portfolio-generator/internal/adapter/templatestore"
	"portfolio-generator/internal/domain"
	"portfolio-generator/internal/model"
	"portfolio-generator/internal/render"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

const testTemplate = `<h1>{{name}}</h1><ul>{{#each skills.technical_skills}}<li>{{this}}</li>{{/each}}</ul>` +
	`{{#if testimonials}}<section>{{#each testimonials}}{{/each}}</section>{{/if}}<footer>{{currentYear}}</footer>`

func testStore() templatestore.Store {
	return templatestore.NewFSStore(fstest.MapFS{
		"modern/template.html": {Data: []byte(testTemplate)},
		"modern/styles.css":    {Data: []byte("h1{color:red}")},
		"bare/template.html":   {Data: []byte("<p>{{email}}</p>")},
		"doc/template.html":    {Data: []byte("<html><head><title>x</title></head><body>{{name}}</body></html>")},
		"doc/styles.css":       {Data: []byte("body{margin:0}")},
	})
}

type fakeRenderer struct {
	out   []byte
	err   error
	calls int
	html  string
}

func (f *fakeRenderer) RenderHTMLToPDF(_ context.Context, html string) ([]byte, error) {
	f.calls++
	f.html = html
	return f.out, f.err
}

type memExports struct {
	mu   sync.Mutex
	list []domain.Export
	err  error
}

func (m *memExports) Save(_ context.Context, e *domain.Export) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.list = append(m.list, *e)
	return m.err
}

type mapProfiles map[uuid.UUID]*model.Profile

func (m mapProfiles) Get(_ context.Context, id uuid.UUID) (*model.Profile, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrProfileNotFound, id)
}

func fixedNow() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }

func adaProfile() *model.Profile {
	return &model.Profile{
		BasicInfo:    model.BasicInfo{Name: "Ada Lovelace", Email: "ada@example.com"},
		Skills:       model.Skills{TechnicalSkills: []string{"Rust", "Go"}},
		Testimonials: []model.Testimonial{{Name: "Charles", Rating: 3, Text: "Great."}},
	}
}

func newTestProcessor(r Renderer, exports ExportsRepo, opts ...Option) *Processor {
	opts = append([]Option{WithClock(fixedNow)}, opts...)
	return NewProcessor(r, testStore(), nil, exports, nil, opts...)
}

func TestProcessor_Preview(t *testing.T) {
	p := newTestProcessor(nil, nil)
	a, err := p.Preview(context.Background(), Request{Template: "modern", Profile: adaProfile()})
	if err != nil {
		t.Fatalf("Preview: %v", err)
	}
	body := string(a.Body)
	for _, s := range []string{
		"<!DOCTYPE html>",
		"<title>Ada Lovelace - Portfolio</title>",
		"<style>h1{color:red}</style>",
		"<h1>Ada Lovelace</h1><ul><li>Rust</li><li>Go</li></ul>",
		"★★★☆☆",
		"<footer>2026</footer>",
	} {
		if !strings.Contains(body, s) {
			t.Errorf("preview missing %q:\n%s", s, body)
		}
	}
	if a.ContentType != "text/html; charset=utf-8" || a.Format != domain.FormatPreview {
		t.Errorf("artifact = %+v", a)
	}
}

func TestProcessor_DownloadRoundTrip(t *testing.T) {
	exports := &memExports{}
	p := newTestProcessor(nil, exports)
	prof := adaProfile()

	a, err := p.Download(context.Background(), Request{Template: "modern", Profile: prof})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if a.Filename != "portfolio-ada-lovelace.zip" || a.ContentType != "application/zip" {
		t.Errorf("artifact = %+v", a)
	}

	zr, err := zip.NewReader(bytes.NewReader(a.Body), int64(len(a.Body)))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	got := map[string]string{}
	var names []string
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		b, _ := io.ReadAll(rc)
		rc.Close()
		got[f.Name] = string(b)
		names = append(names, f.Name)
	}
	if diff := cmp.Diff([]string{"index.html", "styles.css"}, names); diff != "" {
		t.Fatalf("entries (-want +got):\n%s", diff)
	}
	want := render.Render(testTemplate, prof, render.WithClock(fixedNow))
	if diff := cmp.Diff(want, got["index.html"]); diff != "" {
		t.Errorf("index.html differs from render output (-want +got):\n%s", diff)
	}
	if got["styles.css"] != "h1{color:red}" {
		t.Errorf("styles.css = %q", got["styles.css"])
	}

	if len(exports.list) != 1 {
		t.Fatalf("recorded %d exports, want 1", len(exports.list))
	}
	e := exports.list[0]
	if e.ID != a.ExportID || e.Status != domain.StatusCompleted || e.Format != domain.FormatZIP || e.SizeBytes != len(a.Body) {
		t.Errorf("export = %+v", e)
	}
}

func TestProcessor_DownloadWithoutStylesheet(t *testing.T) {
	p := newTestProcessor(nil, nil)
	a, err := p.Download(context.Background(), Request{Template: "bare"})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if a.Filename != "portfolio.zip" {
		t.Errorf("filename = %q", a.Filename)
	}
	zr, err := zip.NewReader(bytes.NewReader(a.Body), int64(len(a.Body)))
	if err != nil {
		t.Fatalf("zip: %v", err)
	}
	if len(zr.File) != 2 || zr.File[1].UncompressedSize64 != 0 {
		t.Errorf("unexpected entries: %+v", zr.File)
	}
}

func TestProcessor_PDF(t *testing.T) {
	r := &fakeRenderer{out: minimalPDF(2)}
	exports := &memExports{}
	p := newTestProcessor(r, exports)

	a, err := p.PDF(context.Background(), Request{Template: "doc", Profile: adaProfile()})
	if err != nil {
		t.Fatalf("PDF: %v", err)
	}
	if r.calls != 1 {
		t.Errorf("converter called %d times, want 1", r.calls)
	}
	if !strings.Contains(r.html, "<head><style>body{margin:0}</style><title>x</title>") {
		t.Errorf("stylesheet not inlined at top of head:\n%s", r.html)
	}
	if a.PageCount != 2 || a.Filename != "resume-ada-lovelace.pdf" || a.ContentType != "application/pdf" {
		t.Errorf("artifact = %+v", a)
	}
	if len(exports.list) != 1 || exports.list[0].PageCount != 2 {
		t.Errorf("exports = %+v", exports.list)
	}
}

type exitErr struct{ code int }

func (e *exitErr) Error() string   { return fmt.Sprintf("exit %d: boom", e.code) }
func (e *exitErr) ExitStatus() int { return e.code }

func TestProcessor_PDFConverterFailure(t *testing.T) {
	tests := []struct {
		name string
		r    Renderer
	}{
		{"converter error", &fakeRenderer{err: &exitErr{code: 3}}},
		{"not a pdf", &fakeRenderer{out: []byte("<html>")}},
		{"no converter", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exports := &memExports{}
			p := newTestProcessor(tt.r, exports)
			_, err := p.PDF(context.Background(), Request{Template: "modern"})
			if !errors.Is(err, ErrConversion) {
				t.Fatalf("err = %v, want ErrConversion", err)
			}
			if len(exports.list) != 1 || exports.list[0].Status != domain.StatusFailed || exports.list[0].Error == "" {
				t.Fatalf("exports = %+v", exports.list)
			}
		})
	}

	exports := &memExports{}
	p := newTestProcessor(&fakeRenderer{err: &exitErr{code: 3}}, exports)
	_, _ = p.PDF(context.Background(), Request{Template: "modern"})
	if got := exports.list[0].Metadata["exit_code"]; got != 3 {
		t.Errorf("exit_code = %v, want 3", got)
	}
}

func TestProcessor_ExportSaveFailureIsIgnored(t *testing.T) {
	p := newTestProcessor(nil, &memExports{err: errors.New("db down")})
	if _, err := p.Download(context.Background(), Request{Template: "modern"}); err != nil {
		t.Fatalf("Download: %v", err)
	}
}

func TestProcessor_NotFound(t *testing.T) {
	p := newTestProcessor(nil, nil)
	if _, err := p.Preview(context.Background(), Request{Template: "missing"}); !errors.Is(err, ErrTemplateNotFound) {
		t.Errorf("missing template: err = %v", err)
	}
	id := uuid.New()
	if _, err := p.Preview(context.Background(), Request{Template: "modern", ProfileID: &id}); !errors.Is(err, ErrProfileNotFound) {
		t.Errorf("missing profile: err = %v", err)
	}
}

func TestProcessor_ProfileByID(t *testing.T) {
	id := uuid.New()
	exports := &memExports{}
	p := NewProcessor(nil, testStore(), mapProfiles{id: adaProfile()}, exports, nil, WithClock(fixedNow))

	r, err := p.Render(context.Background(), Request{ProfileID: &id})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if r.Template != DefaultTemplate || !strings.Contains(r.HTML, "<h1>Ada Lovelace</h1>") {
		t.Errorf("rendered = %+v", r)
	}

	if _, err := p.Download(context.Background(), Request{ProfileID: &id}); err != nil {
		t.Fatalf("Download: %v", err)
	}
	if pid := exports.list[0].ProfileID; pid == nil || *pid != id {
		t.Errorf("export profile id = %v", pid)
	}
}

func TestProcessor_Sanitizer(t *testing.T) {
	p := newTestProcessor(nil, nil, WithSanitizer(bluemonday.StrictPolicy()))
	prof := &model.Profile{BasicInfo: model.BasicInfo{Name: `Ada<script>alert(1)</script>`}}
	r, err := p.Render(context.Background(), Request{Profile: prof})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(r.HTML, "<script>") {
		t.Errorf("script survived sanitizing: %s", r.HTML)
	}
	if prof.Name() != `Ada<script>alert(1)</script>` {
		t.Error("caller's profile was modified")
	}
}

func TestProcessor_Lint(t *testing.T) {
	p := NewProcessor(nil, templatestore.NewFSStore(fstest.MapFS{
		"broken/template.html": {Data: []byte("{{#each experience}}{{nickname}}")},
	}), nil, nil, nil)
	diags, err := p.Lint(context.Background(), "broken")
	if err != nil {
		t.Fatalf("Lint: %v", err)
	}
	if len(diags) != 2 {
		t.Fatalf("diagnostics = %+v, want 2", diags)
	}
}

func TestPreviewDocument(t *testing.T) {
	tests := []struct {
		name, body, css, title, want string
	}{
		{
			name: "full document without css",
			body: "<html><body>x</body></html>",
			want: "<html><body>x</body></html>",
		},
		{
			name: "full document without head",
			body: "<HTML><body>x</body></HTML>",
			css:  "p{}",
			want: "<HTML><style>p{}</style><body>x</body></HTML>",
		},
		{
			name: "doctype without head",
			body: `<!DOCTYPE html><html lang="en"><body>x</body></html>`,
			css:  "p{}",
			want: `<!DOCTYPE html><html lang="en"><style>p{}</style><body>x</body></html>`,
		},
		{
			name: "head with attributes",
			body: `<html><head lang="en"><title>t</title></head><body><header>h</header></body></html>`,
			css:  "p{}",
			want: `<html><head lang="en"><style>p{}</style><title>t</title></head><body><header>h</header></body></html>`,
		},
		{
			name: "header is not head",
			body: `<html><body><header>h</header></body></html>`,
			css:  "p{}",
			want: `<html><style>p{}</style><body><header>h</header></body></html>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PreviewDocument(tt.body, tt.css, tt.title); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	got := PreviewDocument("<p>x</p>", "", `A & B`)
	if !strings.Contains(got, "<title>A &amp; B</title>") || strings.Contains(got, "<style>") {
		t.Errorf("shell = %s", got)
	}
}

func TestSlug(t *testing.T) {
	tests := map[string]string{
		"Ada Lovelace":     "ada-lovelace",
		"  Jose  O'Brien!": "jose-o-brien",
		"":                 "",
		"---":              "",
		"R2-D2 & C-3PO":    "r2-d2-c-3po",
	}
	for in, want := range tests {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPageCount_Malformed(t *testing.T) {
	for _, b := range [][]byte{nil, []byte("%PDF-1.4 fake"), []byte("%PDF-1.4\ngarbage\n%%EOF\n")} {
		if n := pageCount(b); n != 0 {
			t.Errorf("pageCount(%q) = %d, want 0", b, n)
		}
	}
}

// minimalPDF builds a valid document with the given number of blank pages.
func minimalPDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 595 842] >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}
