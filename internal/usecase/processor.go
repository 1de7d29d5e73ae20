package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio-generator/internal/adapter/templatestore"
	"portfolio-generator/internal/domain"
	"portfolio-generator/internal/logger"
	"portfolio-generator/internal/model"
	"portfolio-generator/internal/render"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("portfolio-generator/usecase")

type Processor struct {
	renderer  Renderer
	templates templatestore.Store
	profiles  ProfilesRepo
	exports   ExportsRepo
	log       *logger.Logger
	policy    *bluemonday.Policy
	now       func() time.Time
}

type Option func(*Processor)

// WithSanitizer strips markup from profile values before rendering.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(p *Processor) { p.policy = policy }
}

func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// NewProcessor wires the pipeline. renderer, profiles and exports may be nil:
// PDF export then fails, profileId lookups report not found and exports are
// not recorded.
func NewProcessor(r Renderer, templates templatestore.Store, profiles ProfilesRepo, exports ExportsRepo, log *logger.Logger, opts ...Option) *Processor {
	if log == nil {
		log = logger.Nop()
	}
	p := &Processor{renderer: r, templates: templates, profiles: profiles, exports: exports, log: log, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Processor) Templates(ctx context.Context) ([]string, error) {
	return p.templates.List(ctx)
}

// Lint parses a stored template and returns its diagnostics.
func (p *Processor) Lint(ctx context.Context, name string) ([]render.Diagnostic, error) {
	src, err := p.templates.Template(ctx, name)
	if err != nil {
		return nil, err
	}
	return render.Parse(src).Diagnostics, nil
}

func (p *Processor) resolveProfile(ctx context.Context, req Request) (*model.Profile, error) {
	prof := req.Profile
	if prof == nil && req.ProfileID != nil {
		if p.profiles == nil {
			return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, req.ProfileID)
		}
		var err error
		if prof, err = p.profiles.Get(ctx, *req.ProfileID); err != nil {
			return nil, err
		}
	}
	if prof == nil {
		prof = &model.Profile{}
	}
	if p.policy != nil {
		prof = model.Sanitize(prof, p.policy)
	}
	return prof, nil
}

// Render loads the template and stylesheet, resolves the profile and fills
// the template.
func (p *Processor) Render(ctx context.Context, req Request) (*Rendered, error) {
	name := req.Template
	if name == "" {
		name = DefaultTemplate
	}
	ctx, span := tracer.Start(ctx, "processor.render", trace.WithAttributes(attribute.String("template", name)))
	defer span.End()

	var (
		src, css string
		prof     *model.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		src, err = p.templates.Template(gctx, name)
		return err
	})
	g.Go(func() (err error) {
		css, err = p.templates.Stylesheet(gctx, name)
		return err
	})
	g.Go(func() (err error) {
		prof, err = p.resolveProfile(gctx, req)
		return err
	})
	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	tpl := render.Parse(src)
	for _, d := range tpl.Diagnostics {
		p.log.Debug("template diagnostic", "template", name, "line", d.Line, "message", d.Message)
	}
	html := tpl.Execute(prof, render.WithClock(p.now))
	span.SetAttributes(attribute.Int("html_bytes", len(html)))
	return &Rendered{Template: name, HTML: html, CSS: css, Profile: prof}, nil
}

// Preview renders a standalone page. Previews are not recorded.
func (p *Processor) Preview(ctx context.Context, req Request) (*Artifact, error) {
	r, err := p.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	return &Artifact{
		Format:      domain.FormatPreview,
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(PreviewDocument(r.HTML, r.CSS, previewTitle(r.Profile))),
	}, nil
}

// Download renders the template and packs it with its stylesheet.
func (p *Processor) Download(ctx context.Context, req Request) (*Artifact, error) {
	r, err := p.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	exp := p.newExport(req, r.Template, domain.FormatZIP)
	body, err := Bundle(r.HTML, r.CSS)
	if err != nil {
		p.finish(ctx, exp, nil, err)
		return nil, err
	}
	a := &Artifact{
		ExportID:    exp.ID,
		Format:      domain.FormatZIP,
		ContentType: "application/zip",
		Filename:    filename("portfolio", r.Profile.Name(), ".zip"),
		Body:        body,
	}
	p.finish(ctx, exp, a, nil)
	return a, nil
}

// PDF renders a self-contained document and hands it to the converter once.
func (p *Processor) PDF(ctx context.Context, req Request) (*Artifact, error) {
	r, err := p.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	exp := p.newExport(req, r.Template, domain.FormatPDF)

	ctx, span := tracer.Start(ctx, "processor.convert")
	defer span.End()

	out, err := p.convert(ctx, PreviewDocument(r.HTML, r.CSS, previewTitle(r.Profile)))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.finish(ctx, exp, nil, err)
		return nil, err
	}
	a := &Artifact{
		ExportID:    exp.ID,
		Format:      domain.FormatPDF,
		ContentType: "application/pdf",
		Filename:    filename("resume", r.Profile.Name(), ".pdf"),
		Body:        out,
		PageCount:   pageCount(out),
	}
	span.SetAttributes(attribute.Int("pdf_bytes", len(out)), attribute.Int("pages", a.PageCount))
	p.finish(ctx, exp, a, nil)
	return a, nil
}

func (p *Processor) convert(ctx context.Context, html string) ([]byte, error) {
	if p.renderer == nil {
		return nil, fmt.Errorf("%w: no converter configured", ErrConversion)
	}
	out, err := p.renderer.RenderHTMLToPDF(ctx, html)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConversion, err)
	}
	if !bytes.HasPrefix(out, []byte("%PDF")) {
		return nil, fmt.Errorf("%w: invalid PDF output (len=%d)", ErrConversion, len(out))
	}
	return out, nil
}

func (p *Processor) newExport(req Request, template string, format domain.Format) *domain.Export {
	now := p.now()
	exp := &domain.Export{
		ID:        uuid.New(),
		Template:  template,
		Format:    format,
		Metadata:  map[string]interface{}{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Profile == nil && req.ProfileID != nil {
		id := *req.ProfileID
		exp.ProfileID = &id
	}
	return exp
}

// finish records the outcome of an export. Persistence is best-effort; a
// failed save is logged and never fails the request.
func (p *Processor) finish(ctx context.Context, exp *domain.Export, a *Artifact, cause error) {
	exp.UpdatedAt = p.now()
	if cause != nil {
		exp.Status = domain.StatusFailed
		exp.Error = cause.Error()
		var coded interface{ ExitStatus() int }
		if errors.As(cause, &coded) {
			exp.Metadata["exit_code"] = coded.ExitStatus()
		}
		p.log.Warn("export failed", "export_id", exp.ID, "template", exp.Template, "format", exp.Format, "error", cause)
	} else {
		exp.Status = domain.StatusCompleted
		exp.SizeBytes = len(a.Body)
		exp.PageCount = a.PageCount
		p.log.Info("export completed", "export_id", exp.ID, "template", exp.Template, "format", exp.Format, "bytes", exp.SizeBytes)
	}
	if p.exports == nil {
		return
	}
	if err := p.exports.Save(ctx, exp); err != nil {
		p.log.Warn("failed to save export", "export_id", exp.ID, "error", err)
	}
}

func previewTitle(prof *model.Profile) string {
	if n := prof.Name(); n != "" {
		return n + " - Portfolio"
	}
	return ""
}
