package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"portfolio-generator/internal/adapter/templatestore"
	"portfolio-generator/internal/domain"
	"portfolio-generator/internal/model"
	"portfolio-generator/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var errBadRequest = errors.New("invalid payload")

// ExportLister is implemented by the export log stores.
type ExportLister interface {
	Recent(ctx context.Context, limit int) ([]domain.Export, error)
}

type Handler struct {
	processor *usecase.Processor
	exports   ExportLister
}

func NewHandler(p *usecase.Processor, exports ExportLister) *Handler {
	return &Handler{processor: p, exports: exports}
}

// Register mounts the routes on app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
	api := app.Group("/api")
	api.Get("/templates", h.Templates)
	api.Get("/exports", h.Exports)
	api.Post("/portfolio/preview", h.Preview)
	api.Post("/portfolio/download", h.Download)
	api.Post("/resume/pdf", h.PDF)
}

type renderReq struct {
	Template  string          `json:"template"`
	Profile   json.RawMessage `json:"profile,omitempty"`
	ProfileID string          `json:"profileId,omitempty"`
}

func parseRequest(c *fiber.Ctx) (usecase.Request, error) {
	var req renderReq
	if len(c.Body()) > 0 {
		if err := json.Unmarshal(c.Body(), &req); err != nil {
			return usecase.Request{}, fmt.Errorf("%w: %v", errBadRequest, err)
		}
	}
	out := usecase.Request{Template: req.Template}
	if len(req.Profile) > 0 && string(req.Profile) != "null" {
		p, err := model.DecodeProfile(req.Profile)
		if err != nil {
			return usecase.Request{}, err
		}
		out.Profile = p
	}
	if req.ProfileID != "" {
		id, err := uuid.Parse(req.ProfileID)
		if err != nil {
			return usecase.Request{}, fmt.Errorf("%w: invalid profileId", errBadRequest)
		}
		out.ProfileID = &id
	}
	return out, nil
}

func (h *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) Templates(c *fiber.Ctx) error {
	names, err := h.processor.Templates(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	if names == nil {
		names = []string{}
	}
	return c.JSON(fiber.Map{"templates": names})
}

func (h *Handler) Exports(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		return fail(c, fmt.Errorf("%w: limit must be between 1 and 100", errBadRequest))
	}
	list := []domain.Export{}
	if h.exports != nil {
		got, err := h.exports.Recent(c.UserContext(), limit)
		if err != nil {
			return fail(c, err)
		}
		if got != nil {
			list = got
		}
	}
	return c.JSON(fiber.Map{"exports": list})
}

func (h *Handler) Preview(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return fail(c, err)
	}
	a, err := h.processor.Preview(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, a.ContentType)
	return c.Send(a.Body)
}

func (h *Handler) Download(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return fail(c, err)
	}
	a, err := h.processor.Download(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	return sendAttachment(c, a)
}

func (h *Handler) PDF(c *fiber.Ctx) error {
	req, err := parseRequest(c)
	if err != nil {
		return fail(c, err)
	}
	a, err := h.processor.PDF(c.UserContext(), req)
	if err != nil {
		return fail(c, err)
	}
	if a.PageCount > 0 {
		c.Set("X-Page-Count", strconv.Itoa(a.PageCount))
	}
	return sendAttachment(c, a)
}

func sendAttachment(c *fiber.Ctx, a *usecase.Artifact) error {
	c.Set(fiber.HeaderContentType, a.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, a.Filename))
	c.Set("X-Export-ID", a.ExportID.String())
	return c.Send(a.Body)
}

func statusFor(err error) int {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, errBadRequest), errors.Is(err, templatestore.ErrInvalidName):
		return fiber.StatusBadRequest
	case errors.Is(err, usecase.ErrTemplateNotFound), errors.Is(err, usecase.ErrProfileNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, usecase.ErrConversion):
		return fiber.StatusBadGateway
	}
	return fiber.StatusInternalServerError
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	log := requestLogger(c)
	if status >= fiber.StatusInternalServerError {
		log.Error("request failed", "status", status, "error", err)
	} else {
		log.Debug("request rejected", "status", status, "error", err)
	}

	body := fiber.Map{"error": err.Error()}
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		body["problems"] = verr.Problems
	}
	return c.Status(status).JSON(body)
}
