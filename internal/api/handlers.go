package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"fair-invitations/internal/guestlist"
	"fair-invitations/internal/handler"
	"fair-invitations/internal/history"
	"fair-invitations/internal/models"
	"fair-invitations/internal/source"
)

// InvitationService is the part of handler.InvitationHandler the API exposes
type InvitationService interface {
	LoadGuestList(exhibitionID, source, raw string) (*guestlist.Document, error)
	Guests() []models.GuestRecord
	ResetFailed() (int, error)
	LoadPageContext(ctx context.Context, exhibitionID string) (*handler.PageContext, error)
	Preview(ctx context.Context, pc *handler.PageContext, templateID, recipientName string) (string, error)
	StartDispatch(ctx context.Context, req handler.SendRequest) error
	AbortDispatch() bool
	Status() handler.RunStatus
	SentRecipients(ctx context.Context, exhibitionID string) ([]models.SentRecipient, error)
}

// HistoryReader lists past dispatch runs
type HistoryReader interface {
	ListRuns(ctx context.Context, exhibitionID string, limit int) ([]history.Run, error)
	ListAttempts(ctx context.Context, runID string) ([]history.Attempt, error)
}

type Handler struct {
	svc     InvitationService
	history HistoryReader
	opener  source.Opener
	log     zerolog.Logger
}

// NewHandler creates the API handler. history and opener may be nil.
func NewHandler(svc InvitationService, hist HistoryReader, opener source.Opener, log zerolog.Logger) *Handler {
	return &Handler{
		svc:     svc,
		history: hist,
		opener:  opener,
		log:     log.With().Str("component", "API").Logger(),
	}
}

type loadGuestListRequest struct {
	ExhibitionID string `json:"exhibition_id"`
	Location     string `json:"location"`
}

type guestListResponse struct {
	Delimiter string               `json:"delimiter,omitempty"`
	Valid     int                  `json:"valid"`
	Invalid   int                  `json:"invalid"`
	Guests    []models.GuestRecord `json:"guests"`
}

// LoadGuestList accepts either a raw delimited body or a JSON {location} pointing
// at a relative local file or s3:// object.
func (h *Handler) LoadGuestList(c echo.Context) error {
	ctx := c.Request().Context()
	exhibitionID := c.QueryParam("exhibition_id")
	name := c.QueryParam("filename")
	var raw string

	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		var req loadGuestListRequest
		if err := c.Bind(&req); err != nil || req.Location == "" {
			return fail(c, http.StatusBadRequest, "bad_request", "location is required")
		}
		if h.opener == nil {
			return fail(c, http.StatusBadRequest, "bad_request", "loading by location is not enabled")
		}
		if err := source.ValidateLocation(req.Location); err != nil {
			h.log.Warn().Err(err).Msg("Rejected guest list location")
			return fail(c, http.StatusBadRequest, "invalid_source", "location must be an s3:// object or a relative path")
		}
		text, err := source.ReadText(ctx, h.opener, req.Location)
		if err != nil {
			h.log.Warn().Err(err).Str("location", req.Location).Msg("Failed to read guest list")
			return fail(c, http.StatusBadRequest, "invalid_source", "guest list could not be read")
		}
		raw = text
		name = req.Location
		if req.ExhibitionID != "" {
			exhibitionID = req.ExhibitionID
		}
	} else {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			return fail(c, http.StatusBadRequest, "bad_request", "invalid request body")
		}
		raw = string(body)
	}

	doc, err := h.svc.LoadGuestList(exhibitionID, name, raw)
	if err != nil {
		return h.failErr(c, err)
	}

	return ok(c, http.StatusCreated, guestListResponse{
		Delimiter: doc.Delimiter.String(),
		Valid:     doc.Valid,
		Invalid:   doc.Invalid,
		Guests:    doc.Records,
	})
}

func (h *Handler) ListGuests(c echo.Context) error {
	guests := h.svc.Guests()

	resp := guestListResponse{Guests: guests}
	for _, g := range guests {
		if g.Status == models.StatusError && g.Error == guestlist.InvalidEmailMessage {
			resp.Invalid++
		} else {
			resp.Valid++
		}
	}
	return ok(c, http.StatusOK, resp)
}

// DownloadTemplate serves an empty guest list with the expected header row
func (h *Handler) DownloadTemplate(c echo.Context) error {
	d := guestlist.Comma
	if c.QueryParam("delimiter") == "semicolon" {
		d = guestlist.Semicolon
	}

	var buf bytes.Buffer
	if err := guestlist.WriteTemplate(&buf, d); err != nil {
		return h.failErr(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", guestlist.TemplateFileName))
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *Handler) ResetFailed(c echo.Context) error {
	n, err := h.svc.ResetFailed()
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, http.StatusOK, map[string]int{"reset": n})
}

func (h *Handler) ListTemplates(c echo.Context) error {
	pc, err := h.svc.LoadPageContext(c.Request().Context(), c.QueryParam("exhibition_id"))
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, http.StatusOK, pc.Templates)
}

// Preview renders a template for one recipient name
func (h *Handler) Preview(c echo.Context) error {
	ctx := c.Request().Context()
	templateID := c.QueryParam("template_id")
	if templateID == "" {
		return fail(c, http.StatusBadRequest, "bad_request", "template_id is required")
	}

	pc, err := h.svc.LoadPageContext(ctx, c.QueryParam("exhibition_id"))
	if err != nil {
		return h.failErr(c, err)
	}

	html, err := h.svc.Preview(ctx, pc, templateID, c.QueryParam("name"))
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, http.StatusOK, map[string]string{"html": html})
}

type dispatchRequest struct {
	ExhibitionID string `json:"exhibition_id"`
	TemplateID   string `json:"template_id"`
	HTMLOverride string `json:"html_override"`
}

// StartDispatch begins a background run over the pending guests
func (h *Handler) StartDispatch(c echo.Context) error {
	var req dispatchRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "bad_request", "invalid request body")
	}

	err := h.svc.StartDispatch(c.Request().Context(), handler.SendRequest{
		ExhibitionID: req.ExhibitionID,
		TemplateID:   req.TemplateID,
		HTMLOverride: req.HTMLOverride,
	})
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, http.StatusAccepted, h.svc.Status())
}

func (h *Handler) DispatchStatus(c echo.Context) error {
	return ok(c, http.StatusOK, h.svc.Status())
}

func (h *Handler) AbortDispatch(c echo.Context) error {
	if !h.svc.AbortDispatch() {
		return fail(c, http.StatusConflict, "no_active_dispatch", "no dispatch run is active")
	}
	return ok(c, http.StatusAccepted, h.svc.Status())
}

func (h *Handler) ListRecipients(c echo.Context) error {
	recipients, err := h.svc.SentRecipients(c.Request().Context(), c.QueryParam("exhibition_id"))
	if err != nil {
		return h.failErr(c, err)
	}
	if recipients == nil {
		recipients = []models.SentRecipient{}
	}
	return ok(c, http.StatusOK, recipients)
}

func (h *Handler) ListRuns(c echo.Context) error {
	if h.history == nil {
		return ok(c, http.StatusOK, []history.Run{})
	}

	exhibitionID := c.QueryParam("exhibition_id")
	if exhibitionID == "" {
		return fail(c, http.StatusBadRequest, "bad_request", "exhibition_id is required")
	}

	limit := 20
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fail(c, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
		}
		limit = n
	}

	runs, err := h.history.ListRuns(c.Request().Context(), exhibitionID, limit)
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, http.StatusOK, runs)
}

func (h *Handler) ListAttempts(c echo.Context) error {
	if h.history == nil {
		return ok(c, http.StatusOK, []history.Attempt{})
	}

	attempts, err := h.history.ListAttempts(c.Request().Context(), c.Param("run_id"))
	if err != nil {
		return h.failErr(c, err)
	}
	return ok(c, http.StatusOK, attempts)
}
