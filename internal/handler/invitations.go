package handler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fair-invitations/internal/dispatch"
	"fair-invitations/internal/guestlist"
	"fair-invitations/internal/invitation"
	"fair-invitations/internal/models"
	"fair-invitations/internal/storage"
)

var (
	ErrDispatchInProgress = errors.New("a dispatch run is already in progress")
	ErrGuestListBusy      = errors.New("the guest list is being changed")
	ErrTooManyRecipients  = errors.New("guest list exceeds the recipient limit")
	ErrNoExhibition       = errors.New("exhibition id is required")
	ErrNoTemplate         = errors.New("template id is required")
)

// Sender delivers one rendered invitation
type Sender interface {
	SendInvitation(ctx context.Context, exhibitionID, templateID, recipientName, recipientEmail, htmlOverride string) (models.SendOutcome, error)
}

type TemplateRepository interface {
	ListTemplates(ctx context.Context, exhibitionID string) ([]models.TemplateRef, error)
	GetTemplate(ctx context.Context, id string) (models.TemplateRef, error)
}

type BenefitRepository interface {
	ListBenefits(ctx context.Context, exhibitionID string) ([]models.Benefit, error)
}

type RecipientHistory interface {
	ListSentRecipients(ctx context.Context, exhibitionID string) ([]models.SentRecipient, error)
}

// Capabilities is the set of portal operations a handler is wired to.
// The organizer and exhibitor portals differ only in the capabilities they provide.
type Capabilities struct {
	Sender     Sender
	Templates  TemplateRepository
	Benefits   BenefitRepository
	Recipients RecipientHistory
}

// Notifier delivers a text message to the organizer
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// HistoryRecorder persists attempts and run summaries
type HistoryRecorder interface {
	RecordAttempt(ctx context.Context, runID string, rec models.GuestRecord) error
	RecordRun(ctx context.Context, exhibitionID, templateID string, result models.DispatchResult) error
}

type Config struct {
	HeaderImageURL string
	MaxRecipients  int
}

// SendRequest describes one "send all" invocation
type SendRequest struct {
	ExhibitionID string
	TemplateID   string
	HTMLOverride string
	OnProgress   func(percent int)
	OnRecord     func(rec models.GuestRecord)

	// content is the body resolved once per run by prepare
	content string
}

// RunStatus is a snapshot of the current or last dispatch run
type RunStatus struct {
	Running  bool                   `json:"running"`
	Progress int                    `json:"progress"`
	Result   *models.DispatchResult `json:"result,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

type InvitationHandler struct {
	caps       Capabilities
	storage    *storage.Storage
	dispatcher *dispatch.Dispatcher
	history    HistoryRecorder
	notifier   Notifier
	config     *Config
	log        zerolog.Logger

	mu      sync.Mutex
	status  RunStatus
	cancel  context.CancelFunc
	editing bool
}

// NewInvitationHandler creates a new invitation handler. history and notifier may be nil.
func NewInvitationHandler(caps Capabilities, storage *storage.Storage, history HistoryRecorder, notifier Notifier, cfg *Config, log zerolog.Logger) *InvitationHandler {
	if cfg == nil {
		cfg = &Config{}
	}
	return &InvitationHandler{
		caps:       caps,
		storage:    storage,
		dispatcher: dispatch.NewDispatcher(log),
		history:    history,
		notifier:   notifier,
		config:     cfg,
		log:        log.With().Str("component", "Invitations").Logger(),
	}
}

// LoadGuestList parses raw text and makes it the current guest-list session
func (h *InvitationHandler) LoadGuestList(exhibitionID, source, raw string) (*guestlist.Document, error) {
	if err := h.lockSession(); err != nil {
		return nil, err
	}
	defer h.unlockSession()

	doc, err := guestlist.Parse(raw)
	if err != nil {
		return nil, err
	}
	if h.config.MaxRecipients > 0 && len(doc.Records) > h.config.MaxRecipients {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrTooManyRecipients, len(doc.Records), h.config.MaxRecipients)
	}

	if err := h.storage.ReplaceGuests(exhibitionID, source, doc.Records); err != nil {
		return nil, fmt.Errorf("failed to store guest list: %w", err)
	}

	h.log.Info().
		Str("source", source).
		Str("delimiter", doc.Delimiter.String()).
		Int("valid", doc.Valid).
		Int("invalid", doc.Invalid).
		Msg("Guest list loaded")

	return doc, nil
}

// Guests returns the records of the current session
func (h *InvitationHandler) Guests() []models.GuestRecord {
	return h.storage.GetAllGuests()
}

// ResetFailed makes failed sends eligible again. Rows with an invalid email are kept as they are.
func (h *InvitationHandler) ResetFailed() (int, error) {
	if err := h.lockSession(); err != nil {
		return 0, err
	}
	defer h.unlockSession()

	return h.storage.ResetFailed(guestlist.InvalidEmailMessage)
}

// SentRecipients lists invitations the portal already sent
func (h *InvitationHandler) SentRecipients(ctx context.Context, exhibitionID string) ([]models.SentRecipient, error) {
	if h.caps.Recipients == nil {
		return nil, nil
	}
	return h.caps.Recipients.ListSentRecipients(ctx, exhibitionID)
}

// Preview renders a template for one recipient against the page context
func (h *InvitationHandler) Preview(ctx context.Context, pc *PageContext, templateID, recipientName string) (string, error) {
	tpl, err := h.template(ctx, pc, templateID)
	if err != nil {
		return "", err
	}
	return invitation.Render(tpl, recipientName, pc.RenderOptions()), nil
}

// template looks id up in the page context and falls back to the repository
func (h *InvitationHandler) template(ctx context.Context, pc *PageContext, id string) (models.TemplateRef, error) {
	if tpl, ok := pc.Template(id); ok {
		return tpl, nil
	}
	return h.caps.Templates.GetTemplate(ctx, id)
}

// SendAll dispatches invitations to every pending guest and waits for the run to finish
func (h *InvitationHandler) SendAll(ctx context.Context, req SendRequest) (models.DispatchResult, error) {
	if err := h.beginRun(); err != nil {
		return models.DispatchResult{}, err
	}

	if err := h.prepare(ctx, &req); err != nil {
		h.endRun(models.DispatchResult{}, err)
		return models.DispatchResult{}, err
	}

	result := h.sendAll(ctx, req)
	h.endRun(result, nil)
	return result, nil
}

// StartDispatch validates req and runs the batch in the background.
// AbortDispatch stops it between records.
func (h *InvitationHandler) StartDispatch(ctx context.Context, req SendRequest) error {
	if err := h.beginRun(); err != nil {
		return err
	}
	if err := h.prepare(ctx, &req); err != nil {
		h.endRun(models.DispatchResult{}, err)
		return err
	}

	runCtx, cancel := context.WithCancel(context.Background())
	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()

	go func() {
		defer cancel()
		h.endRun(h.sendAll(runCtx, req), nil)
	}()
	return nil
}

// AbortDispatch signals the running background dispatch to stop
func (h *InvitationHandler) AbortDispatch() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.status.Running || h.cancel == nil {
		return false
	}
	h.cancel()
	return true
}

// Status returns the current or last run status
func (h *InvitationHandler) Status() RunStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.status
}

// Running reports whether a dispatch run is active
func (h *InvitationHandler) Running() bool {
	return h.Status().Running
}

// prepare fills the exhibition from the session and resolves the run's content.
// The body is rendered once, without a recipient name; the portal receives each
// recipient's name alongside it.
func (h *InvitationHandler) prepare(ctx context.Context, req *SendRequest) error {
	if req.ExhibitionID == "" {
		req.ExhibitionID = h.storage.Session().ExhibitionID
	}
	if req.ExhibitionID == "" {
		return ErrNoExhibition
	}
	if req.TemplateID == "" {
		return ErrNoTemplate
	}

	pc, err := h.LoadPageContext(ctx, req.ExhibitionID)
	if err != nil {
		return err
	}
	tpl, err := h.template(ctx, pc, req.TemplateID)
	if err != nil {
		return err
	}

	req.content = invitation.Content(req.HTMLOverride, tpl, "", pc.RenderOptions())
	return nil
}

func (h *InvitationHandler) sendAll(ctx context.Context, req SendRequest) models.DispatchResult {
	records := h.storage.GetAllGuests()
	runID := uuid.NewString()

	send := func(ctx context.Context, rec models.GuestRecord) (models.SendOutcome, error) {
		return h.caps.Sender.SendInvitation(ctx, req.ExhibitionID, req.TemplateID, rec.FullName, rec.Email, req.content)
	}

	opts := dispatch.Options{
		RunID: runID,
		OnRecord: func(_ int, rec models.GuestRecord) {
			if err := h.storage.UpdateStatus(rec.Row, rec.Status, rec.Error); err != nil {
				h.log.Error().Err(err).Int("row", rec.Row).Msg("Failed to persist guest status")
			}
			if req.OnRecord != nil {
				req.OnRecord(rec)
			}
			if h.history != nil && (rec.Status == models.StatusSuccess || rec.Status == models.StatusError) {
				if err := h.history.RecordAttempt(context.WithoutCancel(ctx), runID, rec); err != nil {
					h.log.Error().Err(err).Int("row", rec.Row).Msg("Failed to record send attempt")
				}
			}
		},
		OnProgress: func(p int) {
			h.mu.Lock()
			h.status.Progress = p
			h.mu.Unlock()
			if req.OnProgress != nil {
				req.OnProgress(p)
			}
		},
	}

	result := h.dispatcher.DispatchAll(ctx, records, send, opts)

	if result.Total == 0 && !result.Aborted {
		return result
	}

	if h.history != nil {
		if err := h.history.RecordRun(context.WithoutCancel(ctx), req.ExhibitionID, req.TemplateID, result); err != nil {
			h.log.Error().Err(err).Msg("Failed to record dispatch run")
		}
	}

	if h.notifier != nil {
		if err := h.notifier.Notify(context.WithoutCancel(ctx), SummaryMessage(result)); err != nil {
			h.log.Warn().Err(err).Msg("Failed to notify organizer")
		}
	}

	return result
}

func (h *InvitationHandler) beginRun() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.status.Running {
		return ErrDispatchInProgress
	}
	if h.editing {
		return ErrGuestListBusy
	}
	h.status = RunStatus{Running: true}
	return nil
}

// lockSession reserves the guest list for a change. No run can start until unlockSession.
func (h *InvitationHandler) lockSession() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.status.Running {
		return ErrDispatchInProgress
	}
	if h.editing {
		return ErrGuestListBusy
	}
	h.editing = true
	return nil
}

func (h *InvitationHandler) unlockSession() {
	h.mu.Lock()
	h.editing = false
	h.mu.Unlock()
}

func (h *InvitationHandler) endRun(result models.DispatchResult, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.status.Running = false
	h.cancel = nil
	if err != nil {
		h.status.Error = err.Error()
		return
	}
	h.status.Result = &result
	if result.Total > 0 && !result.Aborted {
		h.status.Progress = 100
	}
}

// SummaryMessage formats a run result for the organizer
func SummaryMessage(result models.DispatchResult) string {
	title := "📨 Wysyłka zaproszeń zakończona"
	if result.Aborted {
		title = "⏹ Wysyłka zaproszeń przerwana"
	}
	return fmt.Sprintf("%s\n\nWysłano: %d/%d\nBłędy: %d", title, result.Success, result.Total, result.Failed)
}
