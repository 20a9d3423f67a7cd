// Package portal talks to the trade-fair portal API on behalf of an organizer or an exhibitor.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"fair-invitations/internal/models"
)

// Role selects which portal's endpoints the client uses
type Role string

const (
	RoleOrganizer Role = "organizer"
	RoleExhibitor Role = "exhibitor"
)

var (
	ErrTemplateNotFound = errors.New("invitation template not found")
	ErrUnauthorized     = errors.New("portal rejected credentials")
)

type Config struct {
	BaseURL string
	Token   string
	Role    Role
	Timeout time.Duration
}

type Client struct {
	http   *http.Client
	cfg    Config
	prefix string
	log    zerolog.Logger
}

// NewClient creates a new portal API client
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid portal base url %q: %w", cfg.BaseURL, err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	prefix := "/api"
	switch cfg.Role {
	case RoleOrganizer, "":
		cfg.Role = RoleOrganizer
	case RoleExhibitor:
		prefix = "/api/exhibitor"
	default:
		return nil, fmt.Errorf("unknown portal role %q", cfg.Role)
	}

	return &Client{
		http:   &http.Client{Timeout: cfg.Timeout},
		cfg:    cfg,
		prefix: strings.TrimRight(cfg.BaseURL, "/") + prefix,
		log:    log.With().Str("component", "Portal").Str("role", string(cfg.Role)).Logger(),
	}, nil
}

// Role reports which portal the client is bound to
func (c *Client) Role() Role {
	return c.cfg.Role
}

type sendRequest struct {
	TemplateID     string `json:"template_id"`
	RecipientName  string `json:"recipient_name"`
	RecipientEmail string `json:"recipient_email"`
	HTMLOverride   string `json:"html_override,omitempty"`
}

// SendInvitation asks the portal to send one invitation.
// A JSON reply is an outcome even on non-2xx status; only transport failures are errors.
func (c *Client) SendInvitation(ctx context.Context, exhibitionID, templateID, recipientName, recipientEmail, htmlOverride string) (models.SendOutcome, error) {
	body, err := json.Marshal(sendRequest{
		TemplateID:     templateID,
		RecipientName:  recipientName,
		RecipientEmail: recipientEmail,
		HTMLOverride:   htmlOverride,
	})
	if err != nil {
		return models.SendOutcome{}, fmt.Errorf("failed to marshal send request: %w", err)
	}

	path := fmt.Sprintf("/exhibitions/%s/invitations/send", url.PathEscape(exhibitionID))
	resp, err := c.do(ctx, http.MethodPost, path, body)
	if err != nil {
		return models.SendOutcome{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return models.SendOutcome{}, ErrUnauthorized
	}

	var outcome models.SendOutcome
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		if resp.StatusCode >= 300 {
			return models.SendOutcome{Success: false, Message: fmt.Sprintf("HTTP %d", resp.StatusCode)}, nil
		}
		return models.SendOutcome{}, fmt.Errorf("failed to decode send response: %w", err)
	}
	if resp.StatusCode >= 300 {
		outcome.Success = false
	}

	c.log.Debug().Str("email", recipientEmail).Bool("success", outcome.Success).Msg("Invitation send reply")
	return outcome, nil
}

// ListTemplates returns the invitation templates available for an exhibition
func (c *Client) ListTemplates(ctx context.Context, exhibitionID string) ([]models.TemplateRef, error) {
	var out []models.TemplateRef
	path := fmt.Sprintf("/exhibitions/%s/invitation-templates", url.PathEscape(exhibitionID))
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return out, nil
}

// GetTemplate fetches one invitation template
func (c *Client) GetTemplate(ctx context.Context, id string) (models.TemplateRef, error) {
	var out models.TemplateRef
	path := fmt.Sprintf("/invitation-templates/%s", url.PathEscape(id))
	if err := c.getJSON(ctx, path, &out); err != nil {
		return models.TemplateRef{}, fmt.Errorf("failed to get template %s: %w", id, err)
	}
	return out, nil
}

// ListBenefits returns the special offers of an exhibition
func (c *Client) ListBenefits(ctx context.Context, exhibitionID string) ([]models.Benefit, error) {
	var out []models.Benefit
	path := fmt.Sprintf("/exhibitions/%s/benefits", url.PathEscape(exhibitionID))
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("failed to list benefits: %w", err)
	}
	return out, nil
}

// ListSentRecipients returns invitations the portal has already sent for an exhibition
func (c *Client) ListSentRecipients(ctx context.Context, exhibitionID string) ([]models.SentRecipient, error) {
	var out []models.SentRecipient
	path := fmt.Sprintf("/exhibitions/%s/invitations/recipients", url.PathEscape(exhibitionID))
	if err := c.getJSON(ctx, path, &out); err != nil {
		return nil, fmt.Errorf("failed to list sent recipients: %w", err)
	}
	return out, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/invitation-templates/"):
		return ErrTemplateNotFound
	case resp.StatusCode >= 300:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.prefix+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	return resp, nil
}
