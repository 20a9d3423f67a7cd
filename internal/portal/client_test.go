package portal_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"fair-invitations/internal/portal"
)

func newClient(t *testing.T, role portal.Role, h http.HandlerFunc) *portal.Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := portal.NewClient(portal.Config{BaseURL: srv.URL, Token: "secret", Role: role}, zerolog.Nop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return c
}

func TestSendInvitationSuccess(t *testing.T) {
	t.Parallel()

	var got map[string]string
	c := newClient(t, portal.RoleOrganizer, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/exhibitions/expo-1/invitations/send" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing bearer token")
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"success":true}`))
	})

	outcome, err := c.SendInvitation(context.Background(), "expo-1", "tpl-1", "Jan", "jan@example.com", "<p>x</p>")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !outcome.Success {
		t.Fatalf("expected success, got %+v", outcome)
	}
	if got["template_id"] != "tpl-1" || got["recipient_email"] != "jan@example.com" || got["html_override"] != "<p>x</p>" {
		t.Fatalf("unexpected request body: %v", got)
	}
}

func TestSendInvitationRejectedIsOutcome(t *testing.T) {
	t.Parallel()

	c := newClient(t, portal.RoleExhibitor, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/exhibitor/exhibitions/expo-1/invitations/send" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"success":true,"message":"Limit zaproszeń wyczerpany"}`))
	})

	outcome, err := c.SendInvitation(context.Background(), "expo-1", "tpl-1", "Jan", "jan@example.com", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if outcome.Success || outcome.Message != "Limit zaproszeń wyczerpany" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestSendInvitationNonJSONFailure(t *testing.T) {
	t.Parallel()

	c := newClient(t, portal.RoleOrganizer, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	outcome, err := c.SendInvitation(context.Background(), "expo-1", "tpl-1", "", "a@b.pl", "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if outcome.Success || outcome.Message != "HTTP 502" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
}

func TestSendInvitationUnauthorized(t *testing.T) {
	t.Parallel()

	c := newClient(t, portal.RoleOrganizer, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	if _, err := c.SendInvitation(context.Background(), "expo-1", "tpl-1", "", "a@b.pl", ""); !errors.Is(err, portal.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestCatalogEndpoints(t *testing.T) {
	t.Parallel()

	c := newClient(t, portal.RoleOrganizer, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/exhibitions/expo-1/invitation-templates":
			w.Write([]byte(`[{"id":"tpl-1","title":"VIP","special_offer_ids":["b1"]}]`))
		case "/api/invitation-templates/tpl-1":
			w.Write([]byte(`{"id":"tpl-1","title":"VIP","greeting":"Witamy"}`))
		case "/api/exhibitions/expo-1/benefits":
			w.Write([]byte(`[{"id":"b1","title":"Kawa"}]`))
		case "/api/exhibitions/expo-1/invitations/recipients":
			w.Write([]byte(`[{"id":"r1","recipient_name":"Jan","recipient_email":"jan@example.com"}]`))
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	templates, err := c.ListTemplates(ctx, "expo-1")
	if err != nil || len(templates) != 1 || templates[0].SpecialOfferIDs[0] != "b1" {
		t.Fatalf("unexpected templates: %+v, %v", templates, err)
	}

	tpl, err := c.GetTemplate(ctx, "tpl-1")
	if err != nil || tpl.Greeting != "Witamy" {
		t.Fatalf("unexpected template: %+v, %v", tpl, err)
	}

	benefits, err := c.ListBenefits(ctx, "expo-1")
	if err != nil || len(benefits) != 1 || benefits[0].Title != "Kawa" {
		t.Fatalf("unexpected benefits: %+v, %v", benefits, err)
	}

	recipients, err := c.ListSentRecipients(ctx, "expo-1")
	if err != nil || len(recipients) != 1 || recipients[0].Email != "jan@example.com" {
		t.Fatalf("unexpected recipients: %+v, %v", recipients, err)
	}

	if _, err := c.GetTemplate(ctx, "missing"); !errors.Is(err, portal.ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestNewClientValidation(t *testing.T) {
	t.Parallel()

	if _, err := portal.NewClient(portal.Config{BaseURL: "not a url"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for invalid url")
	}
	if _, err := portal.NewClient(portal.Config{BaseURL: "https://portal.example.com", Role: "admin"}, zerolog.Nop()); err == nil {
		t.Fatal("expected error for unknown role")
	}

	c, err := portal.NewClient(portal.Config{BaseURL: "https://portal.example.com"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Role() != portal.RoleOrganizer {
		t.Fatalf("expected organizer default, got %s", c.Role())
	}
}
