package handler

import (
	"context"
	"strings"
	"testing"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"fair-invitations/internal/models"
)

func TestOrganizerStatus(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{organizer: "48600100200"}
	h := newTestHandler(t, &fakePortal{templates: []models.TemplateRef{{ID: "tpl-1"}}}, nil, nil, nil)
	bot := NewOrganizerBot(h, ch)

	if _, err := h.LoadGuestList("expo-1", "lista.csv", guestList); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if err := bot.HandleText(context.Background(), "48600100200", "Status?"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	reply := ch.last()
	for _, want := range []string{"Lista gości: 4", "Oczekujące: 3", "Błędy: 1", "bezczynna"} {
		if !strings.Contains(reply, want) {
			t.Errorf("expected reply to contain %q, got %q", want, reply)
		}
	}
}

func TestOrganizerIgnoresOthers(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{organizer: "48600100200"}
	bot := NewOrganizerBot(newTestHandler(t, &fakePortal{}, nil, nil, nil), ch)

	cases := []struct {
		sender string
		text   string
	}{
		{"48111222333", "status"},
		{"48600100200", "dzień dobry"},
		{"48600100200", ""},
	}
	for _, c := range cases {
		if err := bot.HandleText(context.Background(), c.sender, c.text); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	if len(ch.messages) != 0 {
		t.Fatalf("expected no replies, got %v", ch.messages)
	}
}

func TestOrganizerStopWithoutRun(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{organizer: "48600100200"}
	bot := NewOrganizerBot(newTestHandler(t, &fakePortal{}, nil, nil, nil), ch)

	if err := bot.HandleText(context.Background(), "48600100200", "STOP"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if ch.last() != "Brak aktywnej wysyłki." {
		t.Fatalf("unexpected reply: %q", ch.last())
	}
}

func TestContainsAny(t *testing.T) {
	t.Parallel()

	if !containsAny("jaki jest postęp?", "status", "postęp") {
		t.Error("expected match")
	}
	if containsAny("hello", "status", "stop") {
		t.Error("expected no match")
	}
}

func TestOrganizerHandleMessage(t *testing.T) {
	t.Parallel()

	ch := &fakeChannel{organizer: "48600100200"}
	bot := NewOrganizerBot(newTestHandler(t, &fakePortal{}, nil, nil, nil), ch)

	text := "status"
	msg := &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Sender: types.NewJID("48600100200", types.DefaultUserServer),
			},
		},
		Message: &waE2E.Message{Conversation: &text},
	}
	if err := bot.HandleMessage(msg); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(ch.last(), "Lista gości: 0") {
		t.Fatalf("unexpected reply: %q", ch.last())
	}

	if err := bot.HandleMessage(&events.Message{}); err != nil {
		t.Fatalf("expected empty message to be ignored, got %v", err)
	}
}
