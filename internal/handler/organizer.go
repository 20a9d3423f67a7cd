package handler

import (
	"context"
	"fmt"
	"strings"

	"go.mau.fi/whatsmeow/types/events"

	"fair-invitations/internal/models"
	"fair-invitations/internal/whatsapp"
)

// OrganizerChannel is the chat channel the organizer can query run status through
type OrganizerChannel interface {
	Notifier
	IsOrganizer(sender string) bool
}

// OrganizerBot answers organizer status queries about the current guest list
type OrganizerBot struct {
	invitations *InvitationHandler
	channel     OrganizerChannel
}

// NewOrganizerBot creates a new organizer bot
func NewOrganizerBot(invitations *InvitationHandler, channel OrganizerChannel) *OrganizerBot {
	return &OrganizerBot{
		invitations: invitations,
		channel:     channel,
	}
}

// HandleMessage processes incoming WhatsApp messages from the organizer
func (b *OrganizerBot) HandleMessage(msg *events.Message) error {
	if msg.Message == nil {
		return nil
	}
	return b.HandleText(context.Background(), whatsapp.SenderPhone(msg.Info.Sender), msg.Message.GetConversation())
}

// HandleText replies to "status" and "stop" commands. Anything else is ignored.
func (b *OrganizerBot) HandleText(ctx context.Context, sender, text string) error {
	if text == "" || !b.channel.IsOrganizer(sender) {
		return nil
	}

	text = strings.ToLower(strings.TrimSpace(text))

	var reply string
	switch {
	case containsAny(text, "status", "postęp", "postep", "stan"):
		reply = b.statusReport()
	case containsAny(text, "stop", "przerwij", "abort"):
		if b.invitations.AbortDispatch() {
			reply = "⏹ Wysyłka zostanie przerwana po bieżącym zaproszeniu."
		} else {
			reply = "Brak aktywnej wysyłki."
		}
	default:
		return nil
	}

	if err := b.channel.Notify(ctx, reply); err != nil {
		return fmt.Errorf("failed to send reply: %w", err)
	}
	return nil
}

func (b *OrganizerBot) statusReport() string {
	counts := make(map[models.SendStatus]int)
	guests := b.invitations.Guests()
	for _, g := range guests {
		counts[g.Status]++
	}

	status := b.invitations.Status()
	state := "bezczynna"
	if status.Running {
		state = fmt.Sprintf("w toku (%d%%)", status.Progress)
	}

	return fmt.Sprintf(
		"📋 Lista gości: %d\n"+
			"Oczekujące: %d\n"+
			"Wysłane: %d\n"+
			"Błędy: %d\n"+
			"Wysyłka: %s",
		len(guests),
		counts[models.StatusPending],
		counts[models.StatusSuccess],
		counts[models.StatusError],
		state,
	)
}

// containsAny checks if the text contains any of the given keywords
func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
