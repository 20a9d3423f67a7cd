package invitation_test

import (
	"strings"
	"testing"

	"fair-invitations/internal/invitation"
	"fair-invitations/internal/models"
)

func TestGreeting(t *testing.T) {
	t.Parallel()

	tests := []struct {
		greeting, name, want string
	}{
		{"Szanowny Panie", "Jan Kowalski", "Szanowny Panie Jan Kowalski,"},
		{"Dzień dobry", "", "Dzień dobry,"},
		{"", "Anna", "Anna,"},
		{"", "", ""},
		{"  ", "  ", ""},
	}

	for _, tt := range tests {
		if got := invitation.Greeting(tt.greeting, tt.name); got != tt.want {
			t.Fatalf("Greeting(%q, %q) = %q, want %q", tt.greeting, tt.name, got, tt.want)
		}
	}
}

func TestRenderBlockOrder(t *testing.T) {
	t.Parallel()

	tpl := models.TemplateRef{
		Greeting:        "Szanowni Państwo",
		Content:         "Zapraszamy na targi.\nDo zobaczenia!",
		BoothInfo:       "Hala A, stoisko 12",
		SpecialOfferIDs: []string{"b2", "missing", "b1"},
		CompanyInfo:     "Expo Sp. z o.o.",
		ContactPerson:   "Ewa",
		ContactEmail:    "ewa@expo.pl",
	}
	opts := invitation.Options{
		HeaderImageURL: "https://cdn.example.com/header.png",
		Benefits: []models.Benefit{
			{ID: "b1", Title: "Darmowa kawa"},
			{ID: "b2", Title: "Rabat 10%", Description: "Na wszystkie produkty"},
		},
	}

	out := invitation.Render(tpl, "Jan", opts)

	order := []string{
		"https://cdn.example.com/header.png",
		"Szanowni Państwo Jan,",
		"Zapraszamy na targi.<br>Do zobaczenia!",
		"Hala A, stoisko 12",
		"Rabat 10%",
		"Darmowa kawa",
		"Expo Sp. z o.o.",
		"Ewa | ewa@expo.pl",
	}
	last := -1
	for _, part := range order {
		idx := strings.Index(out, part)
		if idx < 0 {
			t.Fatalf("expected %q in output:\n%s", part, out)
		}
		if idx <= last {
			t.Fatalf("expected %q after previous block:\n%s", part, out)
		}
		last = idx
	}
	if !strings.Contains(out, "<br>Na wszystkie produkty") {
		t.Fatalf("expected offer description in output:\n%s", out)
	}
}

func TestRenderOmitsEmptyBlocks(t *testing.T) {
	t.Parallel()

	tpl := models.TemplateRef{
		Content:         "Treść",
		SpecialOfferIDs: []string{"unknown"},
	}

	out := invitation.Render(tpl, "", invitation.Options{Benefits: []models.Benefit{{ID: "b1", Title: "x"}}})

	if out != "<p>Treść</p>" {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestRenderEscapesText(t *testing.T) {
	t.Parallel()

	out := invitation.Render(models.TemplateRef{Content: "<script>alert(1)</script>"}, "<b>", invitation.Options{})

	if strings.Contains(out, "<script>") || strings.Contains(out, "<b>,") {
		t.Fatalf("expected text to be escaped: %s", out)
	}
}

func TestContentOverride(t *testing.T) {
	t.Parallel()

	tpl := models.TemplateRef{Content: "Treść"}

	if got := invitation.Content("<p>edited</p>", tpl, "Jan", invitation.Options{}); got != "<p>edited</p>" {
		t.Fatalf("expected override verbatim, got %q", got)
	}
	if got := invitation.Content("  ", tpl, "Jan", invitation.Options{}); !strings.Contains(got, "Jan,") {
		t.Fatalf("expected rendered content, got %q", got)
	}
}
