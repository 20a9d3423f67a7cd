// Package invitation assembles the HTML body of an invitation from a template's merge fields.
package invitation

import (
	"fmt"
	"html"
	"strings"

	"fair-invitations/internal/models"
)

// Options carries the per-exhibition context a template is rendered against
type Options struct {
	HeaderImageURL string
	Benefits       []models.Benefit
}

// Greeting builds the salutation line for a recipient
func Greeting(greeting, recipientName string) string {
	greeting = strings.TrimSpace(greeting)
	recipientName = strings.TrimSpace(recipientName)

	switch {
	case greeting != "" && recipientName != "":
		return greeting + " " + recipientName + ","
	case greeting != "":
		return greeting + ","
	case recipientName != "":
		return recipientName + ","
	}
	return ""
}

// Render produces the invitation body for one recipient.
// Blocks without content are left out entirely.
func Render(tpl models.TemplateRef, recipientName string, opts Options) string {
	var blocks []string

	if u := strings.TrimSpace(opts.HeaderImageURL); u != "" {
		blocks = append(blocks, fmt.Sprintf(`<div style="text-align: center; margin-bottom: 24px;"><img src="%s" alt="" style="max-width: 100%%; height: auto;"></div>`, html.EscapeString(u)))
	}

	if g := Greeting(tpl.Greeting, recipientName); g != "" {
		blocks = append(blocks, fmt.Sprintf(`<p>%s</p>`, html.EscapeString(g)))
	}

	if c := strings.TrimSpace(tpl.Content); c != "" {
		blocks = append(blocks, fmt.Sprintf(`<p>%s</p>`, withLineBreaks(c)))
	}

	if b := strings.TrimSpace(tpl.BoothInfo); b != "" {
		blocks = append(blocks, fmt.Sprintf(`<p><strong>%s</strong></p>`, withLineBreaks(b)))
	}

	if offers := specialOffers(tpl.SpecialOfferIDs, opts.Benefits); offers != "" {
		blocks = append(blocks, offers)
	}

	if c := strings.TrimSpace(tpl.CompanyInfo); c != "" {
		blocks = append(blocks, fmt.Sprintf(`<p>%s</p>`, withLineBreaks(c)))
	}

	if c := contact(tpl); c != "" {
		blocks = append(blocks, c)
	}

	return strings.Join(blocks, "\n")
}

// Content returns override verbatim when set, otherwise the rendered template
func Content(override string, tpl models.TemplateRef, recipientName string, opts Options) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return Render(tpl, recipientName, opts)
}

func specialOffers(ids []string, benefits []models.Benefit) string {
	if len(ids) == 0 || len(benefits) == 0 {
		return ""
	}

	byID := make(map[string]models.Benefit, len(benefits))
	for _, b := range benefits {
		byID[b.ID] = b
	}

	var items []string
	for _, id := range ids {
		b, ok := byID[id]
		if !ok {
			continue
		}
		item := "<li><strong>" + html.EscapeString(b.Title) + "</strong>"
		if d := strings.TrimSpace(b.Description); d != "" {
			item += "<br>" + withLineBreaks(d)
		}
		items = append(items, item+"</li>")
	}
	if len(items) == 0 {
		return ""
	}

	return `<div><p><strong>Oferta specjalna</strong></p><ul>` + strings.Join(items, "") + `</ul></div>`
}

func contact(tpl models.TemplateRef) string {
	var parts []string
	for _, p := range []string{tpl.ContactPerson, tpl.ContactEmail, tpl.ContactPhone} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, html.EscapeString(p))
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return `<p style="color: #777;">` + strings.Join(parts, " | ") + `</p>`
}

// withLineBreaks escapes text and turns newlines into <br> markup
func withLineBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(html.EscapeString(s), "\n", "<br>")
}
