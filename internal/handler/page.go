package handler

import (
	"context"
	"fmt"

	"fair-invitations/internal/invitation"
	"fair-invitations/internal/models"
)

// PageContext holds the catalog data one request needs: the exhibition's templates,
// its special offers and the branding header. It is loaded per request and never shared.
type PageContext struct {
	ExhibitionID   string
	Templates      []models.TemplateRef
	Benefits       []models.Benefit
	HeaderImageURL string
}

// LoadPageContext fetches templates and benefits for an exhibition
func (h *InvitationHandler) LoadPageContext(ctx context.Context, exhibitionID string) (*PageContext, error) {
	if exhibitionID == "" {
		exhibitionID = h.storage.Session().ExhibitionID
	}
	if exhibitionID == "" {
		return nil, ErrNoExhibition
	}

	pc := &PageContext{
		ExhibitionID:   exhibitionID,
		HeaderImageURL: h.config.HeaderImageURL,
	}

	templates, err := h.caps.Templates.ListTemplates(ctx, exhibitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}
	pc.Templates = templates

	if h.caps.Benefits != nil {
		benefits, err := h.caps.Benefits.ListBenefits(ctx, exhibitionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load benefits: %w", err)
		}
		pc.Benefits = benefits
	}

	return pc, nil
}

// Template looks a template up by id
func (pc *PageContext) Template(id string) (models.TemplateRef, bool) {
	for _, t := range pc.Templates {
		if t.ID == id {
			return t, true
		}
	}
	return models.TemplateRef{}, false
}

// RenderOptions returns the renderer options for this page
func (pc *PageContext) RenderOptions() invitation.Options {
	return invitation.Options{
		HeaderImageURL: pc.HeaderImageURL,
		Benefits:       pc.Benefits,
	}
}
