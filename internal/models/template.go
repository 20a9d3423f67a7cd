package models

// TemplateRef is a reusable invitation template with its merge fields
type TemplateRef struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Greeting        string   `json:"greeting,omitempty"`
	Content         string   `json:"content,omitempty"`
	BoothInfo       string   `json:"booth_info,omitempty"`
	SpecialOfferIDs []string `json:"special_offer_ids,omitempty"`
	CompanyInfo     string   `json:"company_info,omitempty"`
	ContactPerson   string   `json:"contact_person,omitempty"`
	ContactEmail    string   `json:"contact_email,omitempty"`
	ContactPhone    string   `json:"contact_phone,omitempty"`
	VIPValue        string   `json:"vip_value,omitempty"`
}

// Benefit is a special offer an invitation can link to
type Benefit struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}
