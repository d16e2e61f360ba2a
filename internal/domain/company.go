package domain

import "time"

// Company is a tenant account. All chat data is scoped by company id.
type Company struct {
	ID                  int64
	Name                string
	WhatsAppPhoneNumber *string
	ProviderAPIKey      *string
	CreatedAt           time.Time
}

// HasProviderConfig reports whether the company can talk to the messaging
// provider.
func (c *Company) HasProviderConfig() bool {
	return c != nil &&
		c.ProviderAPIKey != nil && *c.ProviderAPIKey != "" &&
		c.WhatsAppPhoneNumber != nil && *c.WhatsAppPhoneNumber != ""
}
