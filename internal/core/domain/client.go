package domain

import "time"

// ClientStatus represents the lifecycle state of a client account.
type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
)

// IsValid reports whether the status is one of the enumerated values.
func (s ClientStatus) IsValid() bool {
	return s == ClientActive || s == ClientInactive
}

// Client is a customer record managed through the CRM.
type Client struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone,omitempty"`
	Company   string       `json:"company"`
	Position  string       `json:"position,omitempty"`
	Address   string       `json:"address,omitempty"`
	City      string       `json:"city,omitempty"`
	State     string       `json:"state,omitempty"`
	ZipCode   string       `json:"zipCode,omitempty"`
	Country   string       `json:"country,omitempty"`
	Status    ClientStatus `json:"status"`
	Notes     string       `json:"notes,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}
