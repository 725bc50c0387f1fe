package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Customer belongs to exactly one tenant and owns zero or more accounts.
type Customer struct {
	ID          uuid.UUID `json:"id"`
	TenantID    string    `json:"tenant_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewCustomer(tenantID, firstName, lastName, email, phoneNumber string) (*Customer, error) {
	if strings.TrimSpace(tenantID) == "" {
		return nil, fmt.Errorf("new customer: tenant id cannot be empty")
	}
	if strings.TrimSpace(firstName) == "" {
		return nil, fmt.Errorf("new customer: first name cannot be empty")
	}
	if strings.TrimSpace(lastName) == "" {
		return nil, fmt.Errorf("new customer: last name cannot be empty")
	}
	if strings.TrimSpace(email) == "" {
		return nil, fmt.Errorf("new customer: email cannot be empty")
	}
	return &Customer{
		TenantID:    tenantID,
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		PhoneNumber: phoneNumber,
	}, nil
}
