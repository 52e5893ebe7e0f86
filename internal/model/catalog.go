package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Service struct {
	Base
	TenantID    uuid.UUID       `json:"tenantId"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Duration    int             `json:"duration"`
	Price       decimal.Decimal `json:"price"`
	IsActive    bool            `json:"isActive"`
}

// Length is the booked duration of the service.
func (s *Service) Length() time.Duration {
	return time.Duration(s.Duration) * time.Minute
}

// Professional is a staff member. Name and Email come from the linked user.
type Professional struct {
	Base
	TenantID    uuid.UUID `json:"tenantId"`
	UserID      uuid.UUID `json:"userId"`
	Specialty   string    `json:"specialty"`
	IsAvailable bool      `json:"isAvailable"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
}
