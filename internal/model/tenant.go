package model

import (
	"time"

	"github.com/google/uuid"
)

type Tenant struct {
	Base
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Timezone string `json:"timezone"`
	IsActive bool   `json:"isActive"`
}

// Location resolves the tenant timezone. An empty or unknown zone falls back.
func (t *Tenant) Location(fallback *time.Location) *time.Location {
	if t.Timezone == "" {
		return fallback
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return fallback
	}
	return loc
}

// TenantProfile is what the public widget sees.
type TenantProfile struct {
	ID            uuid.UUID      `json:"id"`
	Name          string         `json:"name"`
	Slug          string         `json:"slug"`
	Email         string         `json:"email"`
	Phone         string         `json:"phone"`
	Timezone      string         `json:"timezone"`
	Services      []Service      `json:"services"`
	Professionals []Professional `json:"professionals"`
}
