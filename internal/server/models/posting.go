// Package models defines server-side data models persisted by the stores.
package models

import "time"

// Tier is a posting's paid ranking class.
type Tier string

const (
	TierBasic    Tier = "basic"
	TierBronze   Tier = "bronze"
	TierSilver   Tier = "silver"
	TierGold     Tier = "gold"
	TierPlatinum Tier = "platinum"
)

var tierRanks = map[Tier]int{
	TierBasic:    0,
	TierBronze:   1,
	TierSilver:   2,
	TierGold:     3,
	TierPlatinum: 4,
}

// Rank is the numeric sort key for t; higher pays more. Unknown tiers rank as basic.
func (t Tier) Rank() int {
	return tierRanks[t]
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	_, ok := tierRanks[t]
	return ok
}

// Status is the lifecycle state of a posting.
type Status string

const (
	StatusDraft   Status = "draft"
	StatusActive  Status = "active"
	StatusClosed  Status = "closed"
	StatusExpired Status = "expired"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusClosed, StatusExpired:
		return true
	}
	return false
}

// Salary is the offered pay; Visible=false hides the amount from seekers.
type Salary struct {
	Amount  int64 `json:"amount" validate:"gte=0"`
	Visible bool  `json:"visible"`
}

// Posting is the indexed projection of a job listing.
type Posting struct {
	ID          string    `json:"id" validate:"required"`
	EmployerID  string    `json:"employer_id" validate:"required"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags" validate:"max=32,dive,required"`
	City        string    `json:"city"`
	Region      string    `json:"region"`
	JobType     string    `json:"job_type"`
	Category    string    `json:"category"`
	Salary      Salary    `json:"salary"`
	Tier        Tier      `json:"tier" validate:"oneof=basic bronze silver gold platinum"`
	Status      Status    `json:"status" validate:"oneof=draft active closed expired"`
	IsDeleted   bool      `json:"is_deleted"`
	PostedAt    time.Time `json:"posted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Discoverable is the exclusion invariant: only active, non-deleted postings
// may ever be returned by a search.
func (p *Posting) Discoverable() bool {
	return !p.IsDeleted && p.Status == StatusActive
}

// Public returns a copy safe to show to job seekers; hidden salaries are zeroed.
func (p Posting) Public() Posting {
	if !p.Salary.Visible {
		p.Salary.Amount = 0
	}
	p.Tags = append([]string(nil), p.Tags...)
	return p
}
