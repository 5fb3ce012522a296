// Package models holds the client's view of API resources.
package models

import "time"

type Salary struct {
	Amount  int64 `json:"amount"`
	Visible bool  `json:"visible"`
}

// Job is a posting as returned by the API. Salary.Amount is zero when the
// employer hid it and the caller is not the owner.
type Job struct {
	ID          string    `json:"id"`
	EmployerID  string    `json:"employer_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	City        string    `json:"city"`
	Region      string    `json:"region"`
	JobType     string    `json:"job_type"`
	Category    string    `json:"category"`
	Salary      Salary    `json:"salary"`
	Tier        string    `json:"tier"`
	Status      string    `json:"status"`
	IsDeleted   bool      `json:"is_deleted"`
	PostedAt    time.Time `json:"posted_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// JobInput is the body of create and update calls.
type JobInput struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	City        string   `json:"city,omitempty"`
	Region      string   `json:"region,omitempty"`
	JobType     string   `json:"job_type,omitempty"`
	Category    string   `json:"category,omitempty"`
	Salary      Salary   `json:"salary"`
	Tier        string   `json:"tier,omitempty"`
	Status      string   `json:"status,omitempty"`
}

// SearchParams maps onto the /api/jobs query string. Zero values are omitted.
type SearchParams struct {
	Text       string
	City       string
	Category   string
	JobType    string
	EmployerID string
	PostedFrom time.Time
	PostedTo   time.Time
	Sort       string
	Offset     int
	Limit      int
}

type Hit struct {
	Job   Job     `json:"posting"`
	Score float64 `json:"score"`
}

type SearchResult struct {
	Items  []Hit `json:"items"`
	Offset int   `json:"offset"`
	Limit  int   `json:"limit"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
