package discovery

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/dmitrijs2005/jobmarket/internal/common"
	"github.com/dmitrijs2005/jobmarket/internal/server/models"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

var validate = validator.New()

// Filter narrows a search. Zero-valued fields are ignored. The exclusion of
// deleted and non-active postings is not part of Filter and always applies.
type Filter struct {
	Text       string
	City       string
	Status     models.Status
	Category   string
	JobType    string
	EmployerID string
	PostedFrom time.Time
	PostedTo   time.Time
}

// Sort selects the ordering policy.
type Sort string

const (
	// SortRanked orders by tier rank, relevance, postedAt (all descending), then id.
	SortRanked Sort = "ranked"
	// SortRecent orders by postedAt descending, then id.
	SortRecent Sort = "recent"
)

// ParseSort maps a query-string value to a Sort. Empty means SortRanked.
func ParseSort(s string) (Sort, error) {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortRanked:
		return SortRanked, nil
	case SortRecent:
		return SortRecent, nil
	}
	return "", fmt.Errorf("%w: unknown sort %q", common.ErrorValidation, s)
}

type Page struct {
	Offset int `validate:"gte=0"`
	Limit  int `validate:"gte=1,lte=100"`
}

// normalize fills the default limit and validates bounds.
func (p Page) normalize() (Page, error) {
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	if err := validate.Struct(p); err != nil {
		return p, fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	return p, nil
}

// Query is what a Store receives: a normalized page and a concrete sort.
type Query struct {
	Filter Filter
	Sort   Sort
	Page   Page
}

// Hit is one ranked result. Score is the text relevance, 0 without a text filter.
type Hit struct {
	Posting models.Posting `json:"posting"`
	Score   float64        `json:"score"`
}

// Terms splits free text into lowercase alphanumeric search terms, dropping
// duplicates. Stores build their native text queries from these.
func Terms(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		out = append(out, f)
	}
	return out
}
