package discovery

import (
	"context"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/server/models"
)

// Store is a queryable projection of postings.
//
// Upsert must ignore a posting whose UpdatedAt is older than the stored one,
// and both Upsert and Remove must be idempotent. Search must never return a
// posting that is deleted or not active. Get returns common.ErrorNotFound for
// unknown ids.
type Store interface {
	Upsert(ctx context.Context, p *models.Posting) error
	Remove(ctx context.Context, id string, at time.Time) error
	Get(ctx context.Context, id string) (*models.Posting, error)
	Search(ctx context.Context, q Query) ([]Hit, error)
}
