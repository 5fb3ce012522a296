package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/common"
	"github.com/dmitrijs2005/jobmarket/internal/logging"
	"github.com/dmitrijs2005/jobmarket/internal/server/models"
)

const DefaultSearchTimeout = 5 * time.Second

type Option func(*Index)

// WithSearchTimeout bounds every Search call. Zero disables the bound and
// leaves cancellation to the caller's context.
func WithSearchTimeout(d time.Duration) Option {
	return func(i *Index) { i.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(i *Index) { i.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(i *Index) { i.now = now }
}

type Index struct {
	store   Store
	timeout time.Duration
	logger  logging.Logger
	now     func() time.Time
}

func NewIndex(store Store, opts ...Option) *Index {
	i := &Index{
		store:   store,
		timeout: DefaultSearchTimeout,
		logger:  logging.Nop(),
		now:     time.Now,
	}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Search returns the page of discoverable postings matching f, ordered by s.
// Failures are ErrorValidation (bad page or sort), ErrTimeout (deadline or
// cancellation) or ErrStoreUnavailable, each wrapping the cause.
func (i *Index) Search(ctx context.Context, f Filter, s Sort, p Page) ([]Hit, error) {
	page, err := p.normalize()
	if err != nil {
		return nil, err
	}
	if s == "" {
		s = SortRanked
	}
	if s != SortRanked && s != SortRecent {
		return nil, fmt.Errorf("%w: unknown sort %q", common.ErrorValidation, s)
	}
	if !f.PostedFrom.IsZero() && !f.PostedTo.IsZero() && f.PostedTo.Before(f.PostedFrom) {
		return nil, fmt.Errorf("%w: posted range is inverted", common.ErrorValidation)
	}

	if i.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, i.timeout)
		defer cancel()
	}

	hits, err := i.store.Search(ctx, Query{Filter: f, Sort: s, Page: page})
	if err != nil {
		err = classify(ctx, err)
		i.logger.Warn(ctx, "search failed", "error", err)
		return nil, err
	}
	return hits, nil
}

// UpsertIndexEntry records the current state of a posting. Re-applying the
// same state, or applying one older than what is stored, changes nothing.
func (i *Index) UpsertIndexEntry(ctx context.Context, p *models.Posting) error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", common.ErrorValidation, err)
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = i.now().UTC()
	}
	if p.PostedAt.IsZero() {
		p.PostedAt = p.UpdatedAt
	}
	if err := i.store.Upsert(ctx, p); err != nil {
		return classify(ctx, err)
	}
	return nil
}

// RemoveIndexEntry soft-deletes the projection of id. Unknown or already
// removed ids are a no-op.
func (i *Index) RemoveIndexEntry(ctx context.Context, id string) error {
	return i.RemoveIndexEntryAt(ctx, id, i.now().UTC())
}

// RemoveIndexEntryAt is RemoveIndexEntry with the mutation time supplied by
// the caller, so a removal replayed after a newer upsert stays stale.
func (i *Index) RemoveIndexEntryAt(ctx context.Context, id string, at time.Time) error {
	if id == "" {
		return fmt.Errorf("%w: empty posting id", common.ErrorValidation)
	}
	if err := i.store.Remove(ctx, id, at); err != nil {
		return classify(ctx, err)
	}
	return nil
}

// Get returns the stored projection regardless of status.
func (i *Index) Get(ctx context.Context, id string) (*models.Posting, error) {
	p, err := i.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, classify(ctx, err)
	}
	return p, nil
}

func classify(ctx context.Context, err error) error {
	if errors.Is(err, common.ErrTimeout) || errors.Is(err, common.ErrStoreUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return fmt.Errorf("%w: %w", common.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
}
