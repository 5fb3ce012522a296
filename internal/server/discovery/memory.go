package discovery

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/common"
	"github.com/dmitrijs2005/jobmarket/internal/server/models"
)

// MemoryStore keeps the projection in a map. It is the reference
// implementation of the ranking policy and backs `-store memory`.
type MemoryStore struct {
	mu       sync.RWMutex
	postings map[string]models.Posting
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{postings: make(map[string]models.Posting)}
}

func (s *MemoryStore) Upsert(ctx context.Context, p *models.Posting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.postings[p.ID]; ok && p.UpdatedAt.Before(cur.UpdatedAt) {
		return nil
	}
	cp := *p
	cp.Tags = append([]string(nil), p.Tags...)
	s.postings[p.ID] = cp
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, id string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.postings[id]
	if !ok || cur.IsDeleted || at.Before(cur.UpdatedAt) {
		return nil
	}
	cur.IsDeleted = true
	cur.UpdatedAt = at
	s.postings[id] = cur
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Posting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.postings[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	p.Tags = append([]string(nil), p.Tags...)
	return &p, nil
}

func (s *MemoryStore) Search(ctx context.Context, q Query) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	terms := Terms(q.Filter.Text)

	s.mu.RLock()
	hits := make([]Hit, 0, len(s.postings))
	for _, p := range s.postings {
		if !p.Discoverable() || !matches(&q.Filter, &p) {
			continue
		}
		score := Relevance(terms, &p)
		if len(terms) > 0 && score == 0 {
			continue
		}
		p.Tags = append([]string(nil), p.Tags...)
		hits = append(hits, Hit{Posting: p, Score: score})
	}
	s.mu.RUnlock()

	sort.Slice(hits, func(i, j int) bool { return Less(q.Sort, hits[i], hits[j]) })

	if q.Page.Offset >= len(hits) {
		return []Hit{}, nil
	}
	end := q.Page.Offset + q.Page.Limit
	if end > len(hits) {
		end = len(hits)
	}
	return hits[q.Page.Offset:end], nil
}

func matches(f *Filter, p *models.Posting) bool {
	switch {
	case f.City != "" && f.City != p.City:
		return false
	case f.Status != "" && f.Status != p.Status:
		return false
	case f.Category != "" && f.Category != p.Category:
		return false
	case f.JobType != "" && f.JobType != p.JobType:
		return false
	case f.EmployerID != "" && f.EmployerID != p.EmployerID:
		return false
	case !f.PostedFrom.IsZero() && p.PostedAt.Before(f.PostedFrom):
		return false
	case !f.PostedTo.IsZero() && p.PostedAt.After(f.PostedTo):
		return false
	}
	return true
}
