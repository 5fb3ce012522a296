package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/jobmarket/internal/client/client"
	"github.com/dmitrijs2005/jobmarket/internal/client/models"
	"github.com/dmitrijs2005/jobmarket/internal/client/recent"
)

// JobService is the visitor's view of the job board: search, detail views
// that feed the recently-viewed list, and employer posting management.
type JobService interface {
	Search(ctx context.Context, p models.SearchParams) (*models.SearchResult, error)
	View(ctx context.Context, id string) (*models.Job, error)
	Recent(ctx context.Context) []recent.Entry
	Forget(ctx context.Context, id string)
	ClearRecent(ctx context.Context)
	Post(ctx context.Context, in models.JobInput) (*models.Job, error)
	Update(ctx context.Context, id string, in models.JobInput) (*models.Job, error)
	Delete(ctx context.Context, id string) error
}

type jobService struct {
	client client.Client
	recent *recent.Cache
}

func NewJobService(c client.Client, cache *recent.Cache) JobService {
	return &jobService{client: c, recent: cache}
}

func (s *jobService) Search(ctx context.Context, p models.SearchParams) (*models.SearchResult, error) {
	return s.client.SearchJobs(ctx, p)
}

// View fetches a posting and records it as recently viewed. A posting the
// server no longer shows is dropped from the list.
func (s *jobService) View(ctx context.Context, id string) (*models.Job, error) {
	j, err := s.client.GetJob(ctx, id)
	if err != nil {
		if errors.Is(err, client.ErrNotFound) {
			s.recent.Remove(ctx, id)
		}
		return nil, err
	}
	s.recent.Record(ctx, j.ID, &recent.Summary{Title: j.Title, City: j.City, Tier: j.Tier})
	return j, nil
}

func (s *jobService) Recent(ctx context.Context) []recent.Entry {
	return s.recent.List(ctx)
}

func (s *jobService) Forget(ctx context.Context, id string) {
	s.recent.Remove(ctx, id)
}

func (s *jobService) ClearRecent(ctx context.Context) {
	s.recent.Clear(ctx)
}

func (s *jobService) Post(ctx context.Context, in models.JobInput) (*models.Job, error) {
	return s.client.CreateJob(ctx, in)
}

func (s *jobService) Update(ctx context.Context, id string, in models.JobInput) (*models.Job, error) {
	return s.client.UpdateJob(ctx, id, in)
}

// Delete removes the posting on the server and from the local list.
func (s *jobService) Delete(ctx context.Context, id string) error {
	if err := s.client.DeleteJob(ctx, id); err != nil {
		return err
	}
	s.recent.Remove(ctx, id)
	return nil
}
