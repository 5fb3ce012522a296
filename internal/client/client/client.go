package client

import (
	"context"

	"github.com/dmitrijs2005/jobmarket/internal/client/models"
)

type Client interface {
	Register(ctx context.Context, email, password, role string) (*models.User, error)
	Login(ctx context.Context, email, password string) error
	Logout()
	Ping(ctx context.Context) error
	SearchJobs(ctx context.Context, p models.SearchParams) (*models.SearchResult, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	CreateJob(ctx context.Context, in models.JobInput) (*models.Job, error)
	UpdateJob(ctx context.Context, id string, in models.JobInput) (*models.Job, error)
	DeleteJob(ctx context.Context, id string) error
}
