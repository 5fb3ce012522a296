package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/jobmarket/internal/dbx"
	"github.com/dmitrijs2005/jobmarket/internal/server/discovery"
	"github.com/dmitrijs2005/jobmarket/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Postings(db dbx.DBTX) discovery.Store
}
