// Package postings is the PostgreSQL-backed discovery store. Relevance comes
// from ts_rank over a generated tsvector (title weighted A, tags weighted B).
package postings

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/common"
	"github.com/dmitrijs2005/jobmarket/internal/dbx"
	"github.com/dmitrijs2005/jobmarket/internal/server/discovery"
	"github.com/dmitrijs2005/jobmarket/internal/server/models"
)

const postingColumns = `id, employer_id, title, description, tags, city, region, job_type, category,
	salary_amount, salary_visible, tier, status, is_deleted, posted_at, updated_at`

// PostgresRepository implements discovery.Store over a dbx.DBTX.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert writes p unless the stored row has a newer updated_at; in that case
// no row is touched and nil is returned.
func (r *PostgresRepository) Upsert(ctx context.Context, p *models.Posting) error {
	tags, err := json.Marshal(nonNilTags(p.Tags))
	if err != nil {
		return fmt.Errorf("tags encode error: %w", err)
	}

	query := `
		INSERT INTO postings (id, employer_id, title, description, tags, city, region, job_type, category,
			salary_amount, salary_visible, tier, tier_rank, status, is_deleted, posted_at, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id)
		DO UPDATE SET
			employer_id = EXCLUDED.employer_id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			tags = EXCLUDED.tags,
			city = EXCLUDED.city,
			region = EXCLUDED.region,
			job_type = EXCLUDED.job_type,
			category = EXCLUDED.category,
			salary_amount = EXCLUDED.salary_amount,
			salary_visible = EXCLUDED.salary_visible,
			tier = EXCLUDED.tier,
			tier_rank = EXCLUDED.tier_rank,
			status = EXCLUDED.status,
			is_deleted = EXCLUDED.is_deleted,
			posted_at = EXCLUDED.posted_at,
			updated_at = EXCLUDED.updated_at
			WHERE postings.updated_at <= EXCLUDED.updated_at;
	`
	res, err := r.db.ExecContext(ctx, query,
		p.ID, p.EmployerID, p.Title, p.Description, string(tags), p.City, p.Region, p.JobType, p.Category,
		p.Salary.Amount, p.Salary.Visible, string(p.Tier), p.Tier.Rank(), string(p.Status), p.IsDeleted,
		p.PostedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n > 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// Remove flags the row as deleted. Missing rows, already deleted rows and
// rows updated after at are left alone.
func (r *PostgresRepository) Remove(ctx context.Context, id string, at time.Time) error {
	query := `
		UPDATE postings SET is_deleted = TRUE, updated_at = $2
		WHERE id = $1 AND NOT is_deleted AND updated_at <= $2
	`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Posting, error) {
	query := `SELECT ` + postingColumns + ` FROM postings WHERE id = $1`

	p, err := scanPosting(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Search(ctx context.Context, q discovery.Query) ([]discovery.Hit, error) {
	query, args := buildSearch(q)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search postings: %w", err)
	}
	defer rows.Close()

	result := []discovery.Hit{}
	for rows.Next() {
		var hit discovery.Hit
		p, err := scanPosting(rows, &hit.Score)
		if err != nil {
			return nil, err
		}
		hit.Posting = *p
		result = append(result, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// buildSearch renders the filter into SQL. The exclusion predicates are
// always the first two conditions.
func buildSearch(q discovery.Query) (string, []any) {
	where := []string{"NOT is_deleted", "status = 'active'"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	f := q.Filter
	score := "0::real"
	if terms := discovery.Terms(f.Text); len(terms) > 0 {
		add("search_vector @@ to_tsquery('simple', $%d)", strings.Join(terms, " | "))
		score = fmt.Sprintf("ts_rank(search_vector, to_tsquery('simple', $%d))", len(args))
	}
	if f.City != "" {
		add("city = $%d", f.City)
	}
	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.Category != "" {
		add("category = $%d", f.Category)
	}
	if f.JobType != "" {
		add("job_type = $%d", f.JobType)
	}
	if f.EmployerID != "" {
		add("employer_id = $%d", f.EmployerID)
	}
	if !f.PostedFrom.IsZero() {
		add("posted_at >= $%d", f.PostedFrom)
	}
	if !f.PostedTo.IsZero() {
		add("posted_at <= $%d", f.PostedTo)
	}

	order := "tier_rank DESC, score DESC, posted_at DESC, id ASC"
	if q.Sort == discovery.SortRecent {
		order = "posted_at DESC, id ASC"
	}

	args = append(args, q.Page.Limit, q.Page.Offset)
	query := fmt.Sprintf(`SELECT %s, %s AS score FROM postings WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		postingColumns, score, strings.Join(where, " AND "), order, len(args)-1, len(args))
	return query, args
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPosting(s scanner, extra ...any) (*models.Posting, error) {
	var (
		p            models.Posting
		tags         []byte
		tier, status string
	)
	dest := []any{
		&p.ID, &p.EmployerID, &p.Title, &p.Description, &tags, &p.City, &p.Region, &p.JobType, &p.Category,
		&p.Salary.Amount, &p.Salary.Visible, &tier, &status, &p.IsDeleted, &p.PostedAt, &p.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &p.Tags); err != nil {
			return nil, fmt.Errorf("tags decode error: %w", err)
		}
	}
	p.Tier = models.Tier(tier)
	p.Status = models.Status(status)
	return &p, nil
}

func nonNilTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
