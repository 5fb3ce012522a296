package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/common"
	"github.com/dmitrijs2005/jobmarket/internal/server/access"
	"github.com/dmitrijs2005/jobmarket/internal/server/discovery"
	"github.com/dmitrijs2005/jobmarket/internal/server/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type postingRequest struct {
	Title       string        `json:"title" binding:"required,max=200"`
	Description string        `json:"description"`
	Tags        []string      `json:"tags" binding:"max=32,dive,required"`
	City        string        `json:"city"`
	Region      string        `json:"region"`
	JobType     string        `json:"job_type"`
	Category    string        `json:"category"`
	Salary      models.Salary `json:"salary"`
	Tier        models.Tier   `json:"tier" binding:"omitempty,oneof=basic bronze silver gold platinum"`
	Status      models.Status `json:"status" binding:"omitempty,oneof=draft active closed expired"`
}

func (r *postingRequest) applyTo(p *models.Posting) {
	p.Title = r.Title
	p.Description = r.Description
	p.Tags = r.Tags
	p.City = r.City
	p.Region = r.Region
	p.JobType = r.JobType
	p.Category = r.Category
	p.Salary = r.Salary
	if r.Tier != "" {
		p.Tier = r.Tier
	}
	if r.Status != "" {
		p.Status = r.Status
	}
}

type searchResponse struct {
	Items  []discovery.Hit `json:"items"`
	Offset int             `json:"offset"`
	Limit  int             `json:"limit"`
}

func parseSearch(c *gin.Context) (discovery.Filter, discovery.Sort, discovery.Page, error) {
	f := discovery.Filter{
		Text:       c.Query("q"),
		City:       c.Query("city"),
		Status:     models.Status(c.Query("status")),
		Category:   c.Query("category"),
		JobType:    c.Query("job_type"),
		EmployerID: c.Query("employer_id"),
	}
	var (
		p   discovery.Page
		err error
	)
	for _, t := range []struct {
		name string
		dst  *time.Time
	}{{"from", &f.PostedFrom}, {"to", &f.PostedTo}} {
		if v := c.Query(t.name); v != "" {
			if *t.dst, err = time.Parse(time.RFC3339, v); err != nil {
				return f, "", p, fmt.Errorf("%w: %s must be RFC3339", common.ErrorValidation, t.name)
			}
		}
	}
	for _, n := range []struct {
		name string
		dst  *int
	}{{"offset", &p.Offset}, {"limit", &p.Limit}} {
		if v := c.Query(n.name); v != "" {
			if *n.dst, err = strconv.Atoi(v); err != nil {
				return f, "", p, fmt.Errorf("%w: %s must be an integer", common.ErrorValidation, n.name)
			}
		}
	}
	s, err := discovery.ParseSort(c.Query("sort"))
	if err != nil {
		return f, "", p, err
	}
	return f, s, p, nil
}

func (h *handler) searchJobs(c *gin.Context) {
	f, s, p, err := parseSearch(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	hits, err := h.discovery.Search(c.Request.Context(), f, s, p)
	if err != nil {
		abortWithError(c, err)
		return
	}
	for i := range hits {
		hits[i].Posting = hits[i].Posting.Public()
	}
	if p.Limit == 0 {
		p.Limit = discovery.DefaultLimit
	}
	c.JSON(http.StatusOK, searchResponse{Items: hits, Offset: p.Offset, Limit: p.Limit})
}

// getJob shows discoverable postings to everyone. Owners and admins also see
// their drafts, closed and removed postings, with the salary unmasked.
func (h *handler) getJob(c *gin.Context) {
	p, err := h.discovery.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	subject := currentSubject(c)
	privileged := subject != nil && (subject.ID == p.EmployerID || subject.Role == models.RoleAdmin)
	switch {
	case privileged:
		c.JSON(http.StatusOK, p)
	case p.Discoverable():
		c.JSON(http.StatusOK, p.Public())
	default:
		abortWithError(c, common.ErrorNotFound)
	}
}

func (h *handler) createJob(c *gin.Context) {
	var req postingRequest
	if !bindJSON(c, &req) {
		return
	}
	now := h.now().UTC()
	p := &models.Posting{
		ID:         uuid.NewString(),
		EmployerID: currentSubject(c).ID,
		Tier:       models.TierBasic,
		Status:     models.StatusActive,
		PostedAt:   now,
		UpdatedAt:  now,
	}
	req.applyTo(p)

	if err := h.mutations.PublishUpsert(c.Request.Context(), p); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// loadOwned fetches the posting and checks that the caller owns it or is an
// admin. Removed postings count as missing.
func (h *handler) loadOwned(c *gin.Context) (*models.Posting, bool) {
	p, err := h.discovery.Get(c.Request.Context(), c.Param("id"))
	if err == nil && p.IsDeleted {
		err = common.ErrorNotFound
	}
	if err != nil {
		abortWithError(c, err)
		return nil, false
	}
	token := c.GetString(tokenKey)
	if _, err := h.gateway.Authorize(token, access.Requirement{OwnerID: p.EmployerID}); err != nil {
		abortWithError(c, err)
		return nil, false
	}
	return p, true
}

func (h *handler) updateJob(c *gin.Context) {
	var req postingRequest
	if !bindJSON(c, &req) {
		return
	}
	p, ok := h.loadOwned(c)
	if !ok {
		return
	}
	req.applyTo(p)
	p.UpdatedAt = h.now().UTC()

	if err := h.mutations.PublishUpsert(c.Request.Context(), p); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) deleteJob(c *gin.Context) {
	p, ok := h.loadOwned(c)
	if !ok {
		return
	}
	if err := h.mutations.PublishRemove(c.Request.Context(), p.ID); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
