package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/jobmarket/internal/client/client"
	"github.com/dmitrijs2005/jobmarket/internal/client/models"
	"github.com/dmitrijs2005/jobmarket/internal/client/recent"
)

var getMultiline = GetMultiline

// parseSearchArgs splits "key=value" filters from free text.
func parseSearchArgs(args []string) (models.SearchParams, error) {
	var p models.SearchParams
	var words []string

	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok {
			words = append(words, arg)
			continue
		}
		var err error
		switch k {
		case "city":
			p.City = v
		case "category":
			p.Category = v
		case "type":
			p.JobType = v
		case "employer":
			p.EmployerID = v
		case "sort":
			p.Sort = v
		case "offset":
			p.Offset, err = strconv.Atoi(v)
		case "limit":
			p.Limit, err = strconv.Atoi(v)
		case "from":
			p.PostedFrom, err = time.Parse(time.DateOnly, v)
		case "to":
			p.PostedTo, err = time.Parse(time.DateOnly, v)
		default:
			return p, fmt.Errorf("unknown filter %q", k)
		}
		if err != nil {
			return p, fmt.Errorf("bad value for %s: %w", k, err)
		}
	}
	p.Text = strings.Join(words, " ")
	return p, nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	p, err := parseSearchArgs(args)
	if err != nil {
		return err
	}

	res, err := a.jobService.Search(ctx, p)
	if err != nil {
		return a.explain(err)
	}

	if len(res.Items) == 0 {
		fmt.Fprintln(a.out, "No jobs found.")
		return nil
	}
	for i, h := range res.Items {
		fmt.Fprintf(a.out, "%3d. %s\n", res.Offset+i+1, jobLine(&h.Job))
	}
	if len(res.Items) == res.Limit {
		fmt.Fprintf(a.out, "More results: add offset=%d\n", res.Offset+res.Limit)
	}
	return nil
}

func (a *App) View(ctx context.Context, id string) error {
	j, err := a.jobService.View(ctx, id)
	if err != nil {
		return a.explain(err)
	}
	printJob(a.out, j)
	return nil
}

func (a *App) Recent(ctx context.Context) error {
	entries := a.jobService.Recent(ctx)
	if len(entries) == 0 {
		fmt.Fprintln(a.out, "Nothing viewed recently.")
		return nil
	}
	for i, e := range entries {
		fmt.Fprintf(a.out, "%2d. %s\n", i+1, recentLine(e))
	}
	return nil
}

func (a *App) Forget(ctx context.Context, id string) error {
	a.jobService.Forget(ctx, id)
	return nil
}

func (a *App) ClearRecent(ctx context.Context) error {
	a.jobService.ClearRecent(ctx)
	fmt.Fprintln(a.out, "Recently viewed list cleared")
	return nil
}

func (a *App) Post(ctx context.Context) error {
	in, err := a.readJobInput(nil)
	if err != nil {
		return err
	}
	j, err := a.jobService.Post(ctx, *in)
	if err != nil {
		return a.explain(err)
	}
	fmt.Fprintf(a.out, "Posted %s\n", j.ID)
	return nil
}

// Edit loads the posting and prompts for each field, keeping the current
// value on an empty answer.
func (a *App) Edit(ctx context.Context, id string) error {
	cur, err := a.jobService.View(ctx, id)
	if err != nil {
		return a.explain(err)
	}
	in, err := a.readJobInput(cur)
	if err != nil {
		return err
	}
	if _, err := a.jobService.Update(ctx, id, *in); err != nil {
		return a.explain(err)
	}
	fmt.Fprintf(a.out, "Updated %s\n", id)
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	if err := a.jobService.Delete(ctx, id); err != nil {
		return a.explain(err)
	}
	fmt.Fprintf(a.out, "Deleted %s\n", id)
	return nil
}

func (a *App) readJobInput(cur *models.Job) (*models.JobInput, error) {
	if cur == nil {
		cur = &models.Job{Tier: "basic", Status: "active"}
	}

	in := &models.JobInput{Salary: cur.Salary}

	var err error
	ask := func(prompt, def string, dst *string) {
		if err == nil {
			*dst, err = getWithDefault(a.reader, prompt, def, a.out)
		}
	}

	ask("Title", cur.Title, &in.Title)
	if err == nil {
		in.Description, err = getMultiline(a.reader, "Description", a.out)
		if in.Description == "" {
			in.Description = cur.Description
		}
	}

	var tags, salary, visible string
	ask("Tags (comma separated)", strings.Join(cur.Tags, ","), &tags)
	ask("City", cur.City, &in.City)
	ask("Region", cur.Region, &in.Region)
	ask("Job type", cur.JobType, &in.JobType)
	ask("Category", cur.Category, &in.Category)
	ask("Salary", strconv.FormatInt(cur.Salary.Amount, 10), &salary)
	ask("Show salary (y/n)", yesNo(cur.Salary.Visible), &visible)
	ask("Tier (basic|bronze|silver|gold|platinum)", cur.Tier, &in.Tier)
	ask("Status (draft|active|closed|expired)", cur.Status, &in.Status)
	if err != nil {
		return nil, err
	}

	in.Tags = splitTags(tags)
	if salary != "" {
		if in.Salary.Amount, err = strconv.ParseInt(salary, 10, 64); err != nil {
			return nil, fmt.Errorf("salary must be a whole number")
		}
	}
	in.Salary.Visible = strings.HasPrefix(strings.ToLower(visible), "y")
	return in, nil
}

// explain turns API errors into hints for the prompt.
func (a *App) explain(err error) error {
	switch {
	case errors.Is(err, client.ErrSessionExpired):
		a.endSession()
	case errors.Is(err, client.ErrUnavailable):
		a.setMode(ModeOffline)
	case errors.Is(err, client.ErrForbidden):
		return fmt.Errorf("you are not allowed to do that: %w", err)
	}
	return err
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func jobLine(j *models.Job) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", j.Tier, j.Title)
	if j.City != "" {
		fmt.Fprintf(&b, " (%s)", j.City)
	}
	fmt.Fprintf(&b, " id=%s", j.ID)
	return b.String()
}

func recentLine(e recent.Entry) string {
	when := e.ViewedAt.Local().Format("2006-01-02 15:04")
	if e.Summary == nil || e.Summary.Title == "" {
		return fmt.Sprintf("%s  %s", when, e.JobID)
	}
	s := fmt.Sprintf("%s  %s", when, e.Summary.Title)
	if e.Summary.City != "" {
		s += " (" + e.Summary.City + ")"
	}
	return s + " id=" + e.JobID
}

func printJob(w io.Writer, j *models.Job) {
	fmt.Fprintf(w, "%s\n", j.Title)
	fmt.Fprintf(w, "  id:       %s\n", j.ID)
	fmt.Fprintf(w, "  tier:     %s\n", j.Tier)
	fmt.Fprintf(w, "  status:   %s\n", j.Status)
	if j.City != "" || j.Region != "" {
		fmt.Fprintf(w, "  location: %s %s\n", j.City, j.Region)
	}
	if j.JobType != "" {
		fmt.Fprintf(w, "  type:     %s\n", j.JobType)
	}
	if j.Category != "" {
		fmt.Fprintf(w, "  category: %s\n", j.Category)
	}
	if len(j.Tags) > 0 {
		fmt.Fprintf(w, "  tags:     %s\n", strings.Join(j.Tags, ", "))
	}
	if j.Salary.Amount > 0 {
		fmt.Fprintf(w, "  salary:   %d\n", j.Salary.Amount)
	}
	if !j.PostedAt.IsZero() {
		fmt.Fprintf(w, "  posted:   %s\n", j.PostedAt.Local().Format(time.DateOnly))
	}
	if j.Description != "" {
		fmt.Fprintf(w, "\n%s\n", j.Description)
	}
}
