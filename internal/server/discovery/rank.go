package discovery

import (
	"strings"

	"github.com/dmitrijs2005/jobmarket/internal/server/models"
)

// Relevance scores p against terms the way the memory store ranks text
// matches: two points per term found in the title, one per term found in the
// tags. Zero means no match.
func Relevance(terms []string, p *models.Posting) float64 {
	if len(terms) == 0 {
		return 0
	}
	title := tokenSet(p.Title)
	tags := tokenSet(strings.Join(p.Tags, " "))

	var score float64
	for _, t := range terms {
		if _, ok := title[t]; ok {
			score += 2
		}
		if _, ok := tags[t]; ok {
			score++
		}
	}
	return score
}

func tokenSet(s string) map[string]struct{} {
	terms := Terms(s)
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[t] = struct{}{}
	}
	return set
}

// Less reports whether a sorts before b under s. The posting id is the final
// tie-break so equal keys still give a stable, reproducible order.
func Less(s Sort, a, b Hit) bool {
	if s != SortRecent {
		if ra, rb := a.Posting.Tier.Rank(), b.Posting.Tier.Rank(); ra != rb {
			return ra > rb
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
	}
	if !a.Posting.PostedAt.Equal(b.Posting.PostedAt) {
		return a.Posting.PostedAt.After(b.Posting.PostedAt)
	}
	return a.Posting.ID < b.Posting.ID
}
