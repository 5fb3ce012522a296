package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierRank_Ordering(t *testing.T) {
	assert.Greater(t, TierPlatinum.Rank(), TierGold.Rank())
	assert.Greater(t, TierGold.Rank(), TierSilver.Rank())
	assert.Greater(t, TierSilver.Rank(), TierBronze.Rank())
	assert.Greater(t, TierBronze.Rank(), TierBasic.Rank())
	assert.Equal(t, 0, Tier("mystery").Rank())
	assert.False(t, Tier("mystery").Valid())
}

func TestPosting_Discoverable(t *testing.T) {
	tests := []struct {
		name string
		p    Posting
		want bool
	}{
		{"active", Posting{Status: StatusActive}, true},
		{"deleted", Posting{Status: StatusActive, IsDeleted: true}, false},
		{"expired", Posting{Status: StatusExpired}, false},
		{"closed", Posting{Status: StatusClosed}, false},
		{"draft", Posting{Status: StatusDraft}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Discoverable())
		})
	}
}

func TestPosting_PublicHidesSalary(t *testing.T) {
	p := Posting{Salary: Salary{Amount: 5000, Visible: false}, Tags: []string{"go"}}
	pub := p.Public()

	assert.Zero(t, pub.Salary.Amount)
	assert.Equal(t, int64(5000), p.Salary.Amount)

	pub.Tags[0] = "changed"
	assert.Equal(t, "go", p.Tags[0])
}
