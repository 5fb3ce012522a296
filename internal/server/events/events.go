// Package events carries posting mutations to the discovery index over a
// watermill topic. One Indexer consumes the topic, so notifications for a
// given posting are applied in publish order.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dmitrijs2005/jobmarket/internal/server/models"
)

const TopicPostings = "postings.changed"

type Kind string

const (
	KindUpsert Kind = "upsert"
	KindRemove Kind = "remove"
)

// PostingEvent is the message payload. Posting is set for upserts only.
type PostingEvent struct {
	Kind      Kind            `json:"kind"`
	PostingID string          `json:"posting_id"`
	Posting   *models.Posting `json:"posting,omitempty"`
	At        time.Time       `json:"at"`
}

type Publisher struct {
	pub   message.Publisher
	topic string
	now   func() time.Time
}

func NewPublisher(pub message.Publisher) *Publisher {
	return &Publisher{pub: pub, topic: TopicPostings, now: time.Now}
}

// PublishUpsert announces the new state of p. UpdatedAt is stamped when empty
// so the index can discard late, older copies.
func (p *Publisher) PublishUpsert(ctx context.Context, posting *models.Posting) error {
	if posting.UpdatedAt.IsZero() {
		posting.UpdatedAt = p.now().UTC()
	}
	return p.publish(ctx, PostingEvent{Kind: KindUpsert, PostingID: posting.ID, Posting: posting, At: posting.UpdatedAt})
}

func (p *Publisher) PublishRemove(ctx context.Context, id string) error {
	return p.publish(ctx, PostingEvent{Kind: KindRemove, PostingID: id, At: p.now().UTC()})
}

func (p *Publisher) publish(ctx context.Context, evt PostingEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("kind", string(evt.Kind))
	msg.Metadata.Set("posting_id", evt.PostingID)
	msg.SetContext(ctx)

	if err := p.pub.Publish(p.topic, msg); err != nil {
		return fmt.Errorf("publish %s: %w", evt.Kind, err)
	}
	return nil
}
