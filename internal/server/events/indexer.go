package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dmitrijs2005/jobmarket/internal/common"
	"github.com/dmitrijs2005/jobmarket/internal/logging"
	"github.com/dmitrijs2005/jobmarket/internal/server/models"
)

// Applier is the write side of discovery.Index.
type Applier interface {
	UpsertIndexEntry(ctx context.Context, p *models.Posting) error
	RemoveIndexEntryAt(ctx context.Context, id string, at time.Time) error
}

const DefaultMaxAttempts = 5

type Indexer struct {
	sub         message.Subscriber
	index       Applier
	logger      logging.Logger
	retryDelay  time.Duration
	maxAttempts int

	// attempts is only touched by the consuming goroutine.
	attempts map[string]int
}

func NewIndexer(sub message.Subscriber, index Applier, logger logging.Logger) *Indexer {
	return &Indexer{
		sub:         sub,
		index:       index,
		logger:      logger,
		retryDelay:  500 * time.Millisecond,
		maxAttempts: DefaultMaxAttempts,
		attempts:    make(map[string]int),
	}
}

// Start subscribes before returning, so nothing published afterwards is
// missed, then applies messages in the background. done is closed once the
// subscription ends (ctx cancelled or subscriber closed).
func (i *Indexer) Start(ctx context.Context) (done <-chan struct{}, err error) {
	messages, err := i.sub.Subscribe(ctx, TopicPostings)
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", TopicPostings, err)
	}

	ch := make(chan struct{})
	go func() {
		defer close(ch)
		for msg := range messages {
			i.handle(ctx, msg)
		}
	}()
	return ch, nil
}

// handle acks applied and undecodable messages. Transient store failures are
// nacked after retryDelay so the same message is redelivered before any later
// one, up to maxAttempts; after that the message is dropped.
func (i *Indexer) handle(ctx context.Context, msg *message.Message) {
	var evt PostingEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		i.logger.Error(ctx, "dropping undecodable posting event", "message_id", msg.UUID, "error", err)
		msg.Ack()
		return
	}

	err := i.apply(ctx, &evt)
	switch {
	case err == nil:
		delete(i.attempts, msg.UUID)
		i.logger.Debug(ctx, "posting event applied", "kind", evt.Kind, "posting_id", evt.PostingID)
		msg.Ack()
	case errors.Is(err, common.ErrStoreUnavailable) || errors.Is(err, common.ErrTimeout):
		i.attempts[msg.UUID]++
		if n := i.attempts[msg.UUID]; n >= i.maxAttempts || ctx.Err() != nil {
			delete(i.attempts, msg.UUID)
			i.logger.Error(ctx, "giving up on posting event", "posting_id", evt.PostingID, "attempts", n, "error", err)
			msg.Ack()
			return
		}
		i.logger.Warn(ctx, "posting event will be retried", "posting_id", evt.PostingID, "error", err)
		select {
		case <-time.After(i.retryDelay):
		case <-ctx.Done():
		}
		msg.Nack()
	default:
		i.logger.Error(ctx, "dropping posting event", "posting_id", evt.PostingID, "error", err)
		msg.Ack()
	}
}

func (i *Indexer) apply(ctx context.Context, evt *PostingEvent) error {
	switch evt.Kind {
	case KindUpsert:
		if evt.Posting == nil {
			return fmt.Errorf("%w: upsert without posting", common.ErrorValidation)
		}
		return i.index.UpsertIndexEntry(ctx, evt.Posting)
	case KindRemove:
		return i.index.RemoveIndexEntryAt(ctx, evt.PostingID, evt.At)
	}
	return fmt.Errorf("%w: unknown event kind %q", common.ErrorValidation, evt.Kind)
}
