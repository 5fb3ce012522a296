package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/dmitrijs2005/jobmarket/internal/logging"
)

// NewGoChannel returns an in-process pub/sub usable as both publisher and
// subscriber. Publish blocks until the indexer acks, which keeps a single
// posting's notifications in order and makes a write visible to searches by
// the time the publishing request returns.
func NewGoChannel(logger logging.Logger, buffer int64) *gochannel.GoChannel {
	if buffer <= 0 {
		buffer = 100
	}
	return gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer:            buffer,
		Persistent:                     false,
		BlockPublishUntilSubscriberAck: true,
	}, NewLoggerAdapter(logger))
}

// loggerAdapter routes watermill's own logging into logging.Logger.
type loggerAdapter struct {
	logger logging.Logger
}

func NewLoggerAdapter(l logging.Logger) watermill.LoggerAdapter {
	return &loggerAdapter{logger: l}
}

func args(fields watermill.LogFields) []any {
	out := make([]any, 0, 2*len(fields))
	for k, v := range fields {
		out = append(out, k, v)
	}
	return out
}

func (a *loggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(context.Background(), msg, append(args(fields), "error", err)...)
}

func (a *loggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(context.Background(), msg, args(fields)...)
}

func (a *loggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(context.Background(), msg, args(fields)...)
}

// Trace is folded into Debug; slog has no trace level.
func (a *loggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(context.Background(), msg, args(fields)...)
}

func (a *loggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &loggerAdapter{logger: a.logger.With(args(fields)...)}
}
