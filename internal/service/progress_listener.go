package service

import (
	"context"
	"encoding/json"

	"codeframe-be/internal/cache"
	"codeframe-be/internal/entity"
	"codeframe-be/internal/pkg/logger"
	"codeframe-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IProgressListener interface {
	// Listen folds worker progress events into the status cache so polls
	// see fresh progress without a DB round trip.
	Listen(ctx context.Context) error
}

type progressListener struct {
	pubSub *gochannel.GoChannel
	cache  cache.Cache
	logger logger.ILogger
}

func NewProgressListener(pubSub *gochannel.GoChannel, statusCache cache.Cache, log logger.ILogger) IProgressListener {
	return &progressListener{
		pubSub: pubSub,
		cache:  statusCache,
		logger: log,
	}
}

func (l *progressListener) Listen(ctx context.Context) error {
	messages, err := l.pubSub.Subscribe(ctx, events.TopicJobProgress)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			l.handle(ctx, msg)
		}
	}()

	return nil
}

func (l *progressListener) handle(ctx context.Context, msg *message.Message) {
	var event events.JobProgressEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		l.logger.Warn("ProgressListener", "Unparseable progress event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack()
		return
	}

	snapshot := cache.JobSnapshot{
		Status:      event.Status,
		ProgressPct: event.ProgressPct,
		CostUSD:     event.CostUSD,
		ErrorKind:   event.ErrorKind,
		Error:       event.Error,
	}

	ttl := cache.StatusTTL
	if entity.JobStatus(event.Status).IsTerminal() {
		ttl = cache.TerminalStatusTTL
	}

	if err := l.cache.SetJobStatus(ctx, event.JobId, snapshot, ttl); err != nil {
		l.logger.Warn("ProgressListener", "Failed to cache progress", map[string]interface{}{
			"job_id": event.JobId, "error": err.Error(),
		})
	}

	msg.Ack()
}
