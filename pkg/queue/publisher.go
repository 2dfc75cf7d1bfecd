// Package queue provides the durable generation-job queue on top of NATS
// JetStream. Jobs survive process restarts; workers pull with explicit
// acks so a crashed worker redelivers instead of losing the job.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

const (
	StreamName      = "CODEFRAME_JOBS"
	SubjectGenerate = "jobs.generate"
)

// JobMessage is the queue payload. The worker reloads everything else from
// the job row, so the message stays minimal.
type JobMessage struct {
	JobId uuid.UUID `json:"job_id"`
}

// Publisher enqueues generation jobs onto the JetStream work queue.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

// NewPublisher connects to NATS and ensures the job stream exists with
// file storage and work-queue retention.
func NewPublisher(url string) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{"jobs.>"},
		Storage:   jetstream.FileStorage,
		Retention: jetstream.WorkQueuePolicy,
	})
	if err != nil {
		log.Printf("Warn: Failed to ensure stream %q: %v", StreamName, err)
	}

	return &Publisher{nc: nc, js: js}, nil
}

// PublishJob enqueues one job id for background processing.
func (p *Publisher) PublishJob(ctx context.Context, jobId uuid.UUID) error {
	data, err := json.Marshal(JobMessage{JobId: jobId})
	if err != nil {
		return fmt.Errorf("failed to marshal job message: %w", err)
	}

	_, err = p.js.Publish(ctx, SubjectGenerate, data)
	if err != nil {
		return fmt.Errorf("failed to publish job to subject %s: %w", SubjectGenerate, err)
	}
	return nil
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
