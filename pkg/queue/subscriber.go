package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// JobHandler processes one dequeued job. A non-nil error triggers
// redelivery via Nak.
type JobHandler func(ctx context.Context, msg JobMessage) error

// Ack deadline per delivery, extended by a heartbeat while the handler
// runs, so a job whose stages outlast ackWait is not redelivered to a
// second consumer mid-flight.
const (
	ackWait           = 10 * time.Minute
	heartbeatInterval = 2 * time.Minute
)

// Subscriber consumes generation jobs with a durable consumer, so
// in-flight jobs are redelivered after a worker restart.
type Subscriber struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewSubscriber(url string) (*Subscriber, error) {
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

	return &Subscriber{nc: nc, js: js}, nil
}

// Subscribe registers a durable consumer for the generate subject.
func (s *Subscriber) Subscribe(durableName string, handler JobHandler) error {
	ctx := context.Background()

	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:       durableName,
		FilterSubject: SubjectGenerate,
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       ackWait,
		MaxDeliver:    3,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	_, err = consumer.Consume(func(msg jetstream.Msg) {
		var payload JobMessage
		if err := json.Unmarshal(msg.Data(), &payload); err != nil {
			log.Printf("Error unmarshalling job message: %v", err)
			msg.Ack() // poison message, do not redeliver
			return
		}

		done := make(chan struct{})
		go keepAlive(done, heartbeatInterval, func() error { return msg.InProgress() })

		err := handler(context.Background(), payload)
		close(done)

		if err != nil {
			log.Printf("Handler failed for job %s: %v", payload.JobId, err)
			msg.Nak()
			return
		}

		msg.Ack()
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	log.Printf("Subscribed to %s with durable %s", SubjectGenerate, durableName)
	return nil
}

// keepAlive extends the message's ack deadline until done closes.
func keepAlive(done <-chan struct{}, interval time.Duration, extend func() error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := extend(); err != nil {
				log.Printf("Failed to extend ack deadline: %v", err)
			}
		}
	}
}

// Close closes the connection.
func (s *Subscriber) Close() {
	if s.nc != nil {
		s.nc.Close()
	}
}
