package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/segmentio/kafka-go"
)

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Event is the payload published for every recipient.
type Event struct {
	Email   string    `json:"email"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sentAt"`
}

// KafkaSink publishes one message per recipient, keyed by email, for a downstream mailer.
type KafkaSink struct {
	writer MessageWriter
	now    func() time.Time
}

func NewKafkaSink(writer MessageWriter) Sink {
	return &KafkaSink{
		writer: writer,
		now:    time.Now,
	}
}

func (s *KafkaSink) NotifyUsersByEmail(ctx context.Context, messages map[string]string) error {
	if len(messages) == 0 {
		return nil
	}

	now := s.now().UTC()
	msgs := make([]kafka.Message, 0, len(messages))
	for _, email := range lo.Keys(messages) {
		payload, err := json.Marshal(Event{Email: email, Message: messages[email], SentAt: now})
		if err != nil {
			return fmt.Errorf("encode notification for %s: %w", email, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(email),
			Value: payload,
			Time:  now,
		})
	}

	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish %d notifications: %w", len(msgs), err)
	}
	return nil
}
