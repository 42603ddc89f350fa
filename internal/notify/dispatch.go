package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"giftmarket/pkg/social"

	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

// Publisher is the queue side of an announcement.
type Publisher interface {
	Publish(ctx context.Context, v any) error
}

// QueueDispatcher enqueues announcements for the consumer.
type QueueDispatcher struct {
	publisher Publisher
}

// NewQueueDispatcher creates a new QueueDispatcher.
func NewQueueDispatcher(publisher Publisher) *QueueDispatcher {
	return &QueueDispatcher{publisher: publisher}
}

func (d *QueueDispatcher) Dispatch(ctx context.Context, a Announcement) error {
	if err := d.publisher.Publish(ctx, a); err != nil {
		return fmt.Errorf("failed to enqueue announcement: %w", err)
	}
	return nil
}

// DirectDispatcher posts announcements synchronously.
type DirectDispatcher struct {
	poster social.Poster
}

// NewDirectDispatcher creates a new DirectDispatcher.
func NewDirectDispatcher(poster social.Poster) *DirectDispatcher {
	return &DirectDispatcher{poster: poster}
}

func (d *DirectDispatcher) Dispatch(ctx context.Context, a Announcement) error {
	return d.poster.Post(ctx, a.Text, a.ImageURL)
}

// ConsumeHandler returns the queue handler that posts announcements. It always
// reports success so the message is acked; failed posts are only logged.
// Each post is bounded by timeout.
func ConsumeHandler(ctx context.Context, poster social.Poster, timeout time.Duration, log *zap.Logger) func(msg amqp.Delivery) error {
	if log == nil {
		log = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return func(msg amqp.Delivery) error {
		var a Announcement
		if err := json.Unmarshal(msg.Body, &a); err != nil {
			log.Error("dropping malformed announcement", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(err))
			return nil
		}
		postCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := poster.Post(postCtx, a.Text, a.ImageURL); err != nil {
			log.Error("failed to post announcement", zap.String("kind", string(a.Kind)), zap.Error(err))
			return nil
		}
		log.Info("announcement posted", zap.String("kind", string(a.Kind)))
		return nil
	}
}
