// Package notify announces new stores and products on social media.
package notify

import (
	"context"
	"fmt"
	"time"

	"giftmarket/internal/models"
	"giftmarket/pkg/media"

	"go.uber.org/zap"
)

// Kind identifies what an announcement is about.
type Kind string

const (
	KindStore   Kind = "store"
	KindProduct Kind = "product"
)

// DefaultTimeout bounds a single dispatch.
const DefaultTimeout = 3 * time.Second

// Announcement is the message handed to a Dispatcher.
type Announcement struct {
	Kind     Kind   `json:"kind"`
	Text     string `json:"text"`
	ImageURL string `json:"image_url,omitempty"`
}

// Dispatcher delivers an announcement to its destination.
type Dispatcher interface {
	Dispatch(ctx context.Context, a Announcement) error
}

// StoreText is the announcement text for a newly opened store.
func StoreText(store *models.Store) string {
	return fmt.Sprintf("A new store has opened!\n\n%s", store.Name)
}

// ProductText is the announcement text for a newly listed product.
func ProductText(product *models.Product, store *models.Store) string {
	return fmt.Sprintf("New product added to %s!\n\n%s\n\n%s", store.Name, product.Name, product.Description)
}

// Notifier turns catalog events into announcements. Failures are logged and
// never reach the caller.
type Notifier struct {
	dispatcher Dispatcher
	media      media.Resolver
	timeout    time.Duration
	log        *zap.Logger
}

// NewNotifier creates a new Notifier. resolver may be nil when image URLs are not needed.
func NewNotifier(dispatcher Dispatcher, resolver media.Resolver, timeout time.Duration, log *zap.Logger) *Notifier {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{
		dispatcher: dispatcher,
		media:      resolver,
		timeout:    timeout,
		log:        log,
	}
}

// StoreCreated announces a new store.
func (n *Notifier) StoreCreated(ctx context.Context, store *models.Store) {
	n.send(ctx, Announcement{Kind: KindStore, Text: StoreText(store)})
}

// ProductCreated announces a new product of store.
func (n *Notifier) ProductCreated(ctx context.Context, product *models.Product, store *models.Store) {
	a := Announcement{Kind: KindProduct, Text: ProductText(product, store)}
	if product.ImageRef != "" && n.media != nil {
		url, err := n.media.URL(ctx, product.ImageRef)
		if err != nil {
			n.log.Warn("failed to resolve announcement image", zap.String("product_id", product.ID), zap.Error(err))
		} else {
			a.ImageURL = url
		}
	}
	n.send(ctx, a)
}

func (n *Notifier) send(ctx context.Context, a Announcement) {
	defer func() {
		if r := recover(); r != nil {
			n.log.Error("announcement dispatch panicked", zap.String("kind", string(a.Kind)), zap.Any("panic", r))
		}
	}()

	// The request context may already be finishing; the announcement gets its own budget.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), n.timeout)
	defer cancel()

	if err := n.dispatcher.Dispatch(ctx, a); err != nil {
		n.log.Error("failed to dispatch announcement", zap.String("kind", string(a.Kind)), zap.Error(err))
		return
	}
	n.log.Info("announcement dispatched", zap.String("kind", string(a.Kind)))
}
