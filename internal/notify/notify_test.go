package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"giftmarket/internal/models"
	"giftmarket/internal/notify"
	"giftmarket/pkg/social"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockDispatcher struct {
	mock.Mock
}

func (m *MockDispatcher) Dispatch(ctx context.Context, a notify.Announcement) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

type MockPoster struct {
	mock.Mock
}

func (m *MockPoster) Post(ctx context.Context, text, imageURL string) error {
	args := m.Called(ctx, text, imageURL)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, v any) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

type stubResolver struct{}

func (stubResolver) URL(_ context.Context, ref string) (string, error) {
	return "https://cdn.example.com/" + ref, nil
}

func TestNotifier_StoreCreated(t *testing.T) {
	d := new(MockDispatcher)
	n := notify.NewNotifier(d, nil, time.Second, nil)

	d.On("Dispatch", mock.Anything, notify.Announcement{
		Kind: notify.KindStore,
		Text: "A new store has opened!\n\nCandle Corner",
	}).Return(nil).Once()

	n.StoreCreated(context.Background(), &models.Store{Name: "Candle Corner"})
	d.AssertExpectations(t)
}

func TestNotifier_ProductCreatedWithImage(t *testing.T) {
	d := new(MockDispatcher)
	n := notify.NewNotifier(d, stubResolver{}, time.Second, nil)

	d.On("Dispatch", mock.Anything, notify.Announcement{
		Kind:     notify.KindProduct,
		Text:     "New product added to Candle Corner!\n\nLavender Candle\n\nHand poured",
		ImageURL: "https://cdn.example.com/products/candle.png",
	}).Return(nil).Once()

	n.ProductCreated(context.Background(),
		&models.Product{Name: "Lavender Candle", Description: "Hand poured", ImageRef: "products/candle.png"},
		&models.Store{Name: "Candle Corner"})
	d.AssertExpectations(t)
}

func TestNotifier_SwallowsErrorsAndPanics(t *testing.T) {
	d := new(MockDispatcher)
	n := notify.NewNotifier(d, nil, time.Second, nil)

	d.On("Dispatch", mock.Anything, mock.Anything).Return(errors.New("rate limited")).Once()
	assert.NotPanics(t, func() {
		n.StoreCreated(context.Background(), &models.Store{Name: "A"})
	})

	d.On("Dispatch", mock.Anything, mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	}).Return(nil).Once()
	assert.NotPanics(t, func() {
		n.StoreCreated(context.Background(), &models.Store{Name: "B"})
	})
	d.AssertExpectations(t)
}

func TestNotifier_DispatchSurvivesCancelledRequest(t *testing.T) {
	d := new(MockDispatcher)
	n := notify.NewNotifier(d, nil, time.Second, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d.On("Dispatch", mock.MatchedBy(func(ctx context.Context) bool {
		_, hasDeadline := ctx.Deadline()
		return ctx.Err() == nil && hasDeadline
	}), mock.Anything).Return(nil).Once()

	n.StoreCreated(ctx, &models.Store{Name: "Late"})
	d.AssertExpectations(t)
}

func TestQueueDispatcher(t *testing.T) {
	p := new(MockPublisher)
	d := notify.NewQueueDispatcher(p)
	a := notify.Announcement{Kind: notify.KindStore, Text: "hello"}

	p.On("Publish", mock.Anything, a).Return(nil).Once()
	require.NoError(t, d.Dispatch(context.Background(), a))

	p.On("Publish", mock.Anything, a).Return(errors.New("channel closed")).Once()
	err := d.Dispatch(context.Background(), a)
	assert.ErrorContains(t, err, "channel closed")
	p.AssertExpectations(t)
}

func TestDirectDispatcher(t *testing.T) {
	p := new(MockPoster)
	d := notify.NewDirectDispatcher(p)

	p.On("Post", mock.Anything, "hello", "https://img").Return(nil).Once()
	require.NoError(t, d.Dispatch(context.Background(), notify.Announcement{Text: "hello", ImageURL: "https://img"}))
	p.AssertExpectations(t)
}

func TestConsumeHandler_AlwaysAcks(t *testing.T) {
	p := new(MockPoster)
	handle := notify.ConsumeHandler(context.Background(), p, time.Second, nil)

	body, err := json.Marshal(notify.Announcement{Kind: notify.KindProduct, Text: "new thing"})
	require.NoError(t, err)

	p.On("Post", mock.Anything, "new thing", "").Return(nil).Once()
	assert.NoError(t, handle(amqp.Delivery{Body: body}))

	p.On("Post", mock.Anything, "new thing", "").Return(errors.New("unauthorized")).Once()
	assert.NoError(t, handle(amqp.Delivery{Body: body}))

	assert.NoError(t, handle(amqp.Delivery{Body: []byte("not json")}))
	p.AssertExpectations(t)
}

func TestConsumeHandler_BoundsHangingPost(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	poster := social.NewClient(social.Config{APIURL: srv.URL, AccessToken: "t"}, zap.NewNop())
	handle := notify.ConsumeHandler(context.Background(), poster, 50*time.Millisecond, nil)

	body, err := json.Marshal(notify.Announcement{Kind: notify.KindStore, Text: "A new store has opened!"})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- handle(amqp.Delivery{Body: body}) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not give up on a hanging post")
	}
}
