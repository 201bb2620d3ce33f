package notify

import (
	"context"
	"sync"
)

// MockFeed fans events out to in-process subscribers. Test use only.
type MockFeed struct {
	mu   sync.Mutex
	subs map[string][]*mockSubscription

	SubscribeErr error
}

func NewMockFeed() *MockFeed {
	return &MockFeed{subs: map[string][]*mockSubscription{}}
}

func (f *MockFeed) Subscribe(ctx context.Context, productID string) (Subscription, error) {
	if f.SubscribeErr != nil {
		return nil, f.SubscribeErr
	}
	sub := &mockSubscription{
		feed:      f,
		productID: productID,
		events:    make(chan StatusEvent, 8),
	}
	f.mu.Lock()
	f.subs[productID] = append(f.subs[productID], sub)
	f.mu.Unlock()
	return sub, nil
}

// Emit delivers an event to every open subscription for the product.
func (f *MockFeed) Emit(ev StatusEvent) {
	f.mu.Lock()
	subs := append([]*mockSubscription(nil), f.subs[ev.ProductID]...)
	f.mu.Unlock()
	for _, s := range subs {
		s.events <- ev
	}
}

// OpenCount reports live subscriptions for a product; tests use it to
// check that teardown actually left the room.
func (f *MockFeed) OpenCount(productID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[productID])
}

type mockSubscription struct {
	feed      *MockFeed
	productID string
	events    chan StatusEvent
	closeOnce sync.Once
}

func (s *mockSubscription) Events() <-chan StatusEvent { return s.events }

func (s *mockSubscription) Close() error {
	s.closeOnce.Do(func() {
		f := s.feed
		f.mu.Lock()
		list := f.subs[s.productID]
		for i, other := range list {
			if other == s {
				f.subs[s.productID] = append(list[:i], list[i+1:]...)
				break
			}
		}
		f.mu.Unlock()
		close(s.events)
	})
	return nil
}
