package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/nhle/todolist/internal/model"
)

// Subscription delivers snapshots of a query's result set. C holds at most
// one pending snapshot; a newer one replaces it if the consumer is behind.
// C is closed when the subscription ends.
type Subscription struct {
	C <-chan []model.Entry

	out    chan []model.Entry
	dirty  chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Close stops the subscription and waits for its goroutine to exit.
// It is safe to call more than once.
func (sub *Subscription) Close() {
	sub.once.Do(sub.cancel)
	<-sub.done
}

// hub tracks live subscriptions and wakes them after each mutation.
type hub struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[*Subscription]struct{})}
}

func (h *hub) add(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[sub] = struct{}{}
}

func (h *hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, sub)
}

// notify marks every subscription dirty without blocking. A subscription
// that already has a refresh pending absorbs the signal.
func (h *hub) notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		select {
		case sub.dirty <- struct{}{}:
		default:
		}
	}
}

// closeAll ends every live subscription.
func (h *hub) closeAll() {
	h.mu.Lock()
	subs := make([]*Subscription, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
}

// Watch starts an observable query. The first snapshot is delivered as soon
// as it is read; later ones follow every insert, update, delete or restamp
// that changed data.
func (s *SQLiteStore) Watch(ctx context.Context, q Query) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	out := make(chan []model.Entry, 1)
	sub := &Subscription{
		C:      out,
		out:    out,
		dirty:  make(chan struct{}, 1),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	sub.dirty <- struct{}{}

	s.hub.add(sub)
	go s.serve(ctx, sub, q)

	return sub
}

// serve re-runs q whenever sub is marked dirty and publishes the result.
func (s *SQLiteStore) serve(ctx context.Context, sub *Subscription, q Query) {
	defer close(sub.done)
	defer close(sub.out)
	defer s.hub.remove(sub)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.dirty:
		}

		entries, err := s.Query(ctx, q)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.log.Warn("refreshing subscription", zap.Error(err))
			continue
		}

		// Only this goroutine sends, so after draining the send cannot block.
		select {
		case <-sub.out:
		default:
		}
		sub.out <- entries
	}
}
