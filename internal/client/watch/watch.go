// Package watch delivers live query results: a Hub broadcasts change ticks
// whenever the wardrobe is written, and Observe re-runs a fetch on every
// tick, pushing fresh snapshots to a channel. The mechanism is deliberately
// decoupled from the storage engine; the services layer is the only writer
// and notifies the hub after each write.
package watch

import (
	"context"
	"sync"
	"time"
)

// Hub fans one change signal out to all current subscribers. Ticks carry no
// payload; subscribers re-read whatever they care about.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan struct{}
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan struct{})}
}

// Notify signals every subscriber that the underlying data changed. Sends
// never block: a subscriber that already has a pending tick keeps just one.
func (h *Hub) Notify() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Subscribe registers a tick channel and returns it with its cancel func.
func (h *Hub) Subscribe() (<-chan struct{}, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.next
	h.next++
	ch := make(chan struct{}, 1)
	h.subs[id] = ch

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs, id)
	}
	return ch, cancel
}

// Observe runs fetch once immediately and again after every hub tick,
// sending each result on the returned channel. every is the floor between
// re-evaluations: ticks arriving sooner are held back and collapsed into one
// refresh (0 disables the floor). A slow consumer never blocks the loop: a
// newer snapshot replaces an unconsumed older one. The channel closes when
// ctx is done. Fetch errors skip the emission; the next tick retries.
func Observe[T any](ctx context.Context, hub *Hub, every time.Duration, fetch func(context.Context) (T, error)) <-chan T {
	out := make(chan T, 1)
	ticks, cancel := hub.Subscribe()

	go func() {
		defer close(out)
		defer cancel()

		emit := func() {
			v, err := fetch(ctx)
			if err != nil {
				return
			}
			for {
				select {
				case out <- v:
					return
				default:
				}
				// replace the stale pending snapshot
				select {
				case <-out:
				default:
				}
			}
		}

		emit()
		last := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				if wait := every - time.Since(last); wait > 0 {
					timer := time.NewTimer(wait)
					select {
					case <-ctx.Done():
						timer.Stop()
						return
					case <-timer.C:
					}
					// ticks that piled up while waiting collapse into
					// this refresh
					select {
					case <-ticks:
					default:
					}
				}
				emit()
				last = time.Now()
			}
		}
	}()

	return out
}
