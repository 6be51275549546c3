package usecase

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/chronicle/pkg/domain/model"
	"github.com/secmon-lab/chronicle/pkg/domain/types"
	"github.com/secmon-lab/chronicle/pkg/utils/async"
	"github.com/secmon-lab/chronicle/pkg/utils/errutil"
)

// AllEvents subscribes a handler to every event type
const AllEvents types.EventType = "*"

// Handler receives a copy of each published event it subscribed to. A
// returned error is logged and does not stop delivery.
type Handler func(ctx context.Context, ev *model.Event) error

// Detached wraps handler so that it runs in its own goroutine. Delivery
// does not wait for it, and its errors are only logged.
func Detached(handler Handler) Handler {
	return func(ctx context.Context, ev *model.Event) error {
		async.Dispatch(ctx, func(ctx context.Context) error {
			return handler(ctx, ev)
		})
		return nil
	}
}

type subscription struct {
	id      uint64
	handler Handler
}

type router struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[types.EventType][]subscription
}

func newRouter() *router {
	return &router{
		subs: make(map[types.EventType][]subscription),
	}
}

func (r *router) subscribe(eventType types.EventType, handler Handler) func() {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs[eventType] = append(r.subs[eventType], subscription{id: id, handler: handler})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()

			r.subs[eventType] = slices.DeleteFunc(r.subs[eventType], func(s subscription) bool {
				return s.id == id
			})
			if len(r.subs[eventType]) == 0 {
				delete(r.subs, eventType)
			}
		})
	}
}

// snapshot returns the handlers of ev in registration order. Type
// subscribers run before wildcard subscribers.
func (r *router) snapshot(eventType types.EventType) []subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	subs := slices.Clone(r.subs[eventType])
	if eventType != AllEvents {
		subs = append(subs, r.subs[AllEvents]...)
	}
	return subs
}

// deliver runs every handler of ev synchronously. Handlers may subscribe or
// unsubscribe while delivery is in progress; the change applies to the
// next event.
func (r *router) deliver(ctx context.Context, ev *model.Event) {
	for _, sub := range r.snapshot(ev.Type) {
		if err := r.invoke(ctx, sub, ev.Copy()); err != nil {
			errutil.Handle(ctx, err, "event handler failed")
		}
	}
}

func (r *router) invoke(ctx context.Context, sub subscription, ev *model.Event) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = goerr.New("event handler panicked",
				goerr.V(EventIDKey, ev.ID),
				goerr.V(EventTypeKey, ev.Type),
				goerr.V("panic", fmt.Sprint(rec)))
		}
	}()

	if err := sub.handler(ctx, ev); err != nil {
		return goerr.Wrap(err, "event handler returned error",
			goerr.V(EventIDKey, ev.ID),
			goerr.V(EventTypeKey, ev.Type),
			goerr.V("subscription", sub.id))
	}
	return nil
}

func (r *router) count(eventType types.EventType) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[eventType])
}
