package errutil_test

import (
	"context"
	"errors"
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/utils/errutil"
)

// captureSentry binds a client to the current hub that keeps every event
// instead of sending it
func captureSentry(t *testing.T) *[]*sentry.Event {
	t.Helper()

	var events []*sentry.Event
	client, err := sentry.NewClient(sentry.ClientOptions{
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			events = append(events, event)
			return nil
		},
	})
	gt.NoError(t, err).Required()

	hub := sentry.CurrentHub()
	prev := hub.Client()
	hub.BindClient(client)
	t.Cleanup(func() { hub.BindClient(prev) })
	return &events
}

func TestHandle_ForwardsGoerrValues(t *testing.T) {
	events := captureSentry(t)

	err := goerr.New("store rejected write", goerr.V("memory_id", "ev1:achilles"), goerr.V("attempt", 2))
	errutil.Handle(context.Background(), err, "failed to persist memory recall")

	gt.Array(t, *events).Length(1).Required()
	ev := (*events)[0]
	gt.Value(t, ev.Tags["message"]).Equal("failed to persist memory recall")
	gt.Map(t, ev.Contexts).HasKey("goerr").Required()
	gt.Value(t, ev.Contexts["goerr"]["memory_id"]).Equal(any("ev1:achilles"))
	gt.Value(t, ev.Contexts["goerr"]["attempt"]).Equal(any(2))
}

func TestHandle_PlainError(t *testing.T) {
	events := captureSentry(t)

	errutil.Handle(context.Background(), errors.New("disk full"), "failed to delete pruned events")

	gt.Array(t, *events).Length(1).Required()
	gt.Map(t, (*events)[0].Contexts).NotHasKey("goerr")
}

func TestHandle_NilIsIgnored(t *testing.T) {
	events := captureSentry(t)

	errutil.Handle(context.Background(), nil, "nothing happened")
	gt.Array(t, *events).Length(0)
}
