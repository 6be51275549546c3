package async_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/chronicle/pkg/utils/async"
)

type ctxKey struct{}

func TestDispatch(t *testing.T) {
	t.Run("handler outlives the caller context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.WithValue(context.Background(), ctxKey{}, "ares"))
		done := make(chan string, 1)

		async.Dispatch(ctx, func(ctx context.Context) error {
			<-time.After(10 * time.Millisecond)
			v, _ := ctx.Value(ctxKey{}).(string)
			if ctx.Err() != nil {
				v = "canceled"
			}
			done <- v
			return nil
		})
		cancel()

		select {
		case v := <-done:
			gt.Value(t, v).Equal("ares")
		case <-time.After(time.Second):
			t.Fatal("handler did not run")
		}
	})

	t.Run("errors and panics do not escape", func(t *testing.T) {
		done := make(chan struct{}, 2)

		async.Dispatch(context.Background(), func(ctx context.Context) error {
			defer func() { done <- struct{}{} }()
			return errors.New("boom")
		})
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			defer func() { done <- struct{}{} }()
			panic("boom")
		})

		for range 2 {
			select {
			case <-done:
			case <-time.After(time.Second):
				t.Fatal("handler did not run")
			}
		}
	})
}
