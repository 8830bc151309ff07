package util

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"
)

// SignalContext returns a child of ctx that is canceled delay after one of
// sigs arrives. context.Cause of the child names the signal.
func SignalContext(ctx context.Context, delay time.Duration, sigs ...os.Signal) context.Context {
	sch := make(chan os.Signal, 1)
	sub, cancel := context.WithCancelCause(ctx)
	signal.Notify(sch, sigs...)

	go func() {
		defer signal.Stop(sch)
		select {
		case <-sub.Done():
		case s := <-sch:
			time.Sleep(delay)
			cancel(fmt.Errorf("received %s", s))
		}
	}()

	return sub
}
