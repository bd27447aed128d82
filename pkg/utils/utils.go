package utils

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Or returns the first non-zero value.
func Or[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// SetupSignalContext returns a context cancelled on SIGINT or SIGTERM. A
// second signal exits the process.
func SetupSignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}

func Ptr[T any](v T) *T {
	return &v
}

// ISOTime formats t in UTC with millisecond precision, the timestamp layout
// stored in the RemoteStore.
func ISOTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
