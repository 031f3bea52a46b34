package main

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRunAlongsideWaitsForTasks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	var finished atomic.Int32

	slow := func(context.Context) {
		<-release
		time.Sleep(10 * time.Millisecond)
		finished.Add(1)
	}
	untilDone := func(ctx context.Context) {
		<-ctx.Done()
		finished.Add(1)
	}
	daemon := func(context.Context) {
		cancel()
		close(release)
	}

	runAlongside(ctx, daemon, slow, untilDone)

	assert.Equal(t, int32(2), finished.Load())
}

func TestRunAlongsideWithoutTasks(t *testing.T) {
	ran := false
	runAlongside(context.Background(), func(context.Context) { ran = true })
	assert.True(t, ran)
}
