package messaging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/serroba/storefront-gate/internal/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRunnable struct {
	started     bool
	stopped     bool
	startErr    error
	shutdownErr error
}

func (f *fakeRunnable) Start(_ context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}

	f.started = true

	return nil
}

func (f *fakeRunnable) Shutdown() error {
	f.stopped = true

	return f.shutdownErr
}

func newGroup(consumers ...*fakeRunnable) *messaging.ConsumerGroup {
	group := messaging.NewConsumerGroup(newMockSubscriber(), zap.NewNop())
	for _, c := range consumers {
		group.Add(c)
	}

	return group
}

func TestConsumerGroup_Start(t *testing.T) {
	t.Run("starts every consumer", func(t *testing.T) {
		first := &fakeRunnable{}
		second := &fakeRunnable{}
		group := newGroup(first, second)

		err := group.Start(context.Background())

		require.NoError(t, err)
		assert.True(t, first.started)
		assert.True(t, second.started)
	})

	t.Run("stops already-running consumers when one fails to start", func(t *testing.T) {
		first := &fakeRunnable{}
		second := &fakeRunnable{startErr: errors.New("start error")}
		group := newGroup(first, second)

		err := group.Start(context.Background())

		require.Error(t, err)
		assert.True(t, first.started)
		assert.True(t, first.stopped, "a partially started group must not stay up")
		assert.False(t, second.started)
	})
}

func TestConsumerGroup_Shutdown(t *testing.T) {
	t.Run("stops every consumer", func(t *testing.T) {
		first := &fakeRunnable{}
		second := &fakeRunnable{}
		group := newGroup(first, second)
		_ = group.Start(context.Background())

		err := group.Shutdown()

		require.NoError(t, err)
		assert.True(t, first.stopped)
		assert.True(t, second.stopped)
	})

	t.Run("reports the first error but stops the rest anyway", func(t *testing.T) {
		first := &fakeRunnable{shutdownErr: errors.New("shutdown error 1")}
		second := &fakeRunnable{shutdownErr: errors.New("shutdown error 2")}
		group := newGroup(first, second)
		_ = group.Start(context.Background())

		err := group.Shutdown()

		require.Error(t, err)
		assert.Contains(t, err.Error(), "shutdown error 1")
		assert.True(t, first.stopped)
		assert.True(t, second.stopped)
	})
}
