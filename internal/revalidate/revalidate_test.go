package revalidate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkoutPath(t *testing.T) {
	assert.Equal(t, "/dashboard/workout/42", WorkoutPath(42))
}

func TestRecorderAndMulti(t *testing.T) {
	ctx := context.Background()
	a, b := &Recorder{}, &Recorder{}
	m := Multi{a, LogSink{}, b}

	require.NoError(t, m.Revalidate(ctx, DashboardPath))
	require.NoError(t, m.Revalidate(ctx, WorkoutPath(1)))

	assert.Equal(t, []string{"/dashboard", "/dashboard/workout/1"}, a.Paths())
	assert.Equal(t, a.Paths(), b.Paths())

	a.Reset()
	assert.Empty(t, a.Paths())
}

type failingSink struct{}

func (failingSink) Revalidate(context.Context, string) error { return errors.New("down") }

func TestMultiKeepsGoingAfterFailure(t *testing.T) {
	rec := &Recorder{}
	err := Multi{failingSink{}, rec}.Revalidate(context.Background(), DashboardPath)
	assert.EqualError(t, err, "down")
	assert.Equal(t, []string{DashboardPath}, rec.Paths())
}

func TestRedisSinkPublishes(t *testing.T) {
	srv := miniredis.RunT(t)
	ctx := context.Background()

	sink, err := NewRedisSink(ctx, RedisConfig{Addr: srv.Addr(), Channel: "liftlog:revalidate"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })

	sub := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = sub.Close() })
	pubsub := sub.Subscribe(ctx, "liftlog:revalidate")
	t.Cleanup(func() { _ = pubsub.Close() })
	_, err = pubsub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, sink.Revalidate(ctx, WorkoutPath(9)))

	select {
	case msg := <-pubsub.Channel():
		assert.Equal(t, "/dashboard/workout/9", msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRedisSinkRequiresConfig(t *testing.T) {
	_, err := NewRedisSink(context.Background(), RedisConfig{Channel: "x"})
	assert.Error(t, err)

	srv := miniredis.RunT(t)
	_, err = NewRedisSink(context.Background(), RedisConfig{Addr: srv.Addr()})
	assert.Error(t, err)
}

func TestRedisSinkReportsPublishFailure(t *testing.T) {
	srv := miniredis.RunT(t)
	sink, err := NewRedisSink(context.Background(), RedisConfig{Addr: srv.Addr(), Channel: "c"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = sink.Close() })

	srv.Close()
	assert.Error(t, sink.Revalidate(context.Background(), DashboardPath))
}
