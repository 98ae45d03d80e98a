package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	topic, key string
	got        []Event
	err        error
}

func (r *recorder) Publish(_ context.Context, topic, key string, ev Event) error {
	r.topic, r.key = topic, key
	r.got = append(r.got, ev)
	return r.err
}

func TestEmit(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	Emit(context.Background(), rec, TopicVideos, "v1", "video_published", map[string]any{"id": "v1"})

	require.Len(t, rec.got, 1)
	assert.Equal(t, TopicVideos, rec.topic)
	assert.Equal(t, "v1", rec.key)
	assert.Equal(t, "video_published", rec.got[0].Type)
	assert.False(t, rec.got[0].OccurredAt.IsZero())
}

func TestEmit_SwallowsErrors(t *testing.T) {
	t.Parallel()

	rec := &recorder{err: errors.New("broker down")}
	assert.NotPanics(t, func() {
		Emit(context.Background(), rec, TopicUsers, "u", "user_registered", nil)
	})
	Emit(context.Background(), nil, TopicUsers, "u", "user_registered", nil)
	assert.NoError(t, Nop{}.Publish(context.Background(), "t", "k", Event{}))
}
