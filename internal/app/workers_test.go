package app

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkers_StartIsIdempotentAndStopJoins(t *testing.T) {
	w := NewWorkers(context.Background(), zerolog.Nop())

	var runs, stopped atomic.Int32
	for _, name := range []string{"mic", "speech"} {
		w.Add(name, func(ctx context.Context) error {
			runs.Add(1)
			<-ctx.Done()
			stopped.Add(1)
			return nil
		})
	}

	w.Start()
	w.Start()
	require.Eventually(t, func() bool { return runs.Load() == 2 }, time.Second, time.Millisecond)
	assert.True(t, w.Started())

	require.NoError(t, w.Stop())
	assert.Equal(t, int32(2), runs.Load())
	assert.Equal(t, int32(2), stopped.Load())
	assert.NoError(t, w.Stop())
}

func TestWorkers_ErrorDoesNotCancelOthers(t *testing.T) {
	w := NewWorkers(context.Background(), zerolog.Nop())
	boom := errors.New("no device")

	var alive atomic.Bool
	w.Add("mic", func(context.Context) error { return boom })
	w.Add("chat", func(ctx context.Context) error {
		alive.Store(true)
		<-ctx.Done()
		return nil
	})

	w.Start()
	require.Eventually(t, alive.Load, time.Second, time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	assert.True(t, alive.Load())

	assert.ErrorIs(t, w.Stop(), boom)
}

func TestWorkers_StopWithoutStart(t *testing.T) {
	w := NewWorkers(context.Background(), zerolog.Nop())
	w.Add("idle", func(ctx context.Context) error { <-ctx.Done(); return nil })
	assert.NoError(t, w.Stop())
	assert.False(t, w.Started())
}

func TestWorkers_ParentCancelStopsLoops(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	w := NewWorkers(parent, zerolog.Nop())

	done := make(chan struct{})
	w.Add("loop", func(ctx context.Context) error {
		<-ctx.Done()
		close(done)
		return nil
	})
	w.Start()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker ignored parent cancellation")
	}
	assert.NoError(t, w.Stop())
}

func TestInbox_PostAndDrain(t *testing.T) {
	b := NewInbox(2)
	assert.Nil(t, b.Drain())

	assert.True(t, b.Post(Event{Kind: EventTrigger, Keyword: "wow"}))
	assert.True(t, b.Post(Event{Kind: EventSwitchModel, Model: "neko"}))
	assert.False(t, b.Post(Event{Kind: EventTrigger}), "full inbox rejects without blocking")
	assert.Equal(t, uint64(1), b.Dropped())

	got := b.Drain()
	require.Len(t, got, 2)
	assert.Equal(t, "wow", got[0].Keyword)
	assert.Equal(t, EventSwitchModel, got[1].Kind)
	assert.Empty(t, b.Drain())
}

func TestLayout_PopupGeometry(t *testing.T) {
	l := NewLayout(800, 800)

	assert.Equal(t, image.Rect(200, 175, 600, 625), l.Popup)
	require.Len(t, l.PopupButtons, 5)
	assert.Equal(t, image.Rect(240, 255, 560, 305), l.PopupButtons[0].Rect)
	assert.Equal(t, 545, l.PopupButtons[4].Rect.Min.Y)
	for _, b := range l.PopupButtons {
		assert.True(t, b.Rect.In(l.Popup), b.Label)
	}

	label, ok := hit(l.Menu, image.Pt(250, 400))
	assert.True(t, ok)
	assert.Equal(t, ButtonStart, label)
	_, ok = hit(l.Menu, image.Pt(550, 400))
	assert.False(t, ok, "right edge is exclusive")
}
