package speech

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vtuber/internal/audio"
)

// scriptedRecognizer returns one scripted result per Accept call.
type scriptedRecognizer struct {
	mu      sync.Mutex
	results []result
	calls   int
}

type result struct {
	text  string
	final bool
	err   error
	panic bool
}

func (r *scriptedRecognizer) Accept([]byte) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.calls
	r.calls++
	if i >= len(r.results) {
		return "", false, nil
	}
	res := r.results[i]
	if res.panic {
		panic("decoder exploded")
	}
	return res.text, res.final, res.err
}

func (r *scriptedRecognizer) Close() error { return nil }

func (r *scriptedRecognizer) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type triggerLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *triggerLog) record(keyword, _ string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, keyword)
}

func (l *triggerLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

func runBridge(t *testing.T, rec Recognizer, frames int, keywords ...string) (*triggerLog, func()) {
	t.Helper()
	q := audio.NewFrameQueue(16)
	for i := 0; i < frames; i++ {
		q.Push([]byte{0, 0})
	}

	log := &triggerLog{}
	b := NewBridge(q, rec, NewMatcher(keywords), log.record,
		WithPollTimeout(5*time.Millisecond),
		WithBackoff(5*time.Millisecond),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()

	return log, func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(time.Second):
			t.Fatal("bridge did not stop")
		}
	}
}

func TestBridge_OneTriggerPerUtterance(t *testing.T) {
	rec := &scriptedRecognizer{results: []result{
		{text: "that's so cute!", final: true},
	}}
	log, stop := runBridge(t, rec, 1, "cute", "so", "wow")

	require.Eventually(t, func() bool { return rec.Calls() >= 1 }, time.Second, time.Millisecond)
	stop()

	assert.Equal(t, []string{"cute"}, log.snapshot(), "first keyword in configured order wins")
}

func TestBridge_IgnoresPartialsAndEmptyText(t *testing.T) {
	rec := &scriptedRecognizer{results: []result{
		{text: "cute", final: false},
		{text: "   ", final: true},
		{text: "hello there", final: true},
	}}
	log, stop := runBridge(t, rec, 3, "cute")

	require.Eventually(t, func() bool { return rec.Calls() >= 3 }, time.Second, time.Millisecond)
	stop()

	assert.Empty(t, log.snapshot())
}

func TestBridge_SurvivesErrorsAndPanics(t *testing.T) {
	rec := &scriptedRecognizer{results: []result{
		{err: errors.New("bad chunk")},
		{panic: true},
		{text: "WOW amazing", final: true},
	}}
	log, stop := runBridge(t, rec, 3, "wow")

	require.Eventually(t, func() bool { return len(log.snapshot()) == 1 }, time.Second, time.Millisecond)
	stop()

	assert.Equal(t, []string{"wow"}, log.snapshot())
}

func TestBridge_StopsWhileIdle(t *testing.T) {
	rec := &scriptedRecognizer{}
	_, stop := runBridge(t, rec, 0, "cute")
	time.Sleep(20 * time.Millisecond)
	stop()
	assert.Zero(t, rec.Calls())
}
