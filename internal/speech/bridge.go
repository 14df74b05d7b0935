// Package speech forwards captured audio to a streaming recognizer and turns
// finalized utterances into keyword triggers.
package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"vtuber/internal/audio"
)

// Recognizer is a streaming speech-to-text engine.
type Recognizer interface {
	// Accept feeds one PCM frame. When the engine closes an utterance it
	// returns the recognized text with final set.
	Accept(frame []byte) (text string, final bool, err error)
	Close() error
}

// TriggerFunc is invoked at most once per utterance that contains a keyword.
type TriggerFunc func(keyword, text string)

// Bridge drains the frame queue into a Recognizer.
type Bridge struct {
	queue       *audio.FrameQueue
	rec         Recognizer
	matcher     *Matcher
	onTrigger   TriggerFunc
	pollTimeout time.Duration
	backoff     time.Duration
	log         zerolog.Logger
}

// Option configures a [Bridge].
type Option func(*Bridge)

// WithPollTimeout sets how long each queue read waits. The default is 1s.
func WithPollTimeout(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.pollTimeout = d
		}
	}
}

// WithBackoff sets the pause after a recognizer error. The default is 1s.
func WithBackoff(d time.Duration) Option {
	return func(b *Bridge) {
		if d > 0 {
			b.backoff = d
		}
	}
}

// WithLogger sets the bridge logger.
func WithLogger(log zerolog.Logger) Option {
	return func(b *Bridge) { b.log = log }
}

// NewBridge creates a Bridge.
func NewBridge(queue *audio.FrameQueue, rec Recognizer, matcher *Matcher, onTrigger TriggerFunc, opts ...Option) *Bridge {
	b := &Bridge{
		queue:       queue,
		rec:         rec,
		matcher:     matcher,
		onTrigger:   onTrigger,
		pollTimeout: time.Second,
		backoff:     time.Second,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run processes frames until ctx is cancelled. It returns nil on cancellation.
func (b *Bridge) Run(ctx context.Context) error {
	b.log.Info().Strs("keywords", b.matcher.Keywords()).Msg("keyword listener started")
	defer b.log.Info().Msg("keyword listener stopped")

	for {
		if ctx.Err() != nil {
			return nil
		}

		frame, err := b.queue.Pop(ctx, b.pollTimeout)
		switch {
		case errors.Is(err, audio.ErrQueueTimeout):
			continue
		case err != nil:
			return nil
		}

		if err := b.step(frame); err != nil {
			b.log.Error().Err(err).Msg("keyword listener error")
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(b.backoff):
			}
		}
	}
}

// step feeds one frame and reacts to a finalized utterance.
func (b *Bridge) step(frame []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("speech: recognizer panic: %v", r)
		}
	}()

	text, final, err := b.rec.Accept(frame)
	if err != nil {
		return fmt.Errorf("speech: accept: %w", err)
	}
	if !final {
		return nil
	}

	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return nil
	}
	b.log.Info().Str("text", text).Msg("heard")

	if keyword, ok := b.matcher.Match(text); ok {
		b.log.Info().Str("keyword", keyword).Msg("keyword detected, triggering magic")
		b.onTrigger(keyword, text)
	}
	return nil
}
