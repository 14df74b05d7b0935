package audio

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// ErrQueueTimeout is returned by Pop when no frame arrived in time.
var ErrQueueTimeout = errors.New("audio: queue pop timed out")

// FrameQueue is a bounded multi-producer, single-consumer frame buffer.
// Overflow: oldest frames are dropped when full.
type FrameQueue struct {
	ch      chan []byte
	dropped atomic.Uint64
}

// NewFrameQueue creates a queue holding at most size frames.
func NewFrameQueue(size int) *FrameQueue {
	if size < 1 {
		size = 1
	}
	return &FrameQueue{ch: make(chan []byte, size)}
}

// Push adds a frame without blocking.
func (q *FrameQueue) Push(frame []byte) {
	for {
		select {
		case q.ch <- frame:
			return
		default:
		}

		// Full: evict the oldest and retry. Another producer may win the
		// freed slot, so loop.
		select {
		case <-q.ch:
			q.dropped.Add(1)
		default:
		}
	}
}

// Pop waits up to timeout for the next frame.
func (q *FrameQueue) Pop(ctx context.Context, timeout time.Duration) ([]byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case frame := <-q.ch:
		return frame, nil
	case <-timer.C:
		return nil, ErrQueueTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of buffered frames.
func (q *FrameQueue) Len() int { return len(q.ch) }

// Cap returns the queue capacity.
func (q *FrameQueue) Cap() int { return cap(q.ch) }

// Dropped returns how many frames were discarded on overflow.
func (q *FrameQueue) Dropped() uint64 { return q.dropped.Load() }
