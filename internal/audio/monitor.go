// Package audio turns raw microphone frames into a talking signal and hands
// the same frames to the speech recognizer.
package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"

	"github.com/rs/zerolog"
)

// RMS returns the root-mean-square amplitude of a mono S16LE frame,
// normalized to 0..1. A trailing odd byte is ignored.
func RMS(frame []byte) float64 {
	n := len(frame) / 2
	if n == 0 {
		return 0
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		v := float64(int16(binary.LittleEndian.Uint16(frame[2*i:]))) / 32768.0
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}

// Monitor computes loudness for every captured frame. Process runs on the
// audio driver's callback thread and must never block.
type Monitor struct {
	threshold atomic.Uint64 // float64 bits
	level     atomic.Uint64 // float64 bits
	talking   atomic.Bool
	queue     *FrameQueue
	frames    atomic.Uint64
	log       zerolog.Logger
}

// NewMonitor creates a Monitor. A nil queue disables forwarding to the recognizer.
func NewMonitor(threshold float64, queue *FrameQueue, log zerolog.Logger) *Monitor {
	m := &Monitor{queue: queue, log: log}
	m.SetThreshold(threshold)
	return m
}

// Process handles one captured frame.
func (m *Monitor) Process(frame []byte) {
	level := RMS(frame)
	m.level.Store(math.Float64bits(level))
	m.talking.Store(level > m.Threshold())

	if m.frames.Add(1) == 1 {
		m.log.Debug().Int("bytes", len(frame)).Msg("first audio frame")
	}

	if m.queue != nil {
		buf := make([]byte, len(frame))
		copy(buf, frame)
		m.queue.Push(buf)
	}
}

// Talking reports whether the last frame was louder than the threshold.
func (m *Monitor) Talking() bool { return m.talking.Load() }

// Level returns the RMS of the last frame.
func (m *Monitor) Level() float64 { return math.Float64frombits(m.level.Load()) }

// Threshold returns the current talking threshold.
func (m *Monitor) Threshold() float64 { return math.Float64frombits(m.threshold.Load()) }

// SetThreshold replaces the talking threshold; safe from any goroutine.
func (m *Monitor) SetThreshold(t float64) { m.threshold.Store(math.Float64bits(t)) }
