// Package effects owns the keyword celebration: a decaying glow and a
// burst of hearts and sparkles drifting down from the avatar.
package effects

import (
	"math"
	"math/rand/v2"
)

// Kind selects a particle sprite.
type Kind int

const (
	Heart Kind = iota
	Sparkle
)

func (k Kind) String() string {
	switch k {
	case Heart:
		return "heart"
	case Sparkle:
		return "sparkle"
	}
	return "unknown"
}

// Particle is one decorative entity. Velocity is in pixels per frame.
type Particle struct {
	Kind    Kind
	X, Y    float64
	VX, VY  float64
	Life    int // frames remaining
	MaxLife int // frames at spawn
	Scale   float64
}

// Range is an inclusive uniform interval.
type Range struct{ Min, Max float64 }

func (r Range) sample(rng *rand.Rand) float64 {
	return r.Min + rng.Float64()*(r.Max-r.Min)
}

// IntRange is an inclusive integer interval.
type IntRange struct{ Min, Max int }

func (r IntRange) sample(rng *rand.Rand) int {
	return r.Min + rng.IntN(r.Max-r.Min+1)
}

// Spawn holds per-kind randomization ranges.
type Spawn struct {
	Count  int
	VX, VY Range
	Life   IntRange
	Scale  Range
}

// Config tunes a System.
type Config struct {
	GlowDuration int
	GlowMaxAlpha float64
	SpawnRadius  float64
	MaxParticles int
	Hearts       Spawn
	Sparkles     Spawn
}

// DefaultConfig returns the stock burst: 60 hearts, 30 sparkles, 3s of glow.
func DefaultConfig() Config {
	return Config{
		GlowDuration: 180,
		GlowMaxAlpha: 150,
		SpawnRadius:  150,
		MaxParticles: 2000,
		Hearts: Spawn{
			Count: 60,
			VX:    Range{-1.0, 1.0},
			VY:    Range{0.5, 2.5},
			Life:  IntRange{100, 180},
			Scale: Range{0.7, 1.1},
		},
		Sparkles: Spawn{
			Count: 30,
			VX:    Range{-0.8, 0.8},
			VY:    Range{0.3, 1.8},
			Life:  IntRange{80, 160},
			Scale: Range{0.5, 1.3},
		},
	}
}

// System is the particle bag and glow timer. It is single-writer: only the
// render goroutine calls Trigger and Advance.
type System struct {
	cfg       Config
	rng       *rand.Rand
	particles []Particle
	glow      int
}

// New creates a System drawing randomness from rng.
func New(cfg Config, rng *rand.Rand) *System {
	return &System{
		cfg:       cfg,
		rng:       rng,
		particles: make([]Particle, 0, cfg.Hearts.Count+cfg.Sparkles.Count),
	}
}

// Trigger resets the glow and spawns a burst around (cx, cy). The burst is
// truncated so the live set never exceeds MaxParticles. It returns the
// number of particles added.
func (s *System) Trigger(cx, cy float64) int {
	s.glow = s.cfg.GlowDuration

	room := s.cfg.MaxParticles - len(s.particles)
	added := 0
	for _, sp := range []struct {
		kind Kind
		cfg  Spawn
	}{{Heart, s.cfg.Hearts}, {Sparkle, s.cfg.Sparkles}} {
		for i := 0; i < sp.cfg.Count && added < room; i++ {
			s.particles = append(s.particles, s.spawn(sp.kind, sp.cfg, cx, cy))
			added++
		}
	}
	return added
}

func (s *System) spawn(kind Kind, sp Spawn, cx, cy float64) Particle {
	r := s.cfg.SpawnRadius
	angle := s.rng.Float64() * 2 * math.Pi
	ox := s.rng.Float64() * r
	oy := Range{-r, r}.sample(s.rng)
	life := sp.Life.sample(s.rng)

	return Particle{
		Kind:    kind,
		X:       cx + ox*math.Cos(angle),
		Y:       cy + oy,
		VX:      sp.VX.sample(s.rng),
		VY:      sp.VY.sample(s.rng),
		Life:    life,
		MaxLife: life,
		Scale:   sp.Scale.sample(s.rng),
	}
}

// Advance steps one frame: the glow decays by one, every particle moves by
// its velocity and ages by one, and particles that expired or fell below
// viewportHeight are evicted. Eviction does not preserve order.
func (s *System) Advance(viewportHeight float64) {
	if s.glow > 0 {
		s.glow--
	}

	for i := 0; i < len(s.particles); {
		p := &s.particles[i]
		p.X += p.VX
		p.Y += p.VY
		p.Life--

		if p.Life <= 0 || p.Y > viewportHeight {
			last := len(s.particles) - 1
			s.particles[i] = s.particles[last]
			s.particles = s.particles[:last]
			continue
		}
		i++
	}
}

// Particles returns the live set. The slice is only valid until the next
// Trigger or Advance.
func (s *System) Particles() []Particle { return s.particles }

// Len returns the live particle count.
func (s *System) Len() int { return len(s.particles) }

// Glow returns the remaining glow frames.
func (s *System) Glow() int { return s.glow }

// GlowAlpha returns the glow opacity, linear in the remaining frames.
func (s *System) GlowAlpha() float64 {
	if s.cfg.GlowDuration <= 0 {
		return 0
	}
	return s.cfg.GlowMaxAlpha * float64(s.glow) / float64(s.cfg.GlowDuration)
}
