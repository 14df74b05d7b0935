// Package app holds the frame-driven state machine behind the overlay window:
// splash, menu and the live game with its options and rename sub-states.
package app

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"vtuber/internal/anim"
	"vtuber/internal/avatar"
	"vtuber/internal/effects"
)

// ErrQuit is returned by Update when the user asks to leave.
var ErrQuit = errors.New("app: quit")

// Phase is the top-level screen.
type Phase int

const (
	Splash Phase = iota
	Menu
	Game
)

func (p Phase) String() string {
	switch p {
	case Splash:
		return "splash"
	case Menu:
		return "menu"
	case Game:
		return "game"
	}
	return "unknown"
}

// Overlay is the modal layer shown on top of Game.
type Overlay int

const (
	None Overlay = iota
	Options
	Renaming
)

func (o Overlay) String() string {
	switch o {
	case None:
		return "none"
	case Options:
		return "options"
	case Renaming:
		return "renaming"
	}
	return "unknown"
}

// Key is a just-pressed control key.
type Key int

const (
	KeyEscape Key = iota
	KeyEnter
	KeyBackspace
	KeySpace
)

// Input is everything the renderer collected for one frame.
type Input struct {
	Cursor image.Point
	Click  bool // left button just pressed at Cursor
	Keys   []Key
	Chars  []rune
	Quit   bool
}

// Models is the part of the avatar registry the machine drives.
type Models interface {
	Load(name string) error
	Active() *avatar.Model
}

// Speaker reports whether the mic is currently above threshold.
type Speaker interface {
	Talking() bool
}

// Starter launches the background workers.
type Starter interface {
	Start()
}

// Deps wires a Machine to the rest of the program.
type Deps struct {
	Width, Height  int
	SplashDuration time.Duration
	Anim           anim.Params

	Effects *effects.System
	Models  Models
	Speaker Speaker
	Inbox   *Inbox
	Workers Starter

	// Now defaults to time.Now.
	Now func() time.Time
	Log zerolog.Logger
}

// RenameView is the rename prompt state.
type RenameView struct {
	Text    string
	Focused bool
	Status  string
}

// View is a read-only snapshot for the renderer.
type View struct {
	Phase     Phase
	Overlay   Overlay
	Layout    Layout
	Hover     string
	Talking   bool
	Pose      anim.Pose
	Offset    float64
	GlowAlpha float64
	Particles []effects.Particle
	Model     *avatar.Model
	Rename    RenameView
}

// Machine advances the program one frame at a time. It is not safe for
// concurrent use; background goroutines talk to it through the Inbox.
type Machine struct {
	d      Deps
	layout Layout
	log    zerolog.Logger

	phase   Phase
	overlay Overlay
	started time.Time // splash start, then game start

	cursor  image.Point
	talking bool
	pose    anim.Pose
	offset  float64

	rename  []rune
	focused bool
	status  string
}

// NewMachine creates a Machine in the Splash phase.
func NewMachine(d Deps) *Machine {
	if d.Now == nil {
		d.Now = time.Now
	}
	return &Machine{
		d:       d,
		layout:  NewLayout(d.Width, d.Height),
		log:     d.Log,
		phase:   Splash,
		started: d.Now(),
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Overlay returns the current game overlay.
func (m *Machine) Overlay() Overlay { return m.overlay }

// Update runs one frame. It returns ErrQuit when the program should exit.
func (m *Machine) Update(in Input) error {
	if in.Quit {
		return ErrQuit
	}
	m.cursor = in.Cursor

	switch m.phase {
	case Splash:
		if m.d.Now().Sub(m.started) > m.d.SplashDuration {
			m.log.Debug().Msg("splash done")
			m.phase = Menu
		}
	case Menu:
		return m.updateMenu(in)
	case Game:
		m.updateGame(in)
	}
	return nil
}

func (m *Machine) updateMenu(in Input) error {
	if !in.Click {
		return nil
	}
	label, ok := hit(m.layout.Menu, in.Cursor)
	if !ok {
		return nil
	}
	switch label {
	case ButtonStart:
		m.enterGame()
	case ButtonQuit:
		return ErrQuit
	}
	return nil
}

func (m *Machine) enterGame() {
	m.log.Info().Msg("entering game")
	m.phase = Game
	m.overlay = None
	m.started = m.d.Now()
	if m.d.Workers != nil {
		m.d.Workers.Start()
	}
}

func (m *Machine) updateGame(in Input) {
	m.drainInbox()

	switch m.overlay {
	case None:
		for _, k := range in.Keys {
			switch k {
			case KeyEscape:
				m.overlay = Options
			case KeySpace:
				m.trigger("manual")
			}
		}
	case Options:
		m.updateOptions(in)
	case Renaming:
		m.updateRenaming(in)
	}

	m.talking = m.d.Speaker != nil && m.d.Speaker.Talking()
	m.pose, m.offset = m.d.Anim.At(m.talking, m.d.Now().Sub(m.started).Seconds())
	m.d.Effects.Advance(float64(m.d.Height))
}

func (m *Machine) updateOptions(in Input) {
	for _, k := range in.Keys {
		if k == KeyEscape {
			m.overlay = None
			return
		}
	}
	if !in.Click {
		return
	}

	label, ok := hit(m.layout.PopupButtons, in.Cursor)
	if !ok {
		if !in.Cursor.In(m.layout.Popup) {
			m.overlay = None
		}
		return
	}

	m.overlay = None
	switch label {
	case ButtonSwitchModel:
		m.beginRename()
	case ButtonAddProp, ButtonAddBackground, ButtonChangeScene:
		m.log.Info().Str("button", label).Msg("not available yet")
	case ButtonCloseMenu:
	}
}

func (m *Machine) beginRename() {
	m.overlay = Renaming
	m.rename = m.rename[:0]
	m.focused = true
	m.status = ""
}

func (m *Machine) updateRenaming(in Input) {
	if in.Click {
		m.focused = in.Cursor.In(m.layout.RenameBox)
	}
	if !m.focused {
		return
	}

	for _, r := range in.Chars {
		if unicode.IsPrint(r) {
			m.rename = append(m.rename, r)
		}
	}
	for _, k := range in.Keys {
		switch k {
		case KeyBackspace:
			if n := len(m.rename); n > 0 {
				m.rename = m.rename[:n-1]
			}
		case KeyEscape:
			m.overlay = None
			m.status = ""
			return
		case KeyEnter:
			if m.submitRename() {
				return
			}
		}
	}
}

// submitRename loads the typed model and reports whether the overlay closed.
func (m *Machine) submitRename() bool {
	name := strings.TrimSpace(string(m.rename))
	if name == "" {
		return false
	}
	if err := m.d.Models.Load(name); err != nil {
		m.log.Warn().Err(err).Str("model", name).Msg("model switch failed")
		m.status = fmt.Sprintf("Could not load %q", name)
		return false
	}
	m.overlay = None
	m.rename = m.rename[:0]
	m.status = ""
	return true
}

func (m *Machine) drainInbox() {
	if m.d.Inbox == nil {
		return
	}
	for _, e := range m.d.Inbox.Drain() {
		switch e.Kind {
		case EventTrigger:
			m.trigger(e.Source)
		case EventSwitchModel:
			if err := m.d.Models.Load(e.Model); err != nil {
				m.log.Warn().Err(err).Str("model", e.Model).Str("source", e.Source).Msg("model switch failed")
			}
		}
	}
}

func (m *Machine) trigger(source string) {
	n := m.d.Effects.Trigger(float64(m.d.Width)/2, float64(m.d.Height)/2)
	m.log.Debug().Str("source", source).Int("spawned", n).Msg("effect triggered")
}

// View returns a snapshot of what should be drawn this frame.
func (m *Machine) View() View {
	v := View{
		Phase:   m.phase,
		Overlay: m.overlay,
		Layout:  m.layout,
		Talking: m.talking,
		Pose:    m.pose,
		Offset:  m.offset,
	}

	switch m.phase {
	case Menu:
		v.Hover, _ = hit(m.layout.Menu, m.cursor)
	case Game:
		v.GlowAlpha = m.d.Effects.GlowAlpha()
		v.Particles = m.d.Effects.Particles()
		v.Model = m.d.Models.Active()
		if m.overlay == Options {
			v.Hover, _ = hit(m.layout.PopupButtons, m.cursor)
		}
		if m.overlay == Renaming {
			v.Rename = RenameView{Text: string(m.rename), Focused: m.focused, Status: m.status}
		}
	}
	return v
}
