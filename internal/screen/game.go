// Package screen renders the app state machine with ebiten.
package screen

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"

	"vtuber/internal/anim"
	"vtuber/internal/app"
	"vtuber/internal/avatar"
	"vtuber/internal/effects"
)

var (
	colWhite       = color.RGBA{255, 255, 255, 255}
	colGreenScreen = color.RGBA{0, 255, 0, 255}
	colGrey        = color.RGBA{50, 50, 50, 255}
	colPink        = color.RGBA{255, 182, 193, 255}
	colPopupBG     = color.RGBA{40, 40, 60, 255}
	colPopupBorder = color.RGBA{150, 150, 180, 255}
	colOverlay     = color.NRGBA{0, 0, 0, 180}
	colBoxActive   = color.RGBA{28, 134, 238, 255}
	colBoxInactive = color.RGBA{141, 182, 205, 255}
	colStatus      = color.RGBA{200, 30, 30, 255}
)

const glowRadius = 256

var keyMap = []struct {
	ebiten ebiten.Key
	app    app.Key
}{
	{ebiten.KeyEscape, app.KeyEscape},
	{ebiten.KeyEnter, app.KeyEnter},
	{ebiten.KeyNumpadEnter, app.KeyEnter},
	{ebiten.KeyBackspace, app.KeyBackspace},
	{ebiten.KeySpace, app.KeySpace},
}

// Generations reports when the active model changes.
type Generations interface {
	Generation() uint64
}

// Meter exposes the live mic level for the debug line.
type Meter interface {
	Level() float64
}

// Options tunes a Game.
type Options struct {
	Width, Height int
	Debug         bool
	// Done, when closed, ends the game as if the window was closed.
	Done <-chan struct{}
}

// Game adapts app.Machine to ebiten.Game.
type Game struct {
	machine *app.Machine
	models  Generations
	meter   Meter
	fonts   Fonts
	opts    Options

	texGen  uint64
	texName string
	idle    *ebiten.Image
	talking *ebiten.Image

	heart   *ebiten.Image
	sparkle *ebiten.Image
	glow    *ebiten.Image

	chars []rune
	keys  []app.Key
}

// New builds a Game. meter may be nil when no mic is present.
func New(m *app.Machine, models Generations, sprites avatar.Sprites, fonts Fonts, meter Meter, opts Options) *Game {
	glow := ebiten.NewImage(2*glowRadius, 2*glowRadius)
	vector.DrawFilledCircle(glow, glowRadius, glowRadius, glowRadius, colWhite, true)

	return &Game{
		machine: m,
		models:  models,
		meter:   meter,
		fonts:   fonts,
		opts:    opts,
		heart:   ebiten.NewImageFromImage(sprites.Heart),
		sparkle: ebiten.NewImageFromImage(sprites.Sparkle),
		glow:    glow,
	}
}

func (g *Game) Update() error {
	err := g.machine.Update(g.collectInput())
	if errors.Is(err, app.ErrQuit) {
		return ebiten.Termination
	}
	return err
}

func (g *Game) collectInput() app.Input {
	x, y := ebiten.CursorPosition()

	g.keys = g.keys[:0]
	for _, k := range keyMap {
		if inpututil.IsKeyJustPressed(k.ebiten) {
			g.keys = append(g.keys, k.app)
		}
	}
	g.chars = ebiten.AppendInputChars(g.chars[:0])

	return app.Input{
		Cursor: image.Pt(x, y),
		Click:  inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		Keys:   g.keys,
		Chars:  g.chars,
		Quit:   ebiten.IsWindowBeingClosed() || g.done(),
	}
}

func (g *Game) done() bool {
	select {
	case <-g.opts.Done:
		return true
	default:
		return false
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	v := g.machine.View()

	switch v.Phase {
	case app.Splash:
		screen.Fill(colGrey)
		drawCentered(screen, "Nyamii Loading...", g.fonts.L, g.opts.Width/2, g.opts.Height/2, colWhite)
	case app.Menu:
		g.drawMenu(screen, v)
	case app.Game:
		switch v.Overlay {
		case app.Renaming:
			g.drawRename(screen, v)
		case app.Options:
			g.drawGame(screen, v)
			g.drawOptions(screen, v)
		default:
			g.drawGame(screen, v)
		}
	}

	if g.opts.Debug {
		level := 0.0
		if g.meter != nil {
			level = g.meter.Level()
		}
		ebitenutil.DebugPrint(screen, fmt.Sprintf("Level: %.3f | Talking: %v | Particles: %d | TPS: %.0f",
			level, v.Talking, len(v.Particles), ebiten.ActualTPS()))
	}
}

func (g *Game) drawMenu(screen *ebiten.Image, v app.View) {
	screen.Fill(colGrey)
	drawCentered(screen, "Nyamii VTuber", g.fonts.L, g.opts.Width/2, g.opts.Height/3, colWhite)
	drawButtons(screen, v.Layout.Menu, v.Hover, g.fonts.M)
}

func (g *Game) drawGame(screen *ebiten.Image, v app.View) {
	screen.Fill(colGreenScreen)

	img := g.modelImage(v)
	if img != nil {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		x := g.opts.Width/2 - w/2
		y := g.opts.Height/2 - h/2 + int(v.Offset)

		if v.GlowAlpha > 0 {
			g.drawGlow(screen, float64(x+w/2), float64(y+h/2), float64(w/2+40), float64(h/2+40), v.GlowAlpha)
		}

		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(float64(x), float64(y))
		screen.DrawImage(img, op)
	}

	for _, p := range v.Particles {
		sprite := g.heart
		if p.Kind == effects.Sparkle {
			sprite = g.sparkle
		}
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(p.Scale, p.Scale)
		op.GeoM.Translate(float64(int(p.X)), float64(int(p.Y)))
		screen.DrawImage(sprite, op)
	}
}

func (g *Game) drawGlow(screen *ebiten.Image, cx, cy, rx, ry, alpha float64) {
	if alpha > 255 {
		alpha = 255
	}
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(rx/glowRadius, ry/glowRadius)
	op.GeoM.Translate(cx-rx, cy-ry)
	op.ColorScale.ScaleWithColor(color.NRGBA{R: colPink.R, G: colPink.G, B: colPink.B, A: uint8(alpha)})
	screen.DrawImage(g.glow, op)
}

// modelImage returns the texture for the current pose, re-uploading both
// textures when the registry swapped models.
func (g *Game) modelImage(v app.View) *ebiten.Image {
	if v.Model == nil {
		return nil
	}
	if gen := g.models.Generation(); g.idle == nil || gen != g.texGen || v.Model.Name != g.texName {
		if g.idle != nil {
			g.idle.Deallocate()
			g.talking.Deallocate()
		}
		g.idle = ebiten.NewImageFromImage(v.Model.Idle)
		g.talking = ebiten.NewImageFromImage(v.Model.Talking)
		g.texGen = gen
		g.texName = v.Model.Name
	}
	if v.Pose == anim.Talking {
		return g.talking
	}
	return g.idle
}

func (g *Game) drawOptions(screen *ebiten.Image, v app.View) {
	w, h := float32(g.opts.Width), float32(g.opts.Height)
	vector.DrawFilledRect(screen, 0, 0, w, h, colOverlay, false)

	p := v.Layout.Popup
	px, py := float32(p.Min.X), float32(p.Min.Y)
	pw, ph := float32(p.Dx()), float32(p.Dy())
	vector.DrawFilledRect(screen, px, py, pw, ph, colPopupBG, true)
	vector.StrokeRect(screen, px, py, pw, ph, 2, colPopupBorder, true)

	drawCentered(screen, "Options (Press ESC to Close)", g.fonts.XS, p.Min.X+p.Dx()/2, p.Min.Y+30, colWhite)
	drawButtons(screen, v.Layout.PopupButtons, v.Hover, g.fonts.S)
}

func (g *Game) drawRename(screen *ebiten.Image, v app.View) {
	screen.Fill(colGreenScreen)

	box := v.Layout.RenameBox
	face := g.fonts.S
	ascent := face.Metrics().Ascent.Ceil()

	text.Draw(screen, "Enter model name:", face, box.Min.X, box.Min.Y-40+ascent, colWhite)

	clr := colBoxInactive
	if v.Rename.Focused {
		clr = colBoxActive
	}
	bw := max(box.Dx(), text.BoundString(face, v.Rename.Text).Dx()+10)
	text.Draw(screen, v.Rename.Text, face, box.Min.X+5, box.Min.Y+5+ascent, clr)
	vector.StrokeRect(screen, float32(box.Min.X), float32(box.Min.Y), float32(bw), float32(box.Dy()), 2, clr, false)

	if v.Rename.Status != "" {
		text.Draw(screen, v.Rename.Status, g.fonts.XS, box.Min.X, box.Max.Y+20+ascent, colStatus)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.opts.Width, g.opts.Height
}

func drawButtons(screen *ebiten.Image, buttons []app.Button, hover string, face font.Face) {
	for _, b := range buttons {
		clr := colWhite
		if b.Label == hover {
			clr = colPink
		}
		c := b.Rect.Min.Add(b.Rect.Size().Div(2))
		drawCentered(screen, b.Label, face, c.X, c.Y, clr)
	}
}

func drawCentered(screen *ebiten.Image, s string, face font.Face, cx, cy int, clr color.Color) {
	b := text.BoundString(face, s)
	x := cx - b.Dx()/2 - b.Min.X
	y := cy - b.Dy()/2 - b.Min.Y
	text.Draw(screen, s, face, x, y, clr)
}
