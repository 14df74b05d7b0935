// Package avatar manages the active character model: an idle and a talking
// image that are always swapped together.
package avatar

import (
	"errors"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"
	xdraw "golang.org/x/image/draw"
)

var (
	// ErrModelNotFound means one of the two model images is missing.
	ErrModelNotFound = errors.New("avatar: model not found")
	// ErrInvalidModelName rejects names that would escape the models directory.
	ErrInvalidModelName = errors.New("avatar: invalid model name")
)

// Model is a loaded character.
type Model struct {
	Name    string
	Idle    image.Image
	Talking image.Image
}

// Registry holds the active model. Active may be read from any goroutine.
type Registry struct {
	dir        string
	scale      float64
	active     atomic.Pointer[Model]
	generation atomic.Uint64
	log        zerolog.Logger
}

// NewRegistry creates a Registry rooted at dir; images are scaled by scale on load.
func NewRegistry(dir string, scale float64, log zerolog.Logger) *Registry {
	return &Registry{dir: dir, scale: scale, log: log}
}

// Load decodes <dir>/<name>/<name>.png and <name>Talking.png and makes them
// active. On error the previously active model is left in place.
func (r *Registry) Load(name string) error {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return err
	}

	folder := filepath.Join(r.dir, name)
	idle, err := loadScaled(filepath.Join(folder, name+".png"), r.scale)
	if err != nil {
		return fmt.Errorf("avatar: load %q idle image: %w", name, err)
	}
	talking, err := loadScaled(filepath.Join(folder, name+"Talking.png"), r.scale)
	if err != nil {
		return fmt.Errorf("avatar: load %q talking image: %w", name, err)
	}

	r.active.Store(&Model{Name: name, Idle: idle, Talking: talking})
	gen := r.generation.Add(1)
	r.log.Info().Str("model", name).Uint64("generation", gen).Msg("loaded model")
	return nil
}

// Active returns the current model, or nil before the first successful Load.
func (r *Registry) Active() *Model { return r.active.Load() }

// Generation increments on every successful Load.
func (r *Registry) Generation() uint64 { return r.generation.Load() }

// Available lists model directories containing both required images.
func (r *Registry) Available() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("avatar: list models: %w", err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		folder := filepath.Join(r.dir, name)
		if isFile(filepath.Join(folder, name+".png")) && isFile(filepath.Join(folder, name+"Talking.png")) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidModelName, name)
	}
	return nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// loadScaled decodes an image and resamples it by factor.
func loadScaled(path string, factor float64) (image.Image, error) {
	img, err := decode(path)
	if err != nil {
		return nil, err
	}
	b := img.Bounds()
	return resize(img, int(float64(b.Dx())*factor), int(float64(b.Dy())*factor)), nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func resize(src image.Image, w, h int) image.Image {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}
