package avatar

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{255, 182, 193, 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func writeModel(t *testing.T, dir, name string, w, h int) {
	t.Helper()
	writePNG(t, filepath.Join(dir, name, name+".png"), w, h)
	writePNG(t, filepath.Join(dir, name, name+"Talking.png"), w, h)
}

func TestRegistry_LoadScales(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, "nyamii", 100, 50)

	r := NewRegistry(dir, 0.8, zerolog.Nop())
	assert.Nil(t, r.Active())

	require.NoError(t, r.Load("nyamii"))
	m := r.Active()
	require.NotNil(t, m)
	assert.Equal(t, "nyamii", m.Name)
	assert.Equal(t, image.Pt(80, 40), m.Idle.Bounds().Size())
	assert.Equal(t, image.Pt(80, 40), m.Talking.Bounds().Size())
	assert.Equal(t, uint64(1), r.Generation())
}

func TestRegistry_FailedSwapKeepsPrevious(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, "nyamii", 10, 10)
	// half-installed model: idle image only
	writePNG(t, filepath.Join(dir, "neko", "neko.png"), 10, 10)
	// corrupt talking image
	writePNG(t, filepath.Join(dir, "evil", "evil.png"), 10, 10)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "evil", "evilTalking.png"), []byte("not a png"), 0o644))

	r := NewRegistry(dir, 1, zerolog.Nop())
	require.NoError(t, r.Load("nyamii"))
	before := r.Active()

	tests := []struct {
		name    string
		model   string
		wantErr error
	}{
		{name: "missing directory", model: "ghost", wantErr: ErrModelNotFound},
		{name: "missing talking image", model: "neko", wantErr: ErrModelNotFound},
		{name: "corrupt image", model: "evil"},
		{name: "empty", model: "  ", wantErr: ErrInvalidModelName},
		{name: "traversal", model: "../nyamii", wantErr: ErrInvalidModelName},
		{name: "dot dot", model: "..", wantErr: ErrInvalidModelName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Load(tt.model)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			assert.Same(t, before, r.Active())
			assert.Equal(t, "nyamii", r.Active().Name)
			assert.Equal(t, uint64(1), r.Generation())
		})
	}
}

func TestRegistry_HotSwap(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, "nyamii", 10, 10)
	writeModel(t, dir, "neko", 20, 20)

	r := NewRegistry(dir, 1, zerolog.Nop())
	require.NoError(t, r.Load("nyamii"))
	require.NoError(t, r.Load(" neko "))

	assert.Equal(t, "neko", r.Active().Name)
	assert.Equal(t, image.Pt(20, 20), r.Active().Idle.Bounds().Size())
	assert.Equal(t, uint64(2), r.Generation())
}

func TestRegistry_Available(t *testing.T) {
	dir := t.TempDir()
	writeModel(t, dir, "nyamii", 4, 4)
	writeModel(t, dir, "bald", 4, 4)
	writePNG(t, filepath.Join(dir, "neko", "neko.png"), 4, 4)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0o644))

	names, err := NewRegistry(dir, 1, zerolog.Nop()).Available()
	require.NoError(t, err)
	assert.Equal(t, []string{"bald", "nyamii"}, names)

	_, err = NewRegistry(filepath.Join(dir, "absent"), 1, zerolog.Nop()).Available()
	assert.Error(t, err)
}

func TestLoadSprites(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "heart.png"), 200, 100)
	writePNG(t, filepath.Join(dir, "sparkle.png"), 64, 48)

	s, err := LoadSprites(dir, 0.2, 32)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(40, 20), s.Heart.Bounds().Size())
	assert.Equal(t, image.Pt(32, 32), s.Sparkle.Bounds().Size())

	_, err = LoadSprites(t.TempDir(), 0.2, 32)
	assert.ErrorIs(t, err, ErrModelNotFound)
}
