package avatar

import (
	"fmt"
	"image"
	"path/filepath"
)

// Sprites are the shared particle images.
type Sprites struct {
	Heart   image.Image
	Sparkle image.Image
}

// LoadSprites reads heart.png (scaled by heartScale) and sparkle.png
// (resized to a sparkleSize square) from assetsDir.
func LoadSprites(assetsDir string, heartScale float64, sparkleSize int) (Sprites, error) {
	heart, err := loadScaled(filepath.Join(assetsDir, "heart.png"), heartScale)
	if err != nil {
		return Sprites{}, fmt.Errorf("avatar: heart sprite: %w", err)
	}

	sparkle, err := decode(filepath.Join(assetsDir, "sparkle.png"))
	if err != nil {
		return Sprites{}, fmt.Errorf("avatar: sparkle sprite: %w", err)
	}

	return Sprites{Heart: heart, Sparkle: resize(sparkle, sparkleSize, sparkleSize)}, nil
}
