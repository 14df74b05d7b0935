package screen

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// Fonts holds the four text sizes used by the menus.
type Fonts struct {
	L, M, S, XS font.Face
}

var fontSizes = [4]float64{48, 34, 26, 20}

// LoadFonts parses the first readable font among paths. When none can be
// used every size falls back to the built-in bitmap face.
func LoadFonts(log zerolog.Logger, paths ...string) Fonts {
	for _, path := range paths {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		tt, err := parseFont(path, data)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to parse font")
			continue
		}

		var faces [4]font.Face
		for i, size := range fontSizes {
			face, err := opentype.NewFace(tt, &opentype.FaceOptions{
				Size:    size,
				DPI:     72,
				Hinting: font.HintingFull,
			})
			if err != nil {
				log.Warn().Err(err).Str("path", path).Msg("failed to create font face")
				break
			}
			faces[i] = face
		}
		if faces[3] == nil {
			continue
		}
		log.Info().Str("path", path).Msg("font loaded")
		return Fonts{L: faces[0], M: faces[1], S: faces[2], XS: faces[3]}
	}

	log.Warn().Strs("tried", paths).Msg("no usable font, using bitmap fallback")
	return Fonts{L: basicfont.Face7x13, M: basicfont.Face7x13, S: basicfont.Face7x13, XS: basicfont.Face7x13}
}

func parseFont(path string, data []byte) (*opentype.Font, error) {
	tt, err := opentype.Parse(data)
	if err == nil {
		return tt, nil
	}
	if !strings.HasSuffix(strings.ToLower(path), ".ttc") {
		return nil, err
	}
	coll, cerr := opentype.ParseCollection(data)
	if cerr != nil {
		return nil, cerr
	}
	return coll.Font(0)
}
