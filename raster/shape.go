package raster

import (
	"bytes"
	"unicode"

	"github.com/go-text/typesetting/di"
	tfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// shaper measures shaped text advances so line wrapping agrees with
// what the font actually produces, ligatures and kerning included.
type shaper struct {
	face *tfont.Face
	hb   shaping.HarfbuzzShaper
}

func newShaper() (*shaper, error) {
	face, err := tfont.ParseTTF(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, err
	}
	return &shaper{face: face}, nil
}

// advance returns the shaped width of text in pixels at the given
// pixel size.
func (s *shaper) advance(text string, sizePx float64) float64 {
	runes := []rune(text)
	if len(runes) == 0 {
		return 0
	}

	script := detectScript(runes)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: scriptDirection(script),
		Face:      s.face,
		Size:      fixed.Int26_6(sizePx * 64),
		Script:    script,
		Language:  language.DefaultLanguage(),
	}
	output := s.hb.Shape(input)

	var total fixed.Int26_6
	for _, g := range output.Glyphs {
		total += g.XAdvance
	}
	return float64(total) / 64.0
}

func scriptDirection(script language.Script) di.Direction {
	switch script {
	case language.Arabic, language.Hebrew:
		return di.DirectionRTL
	default:
		return di.DirectionLTR
	}
}

func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		switch {
		case unicode.Is(unicode.Arabic, r):
			return language.Arabic
		case unicode.Is(unicode.Hebrew, r):
			return language.Hebrew
		case unicode.Is(unicode.Cyrillic, r):
			return language.Cyrillic
		case unicode.Is(unicode.Greek, r):
			return language.Greek
		case unicode.Is(unicode.Latin, r):
			return language.Latin
		}
	}
	return language.Latin
}
