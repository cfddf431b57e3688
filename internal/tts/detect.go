package tts

import (
	"errors"

	"github.com/abadojack/whatlanggo"
)

// ErrUndetected is returned when the text gives no usable language signal.
var ErrUndetected = errors.New("language could not be detected")

// WhatlangDetector detects languages with trigram statistics.
type WhatlangDetector struct {
	// MinConfidence discards guesses below this confidence (0 = accept all).
	MinConfidence float64
}

// Detect returns the ISO 639-1 code of the most likely language.
func (d WhatlangDetector) Detect(text string) (string, error) {
	info := whatlanggo.Detect(text)
	if info.Lang < 0 || info.Confidence < d.MinConfidence {
		return "", ErrUndetected
	}
	code := info.Lang.Iso6391()
	if code == "" {
		return "", ErrUndetected
	}
	return code, nil
}
