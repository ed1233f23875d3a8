// Package language filters threads by detected language so the
// cleaning model only sees text it was prompted for.
package language

import (
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Candidate languages the detector distinguishes between. A small fixed
// set keeps detector startup cheap while still separating the languages
// that actually show up in automotive communities.
var candidates = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Portuguese,
	lingua.Arabic,
}

// Filter accepts text written in one configured language. Text too
// ambiguous to classify is accepted rather than dropped.
type Filter struct {
	detector lingua.LanguageDetector
	want     lingua.Language
}

// NewFilter builds a filter for an ISO 639-1 code such as "en".
func NewFilter(code string) (*Filter, error) {
	want, err := fromISO(code)
	if err != nil {
		return nil, err
	}
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(candidates...).
		Build()
	return &Filter{detector: detector, want: want}, nil
}

// Accept reports whether the text is in the configured language.
func (f *Filter) Accept(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return true
	}
	detected, ok := f.detector.DetectLanguageOf(text)
	if !ok {
		return true
	}
	return detected == f.want
}

func fromISO(code string) (lingua.Language, error) {
	switch strings.ToLower(code) {
	case "en":
		return lingua.English, nil
	case "de":
		return lingua.German, nil
	case "fr":
		return lingua.French, nil
	case "es":
		return lingua.Spanish, nil
	case "pt":
		return lingua.Portuguese, nil
	case "ar":
		return lingua.Arabic, nil
	default:
		return lingua.Unknown, fmt.Errorf("unsupported language code %q", code)
	}
}
