package core

import (
	"regexp"
	"strings"
)

// ImageEffectSettings holds the dimensions parsed from an effect summary.
// An empty mapping means the summary could not be parsed.
type ImageEffectSettings map[string]string

// dimensionRegex splits "800×600", "800x600" and "800 X 600".
var dimensionRegex = regexp.MustCompile(`[×xX]`)

// numberRegex accepts non-negative decimal numbers.
var numberRegex = regexp.MustCompile(`^\d+(\.\d+)?$`)

// ParseSummary extracts width and height from a free-text effect summary.
//
// Two forms are recognized, in order:
//
//	"800×600"               symbolic, separator ×, x or X
//	"Width 800 Height 600"  keywords, case-insensitive, space separated
//
// Anything else, including a summary yielding only one dimension, returns
// an empty mapping.
func ParseSummary(summary string) ImageEffectSettings {
	if pieces := dimensionRegex.Split(summary, -1); len(pieces) == 2 {
		w, h := strings.TrimSpace(pieces[0]), strings.TrimSpace(pieces[1])
		if isNumeric(w) && isNumeric(h) {
			return ImageEffectSettings{"width": w, "height": h}
		}
	}

	settings := ImageEffectSettings{}
	tokens := strings.Split(summary, " ")
	for i := 0; i < len(tokens)-1; i++ {
		key := strings.ToLower(tokens[i])
		if key != "width" && key != "height" {
			continue
		}
		if next := tokens[i+1]; isNumeric(next) {
			settings[key] = next
		}
	}

	if settings["width"] == "" || settings["height"] == "" {
		return ImageEffectSettings{}
	}
	return settings
}

func isNumeric(s string) bool {
	return numberRegex.MatchString(s)
}
