// Package selector filters stream formats by a compact selection
// expression before they are resolved.
package selector

import (
	"fmt"
	"regexp"
	"strings"
)

// Selector represents a parsed format selection strategy.
type Selector struct {
	// Fallbacks: each element is tried in order; the first one that
	// matches at least one format wins.
	Fallbacks []*StreamSpec
}

// StreamSpec defines criteria for one selection attempt. A format must
// satisfy all filters.
type StreamSpec struct {
	Filters []FormatFilter
}

// FormatFilter represents a single criterion (e.g. bestvideo, res:1080).
type FormatFilter struct {
	Type  string // builtin, media, ext, res, fps, itag
	Value string
	Op    string // =, <, >, <=, >=, != (for numeric filters)
}

// Parse parses a format selector string.
// Syntax: spec1/spec2 with per-spec modifiers like best[ext=mp4].
func Parse(s string) (*Selector, error) {
	var fallbacks []*StreamSpec
	for _, fbStr := range strings.Split(s, "/") {
		spec, err := parseStreamSpec(strings.TrimSpace(fbStr))
		if err != nil {
			return nil, err
		}
		fallbacks = append(fallbacks, spec)
	}
	return &Selector{Fallbacks: fallbacks}, nil
}

var (
	resRegex = regexp.MustCompile(`^(res|height)(:|<=|>=|=|<|>)(\d+)$`)
	modRegex = regexp.MustCompile(`\[([^\]]+)\]`)
)

func parseStreamSpec(s string) (*StreamSpec, error) {
	base := s
	mods := ""
	if idx := strings.Index(s, "["); idx != -1 {
		base = s[:idx]
		mods = s[idx:]
	}

	spec := &StreamSpec{}
	if base != "" {
		f, err := parseFilter(base)
		if err != nil {
			return nil, err
		}
		spec.Filters = append(spec.Filters, *f)
	}
	for _, m := range modRegex.FindAllStringSubmatch(mods, -1) {
		f, err := parseModifier(m[1])
		if err != nil {
			return nil, err
		}
		spec.Filters = append(spec.Filters, *f)
	}
	if len(spec.Filters) == 0 {
		return nil, fmt.Errorf("empty selector segment: %q", s)
	}
	return spec, nil
}

func parseModifier(s string) (*FormatFilter, error) {
	ops := []string{"<=", ">=", "!=", "=", "<", ">", ":"}
	for _, op := range ops {
		if idx := strings.Index(s, op); idx != -1 {
			key := strings.TrimSpace(s[:idx])
			val := strings.TrimSpace(s[idx+len(op):])
			switch key {
			case "ext":
				return &FormatFilter{Type: "ext", Value: val}, nil
			case "res", "height":
				return &FormatFilter{Type: "res", Value: val, Op: op}, nil
			case "fps":
				return &FormatFilter{Type: "fps", Value: val, Op: op}, nil
			case "itag":
				return &FormatFilter{Type: "itag", Value: val, Op: op}, nil
			default:
				return nil, fmt.Errorf("unknown modifier key: %s", key)
			}
		}
	}
	return nil, fmt.Errorf("unknown modifier syntax: %s", s)
}

func parseFilter(s string) (*FormatFilter, error) {
	s = strings.ToLower(s)

	switch s {
	case "all":
		return &FormatFilter{Type: "builtin", Value: "all"}, nil
	case "best", "worst":
		return &FormatFilter{Type: "builtin", Value: s}, nil
	case "bestvideo", "bv":
		return &FormatFilter{Type: "media", Value: "video", Op: "best"}, nil
	case "worstvideo", "wv":
		return &FormatFilter{Type: "media", Value: "video", Op: "worst"}, nil
	case "bestaudio", "ba":
		return &FormatFilter{Type: "media", Value: "audio", Op: "best"}, nil
	case "worstaudio", "wa":
		return &FormatFilter{Type: "media", Value: "audio", Op: "worst"}, nil
	case "videoonly":
		return &FormatFilter{Type: "media", Value: "video"}, nil
	case "audioonly":
		return &FormatFilter{Type: "media", Value: "audio"}, nil
	case "mp4", "webm", "m4a":
		return &FormatFilter{Type: "ext", Value: s}, nil
	}

	if matches := resRegex.FindStringSubmatch(s); matches != nil {
		return &FormatFilter{Type: "res", Value: matches[3], Op: matches[2]}, nil
	}

	// Standalone modifier-style filters as base tokens, e.g. "fps!=60",
	// "ext=mp4", "height<=720", "itag=22".
	if flt, err := parseModifier(s); err == nil {
		return flt, nil
	}

	return nil, fmt.Errorf("unknown selector: %s", s)
}
