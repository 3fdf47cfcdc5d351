package selector

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/reddevil212/yt-decrypt/internal/formats"
)

// Select returns the formats matching the selector, best first. A nil or
// empty selector returns the input unchanged.
func Select(in []formats.Format, sel *Selector) []formats.Format {
	if sel == nil || len(sel.Fallbacks) == 0 {
		return in
	}
	for _, spec := range sel.Fallbacks {
		if picked := pick(in, spec); len(picked) > 0 {
			return picked
		}
	}
	return nil
}

func pick(in []formats.Format, spec *StreamSpec) []formats.Format {
	var candidates []formats.Format
	for _, f := range in {
		if matchesAll(f, spec.Filters) {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	sortFormats(candidates)

	for _, flt := range spec.Filters {
		if flt.Type == "builtin" && flt.Value == "all" {
			return candidates
		}
	}
	for _, flt := range spec.Filters {
		if (flt.Type == "builtin" && flt.Value == "worst") || flt.Op == "worst" {
			return candidates[len(candidates)-1:]
		}
	}
	return candidates[:1]
}

func matchesAll(f formats.Format, filters []FormatFilter) bool {
	for i := range filters {
		if !matches(f, &filters[i]) {
			return false
		}
	}
	return true
}

func matches(f formats.Format, filter *FormatFilter) bool {
	switch filter.Type {
	case "builtin":
		return true
	case "media":
		mime := strings.ToLower(f.MimeType)
		if filter.Value == "video" {
			return strings.HasPrefix(mime, "video/")
		}
		if filter.Value == "audio" {
			return strings.HasPrefix(mime, "audio/")
		}
	case "ext":
		mime := strings.ToLower(f.MimeType)
		return strings.Contains(mime, "/"+strings.ToLower(filter.Value))
	case "res":
		val, err := strconv.Atoi(filter.Value)
		if err != nil {
			return false
		}
		return checkOp(labelHeight(f.QualityLabel), val, filter.Op)
	case "fps":
		val, err := strconv.Atoi(filter.Value)
		if err != nil {
			return false
		}
		return checkOp(labelFPS(f.QualityLabel), val, filter.Op)
	case "itag":
		val, err := strconv.Atoi(filter.Value)
		if err != nil {
			return false
		}
		return checkOp(f.Itag, val, filter.Op)
	}
	return false
}

func checkOp(a, b int, op string) bool {
	switch op {
	case ":", "=", "":
		return a == b
	case "<":
		return a < b
	case ">":
		return a > b
	case "<=":
		return a <= b
	case ">=":
		return a >= b
	case "!=":
		return a != b
	}
	return false
}

var labelRegex = regexp.MustCompile(`^(\d+)p(\d+)?`)

// labelHeight reads the vertical resolution out of a quality label like
// "1080p60".
func labelHeight(label string) int {
	m := labelRegex.FindStringSubmatch(label)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	return h
}

// labelFPS reads the framerate suffix of a quality label; plain labels
// like "720p" default to 30.
func labelFPS(label string) int {
	m := labelRegex.FindStringSubmatch(label)
	if m == nil {
		return 0
	}
	if m[2] == "" {
		return 30
	}
	fps, _ := strconv.Atoi(m[2])
	return fps
}

func sortFormats(in []formats.Format) {
	sort.SliceStable(in, func(i, j int) bool {
		hi, hj := labelHeight(in[i].QualityLabel), labelHeight(in[j].QualityLabel)
		if hi != hj {
			return hi > hj
		}
		if in[i].Bitrate != in[j].Bitrate {
			return in[i].Bitrate > in[j].Bitrate
		}
		fi, fj := labelFPS(in[i].QualityLabel), labelFPS(in[j].QualityLabel)
		if fi != fj {
			return fi > fj
		}
		return in[i].Itag > in[j].Itag
	})
}
