package playerjs

import (
	"sort"
	"strings"
)

// Stable names the combined decode script exposes its transforms under,
// independent of the obfuscated names of the source program version.
const (
	DecipherFuncName   = "decipherSignature"
	NTransformFuncName = "transformN"
)

// BuildDecodeScript assembles a standalone script from the extracted
// signature and n-transform functions: every referenced helper definition
// first, then both entry points bound to stable names. The result is
// self-contained, suitable both for fallback evaluation and for saving to
// disk for offline inspection.
func BuildDecodeScript(sig, n *ExtractedFunction) string {
	var b strings.Builder
	writeHelpers(&b, sig, n)
	if sig != nil {
		b.WriteString("var " + DecipherFuncName + "=" + sig.Body + ";\n")
	}
	if n != nil {
		b.WriteString("var " + NTransformFuncName + "=" + n.Body + ";\n")
	}
	return b.String()
}

func writeHelpers(b *strings.Builder, fns ...*ExtractedFunction) {
	seen := make(map[string]bool)
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		names := make([]string, 0, len(fn.Helpers))
		for name := range fn.Helpers {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
		sort.Strings(names)
		for _, name := range names {
			b.WriteString(fn.Helpers[name])
			b.WriteByte('\n')
		}
	}
}
