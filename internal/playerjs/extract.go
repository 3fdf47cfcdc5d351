package playerjs

import (
	"regexp"
	"strconv"
	"strings"
)

// ExtractedFunction is the sliced source of one transform entry point plus
// every helper definition its body references. Body always holds a plain
// function expression, regardless of how the program declared it.
type ExtractedFunction struct {
	Name    string
	Param   string
	Body    string
	Helpers map[string]string
}

// Entry-point headers for the signature transform, most specific first.
// The split("")/split(table[i]) prologue and join epilogue are verified on
// the balanced-sliced body, so a header hit alone never wins.
var signatureHeaderRegexps = []*regexp.Regexp{
	// NAME=function(a){...}
	regexp.MustCompile(`([a-zA-Z0-9_$]+)\s*=\s*function\(\s*([a-zA-Z0-9_$]+)\s*\)\s*\{`),
	// function NAME(a){...}
	regexp.MustCompile(`function\s+([a-zA-Z0-9_$]+)\s*\(\s*([a-zA-Z0-9_$]+)\s*\)\s*\{`),
	// function(a){...} used as an expression
	regexp.MustCompile(`function\s*\(\s*([a-zA-Z0-9_$]+)\s*\)\s*\{`),
}

// Call sites naming the n-transform entry point, across player generations.
var nNameRegexps = []*regexp.Regexp{
	regexp.MustCompile(`\.get\("n"\)\)&&\(\w=([a-zA-Z0-9$]+)\[(\d+)\]\(\w\)`),
	regexp.MustCompile(`\.get\("n"\)\)\s*&&\s*\(\w=([a-zA-Z0-9$]+)\[(\d+)\]\([a-zA-Z0-9$]+\)`),
	regexp.MustCompile(`\.get\("n"\)\)\s*&&\s*\(\w=([a-zA-Z0-9$]+)\([a-zA-Z0-9$]+\)`),
	regexp.MustCompile(`\.get\("n"\).*?&&.*?=([a-zA-Z0-9$]+)\([a-zA-Z0-9$]+\)`),
}

var (
	calleeObjectRegexp  = regexp.MustCompile(`([a-zA-Z0-9_$]+)(?:\.[a-zA-Z0-9_$]+|\[(?:"[^"]*"|'[^']*'|\d+)\])\(`)
	indexedGlobalRegexp = regexp.MustCompile(`([a-zA-Z_$][a-zA-Z0-9_$]*)\[\d+\]`)
	localVarRegexp      = regexp.MustCompile(`(?:var|let|const)\s+([a-zA-Z0-9_$]+)`)
)

var builtinIdents = map[string]bool{
	"String": true, "Array": true, "Object": true, "Math": true,
	"Number": true, "Date": true, "RegExp": true, "JSON": true,
}

// Extract locates the entry function for the requested kind inside the
// program text, slices its full body by balanced-delimiter scanning, and
// resolves every helper definition the body references. All matchers are
// tried before failing; the first structural match wins.
func Extract(program string, kind FunctionKind) (*ExtractedFunction, error) {
	switch kind {
	case Signature:
		return extractSignature(program)
	case NParam:
		return extractN(program)
	default:
		return nil, &ExtractionError{Kind: kind, Stage: "entry"}
	}
}

func extractSignature(program string) (*ExtractedFunction, error) {
	for _, re := range signatureHeaderRegexps {
		for _, m := range re.FindAllStringSubmatchIndex(program, -1) {
			name, param := headerGroups(program, re, m)
			open := m[1] - 1
			end, ok := balancedEnd(program, open)
			if !ok {
				continue
			}
			body := program[open:end]
			if !signatureBodyShape(body, param) {
				continue
			}
			start := strings.Index(program[m[0]:m[1]], "function") + m[0]
			fn := &ExtractedFunction{
				Name:  name,
				Param: param,
				Body:  program[start:end],
			}
			helpers, err := resolveHelpers(program, fn, Signature)
			if err != nil {
				return nil, err
			}
			fn.Helpers = helpers
			return fn, nil
		}
	}
	return nil, &ExtractionError{Kind: Signature, Stage: "entry"}
}

func extractN(program string) (*ExtractedFunction, error) {
	name := ""
	for _, re := range nNameRegexps {
		m := re.FindStringSubmatch(program)
		if len(m) == 0 {
			continue
		}
		if len(m) > 2 && m[2] != "" {
			// Indirect call through a one-element dispatch array.
			idx, err := strconv.Atoi(m[2])
			if err != nil {
				continue
			}
			if resolved, ok := resolveIndexedName(program, m[1], idx); ok {
				name = resolved
				break
			}
			continue
		}
		name = m[1]
		break
	}
	if name == "" {
		return nil, &ExtractionError{Kind: NParam, Stage: "entry"}
	}

	fn, err := functionExpression(program, name, NParam)
	if err != nil {
		return nil, err
	}
	fn.Body = stripShortCircuit(fn.Body, fn.Param)
	helpers, err := resolveHelpers(program, fn, NParam)
	if err != nil {
		return nil, err
	}
	fn.Helpers = helpers
	return fn, nil
}

func headerGroups(program string, re *regexp.Regexp, m []int) (name, param string) {
	if re.NumSubexp() == 2 {
		return program[m[2]:m[3]], program[m[4]:m[5]]
	}
	return "", program[m[2]:m[3]]
}

// signatureBodyShape is the structural gate for a signature candidate: the
// parameter is split into characters, fed through helper calls and joined
// back. Header matches without this shape are rejected.
func signatureBodyShape(body, param string) bool {
	p := regexp.QuoteMeta(param)
	prologue := regexp.MustCompile(`^\{\s*` + p + `\s*=\s*` + p + `\.split\((?:""|''|[a-zA-Z0-9_$]+\[\d+\])\)`)
	return prologue.MatchString(body) && strings.Contains(body, ".join(")
}

// balancedEnd returns the index just past the brace closing the '{' at
// open. Simple regex slicing is insufficient here because bodies contain
// nested braces; string literals and escapes are honored during the scan.
func balancedEnd(s string, open int) (int, bool) {
	if open >= len(s) || s[open] != '{' {
		return 0, false
	}
	depth := 0
	var strChar byte
	for i := open; i < len(s); i++ {
		c := s[i]
		if strChar != 0 {
			switch c {
			case '\\':
				i++
			case strChar:
				strChar = 0
			}
			continue
		}
		switch c {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1, true
			}
		case '"', '\'', '`':
			strChar = c
		}
	}
	return 0, false
}

// functionExpression locates the definition of name and slices it into a
// function expression plus parameter name.
func functionExpression(program, name string, kind FunctionKind) (*ExtractedFunction, error) {
	quoted := regexp.QuoteMeta(name)
	defRegexps := []*regexp.Regexp{
		regexp.MustCompile(`(?:^|[^a-zA-Z0-9_$])` + quoted + `\s*=\s*function\(`),
		regexp.MustCompile(`function\s+` + quoted + `\s*\(`),
	}
	start := -1
	for _, re := range defRegexps {
		if loc := re.FindStringIndex(program); loc != nil {
			start = loc[0]
			break
		}
	}
	if start < 0 {
		return nil, &ExtractionError{Kind: kind, Stage: "body", Ident: name}
	}

	fnStart := start + strings.Index(program[start:], "function")
	parenOpen := fnStart + strings.IndexByte(program[fnStart:], '(')
	parenClose := parenOpen + strings.IndexByte(program[parenOpen:], ')')
	param := strings.TrimSpace(program[parenOpen+1 : parenClose])
	open := parenClose + strings.IndexByte(program[parenClose:], '{')
	end, ok := balancedEnd(program, open)
	if !ok {
		return nil, &ExtractionError{Kind: kind, Stage: "body", Ident: name}
	}
	return &ExtractedFunction{
		Name:  name,
		Param: param,
		Body:  program[fnStart:end],
	}, nil
}

// resolveIndexedName resolves NAME[idx] through a dispatch array literal
// like var NAME=[fnA,fnB];.
func resolveIndexedName(program, arrName string, idx int) (string, bool) {
	re := regexp.MustCompile(`(?:var|let|const)\s+` + regexp.QuoteMeta(arrName) + `\s*=\s*\[([^\]]*)\]`)
	m := re.FindStringSubmatch(program)
	if len(m) < 2 {
		return "", false
	}
	elems := strings.Split(m[1], ",")
	if idx < 0 || idx >= len(elems) {
		return "", false
	}
	name := strings.TrimSpace(elems[idx])
	if name == "" {
		return "", false
	}
	return name, true
}

// stripShortCircuit removes the typeof guard modern n-transforms use to
// bail out early, so the sliced function transforms its input when run
// standalone.
func stripShortCircuit(body, param string) string {
	re := regexp.MustCompile(`;?\s*if\s*\(\s*typeof\s+[^)]+\)\s*return\s+` + regexp.QuoteMeta(param) + `\s*;?`)
	return re.ReplaceAllString(body, ";")
}

// resolveHelpers resolves every bare identifier the entry body calls into
// or indexes that is not a local, the parameter, a builtin or the entry
// itself, slicing each definition out of the program text.
func resolveHelpers(program string, fn *ExtractedFunction, kind FunctionKind) (map[string]string, error) {
	skip := map[string]bool{fn.Param: true}
	if fn.Name != "" {
		skip[fn.Name] = true
	}
	for _, m := range localVarRegexp.FindAllStringSubmatch(fn.Body, -1) {
		skip[m[1]] = true
	}

	needed := []string{}
	seen := map[string]bool{}
	add := func(ident string) {
		if ident == "" || skip[ident] || builtinIdents[ident] || seen[ident] {
			return
		}
		seen[ident] = true
		needed = append(needed, ident)
	}
	for _, m := range calleeObjectRegexp.FindAllStringSubmatch(fn.Body, -1) {
		add(m[1])
	}
	for _, m := range indexedGlobalRegexp.FindAllStringSubmatch(fn.Body, -1) {
		add(m[1])
	}

	helpers := make(map[string]string, len(needed))
	for _, ident := range needed {
		src, ok := sliceDefinition(program, ident)
		if !ok {
			return nil, &ExtractionError{Kind: kind, Stage: "helper", Ident: ident}
		}
		helpers[ident] = src
	}
	return helpers, nil
}

// sliceDefinition slices the definition of ident out of the program text,
// normalized to a `var ident=<value>;` statement. Object literals, function
// expressions, array literals and split-string tables are supported.
func sliceDefinition(program, ident string) (string, bool) {
	re := regexp.MustCompile(`(?:^|[\s;,{}()])(?:var|let|const)?\s*` + regexp.QuoteMeta(ident) + `\s*=\s*`)
	for _, loc := range re.FindAllStringIndex(program, -1) {
		valStart := loc[1]
		if valStart >= len(program) {
			continue
		}
		var valEnd int
		var ok bool
		switch c := program[valStart]; {
		case c == '{':
			valEnd, ok = balancedEnd(program, valStart)
		case c == '[':
			valEnd, ok = statementEnd(program, valStart)
		case c == '"' || c == '\'':
			valEnd, ok = statementEnd(program, valStart)
		case strings.HasPrefix(program[valStart:], "function"):
			open := valStart + strings.IndexByte(program[valStart:], '{')
			valEnd, ok = balancedEnd(program, open)
		default:
			continue
		}
		if !ok {
			continue
		}
		return "var " + ident + "=" + program[valStart:valEnd] + ";", true
	}
	return "", false
}

// statementEnd walks to the ';' terminating the statement whose value
// starts at from, honoring string literals and bracket nesting. Returns the
// index just before the ';' terminator equivalent (exclusive end of value).
func statementEnd(s string, from int) (int, bool) {
	depth := 0
	var strChar byte
	for i := from; i < len(s); i++ {
		c := s[i]
		if strChar != 0 {
			switch c {
			case '\\':
				i++
			case strChar:
				strChar = 0
			}
			continue
		}
		switch c {
		case '"', '\'', '`':
			strChar = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth == 0 && c == '}' {
				// value runs up to the enclosing block close
				return i, true
			}
			depth--
		case ';', '\n':
			if depth == 0 {
				return i, true
			}
		case ',':
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
