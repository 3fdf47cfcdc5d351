package playerjs

import (
	"regexp"
	"strconv"
	"strings"
)

// OpTable maps helper member names to the primitive each one implements.
// Classification is purely structural: member names are obfuscated and
// rotate between program versions, so they carry no meaning.
type OpTable map[string]OpKind

// Shape predicates over a helper member body, one per primitive. Swap is
// checked before reverse because its body is the most distinctive.
var (
	swapShapeRegexp    = regexp.MustCompile(`\w\[0\]\s*=\s*\w\[\w%\w\.length\]`)
	spliceShapeRegexp  = regexp.MustCompile(`\w\.splice\(0,\w\)`)
	sliceShapeRegexp   = regexp.MustCompile(`(?:return )?\w\.slice\(\w\)`)
	reverseShapeRegexp = regexp.MustCompile(`\w\.reverse\(\)`)

	helperMemberRegexp = regexp.MustCompile(`(?:^|[,{\n])\s*"?([a-zA-Z0-9_$]+)"?\s*:\s*function\s*\(([^)]*)\)\s*\{([^{}]*)\}`)
)

// BuildOpTable inspects each method defined on the helper object source and
// classifies it by its body shape. Members matching no known shape are left
// out of the table, so any call to one fails parsing loudly instead of
// being misapplied.
func BuildOpTable(helperObject string) OpTable {
	table := make(OpTable)
	for _, m := range helperMemberRegexp.FindAllStringSubmatch(helperObject, -1) {
		name, body := m[1], m[3]
		if kind, ok := classifyMember(body); ok {
			table[name] = kind
		}
	}
	return table
}

func classifyMember(body string) (OpKind, bool) {
	switch {
	case swapShapeRegexp.MatchString(body):
		return OpSwap, true
	case spliceShapeRegexp.MatchString(body):
		return OpSplice, true
	case sliceShapeRegexp.MatchString(body):
		return OpSlice, true
	case reverseShapeRegexp.MatchString(body):
		return OpReverse, true
	default:
		return 0, false
	}
}

// Helper invocations inside an entry body: OBJ.member(a,N), OBJ["member"](a,N)
// and the argument-less reverse form.
var helperCallRegexp = regexp.MustCompile(
	`([a-zA-Z0-9_$]+)(?:\.([a-zA-Z0-9_$]+)|\[(?:"([^"]+)"|'([^']+)')\])\(\s*[a-zA-Z0-9_$]+\s*(?:,\s*([^()]*?)\s*)?\)`)

// ParseOps reads the entry function body call-by-call in textual order and
// maps each helper invocation to its classified operation plus literal
// argument. A call to a member absent from the table, or a non-literal
// index argument, fails with ParseError; calls are never silently skipped.
func ParseOps(entryBody, param string, table OpTable) ([]Operation, error) {
	var ops []Operation
	for _, m := range helperCallRegexp.FindAllStringSubmatch(entryBody, -1) {
		obj := m[1]
		if obj == param {
			// split/join calls on the working array itself
			continue
		}
		member := firstNonEmpty(m[2], m[3], m[4])
		kind, ok := table[member]
		if !ok {
			return nil, &ParseError{Member: member, Reason: "helper member not in operation table"}
		}
		op := Operation{Kind: kind}
		if kind != OpReverse {
			arg, err := strconv.Atoi(strings.TrimSpace(m[5]))
			if err != nil {
				return nil, &ParseError{Member: member, Reason: "index argument is not a literal integer"}
			}
			op.Arg = arg
		}
		ops = append(ops, op)
	}
	if len(ops) == 0 {
		return nil, &ParseError{Reason: "no helper invocations found in entry body"}
	}
	return ops, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
