package playerjs

// OpKind identifies one primitive transform from the closed family the
// player program composes its cipher out of.
type OpKind int

const (
	// OpReverse reverses the whole working sequence.
	OpReverse OpKind = iota
	// OpSwap exchanges element 0 with element arg mod length.
	OpSwap
	// OpSlice discards the first arg elements (a.slice(b) idiom).
	OpSlice
	// OpSplice discards the first arg elements (a.splice(0,b) idiom).
	OpSplice
)

func (k OpKind) String() string {
	switch k {
	case OpReverse:
		return "reverse"
	case OpSwap:
		return "swap"
	case OpSlice:
		return "slice"
	case OpSplice:
		return "splice"
	default:
		return "unknown"
	}
}

// Operation is one step of a decipher sequence. Arg is meaningful for
// OpSwap, OpSlice and OpSplice only.
type Operation struct {
	Kind OpKind
	Arg  int
}

// ApplyOps replays ops in order against a working copy of in. It is a pure
// function of (ops, in): same inputs always yield the same output. Index
// arguments are taken modulo the current length at application time, so no
// in-range-after-modulo argument can fail.
func ApplyOps(ops []Operation, in string) string {
	bs := []byte(in)
	for _, op := range ops {
		bs = op.apply(bs)
	}
	return string(bs)
}

func (op Operation) apply(bs []byte) []byte {
	switch op.Kind {
	case OpReverse:
		l, r := 0, len(bs)-1
		for l < r {
			bs[l], bs[r] = bs[r], bs[l]
			l++
			r--
		}
	case OpSwap:
		if len(bs) == 0 {
			return bs
		}
		pos := op.Arg % len(bs)
		if pos < 0 {
			pos += len(bs)
		}
		bs[0], bs[pos] = bs[pos], bs[0]
	case OpSlice, OpSplice:
		if len(bs) == 0 {
			return bs
		}
		pos := op.Arg % len(bs)
		if pos < 0 {
			pos += len(bs)
		}
		bs = bs[pos:]
	}
	return bs
}
