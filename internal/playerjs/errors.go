package playerjs

import (
	"errors"
	"fmt"
)

// ErrPlayerURLNotFound indicates the page text carries no recognizable
// reference to a player program.
var ErrPlayerURLNotFound = errors.New("player url not found in page")

// FunctionKind selects which transform entry point to extract from a
// player program.
type FunctionKind int

const (
	// Signature is the entry point deciphering the 's' cipher field.
	Signature FunctionKind = iota
	// NParam is the entry point transforming the 'n' throttling parameter.
	NParam
)

func (k FunctionKind) String() string {
	switch k {
	case Signature:
		return "signature"
	case NParam:
		return "n"
	default:
		return "unknown"
	}
}

// ExtractionError reports that the player program no longer matches any
// known structural pattern for the requested function kind, or that a
// referenced helper definition could not be located. It is terminal for
// the program version it was produced from.
type ExtractionError struct {
	Kind  FunctionKind
	Stage string // "entry", "body" or "helper"
	Ident string // identifier involved, when known
}

func (e *ExtractionError) Error() string {
	if e.Ident != "" {
		return fmt.Sprintf("playerjs: %s function extraction failed at %s stage (identifier %q)", e.Kind, e.Stage, e.Ident)
	}
	return fmt.Sprintf("playerjs: %s function extraction failed at %s stage", e.Kind, e.Stage)
}

// ParseError reports an extracted entry function whose body does not
// conform to the recognized primitive-operation grammar.
type ParseError struct {
	Member string // helper member the offending call referenced
	Reason string
}

func (e *ParseError) Error() string {
	if e.Member != "" {
		return fmt.Sprintf("playerjs: operation parse failed on member %q: %s", e.Member, e.Reason)
	}
	return "playerjs: operation parse failed: " + e.Reason
}
