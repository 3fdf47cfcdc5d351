package playerjs

import (
	"errors"
	"sync"

	"github.com/dop251/goja"
)

// Decipherer derives and applies the signature and n-parameter transforms
// of one player program version. The program text is immutable and both
// operation sequences are parsed at most once, so a Decipherer is safe for
// concurrent use once built.
type Decipherer struct {
	jsBody string

	sigOnce sync.Once
	sigFn   *ExtractedFunction
	sigOps  []Operation
	sigErr  error

	nOnce sync.Once
	nFn   *ExtractedFunction
	nOps  []Operation
	nErr  error
}

func NewDecipherer(jsBody string) *Decipherer {
	return &Decipherer{jsBody: jsBody}
}

// DecipherSignature decodes the 's' cipher field. The structural operation
// sequence is preferred; when the entry body does not conform to the known
// primitive grammar the extracted source is evaluated directly instead.
func (d *Decipherer) DecipherSignature(s string) (string, error) {
	fn, ops, err := d.signatureOps()
	if err == nil {
		return ApplyOps(ops, s), nil
	}
	var perr *ParseError
	if errors.As(err, &perr) && fn != nil {
		if out, evalErr := evalTransform(fn, s); evalErr == nil {
			return out, nil
		}
	}
	return "", err
}

// DecipherN decodes the 'n' throttling parameter.
func (d *Decipherer) DecipherN(n string) (string, error) {
	fn, ops, err := d.nParamOps()
	if err == nil {
		return ApplyOps(ops, n), nil
	}
	var perr *ParseError
	if errors.As(err, &perr) && fn != nil {
		if out, evalErr := evalTransform(fn, n); evalErr == nil {
			return out, nil
		}
	}
	return "", err
}

// DecodeScript returns the raw extracted transform sources combined into a
// standalone script, for persistence and offline debugging.
func (d *Decipherer) DecodeScript() (string, error) {
	sig, err := Extract(d.jsBody, Signature)
	if err != nil {
		return "", err
	}
	n, err := Extract(d.jsBody, NParam)
	if err != nil {
		return "", err
	}
	return BuildDecodeScript(sig, n), nil
}

func (d *Decipherer) signatureOps() (*ExtractedFunction, []Operation, error) {
	d.sigOnce.Do(func() {
		d.sigFn, d.sigOps, d.sigErr = deriveOps(d.jsBody, Signature)
	})
	return d.sigFn, d.sigOps, d.sigErr
}

func (d *Decipherer) nParamOps() (*ExtractedFunction, []Operation, error) {
	d.nOnce.Do(func() {
		d.nFn, d.nOps, d.nErr = deriveOps(d.jsBody, NParam)
	})
	return d.nFn, d.nOps, d.nErr
}

// deriveOps runs the extraction and interpretation pipeline for one kind.
// The extracted function is returned even when interpretation fails, so
// callers can fall back to direct evaluation.
func deriveOps(jsBody string, kind FunctionKind) (*ExtractedFunction, []Operation, error) {
	fn, err := Extract(jsBody, kind)
	if err != nil {
		return nil, nil, err
	}
	table := make(OpTable)
	for _, src := range fn.Helpers {
		for name, op := range BuildOpTable(src) {
			table[name] = op
		}
	}
	ops, err := ParseOps(fn.Body, fn.Param, table)
	if err != nil {
		return fn, nil, err
	}
	return fn, ops, nil
}

// evalTransform evaluates the extracted function against arg in a goja
// runtime primed with the function's helper definitions.
func evalTransform(fn *ExtractedFunction, arg string) (string, error) {
	const slot = "__ytTransform"
	vm := goja.New()
	for _, src := range fn.Helpers {
		if _, err := vm.RunString(src); err != nil {
			return "", err
		}
	}
	if _, err := vm.RunString("var " + slot + "=" + fn.Body); err != nil {
		return "", err
	}
	var transform func(string) string
	if err := vm.ExportTo(vm.Get(slot), &transform); err != nil {
		return "", err
	}
	return transform(arg), nil
}
