package encoder

import (
	"errors"
	"fmt"
)

// Stage-two canonical strings. Their letters only become reachable once
// stage one has produced "constructor" and "e".
const (
	textFnString = "function String() { [native code] }"
	textBigNum   = "1e+100"
	textInfinity = "Infinity"
)

// seedDigits caches "0".."9". Every later index above nine is spelled with
// them, so they go first.
func (e *Encoder) seedDigits() {
	for k := 0; k <= 9; k++ {
		e.store(rune('0'+k), e.digitFragment(k), RuleDigit)
	}
}

// extract caches every not-yet-cached character of the given sources by
// indexing the source holding it at the lowest offset. Ties go to the
// shorter source expression.
func (e *Encoder) extract(sources []source) {
	type pick struct {
		src    source
		offset int
	}
	best := make(map[rune]pick)
	var order []rune
	for _, s := range sources {
		for offset, r := range []rune(s.text) {
			if _, ok := e.cache.get(r); ok {
				continue
			}
			p, seen := best[r]
			if !seen {
				order = append(order, r)
			}
			if !seen || offset < p.offset || (offset == p.offset && len(s.expr) < len(p.src.expr)) {
				best[r] = pick{src: s, offset: offset}
			}
		}
	}
	for _, r := range order {
		p := best[r]
		e.store(r, index(p.src.expr, e.number(p.offset)), RuleStructural)
	}
}

// stageTwoSources builds the canonical strings that need stage-one letters:
// the String constructor's source text, and the numbers 1e100 and 1e1000
// rendered back to text.
func (e *Encoder) stageTwoSources() ([]source, error) {
	ctor, err := e.spell("constructor")
	if err != nil {
		return nil, err
	}
	e100, err := e.spell("e100")
	if err != nil {
		return nil, err
	}
	e1000, err := e.spell("e1000")
	if err != nil {
		return nil, err
	}
	return []source{
		{text: textFnString, expr: concat(emptySeq, member("("+objStr+")", ctor))},
		{text: textBigNum, expr: toStr(toNum(concat(e.number(1), e100)))},
		{text: textInfinity, expr: toStr(toNum(concat(e.number(1), e1000)))},
	}, nil
}

// radix derives the lowercase letters still missing by rendering 10..35 in
// base 36: (17)["toString"](36)[0] is "h".
func (e *Encoder) radix() error {
	if !e.target.RadixConversion {
		e.log.Debug("radix rules skipped: target lacks radix conversion")
		return nil
	}
	toString, err := e.spell("toString")
	if err != nil {
		return err
	}
	base := e.number(36)
	for r := 'a'; r <= 'z'; r++ {
		if _, ok := e.cache.get(r); ok {
			continue
		}
		n := int(r-'a') + 10
		frag := "(" + e.number(n) + ")[" + toString + "](" + base + ")[" + e.number(0) + "]"
		e.store(r, frag, RuleRadix)
	}
	return nil
}

// dynamic resolves the function constructor and, through it, references to
// the percent-encode and percent-decode globals. Failures are recorded, not
// returned: they only matter to operations that need these references.
func (e *Encoder) dynamic() {
	if !e.target.FunctionFromText {
		e.fnErr = &PreconditionError{Capability: CapFunctionFromText, Op: "function constructor"}
		e.decodeErr = e.fnErr
		e.percentErr = e.fnErr
		return
	}

	host, err := e.spell(e.target.methodHost())
	if err != nil {
		e.fnErr = e.stageErr("function constructor", err)
		e.decodeErr = e.fnErr
		e.percentErr = e.fnErr
		return
	}
	ctor, err := e.spell("constructor")
	if err != nil {
		e.fnErr = e.stageErr("function constructor", err)
		e.decodeErr = e.fnErr
		e.percentErr = e.fnErr
		return
	}
	e.fnCtor = member(member(emptySeq, host), ctor)

	if e.target.hasEncode() {
		ref, err := e.reference(e.target.EncodeFunc)
		if err != nil {
			e.percentErr = e.stageErr("percent-encode reference", err)
		} else {
			// escape("[") is "%5B"; its first character is the percent sign.
			bracket, _ := e.cache.get('[')
			e.store('%', call(ref, bracket.Fragment)+"["+e.number(0)+"]", RuleDynamic)
		}
	} else {
		e.percentErr = &PreconditionError{Capability: CapPercentEncode, Op: "percent sign"}
	}

	if e.target.hasDecode() {
		ref, err := e.reference(e.target.DecodeFunc)
		if err != nil {
			e.decodeErr = e.stageErr("percent-decode reference", err)
		} else {
			e.decodeFn = ref
		}
	} else {
		e.decodeErr = &PreconditionError{Capability: CapPercentDecode, Op: "7-bit fallback"}
	}
}

// reference returns an expression evaluating to the global named name,
// obtained by running "return <name>" through the function constructor.
func (e *Encoder) reference(name string) (string, error) {
	body, err := e.spell("return " + name)
	if err != nil {
		return "", err
	}
	return call(e.fnCtor, body) + "()", nil
}

// stageErr converts a spelling failure during the dynamic stage into the
// missing capability behind it.
func (e *Encoder) stageErr(op string, err error) error {
	if errors.Is(err, ErrUnderivable) && !e.target.RadixConversion {
		return &PreconditionError{Capability: CapRadix, Op: op}
	}
	return fmt.Errorf("%s: %w", op, err)
}
