package encoder

import (
	"fmt"
	"unicode/utf16"
)

// fallback derives a character no rule covers, from its code point.
//
// 7-bit characters become unescape("%xx"). Anything wider becomes a
// function whose body is a string literal holding the \uXXXX escape, so the
// target's own literal grammar produces the character. The escape texts are
// ASCII and encoded through encodeString, which is what bounds the recursion.
func (e *Encoder) fallback(r rune) (Entry, error) {
	if r < 0x80 {
		if e.decodeErr != nil {
			return Entry{}, fmt.Errorf("encode %q: %w", r, e.decodeErr)
		}
		// The percent sign is needed to spell any percent escape, itself included.
		if _, ok := e.cache.get('%'); !ok {
			err := e.percentErr
			if err == nil {
				err = underivable('%', "fallback")
			}
			return Entry{}, fmt.Errorf("encode %q: %w", r, err)
		}
		esc, err := e.encodeString(percentEscape(r))
		if err != nil {
			return Entry{}, err
		}
		return Entry{Char: r, Fragment: call(e.decodeFn, esc), Rule: RuleFallback}, nil
	}

	if e.fnErr != nil {
		return Entry{}, fmt.Errorf("encode %q: %w", r, e.fnErr)
	}
	body, err := e.encodeString(`return"` + unicodeEscape(r) + `"`)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Char: r, Fragment: call(e.fnCtor, body) + "()", Rule: RuleFallback}, nil
}

func percentEscape(r rune) string {
	return fmt.Sprintf("%%%02x", r)
}

// unicodeEscape renders r as UTF-16 escapes; code points above the basic
// plane become a surrogate pair.
func unicodeEscape(r rune) string {
	if r > 0xFFFF {
		hi, lo := utf16.EncodeRune(r)
		return fmt.Sprintf(`\u%04x\u%04x`, hi, lo)
	}
	return fmt.Sprintf(`\u%04x`, r)
}
