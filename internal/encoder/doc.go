// Package encoder rewrites text, integers and scripts as ECMAScript
// expressions built only from the characters ! + [ ] ( ) { } (and 0-9 in
// digit-mode).
//
// The encoder owns a character cache that starts empty and is filled in a
// fixed order, each stage using the fragments of the stages before it:
//
//	digits      0-9 from +[], +!![], !![]+!![], ...
//	structural  letters indexed out of "false", "true", "NaN", "undefined"
//	            and "[object Object]", then out of the String constructor's
//	            source text, "1e+100" and "Infinity"
//	radix       remaining lowercase letters via (n)["toString"](36)
//	dynamic     the function constructor, reached as [].sort.constructor,
//	            and through it escape, unescape and "%"
//	fallback    everything else, on demand, from its code point
//
// Nothing is evaluated while encoding. The Target descriptor states which
// runtime primitives the output may rely on; when one is missing, the
// operations that need it return a PreconditionError.
package encoder
