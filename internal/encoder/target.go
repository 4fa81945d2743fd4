package encoder

// Target describes what the evaluating runtime provides. The encoder never
// resolves these names itself; it only emits text that refers to them by
// derived spelling, and resolution happens when the output is evaluated.
type Target struct {
	Name string `yaml:"name"`

	// FunctionFromText: a builtin method's constructor is the function
	// constructor, so host["constructor"](body)() runs body.
	FunctionFromText bool `yaml:"function_from_text"`

	// RadixConversion: numbers expose toString(radix).
	RadixConversion bool `yaml:"radix_conversion"`

	// MethodHost is the array method whose constructor is reached.
	MethodHost string `yaml:"method_host"`

	// DecodeFunc and EncodeFunc are the global percent-decode/encode
	// functions. Empty means absent.
	DecodeFunc string `yaml:"decode_func"`
	EncodeFunc string `yaml:"encode_func"`
}

// ECMAScript returns the capability set of a standard ECMAScript runtime
// with the Annex B globals.
func ECMAScript() Target {
	return Target{
		Name:             "ecmascript",
		FunctionFromText: true,
		RadixConversion:  true,
		MethodHost:       "sort",
		DecodeFunc:       "unescape",
		EncodeFunc:       "escape",
	}
}

func (t Target) hasDecode() bool {
	return t.FunctionFromText && t.DecodeFunc != ""
}

func (t Target) hasEncode() bool {
	return t.FunctionFromText && t.EncodeFunc != ""
}

func (t Target) methodHost() string {
	if t.MethodHost == "" {
		return "sort"
	}
	return t.MethodHost
}
