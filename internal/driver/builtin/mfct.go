package builtin

import "github.com/vanturaiot/wmbus-core/internal/dll"

// mfct packs a 3-letter manufacturer code into the wire's 16-bit
// field, panicking on an invalid literal — every call site here passes
// a constant, so a typo panics the first time RegisterAll runs, at
// startup, instead of surfacing per telegram.
func mfct(code string) uint16 {
	v, err := dll.EncodeManufacturer(code)
	if err != nil {
		panic(err)
	}
	return v
}
