package fields

import (
	"strings"

	"github.com/matzehuels/labelpress/pkg/schema"
)

// Well-known data keys.
const (
	CodeValueKey = "code_value"
	SKUKey       = "sku"
	DefaultCode  = "CODE"
)

// PrepareData builds the data mapping for one label from collected input.
// Every discovered key is present with its trimmed value. code_value is
// set to the entered value, else the sku, else "CODE", so that code
// elements bound to it always have a payload.
func PrepareData(s schema.Schema, input map[string]string) map[string]string {
	out := make(map[string]string)
	for _, d := range Discover(s) {
		out[d.Key] = strings.TrimSpace(input[d.Key])
	}

	code := input[CodeValueKey]
	if code == "" {
		code = out[SKUKey]
	}
	if code == "" {
		code = strings.TrimSpace(input[SKUKey])
	}
	if code == "" {
		code = DefaultCode
	}
	out[CodeValueKey] = code
	return out
}
