package plate

import (
	"fmt"
	"strings"
)

// Variant selects how the form collects a plate.
type Variant string

const (
	// VariantMulti collects region code, letters and digits in separate fields.
	VariantMulti Variant = "multi"
	// VariantFree collects the whole plate as one unfiltered string.
	VariantFree Variant = "free"
)

func ParseVariant(raw string) (Variant, error) {
	switch Variant(strings.ToLower(strings.TrimSpace(raw))) {
	case VariantMulti, "":
		return VariantMulti, nil
	case VariantFree:
		return VariantFree, nil
	}
	return "", fmt.Errorf("unknown form variant %q", raw)
}
