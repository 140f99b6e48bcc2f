package vm

import (
	"fmt"
	"math"
)

// SafeIntToUint32 safely converts int to uint32, for the TUI and GUI loop
// indices that feed straight into address arithmetic - an overflow there
// would silently wrap an address instead of erroring.
func SafeIntToUint32(v int) (uint32, error) {
	if v < 0 {
		return 0, fmt.Errorf("cannot convert negative int %d to uint32", v)
	}
	if v > math.MaxUint32 {
		return 0, fmt.Errorf("int value %d exceeds uint32 maximum", v)
	}
	return uint32(v), nil
}

// AsInt32 reinterprets a uint32's bit pattern as int32, for displaying the
// signed interpretation of a register or memory value.
func AsInt32(v uint32) int32 {
	//nolint:gosec // G115: intentional conversion for signed display
	return int32(v)
}
