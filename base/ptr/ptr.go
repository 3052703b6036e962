package ptr

import "math/big"

// String returns a pointer to the input value
func String(value string) *string {
	return &value
}

// Int64 returns a pointer to the input value
func Int64(value int64) *int64 {
	return &value
}

// Bool returns a pointer to the input value
func Bool(value bool) *bool {
	return &value
}

// Big returns a copy of the input value, never nil.
func Big(value *big.Int) *big.Int {
	if value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(value)
}
