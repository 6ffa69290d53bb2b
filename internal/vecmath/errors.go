package vecmath

import "errors"

// ErrDivisionByZero is returned by explicit scalar division with a zero divisor.
var ErrDivisionByZero = errors.New("vecmath: division by zero")
