package helpers

import (
	"errors"
	"fmt"
)

var (
	// ErrArity matches every *ArityError via errors.Is
	ErrArity = errors.New("wrong number of positional arguments")

	// ErrInvalidDividend matches every *DividendError via errors.Is
	ErrInvalidDividend = errors.New("invalid dividend")
)

// ArityError reports a helper call with an unsupported positional shape
type ArityError struct {
	Helper string
	Want   string
	Got    int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: %s: want %s, got %d", e.Helper, ErrArity, e.Want, e.Got)
}

// Is reports whether target is ErrArity
func (e *ArityError) Is(target error) bool {
	return target == ErrArity
}

// DividendError reports a modChoose dividend that is not a base-10 integer
type DividendError struct {
	Value interface{}
}

func (e *DividendError) Error() string {
	return fmt.Sprintf("modChoose: %s: %#v is not a base-10 integer", ErrInvalidDividend, e.Value)
}

// Is reports whether target is ErrInvalidDividend
func (e *DividendError) Is(target error) bool {
	return target == ErrInvalidDividend
}
