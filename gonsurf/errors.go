package gonsurf

import (
	"errors"
	"fmt"
)

// Errors
var (
	ErrInvalidArgument        = errors.New("invalid argument")
	ErrUnsupportedCombination = errors.New("unsupported combination of coordinates and constraints")
	ErrNumericOverflow        = errors.New("numeric overflow")
	ErrCancelled              = errors.New("enumeration cancelled")
	ErrCannotSupply           = errors.New("constraint cannot be supplied for this triangulation")
	ErrCoefficientRange       = errors.New("constraint coefficient out of range")
	ErrBadGluing              = errors.New("bad tetrahedron gluing")
	ErrBadEncoding            = errors.New("bad coordinate encoding")
	ErrParseInteger           = errors.New("malformed integer")
	ErrCannotLift             = errors.New("quadrilateral vector has no standard lift")
	ErrBadCatalogParam        = errors.New("bad catalog param")
	ErrUnmarshal              = errors.New("unmarshal failed")
)

// ComponentError names the component that raised Err.
type ComponentError struct {
	Component string
	Err       error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Component, e.Err)
}

func (e *ComponentError) Unwrap() error {
	return e.Err
}

// Raise wraps err so that it reports the given component.
// A nil err yields nil.
func Raise(component string, err error) error {
	if err == nil {
		return nil
	}
	var ce *ComponentError
	if errors.As(err, &ce) {
		return err
	}
	return &ComponentError{
		Component: component,
		Err:       err,
	}
}
