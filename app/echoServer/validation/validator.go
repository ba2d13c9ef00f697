// Package validation adapts a shared validator instance to echo's Validator
// interface, so handlers can use c.Validate and the controllers can run the
// same instance directly.
package validation

import (
	"github.com/go-playground/validator/v10"
)

type EchoValidator struct {
	v *validator.Validate
}

func Wrap(v *validator.Validate) *EchoValidator {
	return &EchoValidator{v: v}
}

func (e *EchoValidator) Validate(i interface{}) error {
	return e.v.Struct(i)
}
