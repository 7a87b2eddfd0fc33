package server

import (
	"errors"
	"regexp"

	"github.com/synergysphere/realtime/internal/ierr"
)

type IdValidator struct {
	idRegex *regexp.Regexp
}

func NewIdValidator() *IdValidator {
	return &IdValidator{
		idRegex: regexp.MustCompile(`^[\w-]+$`),
	}
}

func (v *IdValidator) Validate(id string) error {
	valid := v.idRegex.MatchString(id)
	if !valid {
		return ierr.New(ierr.ErrorCodeInvalidArgument, errors.New("invalid id"))
	}

	return nil
}
