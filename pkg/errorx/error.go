package errorx

import (
	"errors"
	"fmt"
)

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}

// CodeOf returns the code of err if it is an Error, otherwise the code of
// Unknown.
func CodeOf(err error) Code {
	var errx Error
	if errors.As(err, &errx) {
		return errx.Code
	}

	return Unknown.Code
}

// Is reports whether err is an Error carrying the given code.
func Is(err error, code Code) bool {
	var errx Error
	return errors.As(err, &errx) && errx.Code == code
}
