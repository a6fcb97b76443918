package httperr

import "errors"

// BusinessError is an expected, client-facing failure identified by Code.
// The HTTP layer maps codes to statuses; see businessStatus.
type BusinessError struct {
	Code string
}

func (e BusinessError) Error() string {
	return e.Code
}

// Is matches any BusinessError carrying the same code.
func (e BusinessError) Is(target error) bool {
	t, ok := target.(BusinessError)
	return ok && t.Code == e.Code
}

func ErrBusiness(code string) error {
	return BusinessError{Code: code}
}

// CodeOf returns the business code carried by err, if any.
func CodeOf(err error) (string, bool) {
	var be BusinessError
	if !errors.As(err, &be) {
		return "", false
	}
	return be.Code, true
}
