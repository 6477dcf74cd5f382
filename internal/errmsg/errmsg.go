package errmsg

import (
	"errors"
	"net/http"
)

type HTTPError struct {
	Code    int
	Message error
}

func NewHTTPError(code int, message error) HTTPError {
	return HTTPError{Code: code, Message: message}
}

func (e *HTTPError) Error() string {
	return e.Message.Error()
}

var (
	ErrRequestPayloadEmpty = NewHTTPError(
		http.StatusBadRequest,
		errors.New("request payload is empty"),
	)

	ErrRequestPayloadInvalid = NewHTTPError(
		http.StatusBadRequest,
		errors.New("request payload is invalid"),
	)

	ErrDonationAmountInvalid = NewHTTPError(
		http.StatusBadRequest,
		errors.New("donation amount must be an integer number"),
	)
)

var (
	ErrUserAlreadyExists = NewHTTPError(
		http.StatusConflict,
		errors.New("user already exists"),
	)

	ErrUserNotFound = NewHTTPError(
		http.StatusNotFound,
		errors.New("user not found"),
	)

	// A failed password match reports as bad input, not as an auth
	// failure. Clients depend on the 400 status.
	ErrUserCredentialsInvalid = NewHTTPError(
		http.StatusBadRequest,
		errors.New("invalid credentials"),
	)
)

var (
	ErrCredentialMissing = NewHTTPError(
		http.StatusUnauthorized,
		errors.New("authorization token missing"),
	)

	ErrCredentialInvalid = NewHTTPError(
		http.StatusUnauthorized,
		errors.New("authorization token invalid"),
	)

	ErrAdminKeyInvalid = NewHTTPError(
		http.StatusUnauthorized,
		errors.New("admin key invalid"),
	)

	ErrAdminRequired = NewHTTPError(
		http.StatusForbidden,
		errors.New("admin privileges required"),
	)
)
