package transport

import (
	"fmt"
	"net/http"

	"github.com/cxde-rxnin/carekeep/internal/domain"
)

const errGenericServer = "The server could not complete the request"

// APIError is a non-2xx response from the CareKeep API. Message carries
// the server-supplied error text when the body had one, otherwise a
// generic fallback; callers own the user-facing presentation.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses onto domain sentinels so callers can
// errors.Is without caring about transport details.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusNotFound:
		return domain.ErrNotFound
	default:
		return nil
	}
}

// errorBody is the API's uniform error envelope.
type errorBody struct {
	Error string `json:"error"`
}
