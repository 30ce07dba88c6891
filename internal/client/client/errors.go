package client

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/arkadconsole/internal/common"
)

// APIError is a request the server answered but did not accept.
// Message is the server's own text when it sent one.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

func (e *APIError) Is(target error) bool {
	switch target {
	case common.ErrRequestFailed:
		return true
	case common.ErrAuthExpired:
		return e.Status == http.StatusUnauthorized
	}
	return false
}
