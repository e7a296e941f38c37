package client

import (
	"fmt"
	"net/http"
)

// Error wraps any failure of a client call with the operation that failed.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// StatusError is returned when the server answers with an unexpected status.
type StatusError struct {
	Code   int
	Status string
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error %d: %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("API error %d: %s", e.Code, e.Body)
}

// wrap tags err with op and records it at debug level.
func (c *Client) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	c.log.Debug().Str("op", op).Err(err).Msg("request failed")
	return &Error{Op: op, Err: err}
}
