package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// Error represents a failed remote call: a non-2xx response or a transport
// failure. The body is carried for logging only; the client never
// interprets it.
type Error struct {
	Op     string
	Status int // zero when the request never produced a response
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("remote: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("remote: %s: status %d: %s", e.Op, e.Status, e.Body)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNotFound reports whether err is a remote rejection for a resource that
// does not exist, such as removing an already-removed cart line.
func IsNotFound(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}

// IsInsufficientStock reports whether err is a remote rejection for a
// quantity exceeding the line's available stock.
func IsInsufficientStock(err error) bool {
	var re *Error
	return errors.As(err, &re) && re.Status == http.StatusConflict
}
