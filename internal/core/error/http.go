package errx

import (
	"fmt"
	"net/http"
)

// WrapHTTP maps a collaborator HTTP failure to the unified Error type. A nil
// err with a non-2xx status still produces an error so callers can treat
// transport and protocol failures uniformly.
func WrapHTTP(err error, status int, service string) *Error {
	if err == nil && status >= 200 && status < 300 {
		return nil
	}
	if err == nil {
		err = fmt.Errorf("%s returned status %d", service, status)
	}
	if status == 0 {
		status = http.StatusBadGateway
	}
	return New(err, status, UpstreamErrorMessage)
}
