package httputils

import (
	"net/http"

	"pollpulse.io/pollpulse/lib/errors"
)

// IsEventStream checks request header accept is text/event-stream
func IsEventStream(r *http.Request) bool {
	if r.Header.Get("Accept") == "text/event-stream" {
		return true
	}
	return false
}

var (
	ErrorsToStatus = map[uint]int{
		errors.ErrorValidationFailed.Code:   http.StatusBadRequest,
		errors.ErrorPollNotFound.Code:       http.StatusNotFound,
		errors.ErrorOptionNotFound.Code:     http.StatusBadRequest,
		errors.ErrorPollClosed.Code:         http.StatusBadRequest,
		errors.ErrorDuplicateVote.Code:      http.StatusBadRequest,
		errors.ErrorMissingFingerprint.Code: http.StatusBadRequest,
		errors.ErrorRateLimited.Code:        http.StatusTooManyRequests,

		errors.ErrorNotMatchHTTPRouter.Code:     http.StatusInternalServerError,
		errors.ErrorStreamingNotSupported.Code:  http.StatusInternalServerError,
		errors.ErrorInvalidJSONRequestBody.Code: http.StatusBadRequest,
	}
)

func StatusCode(err error) int {
	if e, ok := err.(*errors.Error); ok {
		if status, found := ErrorsToStatus[e.Code]; found {
			return status
		}
	}
	return http.StatusInternalServerError
}
