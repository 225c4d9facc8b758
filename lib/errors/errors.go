package errors

// DataKeyResetTime is set on `ErrorRateLimited` and carries the
// estimated seconds until the fingerprint's window frees a slot.
const DataKeyResetTime = "reset_time_seconds"

var (
	ErrorValidationFailed   = NewError(100, "invalid poll data; question is required and options must be between 2 and 10")
	ErrorPollNotFound       = NewError(101, "poll not found")
	ErrorOptionNotFound     = NewError(102, "option not found")
	ErrorPollClosed         = NewError(103, "poll is closed")
	ErrorDuplicateVote      = NewError(104, "already voted in this poll")
	ErrorMissingFingerprint = NewError(105, "fingerprint is required")
	ErrorRateLimited        = NewError(106, "too many votes; please try again later")

	ErrorNotMatchHTTPRouter      = NewError(128, "doesn't match http router")
	ErrorStreamingNotSupported   = NewError(129, "response writer can not do chunked response")
	ErrorInvalidJSONRequestBody  = NewError(130, "invalid json request body")
	ErrorSubscriberAlreadyClosed = NewError(131, "subscriber is already closed")
)
