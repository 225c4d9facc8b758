package httputils

import (
	"encoding/json"
	"net/http"

	"pollpulse.io/pollpulse/lib/errors"
)

// Problem is the RFC7807 "problem detail" response body; see
// https://tools.ietf.org/html/rfc7807 .
type Problem struct {
	// "type" (string) - A URI reference [RFC3986] that identifies the
	// problem type. When this member is not present, its value is
	// assumed to be "about:blank".
	Type string `json:"type"`

	// "title" (string) - A short, human-readable summary of the
	// problem type.
	Title string `json:"title"`

	// "status" (number) - The HTTP status code generated by the origin
	// server for this occurrence of the problem.
	Status int `json:"status,omitempty"`

	// "detail" (string) - A human-readable explanation specific to
	// this occurrence of the problem.
	Detail string `json:"detail,omitempty"`

	// "instance" (string) - A URI reference that identifies the
	// specific occurrence of the problem.
	Instance string `json:"instance,omitempty"`

	// Data carries the machine-readable extras of a coded error, e.g.
	// the reset-time hint of a rate-limit rejection.
	Data map[string]interface{} `json:"data,omitempty"`
}

func NewStatusProblem(status int) Problem {
	return Problem{Type: "about:blank", Status: status, Title: http.StatusText(status)}
}

func NewDetailedStatusProblem(status int, detail string) Problem {
	p := NewStatusProblem(status)
	p.Detail = detail
	return p
}

func NewErrorProblem(err error, status int) Problem {
	p := NewStatusProblem(status)
	p.Detail = err.Error()

	if e, ok := err.(*errors.Error); ok {
		p.Detail = e.Message
		if len(e.Data) > 0 {
			p.Data = e.Data
		}
	}

	return p
}

func (p Problem) SetInstance(instance string) Problem {
	p.Instance = instance
	return p
}

func (p Problem) SetDetail(detail string) Problem {
	p.Detail = detail
	return p
}

func (p Problem) Serialize() ([]byte, error) {
	return json.Marshal(p)
}
