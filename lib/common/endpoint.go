package common

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var DefaultEndpointPort int = 12345

type Endpoint url.URL

func NewEndpointFromURL(u *url.URL) *Endpoint {
	return (*Endpoint)(u)
}

func (e *Endpoint) String() string {
	return (&url.URL{
		Scheme: e.Scheme,
		Host:   e.Host,
		Path:   e.Path,
	}).String()
}

func (e *Endpoint) Query() url.Values {
	return (*url.URL)(e).Query()
}

func ParseEndpoint(endpoint string) (u *Endpoint, err error) {
	var parsed *url.URL
	parsed, err = url.Parse(endpoint)
	if err != nil {
		return
	}
	if len(parsed.Scheme) < 1 {
		err = errors.New("missing scheme")
		return
	}

	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
	default:
		err = fmt.Errorf("unsupported scheme, '%s'", parsed.Scheme)
		return
	}

	if len(parsed.Port()) < 1 {
		parsed.Host = fmt.Sprintf("%s:%d", parsed.Host, DefaultEndpointPort)
	}

	var port int64
	if port, err = strconv.ParseInt(parsed.Port(), 10, 64); err != nil {
		return
	} else if port < 1 {
		err = errors.New("invalid port")
		return
	}

	u = NewEndpointFromURL(parsed)
	return
}
