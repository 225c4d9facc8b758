package httpcache

import (
	"net/http"
	"time"
)

// Cacher is the handler-facing side of the cache; satisfied by Client
// and NopClient.
type Cacher interface {
	WrapHandlerFunc(handlerFunc http.HandlerFunc) http.HandlerFunc
	Remove(path string)
}

type Adapter interface {
	Get(key string) (*Response, bool)
	Set(key string, response *Response, expiration time.Time)
	Remove(key string)
}

type Response struct {
	Value      []byte
	StatusCode int
	Header     http.Header
	Expiration time.Time
}
