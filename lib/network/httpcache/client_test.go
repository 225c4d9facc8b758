package httpcache

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	a := NewMemCacheAdapter(10)
	a.Set("http://foo?bar=1", &Response{
		Value: []byte("value 1"),
	}, time.Time{})

	c, err := NewClient(
		WithAdapter(a),
	)
	require.NoError(t, err)

	cnt := 0
	testHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(fmt.Sprintf("new value:%v", cnt)))
	})

	handler := c.Middleware(testHandler)

	tests := []struct {
		name   string
		url    string
		method string
		body   string
		code   int
	}{
		{
			"return cached resp",
			"http://foo?bar=1",
			"GET",
			"value 1",
			200,
		},
		{
			"return nocached resp",
			"http://foo?bar=2",
			"GET",
			"new value:2",
			200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cnt++

			r, err := http.NewRequest(tt.method, tt.url, nil)
			require.NoError(t, err)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			require.Equal(t, w.Code, tt.code)
			require.Equal(t, w.Body.String(), tt.body)
		})
	}
}

func TestMiddlewareSkipsNonGET(t *testing.T) {
	a := NewMemCacheAdapter(10)
	c, err := NewClient(WithAdapter(a))
	require.NoError(t, err)

	cnt := 0
	handler := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cnt++
		w.Write([]byte("posted"))
	}))

	for i := 0; i < 2; i++ {
		r, err := http.NewRequest("POST", "http://foo/polls", nil)
		require.NoError(t, err)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
	}
	require.Equal(t, 2, cnt)
}

func TestMiddlewareSkipsEventStream(t *testing.T) {
	a := NewMemCacheAdapter(10)
	c, err := NewClient(WithAdapter(a))
	require.NoError(t, err)

	cnt := 0
	handler := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cnt++
		w.Write([]byte("stream"))
	}))

	for i := 0; i < 2; i++ {
		r, err := http.NewRequest("GET", "http://foo/polls/p0", nil)
		require.NoError(t, err)
		r.Header.Set("Accept", "text/event-stream")
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
	}
	require.Equal(t, 2, cnt)
}

func TestRemoveInvalidatesCachedPage(t *testing.T) {
	a := NewMemCacheAdapter(10)
	c, err := NewClient(WithAdapter(a), WithExpire(time.Minute))
	require.NoError(t, err)

	cnt := 0
	handler := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cnt++
		w.Write([]byte(fmt.Sprintf("value:%v", cnt)))
	}))

	get := func() string {
		r, err := http.NewRequest("GET", "http://foo/polls/p0", nil)
		require.NoError(t, err)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Body.String()
	}

	require.Equal(t, "value:1", get())
	require.Equal(t, "value:1", get())

	c.Remove("http://foo/polls/p0")
	require.Equal(t, "value:2", get())
}

func TestErrorResponsesAreNotCached(t *testing.T) {
	a := NewMemCacheAdapter(10)
	c, err := NewClient(WithAdapter(a), WithExpire(time.Minute))
	require.NoError(t, err)

	cnt := 0
	handler := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cnt++
		w.WriteHeader(http.StatusNotFound)
	}))

	for i := 0; i < 2; i++ {
		r, err := http.NewRequest("GET", "http://foo/polls/missing", nil)
		require.NoError(t, err)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		require.Equal(t, http.StatusNotFound, w.Code)
	}
	require.Equal(t, 2, cnt)
}
