package httpclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON_RoundTrip(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hooks/audit", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "parish-calendar", r.Header.Get("User-Agent"))
		assert.Equal(t, "yes", r.Header.Get("X-Test"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c, err := NewWithBaseURL(ts.URL+"/", 0)
	require.NoError(t, err)

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.DoJSON(context.Background(), http.MethodPost, "hooks/audit", map[string]string{"X-Test": "yes"}, map[string]string{"a": "b"}, &out))
	assert.True(t, out.OK)
}

func TestDoJSON_Non2xx(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer ts.Close()

	err := New(0).DoJSON(context.Background(), http.MethodGet, ts.URL, nil, nil, nil)
	var he *HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadGateway, he.StatusCode)
	assert.Equal(t, "nope", he.Body)
}

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("connection refused")
}

func TestDoJSON_TransportAndURLErrors(t *testing.T) {
	c := NewWithTransport(0, failingTransport{})
	err := c.DoJSON(context.Background(), http.MethodGet, "http://example.invalid/x", nil, nil, nil)
	assert.ErrorContains(t, err, "connection refused")

	assert.Error(t, c.DoJSON(context.Background(), http.MethodGet, "/relative", nil, nil, nil))
	assert.Error(t, c.DoJSON(context.Background(), http.MethodGet, " ", nil, nil, nil))

	_, err = NewWithBaseURL("not a url", 0)
	assert.Error(t, err)
}
