package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parish-calendar/internal/platform/httpclient"
	"parish-calendar/internal/ports/notify"
)

func TestNotifier_PostsOnePayloadPerCall(t *testing.T) {
	var (
		mu  sync.Mutex
		got []payload
	)
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p payload
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		mu.Lock()
		got = append(got, p)
		mu.Unlock()
		if p.Recipient == "broken@parish.org" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	n, err := New(ts.URL, 0)
	require.NoError(t, err)

	msg := notify.Message{Subject: "rule audit", Body: "1 event", Lines: []string{"event 7: bad rule"}}
	require.NoError(t, n.Notify(context.Background(), "admin@parish.org", msg))

	err = n.Notify(context.Background(), "broken@parish.org", msg)
	var he *httpclient.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusInternalServerError, he.StatusCode)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 2)
	assert.Equal(t, payload{Recipient: "admin@parish.org", Subject: "rule audit", Body: "1 event", Lines: []string{"event 7: bad rule"}}, got[0])
}

func TestNew_RequiresURL(t *testing.T) {
	_, err := New("  ", 0)
	assert.Error(t, err)
}
