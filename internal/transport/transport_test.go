package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/honzikv/bully-cluster/internal/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDeliversJSONBody(t *testing.T) {
	var mu sync.Mutex
	var gotPath string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		gotPath = r.URL.Path
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := New(0, []string{"http://self", srv.URL}, nil)
	tr.Send(1, message.ChannelElection, message.IntValue(0))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotPath == "/election"
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, float64(0), gotBody["value"])
	assert.Equal(t, float64(0), gotBody["sender_id"])
}

func TestSendToOutOfRangeTargetIsNoop(t *testing.T) {
	tr := New(0, []string{"http://self"}, nil)
	tr.Send(5, message.ChannelHeartbeat, message.StrValue(message.HeartbeatRequest))
	// Should not panic or block; give the worker a moment to process.
	time.Sleep(10 * time.Millisecond)
}

func TestHealthCheck(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tr := New(0, []string{"http://self", srv.URL}, nil)
	assert.True(t, tr.HealthCheck(1))
	assert.False(t, tr.HealthCheck(99))
}
