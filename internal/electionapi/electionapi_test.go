package electionapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/honzikv/bully-cluster/internal/inbox"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	return logrus.New().WithField("test", true)
}

func TestHealthcheckReturns200(t *testing.T) {
	r := Router(inbox.New(testLogger()), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/healthcheck", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestElectionPostPushesToInbox(t *testing.T) {
	ib := inbox.New(testLogger())
	r := Router(ib, testLogger())

	body := bytes.NewBufferString(`{"value": 2, "sender_id": 1}`)
	req := httptest.NewRequest(http.MethodPost, "/election", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	msg, ok := ib.Pop(time.Second)
	require.True(t, ok)
	assert.Equal(t, 1, msg.SenderID)
	assert.Equal(t, 2, msg.Value.Int)
}

func TestMalformedBodyRejected(t *testing.T) {
	r := Router(inbox.New(testLogger()), testLogger())

	body := bytes.NewBufferString(`{"value": {"nested": true}, "sender_id": 1}`)
	req := httptest.NewRequest(http.MethodPost, "/election", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
