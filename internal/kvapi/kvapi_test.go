package kvapi

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/honzikv/bully-cluster/internal/store"
	"github.com/honzikv/bully-cluster/internal/tree"
	"github.com/honzikv/bully-cluster/internal/workqueue"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func testLogger() *logrus.Entry {
	return logrus.New().WithField("test", true)
}

func TestGetMissingKeyReturns404(t *testing.T) {
	st := store.New(nil, workqueue.New(testLogger()), testLogger())
	r := Router(st, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/store/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutThenGet(t *testing.T) {
	st := store.New(nil, workqueue.New(testLogger()), testLogger())
	r := Router(st, nil, testLogger())

	body := bytes.NewBufferString(`{"value": 7, "wait_for_parent": true}`)
	req := httptest.NewRequest(http.MethodPut, "/store/x", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/store/x", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"value": 7}`, w.Body.String())
}

func TestDeleteAbsentKeyStillReturns200(t *testing.T) {
	st := store.New(nil, workqueue.New(testLogger()), testLogger())
	r := Router(st, nil, testLogger())

	req := httptest.NewRequest(http.MethodDelete, "/store/x", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNonRootHasNoTreeEndpoints(t *testing.T) {
	st := store.New(nil, workqueue.New(testLogger()), testLogger())
	r := Router(st, nil, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/nodes/structure", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRootTreeEndpoints(t *testing.T) {
	st := store.New(nil, workqueue.New(testLogger()), testLogger())
	tr := tree.New(3, "R")
	r := Router(st, tr, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/nodes/parent/A", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"path": "/R"}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/nodes/structure", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
