// Package store implements the per-node hierarchical write-through cache
// (spec §4.8), grounded on
// original_source/ex03/client/src/store/store_controller.go's get/put/delete
// shape and store_service.py's parent-propagation semantics.
package store

import (
	"errors"
	"sync"

	"github.com/honzikv/bully-cluster/internal/workqueue"
	"github.com/sirupsen/logrus"
)

// ErrNotFound indicates the key is absent both locally and (if queried)
// at every ancestor up to the root.
var ErrNotFound = errors.New("store: key not found")

// ErrUnavailable indicates the parent could not be reached; the caller
// should surface this as HTTP 503 (spec §7.3).
var ErrUnavailable = errors.New("store: parent unavailable")

// ParentClient is the upward-propagation collaborator: the HTTP client
// wrapper talking to this node's parent in the tree.
type ParentClient interface {
	Get(key string) (value any, found bool, err error)
	Put(key string, value any) error
	Delete(key string) error
}

// Store is a per-node key/value cache that faults GETs upward on miss and
// propagates PUT/DELETE upward, optionally asynchronously via a
// background work queue (spec §4.8).
type Store struct {
	mu     sync.Mutex
	data   map[string]any
	parent ParentClient // nil for the root
	queue  *workqueue.Queue
	log    *logrus.Entry
}

// New creates a Store. parent is nil for the root node, which has no
// upward propagation target (spec §4.8 "Root PUT/DELETE").
func New(parent ParentClient, queue *workqueue.Queue, log *logrus.Entry) *Store {
	return &Store{
		data:   make(map[string]any),
		parent: parent,
		queue:  queue,
		log:    log,
	}
}

// Get returns the value for k, faulting upward on local miss. The root
// returns ErrNotFound immediately without querying further.
func (s *Store) Get(k string) (any, error) {
	s.mu.Lock()
	if v, ok := s.data[k]; ok {
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	if s.parent == nil {
		return nil, ErrNotFound
	}

	v, found, err := s.parent.Get(k)
	if err != nil {
		s.log.WithError(err).Warnf("failed to get key %q from parent", k)
		return nil, ErrUnavailable
	}
	if !found {
		return nil, ErrNotFound
	}

	s.mu.Lock()
	s.data[k] = v
	s.mu.Unlock()
	return v, nil
}

// Put updates the local cache unconditionally, then propagates upward:
// synchronously (surfacing parent failure as ErrUnavailable) if
// waitForParent, otherwise via the background queue on a best-effort
// basis (spec §4.8 — deliberate write-through, not two-phase).
func (s *Store) Put(k string, v any, waitForParent bool) error {
	s.mu.Lock()
	s.data[k] = v
	s.mu.Unlock()

	if s.parent == nil {
		return nil
	}

	if waitForParent {
		if err := s.parent.Put(k, v); err != nil {
			s.log.WithError(err).Warnf("failed to put key %q in parent", k)
			return ErrUnavailable
		}
		return nil
	}

	s.queue.AddTask(func() {
		if err := s.parent.Put(k, v); err != nil {
			s.log.WithError(err).Debugf("background put of key %q in parent failed", k)
		}
	})
	return nil
}

// Delete removes k locally (absence is not an error) and propagates
// upward, symmetric to Put.
func (s *Store) Delete(k string, waitForParent bool) error {
	s.mu.Lock()
	delete(s.data, k)
	s.mu.Unlock()

	if s.parent == nil {
		return nil
	}

	if waitForParent {
		if err := s.parent.Delete(k); err != nil {
			s.log.WithError(err).Warnf("failed to delete key %q in parent", k)
			return ErrUnavailable
		}
		return nil
	}

	s.queue.AddTask(func() {
		if err := s.parent.Delete(k); err != nil {
			s.log.WithError(err).Debugf("background delete of key %q in parent failed", k)
		}
	})
	return nil
}

// All returns a shallow copy of every locally held entry (spec §6
// "GET /store" — no upward fan-out, matching the original).
func (s *Store) All() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := make(map[string]any, len(s.data))
	for k, v := range s.data {
		cp[k] = v
	}
	return cp
}
