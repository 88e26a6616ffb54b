package clusternode

import (
	"sync"
	"time"

	"github.com/honzikv/bully-cluster/internal/inbox"
	"github.com/honzikv/bully-cluster/internal/message"
	"github.com/sirupsen/logrus"
)

// fakeTransport routes Send/Broadcast/BroadcastAbove directly into the
// target's in-memory inbox, simulating the wire without HTTP, grounded
// on the same Sender contract internal/transport.Transport satisfies.
type fakeTransport struct {
	mu      sync.Mutex
	selfID  int
	inboxes []*inbox.Inbox
	up      bool // when false, Send is a no-op (simulates a dead peer)
}

func (ft *fakeTransport) alive() bool {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.up
}

func (ft *fakeTransport) setAlive(up bool) {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	ft.up = up
}

func (ft *fakeTransport) Send(targetID int, channel message.Channel, value message.Value) {
	if !ft.alive() {
		return
	}
	if targetID < 0 || targetID >= len(ft.inboxes) {
		return
	}
	ft.inboxes[targetID].Push(message.Message{Key: channel, Value: value, SenderID: ft.selfID})
}

func (ft *fakeTransport) Broadcast(channel message.Channel, value message.Value) {
	for id := range ft.inboxes {
		if id != ft.selfID {
			ft.Send(id, channel, value)
		}
	}
}

func (ft *fakeTransport) BroadcastAbove(channel message.Channel, value message.Value) {
	for id := ft.selfID + 1; id < len(ft.inboxes); id++ {
		ft.Send(id, channel, value)
	}
}

type harness struct {
	nodes      []*Node
	transports []*fakeTransport
}

func newHarness(n int) *harness {
	log := logrus.New().WithField("test", true)
	ibs := make([]*inbox.Inbox, n)
	for i := range ibs {
		ibs[i] = inbox.New(log)
	}

	h := &harness{
		nodes:      make([]*Node, n),
		transports: make([]*fakeTransport, n),
	}
	for i := 0; i < n; i++ {
		ft := &fakeTransport{selfID: i, inboxes: ibs, up: true}
		h.transports[i] = ft
		h.nodes[i] = New(i, n-1, ibs[i], ft, log, int64(i))
	}
	return h
}

func shrinkTimeouts() func() {
	origPoll := ElectionMsgPollInterval
	origSleep := ElectionUnsuccessfulSleep
	origHeartbeat := HeartbeatInterval
	origElection := MaxElectionDuration
	origExt := ElectionExtension
	origAlive := NodeAliveTimeout
	origColor := MaxColorAssignmentDuration

	ElectionMsgPollInterval = 5 * time.Millisecond
	ElectionUnsuccessfulSleep = 20 * time.Millisecond
	HeartbeatInterval = 30 * time.Millisecond
	MaxElectionDuration = 80 * time.Millisecond
	ElectionExtension = 60 * time.Millisecond
	NodeAliveTimeout = 150 * time.Millisecond
	MaxColorAssignmentDuration = 150 * time.Millisecond

	return func() {
		ElectionMsgPollInterval = origPoll
		ElectionUnsuccessfulSleep = origSleep
		HeartbeatInterval = origHeartbeat
		MaxElectionDuration = origElection
		ElectionExtension = origExt
		NodeAliveTimeout = origAlive
		MaxColorAssignmentDuration = origColor
	}
}
