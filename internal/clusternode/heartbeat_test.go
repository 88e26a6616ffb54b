package clusternode

import (
	"testing"
	"time"

	"github.com/honzikv/bully-cluster/internal/inbox"
	"github.com/honzikv/bully-cluster/internal/timeoututil"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newBareNode(id, maxID int) *Node {
	log := logrus.New().WithField("test", true)
	ft := &fakeTransport{selfID: id, inboxes: []*inbox.Inbox{inbox.New(log)}, up: true}
	return New(id, maxID, inbox.New(log), ft, log, int64(id))
}

func TestCheckForDeadNodesRemovesExpiredEntries(t *testing.T) {
	n := newBareNode(0, 2)
	n.aliveNodes[1] = timeoututil.New(1 * time.Millisecond)
	n.aliveNodes[2] = timeoututil.New(time.Hour)
	n.nodesAliveCheckTimeout = timeoututil.New(0)

	time.Sleep(5 * time.Millisecond)

	dead := n.checkForDeadNodes()
	assert.True(t, dead)
	_, stillAlive1 := n.aliveNodes[1]
	_, stillAlive2 := n.aliveNodes[2]
	assert.False(t, stillAlive1)
	assert.True(t, stillAlive2)
}

func TestCheckForDeadNodesGatedByCheckTimeout(t *testing.T) {
	n := newBareNode(0, 1)
	n.aliveNodes[1] = timeoututil.New(0)
	n.nodesAliveCheckTimeout = timeoututil.New(time.Hour)

	assert.False(t, n.checkForDeadNodes())
}

func TestNodeNameFormatsOneIndexed(t *testing.T) {
	assert.Equal(t, "NODE-1", nodeName(0))
	assert.Equal(t, "NODE-3", nodeName(2))
}
