// Package clusternode implements the Bully election, red/green coloring,
// and heartbeat-based failure detection protocols. It is one package,
// not five, because all of it operates on a single actor's state under
// a single-consumer driver loop — state, election, heartbeats, and
// leadership bookkeeping all live on one receiver, with no locks needed
// since only the driver goroutine ever touches them.
package clusternode

import (
	"math/rand"
	"time"

	"github.com/honzikv/bully-cluster/internal/message"
	"github.com/honzikv/bully-cluster/internal/timeoututil"
	"github.com/sirupsen/logrus"
)

// Tunables, defaulted per spec §3/§4 ("default 10-15s" etc). Exported so
// tests can shrink them.
var (
	ElectionMsgPollInterval    = 1 * time.Second
	ElectionUnsuccessfulSleep  = 3 * time.Second
	HeartbeatInterval          = 5 * time.Second
	MaxElectionDuration        = 10 * time.Second
	ElectionExtension          = 5 * time.Second
	NodeAliveTimeout           = 10 * time.Second
	MaxColorAssignmentDuration = 10 * time.Second
)

// Sender is the subset of internal/transport.Transport the node needs;
// modelled as an interface so the state machine can be tested without a
// real HTTP stack.
type Sender interface {
	Send(targetID int, channel message.Channel, value message.Value)
	Broadcast(channel message.Channel, value message.Value)
	BroadcastAbove(channel message.Channel, value message.Value)
}

// Mailbox is the subset of internal/inbox.Inbox the node needs.
type Mailbox interface {
	Pop(timeout time.Duration) (message.Message, bool)
}

// Mode is the node's current role (spec §3).
type Mode int

const (
	Electing Mode = iota
	Leader
	Follower
)

func (m Mode) String() string {
	switch m {
	case Leader:
		return "leader"
	case Follower:
		return "follower"
	default:
		return "electing"
	}
}

// Node wraps one cluster participant's entire state, driven by a single
// consumer of inbox messages (spec §5: "All node state ... is owned by the
// driver participant and not shared; no locks are required on it").
type Node struct {
	ID        int
	MaxNodeID int

	inbox     Mailbox
	transport Sender
	log       *logrus.Entry
	rng       *rand.Rand

	mode        Mode
	color       string
	masterID    *int // nil means unknown/self-in-election
	surrendered bool

	aliveNodes    map[int]*timeoututil.Timeout
	nodeColors    map[int]string
	nodesToColor  map[int]string

	nodesAliveCheckTimeout *timeoututil.Timeout
	masterTimeout          *timeoututil.Timeout
}

// New creates a Node. seed pins the coloring shuffle (spec §9: "a
// per-node seedable source so tests can pin allocation").
func New(id, maxNodeID int, ib Mailbox, tr Sender, log *logrus.Entry, seed int64) *Node {
	return &Node{
		ID:           id,
		MaxNodeID:    maxNodeID,
		inbox:        ib,
		transport:    tr,
		log:          log,
		rng:          rand.New(rand.NewSource(seed)),
		mode:         Electing,
		color:        message.ColorInit,
		masterID:     nil,
		aliveNodes:   make(map[int]*timeoututil.Timeout),
		nodeColors:   make(map[int]string),
		nodesToColor: make(map[int]string),
	}
}

// CurrentMode, CurrentColor, CurrentMasterID expose read-only snapshots of
// the node's state, useful to callers (such as cmd/node's monitoring loop) that are
// not the driver goroutine itself. Callers other than the driver must
// treat these as eventually-consistent snapshots, not as a basis for
// further state mutation.
func (n *Node) CurrentMode() Mode { return n.mode }
func (n *Node) CurrentColor() string { return n.color }

func (n *Node) CurrentMasterID() (int, bool) {
	if n.masterID == nil {
		return 0, false
	}
	return *n.masterID, true
}

func (n *Node) changeColor(color string) {
	if n.color == color {
		return
	}
	n.log.Debugf("changing color from %q to %q", n.color, color)
	n.color = color
}

func (n *Node) readNextMessage(timeout time.Duration) (message.Message, bool) {
	return n.inbox.Pop(timeout)
}

// isSelfLeader reports whether this node currently considers itself
// the master, maintaining the invariant mode=Leader <=> master_id=self.id.
func (n *Node) isSelfLeader() bool {
	return n.mode == Leader
}

