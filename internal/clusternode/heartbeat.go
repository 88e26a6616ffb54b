package clusternode

import (
	"sort"
	"strconv"
	"strings"

	"github.com/honzikv/bully-cluster/internal/message"
	"github.com/honzikv/bully-cluster/internal/timeoututil"
)

// checkForDeadNodes scans aliveNodes for expired leader-side timeouts,
// gated by nodesAliveCheckTimeout to limit overhead (spec §4.4), grounded
// on check_for_dead_nodes in original node.py.
func (n *Node) checkForDeadNodes() bool {
	if n.nodesAliveCheckTimeout == nil || !n.nodesAliveCheckTimeout.TimedOut() {
		return false
	}
	n.nodesAliveCheckTimeout.Reset()

	var dead []int
	for id, to := range n.aliveNodes {
		if to.TimedOut() {
			dead = append(dead, id)
		}
	}
	if len(dead) == 0 {
		return false
	}

	sort.Ints(dead)
	names := make([]string, len(dead))
	for i, id := range dead {
		names[i] = nodeName(id)
	}
	n.log.Warnf("detected dead nodes: %s", strings.Join(names, ", "))

	for _, id := range dead {
		delete(n.aliveNodes, id)
	}
	return true
}

func nodeName(id int) string {
	return "NODE-" + strconv.Itoa(id+1)
}

// resetMasterTimeoutIfFromMaster refreshes the follower-side master liveness timer
// whenever a message from the known master is observed, grounded on
// slave_loop's "self.master_timeout.reset()".
func (n *Node) resetMasterTimeoutIfFromMaster(msg message.Message) {
	masterID, known := n.CurrentMasterID()
	if known && msg.SenderID == masterID {
		n.masterTimeout.Reset()
	}
}

func newAliveTimeout() *timeoututil.Timeout {
	return timeoututil.New(NodeAliveTimeout)
}
