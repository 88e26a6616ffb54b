package clusternode

import (
	"math"
	"time"

	"github.com/honzikv/bully-cluster/internal/ctrlflow"
	"github.com/honzikv/bully-cluster/internal/message"
	"github.com/honzikv/bully-cluster/internal/timeoututil"
)

// findActiveNodes discovers live followers by broadcasting a heartbeat
// request and collecting every sender that responds within
// NodeAliveTimeout, grounded on find_active_nodes in original node.py.
func (n *Node) findActiveNodes() ctrlflow.Signal {
	n.aliveNodes = make(map[int]*timeoututil.Timeout)
	n.transport.Broadcast(message.ChannelHeartbeat, message.StrValue(message.HeartbeatRequest))

	searchTimeout := timeoututil.New(NodeAliveTimeout)
	for !searchTimeout.TimedOut() {
		if len(n.aliveNodes) == n.MaxNodeID {
			break
		}

		msg, ok := n.readNextMessage(time.Second)
		if !ok {
			continue
		}

		if sig := n.checkForClusterChanges(msg); sig != nil {
			return sig
		}

		if msg.Key != message.ChannelHeartbeat {
			n.log.Debugf("find_active_nodes: received unexpected message: %s", msg)
			continue
		}

		if _, known := n.aliveNodes[msg.SenderID]; !known {
			n.aliveNodes[msg.SenderID] = timeoututil.New(NodeAliveTimeout)
		}

		if msg.Value.Str == message.HeartbeatRequest {
			n.transport.Send(msg.SenderID, message.ChannelHeartbeat, message.StrValue(message.HeartbeatResponse))
		}
	}

	return nil
}

// createColorAssignments assigns green/red to every node in aliveNodes,
// grounded on create_color_assignments. The leader is always green; the
// coloring fraction clamps at 0 (SPEC_FULL.md §4 Open Question decision).
func (n *Node) createColorAssignments() {
	nGreen := int(math.Ceil(float64(len(n.aliveNodes)+1) / 3.0))
	nGreen--
	if nGreen < 0 {
		nGreen = 0
	}

	n.changeColor(message.ColorGreen)
	n.nodeColors[n.ID] = message.ColorGreen

	nodes := make([]int, 0, len(n.aliveNodes))
	for id := range n.aliveNodes {
		nodes = append(nodes, id)
	}
	n.rng.Shuffle(len(nodes), func(i, j int) { nodes[i], nodes[j] = nodes[j], nodes[i] })

	for idx, id := range nodes {
		if idx < nGreen {
			n.nodesToColor[id] = message.ColorGreen
		} else {
			n.nodesToColor[id] = message.ColorRed
		}
	}
}

// distributeAndAwaitAck sends pending color assignments and waits for acks,
// grounded on all_colors_assigned.
func (n *Node) distributeAndAwaitAck() (bool, ctrlflow.Signal) {
	for id, color := range n.nodesToColor {
		n.transport.Send(id, message.ChannelColor, message.StrValue(color))
	}

	ackTimeout := timeoututil.New(MaxColorAssignmentDuration)
	for !ackTimeout.TimedOut() {
		if len(n.nodesToColor) == 0 {
			break
		}

		msg, ok := n.readNextMessage(time.Second)
		if !ok {
			continue
		}

		if sig := n.checkForClusterChanges(msg); sig != nil {
			return false, sig
		}

		if _, alive := n.aliveNodes[msg.SenderID]; !alive {
			continue
		}

		if msg.Key == message.ChannelColor {
			delete(n.nodesToColor, msg.SenderID)
			n.nodeColors[msg.SenderID] = msg.Value.Str
			continue
		}

		if msg.Key == message.ChannelHeartbeat && msg.Value.Str == message.HeartbeatRequest {
			n.transport.Send(msg.SenderID, message.ChannelHeartbeat, message.StrValue(message.HeartbeatResponse))
		}
	}

	return len(n.nodesToColor) == 0, nil
}

// SetupColors runs the full coloring protocol (spec §4.3). When
// discoverActive is false, aliveNodes is reused as-is (used when
// re-coloring after a detected death, per §4.4).
func (n *Node) SetupColors(discoverActive bool) ctrlflow.Signal {
	n.log.Info("setting up node colors")

	if discoverActive {
		if sig := n.findActiveNodes(); sig != nil {
			return sig
		}
	}

	n.nodeColors = make(map[int]string)
	n.nodesToColor = make(map[int]string)
	n.createColorAssignments()

	ok, sig := n.distributeAndAwaitAck()
	if sig != nil {
		return sig
	}
	if !ok {
		return ctrlflow.ClusterReset{Msg: "not all colors assigned, resetting cluster"}
	}

	n.log.Info("node colors have been set up")
	n.resetAliveTimeouts()
	return nil
}

func (n *Node) resetAliveTimeouts() {
	for _, to := range n.aliveNodes {
		to.Reset()
	}
}
