package clusternode

import (
	"github.com/honzikv/bully-cluster/internal/ctrlflow"
	"github.com/honzikv/bully-cluster/internal/message"
)

// checkForClusterChanges is the cluster-change guard invoked on every
// inbound message from both the leader and follower loops. Rule 1:
// a victory broadcast from a higher id means a new leader has emerged
// mid-term; step down and adopt it. Rule 2: a leader receiving an
// election message from an id it doesn't yet track as alive means a
// node has newly joined; reply victory and signal ClusterReset so the
// cluster re-colors. Non-leader nodes observing a lower-id election
// message take no guard action here — that belongs to the election
// procedure itself, not the guard.
func (n *Node) checkForClusterChanges(msg message.Message) ctrlflow.Signal {
	if msg.Key != message.ChannelElection {
		return nil
	}

	if !msg.Value.IsInt && msg.Value.Str == message.ElectionVictory {
		if msg.SenderID > n.ID {
			n.mode = Follower
			masterID := msg.SenderID
			n.masterID = &masterID
			return ctrlflow.ClusterReset{Msg: "cluster reset due to master change"}
		}
		return nil
	}

	if msg.Value.IsInt && msg.Value.Int < n.ID && n.isSelfLeader() {
		n.transport.Send(msg.SenderID, message.ChannelElection, message.StrValue(message.ElectionVictory))
		if _, alive := n.aliveNodes[msg.SenderID]; !alive {
			return ctrlflow.ClusterReset{Msg: "cluster reset due to new node joining below the leader"}
		}
		return nil
	}

	return nil
}
