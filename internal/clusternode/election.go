package clusternode

import (
	"github.com/honzikv/bully-cluster/internal/ctrlflow"
	"github.com/honzikv/bully-cluster/internal/message"
	"github.com/honzikv/bully-cluster/internal/timeoututil"
)

// declareSelfMaster makes this node the leader and broadcasts victory.
func (n *Node) declareSelfMaster() {
	n.mode = Leader
	id := n.ID
	n.masterID = &id
	n.log.Info("declaring self as master")
	n.transport.Broadcast(message.ChannelElection, message.StrValue(message.ElectionVictory))
	n.changeColor(message.ColorMaster)
}

// handleVictoryMessage adopts sender as master if it is a valid (higher-id)
// victory announcement. Returns true if the message was a victory message
// (regardless of whether it was adopted), mirroring
// election_victory_message's boolean-on-match, always-act-when-valid shape.
func (n *Node) handleVictoryMessage(msg message.Message) bool {
	if msg.Key != message.ChannelElection || msg.Value.IsInt || msg.Value.Str != message.ElectionVictory {
		return false
	}
	// A lower-or-equal id can never legitimately win; never promote it
	// (spec §4.2 tie-breaking note — a known attack/bug surface).
	if msg.SenderID <= n.ID {
		return true
	}
	n.mode = Follower
	masterID := msg.SenderID
	n.masterID = &masterID
	n.log.WithField("master_id", masterID).Info("master established via victory message")
	return true
}

// handleLowerIDMessage replies with surrender if msg is an election message
// from a strictly lower id. Equal-id messages are a documented no-op
// (SPEC_FULL.md §4).
func (n *Node) handleLowerIDMessage(msg message.Message) bool {
	if msg.Key != message.ChannelElection || !msg.Value.IsInt {
		return false
	}
	if msg.Value.Int >= n.ID {
		return false
	}
	n.log.WithField("from", msg.Value.Int).Debug("found node with lower id, sending surrender")
	n.transport.Send(msg.SenderID, message.ChannelElection, message.StrValue(message.ElectionSurrender))
	return true
}

// RunElection executes one pass of the Bully election procedure (spec
// §4.2). On return with a nil Signal the node has either become leader or
// adopted a master via a victory message. A non-nil Signal is
// ElectionUnsuccessful when a higher id exists but never announced.
func (n *Node) RunElection() ctrlflow.Signal {
	n.changeColor(message.ColorInit)
	n.log.Info("starting election")

	n.masterID = nil
	n.mode = Electing
	n.surrendered = false

	n.transport.BroadcastAbove(message.ChannelElection, message.IntValue(n.ID))

	electionTimeout := timeoututil.New(MaxElectionDuration)
	for !electionTimeout.TimedOut() {
		msg, ok := n.readNextMessage(ElectionMsgPollInterval)
		if !ok || msg.Key != message.ChannelElection {
			continue
		}

		if n.handleVictoryMessage(msg) {
			if n.mode == Follower {
				return nil
			}
			// victory from a lower/equal id was ignored; keep electing
			continue
		}

		if msg.Value.Str == message.ElectionSurrender && !n.surrendered {
			electionTimeout.Extend(ElectionExtension)
			n.surrendered = true
			continue
		}

		n.handleLowerIDMessage(msg)
	}

	if !n.surrendered {
		n.declareSelfMaster()
		return nil
	}

	return ctrlflow.ElectionUnsuccessful{
		Msg: "election unsuccessful, the higher-id winner never announced itself",
	}
}
