package clusternode

import (
	"time"

	"github.com/honzikv/bully-cluster/internal/ctrlflow"
	"github.com/honzikv/bully-cluster/internal/message"
	"github.com/honzikv/bully-cluster/internal/timeoututil"
)

// Run is the node's top-level mode loop (spec §4.1). It never returns
// except when stop is closed, letting callers (tests, graceful shutdown)
// unwind it.
func (n *Node) Run(stop <-chan struct{}) {
	n.log.Info("starting node")
	n.log.Debugf("current color is %q", n.color)

	for {
		select {
		case <-stop:
			return
		default:
		}

		if _, hasMaster := n.CurrentMasterID(); !hasMaster {
			if sig := n.RunElection(); sig != nil {
				if unsuccessful, ok := sig.(ctrlflow.ElectionUnsuccessful); ok {
					n.log.Info(unsuccessful.Reason())
					sleepOrStop(ElectionUnsuccessfulSleep, stop)
					continue
				}
			}
		}

		if n.isSelfLeader() {
			if sig := n.leaderLoop(stop); sig != nil {
				n.log.Info(sig.Reason())
				continue
			}
		} else {
			if sig := n.followerLoop(stop); sig != nil {
				n.log.Info(sig.Reason())
				n.masterID = nil
				n.mode = Electing
			}
		}
	}
}

func sleepOrStop(d time.Duration, stop <-chan struct{}) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-stop:
	}
}

// leaderLoop runs the node in Leader mode (spec §4.3/§4.4 leader side).
// Grounded on master_loop in original node.py.
func (n *Node) leaderLoop(stop <-chan struct{}) ctrlflow.Signal {
	n.changeColor(message.ColorMaster)
	if sig := n.SetupColors(true); sig != nil {
		return sig
	}

	n.nodesAliveCheckTimeout = timeoututil.New(NodeAliveTimeout / 2)

	for {
		select {
		case <-stop:
			return nil
		default:
		}

		if n.checkForDeadNodes() {
			if sig := n.SetupColors(false); sig != nil {
				return sig
			}
		}

		msg, ok := n.readNextMessage(time.Second)
		if !ok {
			continue
		}

		if sig := n.checkForClusterChanges(msg); sig != nil {
			return sig
		}

		if msg.Key != message.ChannelHeartbeat {
			continue
		}

		if to, known := n.aliveNodes[msg.SenderID]; !known {
			n.aliveNodes[msg.SenderID] = newAliveTimeout()
			if sig := n.SetupColors(false); sig != nil {
				return sig
			}
		} else {
			to.Reset()
			n.log.Debugf("received heartbeat from %s", nodeName(msg.SenderID))
			n.transport.Send(msg.SenderID, message.ChannelHeartbeat, message.StrValue(message.HeartbeatResponse))
		}
	}
}

// followerLoop runs the node in Follower mode (spec §4.4 follower side).
// Grounded on slave_loop in original node.py.
func (n *Node) followerLoop(stop <-chan struct{}) ctrlflow.Signal {
	n.changeColor(message.ColorSlave)
	masterID, _ := n.CurrentMasterID()
	n.transport.Send(masterID, message.ChannelHeartbeat, message.StrValue(message.HeartbeatRequest))

	heartbeatTimeout := timeoututil.New(HeartbeatInterval)
	n.masterTimeout = timeoututil.New(NodeAliveTimeout)

	for !n.masterTimeout.TimedOut() {
		select {
		case <-stop:
			return nil
		default:
		}

		if heartbeatTimeout.TimedOut() {
			n.transport.Send(masterID, message.ChannelHeartbeat, message.StrValue(message.HeartbeatRequest))
			heartbeatTimeout.Reset()
		}

		msg, ok := n.readNextMessage(time.Second)
		if !ok {
			continue
		}

		if sig := n.checkForClusterChanges(msg); sig != nil {
			return sig
		}

		n.resetMasterTimeoutIfFromMaster(msg)

		switch msg.Key {
		case message.ChannelHeartbeat:
			if msg.Value.Str == message.HeartbeatRequest {
				n.transport.Send(msg.SenderID, message.ChannelHeartbeat, message.StrValue(message.HeartbeatResponse))
			} else {
				n.log.Debugf("received heartbeat response from master (%s)", nodeName(masterID))
			}
		case message.ChannelColor:
			n.changeColor(msg.Value.Str)
			n.transport.Send(masterID, message.ChannelColor, message.StrValue(n.color))
		}
	}

	return ctrlflow.MasterDisconnected{
		Msg: "master (" + nodeName(masterID) + ") did not respond, starting an election",
	}
}
