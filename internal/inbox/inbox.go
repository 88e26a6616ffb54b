// Package inbox implements the bounded mailbox every node drains its
// driver loop from.
package inbox

import (
	"time"

	"github.com/honzikv/bully-cluster/internal/message"
	"github.com/sirupsen/logrus"
)

// Capacity is the fixed mailbox size from spec §3. Overflow is dropped
// silently (with a log warning) rather than blocking the deliverer, since
// the protocol tolerates lost messages via timeouts.
const Capacity = 4096

// Inbox is a thread-safe FIFO mailbox. Many goroutines may call Push
// concurrently (the message-accepting participants of spec §5); exactly
// one goroutine (the driver) should call Pop.
type Inbox struct {
	ch  chan message.Message
	log *logrus.Entry
}

// New creates an empty Inbox with the fixed capacity.
func New(log *logrus.Entry) *Inbox {
	return &Inbox{ch: make(chan message.Message, Capacity), log: log}
}

// Push enqueues a message. If the mailbox is full the message is dropped
// and a warning is logged; back-pressure never blocks the caller.
func (ib *Inbox) Push(msg message.Message) {
	select {
	case ib.ch <- msg:
	default:
		if ib.log != nil {
			ib.log.WithField("channel", msg.Key).Warn("inbox full, dropping message")
		}
	}
}

// Pop blocks until a message is available or timeout elapses, returning
// (msg, true) or (zero value, false) respectively. A zero timeout means
// "return immediately if nothing is queued".
func (ib *Inbox) Pop(timeout time.Duration) (message.Message, bool) {
	if timeout <= 0 {
		select {
		case msg := <-ib.ch:
			return msg, true
		default:
			return message.Message{}, false
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-ib.ch:
		return msg, true
	case <-timer.C:
		return message.Message{}, false
	}
}

// Len returns the number of messages currently queued.
func (ib *Inbox) Len() int {
	return len(ib.ch)
}
