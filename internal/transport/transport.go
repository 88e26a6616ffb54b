// Package transport implements the fire-and-forget HTTP sender the driver
// uses to reach peers, backed by a small worker pool so the single-threaded
// driver never blocks on network I/O (spec §5).
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/honzikv/bully-cluster/internal/message"
	"github.com/sirupsen/logrus"
)

// SendTimeout bounds a single outbound request, per spec §5 ("a per-send
// timeout of ≈3 s bounds resource consumption").
const SendTimeout = 3 * time.Second

// poolSize is the number of worker goroutines draining the send queue.
const poolSize = 8

// queueDepth bounds how many sends may be pending before new sends are
// dropped rather than blocking the driver.
const queueDepth = 1024

// Transport sends messages to peers addressed by integer node id. Sends
// never block the caller: jobs are queued to a bounded channel and
// processed by a worker pool; a full queue drops the job.
type Transport struct {
	selfID int
	addrs  []string // base URL per node id, e.g. "http://127.0.0.1:2333"
	client *http.Client
	log    *logrus.Entry
	jobs   chan sendJob
}

type sendJob struct {
	targetID int
	channel  message.Channel
	value    message.Value
	corrID   string
}

// New creates a Transport for selfID over the given ordered address list
// and starts its worker pool.
func New(selfID int, addrs []string, log *logrus.Entry) *Transport {
	tr := &Transport{
		selfID: selfID,
		addrs:  addrs,
		client: &http.Client{Timeout: SendTimeout},
		log:    log,
		jobs:   make(chan sendJob, queueDepth),
	}
	for i := 0; i < poolSize; i++ {
		go tr.worker()
	}
	return tr
}

func (tr *Transport) worker() {
	for job := range tr.jobs {
		tr.deliver(job)
	}
}

// Send enqueues a fire-and-forget message to targetID. Failures (queue
// full, connection refused, timeout) are swallowed; the failure detector
// notices absence via timeouts, per spec §7 item 2.
func (tr *Transport) Send(targetID int, channel message.Channel, value message.Value) {
	job := sendJob{targetID: targetID, channel: channel, value: value, corrID: uuid.NewString()}
	select {
	case tr.jobs <- job:
	default:
		if tr.log != nil {
			tr.log.WithFields(logrus.Fields{"target": targetID, "channel": channel}).
				Warn("send queue full, dropping outbound message")
		}
	}
}

// Broadcast sends the same channel/value to every node other than self.
func (tr *Transport) Broadcast(channel message.Channel, value message.Value) {
	for id := range tr.addrs {
		if id != tr.selfID {
			tr.Send(id, channel, value)
		}
	}
}

// BroadcastAbove sends to every node with id strictly greater than self
// (the Bully election's "send to all higher ids").
func (tr *Transport) BroadcastAbove(channel message.Channel, value message.Value) {
	for id := tr.selfID + 1; id < len(tr.addrs); id++ {
		tr.Send(id, channel, value)
	}
}

func (tr *Transport) deliver(job sendJob) {
	if job.targetID < 0 || job.targetID >= len(tr.addrs) {
		return
	}

	body := message.Message{Value: job.value, SenderID: tr.selfID}
	payload, err := json.Marshal(body)
	if err != nil {
		return
	}

	url := fmt.Sprintf("%s/%s", tr.addrs[job.targetID], job.channel)
	ctx, cancel := context.WithTimeout(context.Background(), SendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Correlation-Id", job.corrID)

	resp, err := tr.client.Do(req)
	if err != nil {
		if tr.log != nil {
			tr.log.WithFields(logrus.Fields{"target": job.targetID, "channel": job.channel, "corr_id": job.corrID}).
				Debug("send failed, node likely unreachable")
		}
		return
	}
	defer resp.Body.Close()
}

// HealthCheck reports whether nodeID's health endpoint is responding.
func (tr *Transport) HealthCheck(nodeID int) bool {
	if nodeID < 0 || nodeID >= len(tr.addrs) {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), SendTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tr.addrs[nodeID]+"/healthcheck", nil)
	if err != nil {
		return false
	}
	resp, err := tr.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
