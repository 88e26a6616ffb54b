// Package workqueue implements the single-worker background task queue used
// by the hierarchical store for asynchronous parent propagation (spec §4.9).
// Grounded on original_source/ex03/client/src/background_tasks.py's
// queue.Queue-plus-one-thread shape.
package workqueue

import (
	"github.com/sirupsen/logrus"
)

// Depth bounds the number of pending tasks. The background queue is
// best-effort; a full queue simply blocks the enqueuing caller briefly
// rather than dropping, since propagation tasks (unlike inbox messages)
// carry no natural substitute if lost.
const Depth = 1024

// Task is a zero-argument callable enqueued for background execution.
type Task func()

// Queue is a FIFO of Tasks drained by exactly one worker goroutine,
// preserving per-caller enqueue order end-to-end (spec §4.9 invariant).
type Queue struct {
	tasks chan Task
	done  chan struct{}
	log   *logrus.Entry
}

// New starts the worker goroutine and returns the Queue handle.
func New(log *logrus.Entry) *Queue {
	q := &Queue{
		tasks: make(chan Task, Depth),
		done:  make(chan struct{}),
		log:   log,
	}
	go q.run()
	return q
}

func (q *Queue) run() {
	for task := range q.tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					q.log.Errorf("background task panicked: %v", r)
				}
			}()
			task()
		}()
	}
	close(q.done)
}

// AddTask enqueues a task for background execution.
func (q *Queue) AddTask(task Task) {
	q.tasks <- task
}

// Terminate stops accepting new tasks and blocks until the worker has
// drained everything already queued (spec §4.9: "drained at process
// shutdown by a termination flag").
func (q *Queue) Terminate() {
	close(q.tasks)
	<-q.done
}
