package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// callQueue runs session calls on one goroutine in the order they were
// pushed. bubbletea runs every Cmd on its own goroutine, so calls made
// straight from Cmds could reach the session out of keystroke order.
type callQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []queuedCall
	closed bool
}

type queuedCall struct {
	fn  func() tea.Msg
	out chan tea.Msg
}

func newCallQueue() *callQueue {
	q := &callQueue{}
	q.cond = sync.NewCond(&q.mu)
	go q.loop()
	return q
}

// push queues fn and returns a Cmd that yields fn's message once fn has run.
// Ordering is fixed at push time, not when the Cmd executes.
func (q *callQueue) push(fn func() tea.Msg) tea.Cmd {
	out := make(chan tea.Msg, 1)

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.queue = append(q.queue, queuedCall{fn: fn, out: out})
	q.cond.Signal()
	q.mu.Unlock()

	return func() tea.Msg { return <-out }
}

// close rejects later pushes. Calls already queued still run.
func (q *callQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Signal()
	q.mu.Unlock()
}

func (q *callQueue) loop() {
	for {
		q.mu.Lock()
		for len(q.queue) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.queue) == 0 {
			q.mu.Unlock()
			return
		}
		c := q.queue[0]
		q.queue = q.queue[1:]
		q.mu.Unlock()

		c.out <- c.fn()
	}
}
