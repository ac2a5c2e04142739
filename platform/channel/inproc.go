package channel

import (
	"errors"
	"sync"

	"github.com/contactoiut/bancomaton-backend/app/models"
	uuid "github.com/satori/go.uuid"
)

// Inproc is a loopback transport: Pipe returns the two ends of a bidirectional
// in-memory channel. Handy for single-process dev mode and tests without sockets.
type Inproc struct {
	id   string
	out  chan models.PeerMessage
	in   chan models.PeerMessage
	once *sync.Once // shared: closing either end tears down the pipe
	done chan struct{}
}

// Pipe creates a connected pair of endpoints. Whatever is sent on one end is
// received on the other.
func Pipe() (*Inproc, *Inproc) {
	ab := make(chan models.PeerMessage, 256)
	ba := make(chan models.PeerMessage, 256)
	done := make(chan struct{})
	once := new(sync.Once)
	a := &Inproc{id: uuid.NewV4().String(), out: ab, in: ba, once: once, done: done}
	b := &Inproc{id: uuid.NewV4().String(), out: ba, in: ab, once: once, done: done}
	return a, b
}

func (c *Inproc) ID() string { return c.id }

func (c *Inproc) Send(msg models.PeerMessage) error {
	select {
	case <-c.done:
		return errors.New("channel closed")
	case c.out <- msg:
		return nil
	}
}

func (c *Inproc) Recv() <-chan models.PeerMessage { return c.in }

// Close tears down both ends; Recv channels are drained by the done signal on
// the reader side, so no message is left blocking a sender.
func (c *Inproc) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

// Done exposes the closed signal so read loops can select on it.
func (c *Inproc) Done() <-chan struct{} { return c.done }
