package channel

import (
	"github.com/contactoiut/bancomaton-backend/app/models"
)

// Channel is one reliable, ordered message pipe between the host and a single
// client. The host holds one Channel per joined peer; a client holds exactly
// one. How the pipe is obtained (socket.io room, in-process pair) is the
// transport's business.
type Channel interface {
	ID() string
	Send(msg models.PeerMessage) error
	Recv() <-chan models.PeerMessage
	// Done is closed when the channel goes away; read loops select on it
	// because Recv stays open for late senders.
	Done() <-chan struct{}
	Close() error
}
