package client

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/contactoiut/bancomaton-backend/app/models"
	"github.com/contactoiut/bancomaton-backend/platform/channel"
	"github.com/contactoiut/bancomaton-backend/platform/ledger"
	log "github.com/sirupsen/logrus"
)

var errNotJoined = errors.New("not joined yet")

// Notification is what a proxy surfaces to its UI when the host answers one of
// its requests.
type Notification struct {
	Success bool
	Message string
}

// Proxy mirrors the host's snapshot on a non-host participant. It never
// mutates the game itself, not even optimistically: local intents travel to
// the host as requests and the mirror only moves on the next broadcast.
type Proxy struct {
	ch     channel.Channel
	ledger *ledger.Ledger

	mu       sync.Mutex
	playerId string
	state    models.GameState

	notify   chan Notification
	rejected chan string
}

func NewProxy(l *ledger.Ledger, ch channel.Channel) *Proxy {
	return &Proxy{
		ch:       ch,
		ledger:   l,
		notify:   make(chan Notification, 16),
		rejected: make(chan string, 1),
	}
}

// Join asks the host for a seat and starts the receive loop. The player id is
// assigned by the host and echoed back asynchronously; PlayerId is empty until
// the ack arrives.
func (p *Proxy) Join(name string) error {
	if err := p.ch.Send(models.NewMessage(models.MsgJoinRequest, models.JoinRequestPayload{Name: name})); err != nil {
		return err
	}
	go p.run()
	return nil
}

func (p *Proxy) run() {
	for {
		select {
		case msg := <-p.ch.Recv():
			p.handle(msg)
		case <-p.ch.Done():
			return
		}
	}
}

func (p *Proxy) handle(msg models.PeerMessage) {
	switch msg.Type {
	case models.MsgStateUpdate:
		var snapshot models.GameState
		if err := json.Unmarshal(msg.Payload, &snapshot); err != nil {
			log.WithError(err).Warn("dropping malformed state update")
			return
		}
		p.mu.Lock()
		// full replacement, never a merge
		p.state = p.ledger.Apply(p.state, models.Action{Type: models.ActSetState, State: &snapshot})
		p.mu.Unlock()

	case models.MsgJoinAck:
		var payload models.JoinAckPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return
		}
		p.mu.Lock()
		p.playerId = payload.PlayerId
		p.mu.Unlock()

	case models.MsgJoinRejected:
		var payload models.JoinRejectedPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return
		}
		select {
		case p.rejected <- payload.Reason:
		default:
		}

	case models.MsgActionResponse:
		var payload models.ActionResponsePayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return
		}
		// responses addressed to other players are not ours to show
		if payload.RequesterId != p.PlayerId() {
			return
		}
		select {
		case p.notify <- Notification{Success: payload.Success, Message: payload.Message}:
		default:
		}

	default:
		log.WithField("type", msg.Type).Warn("rejecting unknown message type")
	}
}

// Request forwards a local intent to the host. The mirror stays untouched
// until a broadcast or a response comes back.
func (p *Proxy) Request(action models.Action) error {
	id := p.PlayerId()
	if id == "" {
		return errNotJoined
	}
	return p.ch.Send(models.NewMessage(models.MsgActionRequest, models.ActionRequestPayload{
		RequesterId: id,
		Action:      action,
	}))
}

func (p *Proxy) PlayerId() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playerId
}

// State returns a copy of the last snapshot received from the host.
func (p *Proxy) State() models.GameState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.Clone()
}

// Notifications surfaces responses the host addressed to this player.
func (p *Proxy) Notifications() <-chan Notification { return p.notify }

// Rejected yields the reason when the host refused the join.
func (p *Proxy) Rejected() <-chan string { return p.rejected }
