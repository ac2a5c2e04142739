package host

import (
	"encoding/json"
	"errors"
	"sync"

	"github.com/contactoiut/bancomaton-backend/app/models"
	"github.com/contactoiut/bancomaton-backend/platform/channel"
	"github.com/contactoiut/bancomaton-backend/platform/ledger"
	uuid "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
)

// Coordinator owns the authoritative snapshot of one game session. It is the
// only component that ever calls the ledger's mutating entry point; clients
// reach the state exclusively through requests it arbitrates. The mutex keeps
// message handling single-writer: each inbound message runs to completion,
// reducer call plus broadcast, before the next one starts.
type Coordinator struct {
	mu       sync.Mutex
	ledger   *ledger.Ledger
	state    models.GameState
	channels map[string]channel.Channel
	seats    map[string]string // channel id -> player id
	pending  PendingQueue
}

// NewCoordinator starts a session with the host seated as player-1.
func NewCoordinator(l *ledger.Ledger, hostName string) *Coordinator {
	c := &Coordinator{
		ledger:   l,
		channels: make(map[string]channel.Channel),
		seats:    make(map[string]string),
	}
	c.state = l.Apply(models.GameState{}, models.Action{
		Type:        models.ActInitializeGame,
		PlayerNames: []string{hostName},
	})
	return c
}

// State returns a copy of the current snapshot.
func (c *Coordinator) State() models.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Attach registers a peer channel and starts pumping its messages.
func (c *Coordinator) Attach(ch channel.Channel) {
	c.mu.Lock()
	c.channels[ch.ID()] = ch
	c.mu.Unlock()
	go c.serve(ch)
}

func (c *Coordinator) serve(ch channel.Channel) {
	for {
		select {
		case msg := <-ch.Recv():
			c.HandleMessage(ch, msg)
		case <-ch.Done():
			c.Detach(ch.ID())
			return
		}
	}
}

// Detach drops a channel. A seated player is marked disconnected but keeps
// their record, money and properties.
func (c *Coordinator) Detach(channelId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.channels, channelId)
	playerId, seated := c.seats[channelId]
	if !seated {
		return
	}
	delete(c.seats, channelId)
	c.applyLocked(models.Action{Type: models.ActPlayerDisconnected, PlayerId: playerId})
}

// HandleMessage dispatches one inbound peer message. Unknown tags and
// malformed payloads are rejected explicitly, never applied.
func (c *Coordinator) HandleMessage(ch channel.Channel, msg models.PeerMessage) {
	switch msg.Type {
	case models.MsgJoinRequest:
		var payload models.JoinRequestPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil || payload.Name == "" {
			log.WithField("type", msg.Type).Warn("dropping malformed join request")
			return
		}
		c.handleJoin(ch, payload.Name)
	case models.MsgActionRequest:
		var payload models.ActionRequestPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			log.WithField("type", msg.Type).Warn("dropping malformed action request")
			return
		}
		c.SubmitRequest(payload.RequesterId, payload.Action)
	default:
		log.WithField("type", msg.Type).Warn("rejecting unknown message type")
	}
}

func (c *Coordinator) handleJoin(ch channel.Channel, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.state.Players) >= ledger.MaxPlayers {
		log.WithField("name", name).Info("join rejected, session full")
		ch.Send(models.NewMessage(models.MsgJoinRejected, models.JoinRejectedPayload{
			Reason: "La partida está llena.",
		}))
		return
	}
	c.applyLocked(models.Action{Type: models.ActAddPlayer, PlayerName: name})
	playerId := c.state.Players[len(c.state.Players)-1].Id
	c.seats[ch.ID()] = playerId
	ch.Send(models.NewMessage(models.MsgJoinAck, models.JoinAckPayload{PlayerId: playerId}))
	log.WithFields(log.Fields{"name": name, "player": playerId}).Info("player joined")
}

// Seated reports the player id a channel holds a seat for. A channel that was
// rejected at join, or never joined, has no seat.
func (c *Coordinator) Seated(channelId string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	playerId, ok := c.seats[channelId]
	return playerId, ok
}

// SubmitRequest stages a client mutation request for host approval. Requests
// the describer does not recognize are dropped without creating an entry.
// Also the entry point for local requests in single-process dev mode.
func (c *Coordinator) SubmitRequest(requesterId string, action models.Action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	requester := c.state.FindPlayer(requesterId)
	if requester == nil {
		return
	}
	props := c.ledger.Properties()
	message := describeRequest(&c.state, requester, action, &props)
	if message == "" {
		log.WithFields(log.Fields{"requester": requesterId, "action": action.Type}).
			Warn("dropping request for non-requestable action")
		return
	}
	c.pending.Push(models.PendingAction{
		Id:            uuid.NewV4().String(),
		RequesterId:   requesterId,
		RequesterName: requester.Name,
		Message:       message,
		Action:        action,
	})
}

// Pending lists the requests awaiting disposition, oldest first.
func (c *Coordinator) Pending() []models.PendingAction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.Items()
}

// Approve applies a staged request exactly once and answers the requester.
// Approving an id that is no longer queued is a no-op. The build ceiling is
// checked again here: the count may have moved since the request was staged.
func (c *Coordinator) Approve(actionId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending.Pop(actionId)
	if !ok {
		return
	}
	if p.Action.Type == models.ActBuildHouse {
		if player := c.state.FindPlayer(p.Action.PlayerId); player != nil &&
			player.Buildings[p.Action.PropertyId] >= ledger.MaxBuildings {
			log.WithFields(log.Fields{"requester": p.RequesterId, "property": p.Action.PropertyId}).
				Warn("dropping stale build request, ceiling reached")
			c.respondLocked(p.RequesterId, false, "Solicitud rechazada.")
			return
		}
	}
	c.applyLocked(p.Action)
	c.respondLocked(p.RequesterId, true, "¡Solicitud aprobada!")
}

// Deny discards a staged request and answers the requester. Idempotent like
// Approve.
func (c *Coordinator) Deny(actionId string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.pending.Pop(actionId)
	if !ok {
		return
	}
	c.respondLocked(p.RequesterId, false, "Solicitud rechazada.")
}

// Direct applies a host-originated mutation, bypassing the approval queue.
// The build ceiling is guarded here because the reducer does not clamp.
func (c *Coordinator) Direct(action models.Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if action.Type == models.ActBuildHouse {
		if player := c.state.FindPlayer(action.PlayerId); player != nil &&
			player.Buildings[action.PropertyId] >= ledger.MaxBuildings {
			return errors.New("building limit reached")
		}
	}
	c.applyLocked(action)
	return nil
}

// applyLocked runs the reducer and rebroadcasts the whole snapshot. Callers
// hold the mutex.
func (c *Coordinator) applyLocked(action models.Action) {
	c.state = c.ledger.Apply(c.state, action)
	update := models.NewMessage(models.MsgStateUpdate, c.state)
	for _, ch := range c.channels {
		if err := ch.Send(update); err != nil {
			log.WithError(err).WithField("channel", ch.ID()).Warn("broadcast failed")
		}
	}
}

func (c *Coordinator) respondLocked(requesterId string, success bool, message string) {
	response := models.NewMessage(models.MsgActionResponse, models.ActionResponsePayload{
		RequesterId: requesterId,
		Success:     success,
		Message:     message,
	})
	for _, ch := range c.channels {
		ch.Send(response)
	}
}
