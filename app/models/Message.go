package models

import "encoding/json"

type MessageType string

const (
	MsgJoinRequest    MessageType = "JOIN_REQUEST"
	MsgJoinAck        MessageType = "JOIN_ACK"
	MsgJoinRejected   MessageType = "JOIN_REJECTED"
	MsgStateUpdate    MessageType = "STATE_UPDATE"
	MsgActionRequest  MessageType = "HOST_ACTION_REQUEST"
	MsgActionResponse MessageType = "ACTION_RESPONSE"
)

// PeerMessage is the wire envelope exchanged over a channel. The payload is
// raw JSON decoded per tag; unknown tags are rejected by the receiver.
type PeerMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type JoinRequestPayload struct {
	Name string `json:"name"`
}

// JoinAckPayload echoes the id the host assigned, so a client never has to
// guess its own seat by name matching.
type JoinAckPayload struct {
	PlayerId string `json:"playerId"`
}

type JoinRejectedPayload struct {
	Reason string `json:"reason"`
}

type ActionRequestPayload struct {
	RequesterId string `json:"requesterId"`
	Action      Action `json:"action"`
}

type ActionResponsePayload struct {
	RequesterId string `json:"requesterId"`
	Success     bool   `json:"success"`
	Message     string `json:"message"`
}

// NewMessage wraps a payload struct into an envelope. Marshal failures cannot
// happen for the payload types above, so they are swallowed.
func NewMessage(t MessageType, payload interface{}) PeerMessage {
	raw, _ := json.Marshal(payload)
	return PeerMessage{Type: t, Payload: raw}
}
