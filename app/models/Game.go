package models

// Game is the session-directory row stored in postgres. It only brokers the
// rendezvous between a host and its joiners; live game state never touches the DB.
type Game struct {
	Id     string
	Name   string
	Status string
}

type GameCreateDto struct {
	Name       string
	PlayerName string
}

type VerifyGameDto struct {
	Code string
}

// PropertyState is the mutable per-square part of the snapshot. OwnerId empty
// means the bank still owns the square.
type PropertyState struct {
	OwnerId   string `json:"ownerId"`
	Mortgaged bool   `json:"mortgaged"`
}

type HistoryEntry struct {
	Id        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	Message   string `json:"message"`
}

// GameState is the whole replicated snapshot. The host owns the only writable
// copy; clients replace theirs wholesale on every broadcast.
type GameState struct {
	Players        []Player                 `json:"players"`
	Properties     map[string]PropertyState `json:"properties"`
	BankProperties []string                 `json:"bankProperties"`
	History        []HistoryEntry           `json:"history"`
}

// Clone deep-copies a snapshot so the reducer can stay pure.
func (s GameState) Clone() GameState {
	out := GameState{
		Players:        make([]Player, len(s.Players)),
		Properties:     make(map[string]PropertyState, len(s.Properties)),
		BankProperties: make([]string, len(s.BankProperties)),
		History:        make([]HistoryEntry, len(s.History)),
	}
	copy(out.BankProperties, s.BankProperties)
	copy(out.History, s.History)
	for i, p := range s.Players {
		out.Players[i] = p.Clone()
	}
	for id, ps := range s.Properties {
		out.Properties[id] = ps
	}
	return out
}

// FindPlayer returns a pointer into the snapshot's player list, or nil. The
// value receiver shares the list's backing array, so writes through the
// returned pointer land in the snapshot it was called on.
func (s GameState) FindPlayer(id string) *Player {
	for i := range s.Players {
		if s.Players[i].Id == id {
			return &s.Players[i]
		}
	}
	return nil
}

// PendingAction is a client-submitted mutation awaiting host disposition.
type PendingAction struct {
	Id            string `json:"id"`
	RequesterId   string `json:"requesterId"`
	RequesterName string `json:"requesterName"`
	Message       string `json:"message"`
	Action        Action `json:"action"`
}
