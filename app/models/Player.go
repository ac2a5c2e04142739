package models

const (
	StatusConnected    = "connected"
	StatusDisconnected = "disconnected"
)

// Player is one seat in the game. Ids are assigned sequentially at creation
// ("player-1", "player-2", ...) and encode seating/color order. Records are
// never deleted; a dropped connection only flips Status.
type Player struct {
	Id         string         `json:"id"`
	Name       string         `json:"name"`
	Money      int            `json:"money"`
	Properties []string       `json:"properties"` // property ids, acquisition order
	Buildings  map[string]int `json:"buildings"`  // property id -> house count (5 = hotel)
	Status     string         `json:"status"`
}

func (p Player) Clone() Player {
	out := p
	out.Properties = make([]string, len(p.Properties))
	copy(out.Properties, p.Properties)
	out.Buildings = make(map[string]int, len(p.Buildings))
	for id, n := range p.Buildings {
		out.Buildings[id] = n
	}
	return out
}
