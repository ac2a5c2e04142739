package models

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

type Property struct {
	Id        string   `json:"id"`
	Name      string   `json:"name"`
	Type      string   `json:"type"` // "street", "railroad", "utility", "chance", "community-chest", "tax", "go", "jail", "free-parking", "go-to-jail"
	Color     string   `json:"color,omitempty"`
	Price     int      `json:"price,omitempty"`
	Rent      []int    `json:"rent,omitempty"`
	HouseCost int      `json:"housecost,omitempty"`
	Position  Position `json:"position"`
}

// Purchasable reports whether the square can ever be owned by a player.
func (p Property) Purchasable() bool {
	return p.Type == "street" || p.Type == "railroad" || p.Type == "utility"
}
