package models

type ActionType string

const (
	ActInitializeGame     ActionType = "INITIALIZE_GAME"
	ActAddPlayer          ActionType = "ADD_PLAYER"
	ActSetState           ActionType = "SET_STATE"
	ActTransferMoney      ActionType = "TRANSFER_MONEY"
	ActBuyProperty        ActionType = "BUY_PROPERTY"
	ActBuildHouse         ActionType = "BUILD_HOUSE"
	ActPassGo             ActionType = "PASS_GO"
	ActMortgageProperty   ActionType = "MORTGAGE_PROPERTY"
	ActUnmortgageProperty ActionType = "UNMORTGAGE_PROPERTY"
	ActPlayerDisconnected ActionType = "PLAYER_DISCONNECTED"
	ActReconnectPlayer    ActionType = "RECONNECT_PLAYER"
)

// Action is the reducer input. One flat struct instead of per-type payloads so
// it serializes as a single tagged union; unused fields stay zero.
type Action struct {
	Type        ActionType `json:"type"`
	PlayerNames []string   `json:"playerNames,omitempty"` // INITIALIZE_GAME
	PlayerName  string     `json:"playerName,omitempty"`  // ADD_PLAYER
	State       *GameState `json:"state,omitempty"`       // SET_STATE
	FromId      string     `json:"fromId,omitempty"`      // TRANSFER_MONEY
	ToId        string     `json:"toId,omitempty"`        // TRANSFER_MONEY
	Amount      int        `json:"amount,omitempty"`      // TRANSFER_MONEY
	PlayerId    string     `json:"playerId,omitempty"`
	PropertyId  string     `json:"propertyId,omitempty"`
	Price       int        `json:"price,omitempty"` // BUY_PROPERTY
	Cost        int        `json:"cost,omitempty"`  // BUILD_HOUSE
}
