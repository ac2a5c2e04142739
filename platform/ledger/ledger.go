package ledger

import (
	"fmt"
	"time"

	"github.com/contactoiut/bancomaton-backend/app/models"
	"github.com/contactoiut/bancomaton-backend/platform/board"
	uuid "github.com/satori/go.uuid"
)

const (
	InitialMoney = 1500
	PassGoMoney  = 200
	MaxPlayers   = 6
	MaxBuildings = 5 // 5 = hotel
	BankId       = "bank"
)

// Ledger applies game actions to snapshots. It is a pure reducer: Apply never
// mutates its input and never errors. When an action's preconditions fail the
// input snapshot is returned unchanged, with no history entry.
type Ledger struct {
	props []models.Property
}

func New() *Ledger {
	return &Ledger{props: board.LoadPurchasable()}
}

func (l *Ledger) Properties() []models.Property {
	return l.props
}

func (l *Ledger) property(id string) (models.Property, bool) {
	prop, err := board.GetById(id, &l.props)
	return prop, err == nil
}

func newHistoryEntry(message string) models.HistoryEntry {
	return models.HistoryEntry{
		Id:        uuid.NewV4().String(),
		Timestamp: time.Now().UnixNano() / int64(time.Millisecond),
		Message:   message,
	}
}

func (l *Ledger) Apply(state models.GameState, a models.Action) models.GameState {
	switch a.Type {
	case models.ActInitializeGame:
		return l.initializeGame(a.PlayerNames)

	case models.ActSetState:
		if a.State == nil {
			return state
		}
		return a.State.Clone()

	case models.ActAddPlayer:
		return l.addPlayer(state, a.PlayerName)

	case models.ActTransferMoney:
		return l.transferMoney(state, a.FromId, a.ToId, a.Amount)

	case models.ActBuyProperty:
		return l.buyProperty(state, a.PlayerId, a.PropertyId, a.Price)

	case models.ActBuildHouse:
		return l.buildHouse(state, a.PlayerId, a.PropertyId, a.Cost)

	case models.ActPassGo:
		return l.passGo(state, a.PlayerId)

	case models.ActMortgageProperty:
		return l.mortgageProperty(state, a.PlayerId, a.PropertyId)

	case models.ActUnmortgageProperty:
		return l.unmortgageProperty(state, a.PlayerId, a.PropertyId)

	case models.ActPlayerDisconnected:
		return l.setStatus(state, a.PlayerId, models.StatusDisconnected, "%s se ha desconectado.")

	case models.ActReconnectPlayer:
		return l.setStatus(state, a.PlayerId, models.StatusConnected, "%s se ha reconectado.")
	}
	return state
}

func (l *Ledger) initializeGame(names []string) models.GameState {
	next := models.GameState{
		Properties: make(map[string]models.PropertyState, len(l.props)),
		History:    []models.HistoryEntry{newHistoryEntry("La partida ha comenzado.")},
	}
	for i, name := range names {
		next.Players = append(next.Players, models.Player{
			Id:         fmt.Sprintf("player-%d", i+1),
			Name:       name,
			Money:      InitialMoney,
			Properties: []string{},
			Buildings:  map[string]int{},
			Status:     models.StatusConnected,
		})
	}
	for _, prop := range l.props {
		next.Properties[prop.Id] = models.PropertyState{}
		next.BankProperties = append(next.BankProperties, prop.Id)
	}
	return next
}

func (l *Ledger) addPlayer(state models.GameState, name string) models.GameState {
	if name == "" {
		return state
	}
	next := state.Clone()
	next.Players = append(next.Players, models.Player{
		Id:         fmt.Sprintf("player-%d", len(state.Players)+1),
		Name:       name,
		Money:      InitialMoney,
		Properties: []string{},
		Buildings:  map[string]int{},
		Status:     models.StatusConnected,
	})
	next.History = append(next.History, newHistoryEntry(fmt.Sprintf("%s se ha unido a la partida.", name)))
	return next
}

func (l *Ledger) transferMoney(state models.GameState, fromId, toId string, amount int) models.GameState {
	if amount == 0 {
		return state
	}
	next := state.Clone()
	if from := next.FindPlayer(fromId); from != nil && fromId != BankId {
		from.Money -= amount
	}
	if to := next.FindPlayer(toId); to != nil && toId != BankId {
		to.Money += amount
	}

	fromName := playerDisplayName(&state, fromId, "El Banco")
	toName := playerDisplayName(&state, toId, "el Banco")

	absAmount := amount
	if absAmount < 0 {
		absAmount = -absAmount
	}
	var message string
	if amount > 0 {
		message = fmt.Sprintf("%s pagó $%d a %s.", fromName, absAmount, toName)
	} else {
		// negative amount means the money flows the other way
		message = fmt.Sprintf("%s pagó $%d a %s.", toName, absAmount, fromName)
	}
	next.History = append(next.History, newHistoryEntry(message))
	return next
}

func (l *Ledger) buyProperty(state models.GameState, playerId, propertyId string, price int) models.GameState {
	player := state.FindPlayer(playerId)
	prop, ok := l.property(propertyId)
	if player == nil || !ok {
		return state
	}
	next := state.Clone()
	buyer := next.FindPlayer(playerId)
	buyer.Money -= price
	buyer.Properties = append(buyer.Properties, propertyId)
	next.Properties[propertyId] = models.PropertyState{OwnerId: playerId}
	next.BankProperties = removeString(next.BankProperties, propertyId)
	next.History = append(next.History, newHistoryEntry(
		fmt.Sprintf("%s compró %s por $%d.", player.Name, prop.Name, price)))
	return next
}

func (l *Ledger) buildHouse(state models.GameState, playerId, propertyId string, cost int) models.GameState {
	player := state.FindPlayer(playerId)
	prop, ok := l.property(propertyId)
	if player == nil || !ok {
		return state
	}
	current := player.Buildings[propertyId]
	next := state.Clone()
	builder := next.FindPlayer(playerId)
	builder.Money -= cost
	builder.Buildings[propertyId] = current + 1

	buildingType := "una casa"
	if current >= 4 {
		buildingType = "un hotel"
	}
	next.History = append(next.History, newHistoryEntry(
		fmt.Sprintf("%s construyó %s en %s.", player.Name, buildingType, prop.Name)))
	return next
}

func (l *Ledger) passGo(state models.GameState, playerId string) models.GameState {
	player := state.FindPlayer(playerId)
	if player == nil {
		return state
	}
	next := state.Clone()
	next.FindPlayer(playerId).Money += PassGoMoney
	next.History = append(next.History, newHistoryEntry(
		fmt.Sprintf("%s cobró $%d por pasar por la Salida.", player.Name, PassGoMoney)))
	return next
}

func (l *Ledger) mortgageProperty(state models.GameState, playerId, propertyId string) models.GameState {
	player := state.FindPlayer(playerId)
	prop, ok := l.property(propertyId)
	propState := state.Properties[propertyId]
	if player == nil || !ok || prop.Price == 0 || propState.OwnerId != playerId || propState.Mortgaged {
		return state
	}
	if player.Buildings[propertyId] > 0 {
		return state
	}
	mortgageValue := prop.Price / 2
	next := state.Clone()
	next.FindPlayer(playerId).Money += mortgageValue
	next.Properties[propertyId] = models.PropertyState{OwnerId: playerId, Mortgaged: true}
	next.History = append(next.History, newHistoryEntry(
		fmt.Sprintf("%s hipotecó %s y recibió $%d.", player.Name, prop.Name, mortgageValue)))
	return next
}

func (l *Ledger) unmortgageProperty(state models.GameState, playerId, propertyId string) models.GameState {
	player := state.FindPlayer(playerId)
	prop, ok := l.property(propertyId)
	propState := state.Properties[propertyId]
	if player == nil || !ok || prop.Price == 0 || propState.OwnerId != playerId || !propState.Mortgaged {
		return state
	}
	cost := UnmortgageCost(prop.Price)
	if player.Money < cost {
		return state
	}
	next := state.Clone()
	next.FindPlayer(playerId).Money -= cost
	next.Properties[propertyId] = models.PropertyState{OwnerId: playerId}
	next.History = append(next.History, newHistoryEntry(
		fmt.Sprintf("%s pagó la hipoteca de %s por $%d.", player.Name, prop.Name, cost)))
	return next
}

func (l *Ledger) setStatus(state models.GameState, playerId, status, format string) models.GameState {
	player := state.FindPlayer(playerId)
	if player == nil || player.Status == status {
		return state
	}
	next := state.Clone()
	next.FindPlayer(playerId).Status = status
	next.History = append(next.History, newHistoryEntry(fmt.Sprintf(format, player.Name)))
	return next
}

// UnmortgageCost is the buy-back price for a mortgaged property: half the
// catalog price plus a 10% premium, rounded up.
func UnmortgageCost(price int) int {
	half := price / 2
	return (half*11 + 9) / 10
}

func playerDisplayName(state *models.GameState, id, bankName string) string {
	if id == BankId {
		return bankName
	}
	if p := state.FindPlayer(id); p != nil {
		return p.Name
	}
	return "Jugador"
}

func removeString(list []string, x string) []string {
	out := list[:0]
	for _, s := range list {
		if s != x {
			out = append(out, s)
		}
	}
	return out
}
