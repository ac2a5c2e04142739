package host

import (
	"fmt"

	"github.com/contactoiut/bancomaton-backend/app/models"
	"github.com/contactoiut/bancomaton-backend/platform/board"
	"github.com/contactoiut/bancomaton-backend/platform/ledger"
)

// PendingQueue is the host-side staging area for client requests awaiting
// approval. Append at the tail, remove anywhere by id. Unbounded: a request
// flood only clutters the approval list, it cannot corrupt game state.
// Not safe for concurrent use; the coordinator serializes access.
type PendingQueue struct {
	items []models.PendingAction
}

func (q *PendingQueue) Push(p models.PendingAction) {
	q.items = append(q.items, p)
}

// Pop removes and returns the entry with the given id. The second return is
// false when the id is unknown (already approved/denied), which callers treat
// as a no-op rather than an error.
func (q *PendingQueue) Pop(id string) (models.PendingAction, bool) {
	for i, p := range q.items {
		if p.Id == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return p, true
		}
	}
	return models.PendingAction{}, false
}

func (q *PendingQueue) Items() []models.PendingAction {
	return append([]models.PendingAction(nil), q.items...)
}

func (q *PendingQueue) Len() int { return len(q.items) }

// describeRequest renders a client request into the operator-facing approval
// text. Returning "" means the request is not one a client may stage (host-only
// actions, unknown types, builds past the hotel) and gets dropped.
func describeRequest(state *models.GameState, requester *models.Player, action models.Action, props *[]models.Property) string {
	prop, _ := board.GetById(action.PropertyId, props)

	switch action.Type {
	case models.ActTransferMoney:
		toName := "el Banco"
		if action.ToId != ledger.BankId {
			if to := state.FindPlayer(action.ToId); to != nil {
				toName = to.Name
			} else {
				toName = "Jugador"
			}
		}
		amount := action.Amount
		if amount < 0 {
			amount = -amount
		}
		if action.FromId != ledger.BankId && action.ToId != ledger.BankId {
			return fmt.Sprintf("%s solicita pagar $%d a %s.", requester.Name, amount, toName)
		}
		if action.Amount > 0 {
			return fmt.Sprintf("%s solicita pagar $%d a %s.", requester.Name, amount, toName)
		}
		return fmt.Sprintf("%s solicita cobrar $%d de %s.", requester.Name, amount, toName)

	case models.ActBuildHouse:
		count := requester.Buildings[action.PropertyId]
		if count >= ledger.MaxBuildings {
			// reducer does not clamp, so the ceiling is enforced here
			return ""
		}
		buildingType := "una casa"
		if count >= 4 {
			buildingType = "un hotel"
		}
		return fmt.Sprintf("%s solicita construir %s en %s.", requester.Name, buildingType, prop.Name)

	case models.ActMortgageProperty:
		return fmt.Sprintf("%s solicita hipotecar %s.", requester.Name, prop.Name)

	case models.ActUnmortgageProperty:
		return fmt.Sprintf("%s solicita pagar la hipoteca de %s.", requester.Name, prop.Name)
	}
	return ""
}
