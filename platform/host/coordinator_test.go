package host

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/contactoiut/bancomaton-backend/app/models"
	"github.com/contactoiut/bancomaton-backend/platform/channel"
	"github.com/contactoiut/bancomaton-backend/platform/ledger"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

// nextMessage drains a channel end until a message of the wanted type shows up.
func nextMessage(t *testing.T, ch channel.Channel, want models.MessageType) models.PeerMessage {
	t.Helper()
	for {
		select {
		case msg := <-ch.Recv():
			if msg.Type == want {
				return msg
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func joinRequest(name string) models.PeerMessage {
	return models.NewMessage(models.MsgJoinRequest, models.JoinRequestPayload{Name: name})
}

func TestCoordinatorSeatsHostAsPlayerOne(t *testing.T) {
	c := NewCoordinator(ledger.New(), "Ana")
	s := c.State()
	if len(s.Players) != 1 || s.Players[0].Id != "player-1" || s.Players[0].Name != "Ana" {
		t.Fatalf("unexpected initial roster %+v", s.Players)
	}
	if s.Players[0].Money != ledger.InitialMoney {
		t.Errorf("host money = %d", s.Players[0].Money)
	}
}

func TestJoinAssignsExplicitId(t *testing.T) {
	c := NewCoordinator(ledger.New(), "Ana")
	hostEnd, clientEnd := channel.Pipe()
	c.Attach(hostEnd)

	if err := clientEnd.Send(joinRequest("Luis")); err != nil {
		t.Fatal(err)
	}

	ack := nextMessage(t, clientEnd, models.MsgJoinAck)
	var payload models.JoinAckPayload
	if err := json.Unmarshal(ack.Payload, &payload); err != nil {
		t.Fatal(err)
	}
	if payload.PlayerId != "player-2" {
		t.Errorf("assigned id = %s, want player-2", payload.PlayerId)
	}
	waitFor(t, "roster update", func() bool { return len(c.State().Players) == 2 })
}

func TestJoinBroadcastsSnapshot(t *testing.T) {
	c := NewCoordinator(ledger.New(), "Ana")
	hostEnd, clientEnd := channel.Pipe()
	c.Attach(hostEnd)
	clientEnd.Send(joinRequest("Luis"))

	update := nextMessage(t, clientEnd, models.MsgStateUpdate)
	var snapshot models.GameState
	if err := json.Unmarshal(update.Payload, &snapshot); err != nil {
		t.Fatal(err)
	}
	if len(snapshot.Players) != 2 {
		t.Errorf("broadcast snapshot has %d players, want 2", len(snapshot.Players))
	}
}

func TestJoinRejectedWhenFull(t *testing.T) {
	c := NewCoordinator(ledger.New(), "Ana")

	for i := 0; i < ledger.MaxPlayers-1; i++ {
		hostEnd, clientEnd := channel.Pipe()
		c.Attach(hostEnd)
		clientEnd.Send(joinRequest(fmt.Sprintf("Invitado %d", i+1)))
		nextMessage(t, clientEnd, models.MsgJoinAck)
	}
	if got := len(c.State().Players); got != ledger.MaxPlayers {
		t.Fatalf("players = %d, want %d", got, ledger.MaxPlayers)
	}

	hostEnd, lateEnd := channel.Pipe()
	c.Attach(hostEnd)
	lateEnd.Send(joinRequest("Tarde"))

	rejected := nextMessage(t, lateEnd, models.MsgJoinRejected)
	var payload models.JoinRejectedPayload
	json.Unmarshal(rejected.Payload, &payload)
	if payload.Reason == "" {
		t.Error("rejection must carry a reason")
	}
	if got := len(c.State().Players); got != ledger.MaxPlayers {
		t.Errorf("players = %d after rejected join, want %d", got, ledger.MaxPlayers)
	}
	if _, seated := c.Seated(hostEnd.ID()); seated {
		t.Error("rejected channel must not hold a seat")
	}
}

func TestSeated(t *testing.T) {
	c := NewCoordinator(ledger.New(), "Ana")
	hostEnd, clientEnd := channel.Pipe()
	c.Attach(hostEnd)
	clientEnd.Send(joinRequest("Luis"))
	nextMessage(t, clientEnd, models.MsgJoinAck)

	waitFor(t, "seat", func() bool {
		_, seated := c.Seated(hostEnd.ID())
		return seated
	})
	if playerId, _ := c.Seated(hostEnd.ID()); playerId != "player-2" {
		t.Errorf("seat holds %s, want player-2", playerId)
	}
	if _, seated := c.Seated("nobody"); seated {
		t.Error("unknown channel must not hold a seat")
	}
}

func TestRequestLifecycle(t *testing.T) {
	c := NewCoordinator(ledger.New(), "Ana")
	hostEnd, clientEnd := channel.Pipe()
	c.Attach(hostEnd)
	clientEnd.Send(joinRequest("Luis"))
	nextMessage(t, clientEnd, models.MsgJoinAck)

	c.SubmitRequest("player-2", models.Action{
		Type: models.ActTransferMoney, FromId: "player-2", ToId: "player-1", Amount: 50,
	})
	pending := c.Pending()
	if len(pending) != 1 {
		t.Fatalf("pending = %d, want 1", len(pending))
	}
	if pending[0].Message != "Luis solicita pagar $50 a Ana." {
		t.Errorf("unexpected description %q", pending[0].Message)
	}
	if pending[0].RequesterName != "Luis" {
		t.Errorf("requester name = %q", pending[0].RequesterName)
	}

	c.Approve(pending[0].Id)
	s := c.State()
	if s.FindPlayer("player-2").Money != 1450 || s.FindPlayer("player-1").Money != 1550 {
		t.Error("approved transfer not applied")
	}
	if len(c.Pending()) != 0 {
		t.Error("approved entry still queued")
	}

	response := nextMessage(t, clientEnd, models.MsgActionResponse)
	var payload models.ActionResponsePayload
	json.Unmarshal(response.Payload, &payload)
	if payload.RequesterId != "player-2" || !payload.Success {
		t.Errorf("unexpected response %+v", payload)
	}

	// approving a consumed id again changes nothing
	c.Approve(pending[0].Id)
	if got := c.State().FindPlayer("player-2").Money; got != 1450 {
		t.Errorf("repeated approval re-applied the action: money = %d", got)
	}
}

func TestDenyLeavesStateUntouched(t *testing.T) {
	c := NewCoordinator(ledger.New(), "Ana")
	hostEnd, clientEnd := channel.Pipe()
	c.Attach(hostEnd)
	clientEnd.Send(joinRequest("Luis"))
	nextMessage(t, clientEnd, models.MsgJoinAck)

	c.SubmitRequest("player-2", models.Action{
		Type: models.ActTransferMoney, FromId: "player-2", ToId: "player-1", Amount: 50,
	})
	id := c.Pending()[0].Id
	c.Deny(id)

	if got := c.State().FindPlayer("player-2").Money; got != ledger.InitialMoney {
		t.Errorf("deny mutated state: money = %d", got)
	}
	if len(c.Pending()) != 0 {
		t.Error("denied entry still queued")
	}

	response := nextMessage(t, clientEnd, models.MsgActionResponse)
	var payload models.ActionResponsePayload
	json.Unmarshal(response.Payload, &payload)
	if payload.Success {
		t.Error("denial must respond with success=false")
	}

	c.Deny(id) // idempotent
}

func TestUnrecognizedRequestIsDropped(t *testing.T) {
	c := NewCoordinator(ledger.New(), "Ana")

	// host-only action types never become pending entries
	c.SubmitRequest("player-1", models.Action{Type: models.ActPassGo, PlayerId: "player-1"})
	c.SubmitRequest("player-1", models.Action{Type: "DANCE"})
	// neither do requests from unknown players
	c.SubmitRequest("player-9", models.Action{
		Type: models.ActTransferMoney, FromId: "player-9", ToId: "player-1", Amount: 5,
	})

	if got := len(c.Pending()); got != 0 {
		t.Errorf("pending = %d, want 0", got)
	}
}

func TestBuildCeilingGuard(t *testing.T) {
	c := NewCoordinator(ledger.New(), "Ana")
	if err := c.Direct(models.Action{Type: models.ActBuyProperty, PlayerId: "player-1", PropertyId: "boardwalk", Price: 400}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < ledger.MaxBuildings; i++ {
		if err := c.Direct(models.Action{Type: models.ActBuildHouse, PlayerId: "player-1", PropertyId: "boardwalk", Cost: 200}); err != nil {
			t.Fatalf("build %d: %v", i+1, err)
		}
	}

	if err := c.Direct(models.Action{Type: models.ActBuildHouse, PlayerId: "player-1", PropertyId: "boardwalk", Cost: 200}); err == nil {
		t.Error("sixth build must be rejected by the calling layer")
	}
	if got := c.State().FindPlayer("player-1").Buildings["boardwalk"]; got != ledger.MaxBuildings {
		t.Errorf("buildings = %d, want %d", got, ledger.MaxBuildings)
	}

	// a client request past the ceiling is filtered before it can be staged
	c.SubmitRequest("player-1", models.Action{Type: models.ActBuildHouse, PlayerId: "player-1", PropertyId: "boardwalk", Cost: 200})
	if len(c.Pending()) != 0 {
		t.Error("over-ceiling build request must not be staged")
	}
}

func TestApproveRechecksBuildCeiling(t *testing.T) {
	c := NewCoordinator(ledger.New(), "Ana")
	hostEnd, clientEnd := channel.Pipe()
	c.Attach(hostEnd)
	clientEnd.Send(joinRequest("Luis"))
	nextMessage(t, clientEnd, models.MsgJoinAck)

	c.Direct(models.Action{Type: models.ActBuyProperty, PlayerId: "player-2", PropertyId: "boardwalk", Price: 400})
	for i := 0; i < ledger.MaxBuildings-1; i++ {
		c.Direct(models.Action{Type: models.ActBuildHouse, PlayerId: "player-2", PropertyId: "boardwalk", Cost: 200})
	}

	// staged below the ceiling, so the describer lets it through
	c.SubmitRequest("player-2", models.Action{Type: models.ActBuildHouse, PlayerId: "player-2", PropertyId: "boardwalk", Cost: 200})
	pending := c.Pending()
	if len(pending) != 1 {
		t.Fatal("request not staged")
	}

	// the hotel lands while the request sits in the queue
	c.Direct(models.Action{Type: models.ActBuildHouse, PlayerId: "player-2", PropertyId: "boardwalk", Cost: 200})

	c.Approve(pending[0].Id)
	if got := c.State().FindPlayer("player-2").Buildings["boardwalk"]; got != ledger.MaxBuildings {
		t.Errorf("buildings = %d, stale approval must not pass the ceiling of %d", got, ledger.MaxBuildings)
	}
	if len(c.Pending()) != 0 {
		t.Error("stale entry still queued")
	}

	response := nextMessage(t, clientEnd, models.MsgActionResponse)
	var payload models.ActionResponsePayload
	json.Unmarshal(response.Payload, &payload)
	if payload.Success {
		t.Error("stale build approval must answer with success=false")
	}
}

func TestCollectRequestDescription(t *testing.T) {
	c := NewCoordinator(ledger.New(), "Ana")
	c.SubmitRequest("player-1", models.Action{
		Type: models.ActTransferMoney, FromId: "player-1", ToId: ledger.BankId, Amount: -50,
	})
	pending := c.Pending()
	if len(pending) != 1 {
		t.Fatal("request not staged")
	}
	if pending[0].Message != "Ana solicita cobrar $50 de el Banco." {
		t.Errorf("unexpected description %q", pending[0].Message)
	}
}

func TestDirectMutationBroadcasts(t *testing.T) {
	c := NewCoordinator(ledger.New(), "Ana")
	hostEnd, clientEnd := channel.Pipe()
	c.Attach(hostEnd)
	clientEnd.Send(joinRequest("Luis"))
	nextMessage(t, clientEnd, models.MsgJoinAck)

	c.Direct(models.Action{Type: models.ActPassGo, PlayerId: "player-2"})

	for {
		update := nextMessage(t, clientEnd, models.MsgStateUpdate)
		var snapshot models.GameState
		if err := json.Unmarshal(update.Payload, &snapshot); err != nil {
			t.Fatal(err)
		}
		if p := snapshot.FindPlayer("player-2"); p != nil && p.Money == 1700 {
			return
		}
	}
}

func TestDetachMarksDisconnected(t *testing.T) {
	c := NewCoordinator(ledger.New(), "Ana")
	hostEnd, clientEnd := channel.Pipe()
	c.Attach(hostEnd)
	clientEnd.Send(joinRequest("Luis"))
	nextMessage(t, clientEnd, models.MsgJoinAck)

	clientEnd.Close()

	waitFor(t, "disconnect mark", func() bool {
		p := c.State().FindPlayer("player-2")
		return p != nil && p.Status == models.StatusDisconnected
	})
	if p := c.State().FindPlayer("player-2"); p.Money != ledger.InitialMoney {
		t.Error("disconnected player record altered")
	}
}

func TestUnknownMessageTypeRejected(t *testing.T) {
	c := NewCoordinator(ledger.New(), "Ana")
	hostEnd, clientEnd := channel.Pipe()
	c.Attach(hostEnd)

	clientEnd.Send(models.PeerMessage{Type: "GOSSIP", Payload: []byte(`{}`)})
	clientEnd.Send(joinRequest("Luis"))
	nextMessage(t, clientEnd, models.MsgJoinAck)

	if got := len(c.State().Players); got != 2 {
		t.Errorf("players = %d, want 2 (gossip ignored, join processed)", got)
	}
}

func TestPendingQueueOrderAndRemoval(t *testing.T) {
	var q PendingQueue
	for i := 1; i <= 3; i++ {
		q.Push(models.PendingAction{Id: fmt.Sprintf("p%d", i)})
	}
	if q.Len() != 3 {
		t.Fatalf("len = %d", q.Len())
	}

	p, ok := q.Pop("p2")
	if !ok || p.Id != "p2" {
		t.Fatal("mid-queue removal failed")
	}
	items := q.Items()
	if len(items) != 2 || items[0].Id != "p1" || items[1].Id != "p3" {
		t.Errorf("unexpected order %+v", items)
	}

	if _, ok := q.Pop("p2"); ok {
		t.Error("removing a removed id must report false")
	}
}

func TestManager(t *testing.T) {
	m := NewManager(ledger.New())
	if _, err := m.Create("ABCD1234", "Ana"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Create("ABCD1234", "Luis"); err == nil {
		t.Error("duplicate code must be refused")
	}
	if _, ok := m.Get("ABCD1234"); !ok {
		t.Error("session not found")
	}
	if codes := m.ListCodes(); len(codes) != 1 || codes[0] != "ABCD1234" {
		t.Errorf("codes = %v", codes)
	}
	m.Remove("ABCD1234")
	if _, ok := m.Get("ABCD1234"); ok {
		t.Error("session still present after removal")
	}
}
