package socket

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/contactoiut/bancomaton-backend/app/models"
	"github.com/contactoiut/bancomaton-backend/platform/cache"
	"github.com/contactoiut/bancomaton-backend/platform/database"
	"github.com/contactoiut/bancomaton-backend/platform/host"
	"github.com/contactoiut/bancomaton-backend/platform/queries"
	socketio "github.com/googollee/go-socket.io"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
)

// SocketChannel adapts a socket.io connection to the channel.Channel the
// coordinator speaks. Outbound messages become per-type events; inbound
// traffic arrives through the socket.io event handlers below, so Recv stays
// silent and only Done matters to the coordinator's pump.
type SocketChannel struct {
	conn socketio.Conn
	recv chan models.PeerMessage
	once sync.Once
	done chan struct{}
}

func NewSocketChannel(conn socketio.Conn) *SocketChannel {
	return &SocketChannel{
		conn: conn,
		recv: make(chan models.PeerMessage),
		done: make(chan struct{}),
	}
}

func (c *SocketChannel) ID() string { return c.conn.ID() }

func (c *SocketChannel) Send(msg models.PeerMessage) error {
	c.conn.Emit(eventFor(msg.Type), string(msg.Payload))
	return nil
}

func (c *SocketChannel) Recv() <-chan models.PeerMessage { return c.recv }

func (c *SocketChannel) Done() <-chan struct{} { return c.done }

func (c *SocketChannel) Close() error {
	c.once.Do(func() { close(c.done) })
	return nil
}

func eventFor(t models.MessageType) string {
	switch t {
	case models.MsgStateUpdate:
		return "state-update"
	case models.MsgActionResponse:
		return "action-response"
	case models.MsgJoinAck:
		return "join-ack"
	case models.MsgJoinRejected:
		return "join-rejected"
	}
	return "message"
}

func CreateSocketIOServer(sessions *host.Manager) {

	server, err := socketio.NewServer(nil)
	if err != nil {
		panic(err)
	}
	db := database.PostgreSQLConnection()
	defer db.Close()

	pool := cache.CreateRedisPool()
	defer pool.Close()

	var mu sync.Mutex
	channels := make(map[string]*SocketChannel) // socket id -> client channel
	rooms := make(map[string]string)            // socket id -> session code
	counted := make(map[string]bool)            // socket ids in the presence counter

	server.OnConnect("/", func(s socketio.Conn) error {
		s.SetContext("")
		return nil
	})

	server.OnEvent("/", "host-join", func(s socketio.Conn, jsonStr string) {
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)
		code := result["game_id"]

		coordinator, ok := sessions.Get(code)
		if !ok || !queries.VerifyGame(code, db) {
			s.Emit("error-message", "Invalid game")
			return
		}
		conn := pool.Get()
		defer conn.Close()
		queries.RegisterHostConn(code, s.ID(), &conn)

		// the operator is a channel like any other, so broadcasts reach it too
		ch := NewSocketChannel(s)
		mu.Lock()
		channels[s.ID()] = ch
		rooms[s.ID()] = code
		mu.Unlock()
		coordinator.Attach(ch)

		s.Join(code)
		snapshot, _ := json.Marshal(coordinator.State())
		s.Emit("state-update", string(snapshot))
		log.WithField("game", code).Info("host connected")
	})

	server.OnEvent("/", "join-game", func(s socketio.Conn, jsonStr string) {
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)
		code, name := result["game_id"], result["name"]

		coordinator, ok := sessions.Get(code)
		if !ok || !queries.VerifyGame(code, db) {
			s.Emit("error-message", "Invalid game")
			s.Emit("failed")
			return
		}
		if name == "" {
			s.Emit("error-message", "Name not passed")
			s.Emit("failed")
			return
		}

		ch := NewSocketChannel(s)
		mu.Lock()
		channels[s.ID()] = ch
		rooms[s.ID()] = code
		mu.Unlock()

		coordinator.Attach(ch)
		coordinator.HandleMessage(ch, models.NewMessage(models.MsgJoinRequest,
			models.JoinRequestPayload{Name: name}))

		// a rejected join got its join-rejected event; no seat, no bookkeeping
		if _, seated := coordinator.Seated(ch.ID()); !seated {
			return
		}
		mu.Lock()
		counted[s.ID()] = true
		mu.Unlock()

		conn := pool.Get()
		defer conn.Close()
		queries.IncrPlayers(code, 1, &conn)

		s.Join(code)
		server.BroadcastToRoom("/", code, "player-join")
	})

	server.OnEvent("/", "action-request", func(s socketio.Conn, jsonStr string) {
		var payload models.ActionRequestPayload
		if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
			s.Emit("error-message", "Malformed request")
			return
		}
		mu.Lock()
		code := rooms[s.ID()]
		mu.Unlock()

		coordinator, ok := sessions.Get(code)
		if !ok {
			s.Emit("error-message", "Invalid game")
			return
		}
		coordinator.SubmitRequest(payload.RequesterId, payload.Action)
		emitPending(server, code, coordinator)
	})

	server.OnEvent("/", "approve-action", func(s socketio.Conn, jsonStr string) {
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)
		code, actionId := result["game_id"], result["action_id"]

		coordinator, ok := sessions.Get(code)
		if !ok {
			s.Emit("error-message", "Invalid game")
			return
		}
		conn := pool.Get()
		defer conn.Close()
		if !queries.IsHostConn(code, s.ID(), &conn) {
			s.Emit("error-message", "Only the host can do that")
			return
		}
		coordinator.Approve(actionId)
		emitPending(server, code, coordinator)
	})

	server.OnEvent("/", "deny-action", func(s socketio.Conn, jsonStr string) {
		var result map[string]string
		json.Unmarshal([]byte(jsonStr), &result)
		code, actionId := result["game_id"], result["action_id"]

		coordinator, ok := sessions.Get(code)
		if !ok {
			s.Emit("error-message", "Invalid game")
			return
		}
		conn := pool.Get()
		defer conn.Close()
		if !queries.IsHostConn(code, s.ID(), &conn) {
			s.Emit("error-message", "Only the host can do that")
			return
		}
		coordinator.Deny(actionId)
		emitPending(server, code, coordinator)
	})

	server.OnEvent("/", "host-action", func(s socketio.Conn, jsonStr string) {
		var result struct {
			GameId string        `json:"game_id"`
			Action models.Action `json:"action"`
		}
		if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
			s.Emit("error-message", "Malformed request")
			return
		}
		coordinator, ok := sessions.Get(result.GameId)
		if !ok {
			s.Emit("error-message", "Invalid game")
			return
		}
		conn := pool.Get()
		defer conn.Close()
		if !queries.IsHostConn(result.GameId, s.ID(), &conn) {
			s.Emit("error-message", "Only the host can do that")
			return
		}
		if err := coordinator.Direct(result.Action); err != nil {
			s.Emit("error-message", err.Error())
		}
	})

	server.OnError("/", func(s socketio.Conn, e error) {
		log.WithError(e).Error("socket error")
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		mu.Lock()
		ch := channels[s.ID()]
		code := rooms[s.ID()]
		wasCounted := counted[s.ID()]
		delete(channels, s.ID())
		delete(rooms, s.ID())
		delete(counted, s.ID())
		mu.Unlock()

		if ch != nil {
			ch.Close()
		}
		// only sockets that incremented the counter decrement it; the operator
		// connection and rejected joins never did
		if wasCounted {
			conn := pool.Get()
			queries.IncrPlayers(code, -1, &conn)
			conn.Close()
			server.BroadcastToRoom("/", code, "player-left")
		}
		s.LeaveAll()
	})

	go server.Serve()
	defer server.Close()

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
	})

	mux := http.NewServeMux()
	mux.Handle("/socket.io/", server)
	http.ListenAndServe(":8000", c.Handler(mux))
}

// pending entries are rendered by the operator UI; the room payload carries
// nothing the requesters did not already send.
func emitPending(server *socketio.Server, code string, coordinator *host.Coordinator) {
	pending, err := json.Marshal(coordinator.Pending())
	if err != nil {
		return
	}
	server.BroadcastToRoom("/", code, "pending-update", string(pending))
}
