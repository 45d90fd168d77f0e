package ws_room

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	infra_db_migrate "github.com/humanbelnik/lootsplit/internal/infra/db/migrate"
	infra_db_record "github.com/humanbelnik/lootsplit/internal/infra/db/record"
	infra_db_room "github.com/humanbelnik/lootsplit/internal/infra/db/room"
	"github.com/humanbelnik/lootsplit/internal/model"
	"github.com/humanbelnik/lootsplit/internal/service/registry"
	usecase_record "github.com/humanbelnik/lootsplit/internal/usecase/record"
	usecase_room "github.com/humanbelnik/lootsplit/internal/usecase/room"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	roomCode = "AB12CD"
	payload  = `{"members":[{"name":"Alice","share":50},{"name":"Bob","share":50}]}`
)

type WSRoomSuite struct {
	suite.Suite
}

type env struct {
	server   *httptest.Server
	db       *sqlx.DB
	hub      *Hub
	registry *registry.Registry
	records  *usecase_record.Usecase
}

func (e *env) close() {
	e.server.Close()
}

func (e *env) dial(t provider.T) *websocket.Conn {
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return conn
}

func newEnv(t provider.T) *env {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	require.NoError(t, infra_db_migrate.Apply(ctx, db))

	rooms := usecase_room.New(infra_db_room.New(db),
		usecase_room.WithCodeSource(func() (string, error) { return roomCode, nil }))
	_, err = rooms.CreateRoom(ctx, "Raid night")
	require.NoError(t, err)

	reg := registry.New(zap.NewNop())
	records := usecase_record.New(infra_db_record.New(db), reg)
	hub := NewHub(reg, rooms, records, 16, zap.NewNop())

	engine := gin.New()
	NewController(hub).RegisterRoutes(engine.Group("/api/v1"))

	return &env{
		server:   httptest.NewServer(engine),
		db:       db,
		hub:      hub,
		registry: reg,
		records:  records,
	}
}

type outbound struct {
	Type    model.EventType `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func send(t provider.T, conn *websocket.Conn, msg Inbound) {
	require.NoError(t, conn.WriteJSON(msg))
}

// next reads until a message of type want arrives, skipping the rest.
func next(t provider.T, conn *websocket.Conn, want model.EventType) outbound {
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg outbound
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == want {
			return msg
		}
	}
}

// countWithin counts messages of type want until the connection stays quiet
// for the given window. The connection is unusable afterwards.
func countWithin(conn *websocket.Conn, want model.EventType, window time.Duration) int {
	n := 0
	for {
		_ = conn.SetReadDeadline(time.Now().Add(window))
		var msg outbound
		if err := conn.ReadJSON(&msg); err != nil {
			return n
		}
		if msg.Type == want {
			n++
		}
	}
}

func join(t provider.T, conn *websocket.Conn, code string) RoomState {
	send(t, conn, Inbound{Type: MessageJoin, RoomCode: code})
	msg := next(t, conn, model.EventRoomState)
	var state RoomState
	require.NoError(t, json.Unmarshal(msg.Payload, &state))
	return state
}

func (s *WSRoomSuite) TestUpdateReachesEveryMemberOnce(t provider.T) {
	e := newEnv(t)
	defer e.close()

	a := e.dial(t)
	defer a.Close()
	b := e.dial(t)
	defer b.Close()

	join(t, a, roomCode)
	join(t, b, roomCode)
	assert.Eventually(t, func() bool { return e.registry.Count(roomCode) == 2 }, time.Second, 10*time.Millisecond)

	send(t, a, Inbound{
		Type:     MessageUpdate,
		RoomCode: roomCode,
		RecordID: "dragon",
		Label:    "Dragon",
		Payload:  json.RawMessage(payload),
	})

	for _, conn := range []*websocket.Conn{a, b} {
		msg := next(t, conn, model.EventRecordUpdated)
		var got model.RecordEvent
		require.NoError(t, json.Unmarshal(msg.Payload, &got))
		assert.Equal(t, roomCode, got.RoomCode)
		assert.Equal(t, "dragon", got.RecordID)
		assert.Equal(t, "Dragon", got.Label)
		assert.JSONEq(t, payload, string(got.Payload))
		assert.False(t, got.UpdatedAt.IsZero())
	}

	assert.Equal(t, 0, countWithin(a, model.EventRecordUpdated, 200*time.Millisecond))
	assert.Equal(t, 0, countWithin(b, model.EventRecordUpdated, 200*time.Millisecond))
}

func (s *WSRoomSuite) TestJoinReceivesCurrentState(t provider.T) {
	e := newEnv(t)
	defer e.close()

	_, err := e.records.Write(context.Background(), model.WriteRequest{
		RoomCode: roomCode,
		RecordID: "golem",
		Label:    "Golem",
		Payload:  json.RawMessage(payload),
		Origin:   model.OriginRequest,
	})
	require.NoError(t, err)

	conn := e.dial(t)
	defer conn.Close()

	state := join(t, conn, roomCode)
	assert.Equal(t, roomCode, state.RoomCode)
	require.Contains(t, state.Records, "golem")
	assert.Equal(t, "Golem", state.Records["golem"].Label)
}

func (s *WSRoomSuite) TestJoinUnknownRoom(t provider.T) {
	e := newEnv(t)
	defer e.close()

	conn := e.dial(t)
	defer conn.Close()

	send(t, conn, Inbound{Type: MessageJoin, RoomCode: "ZZZZZZ"})
	msg := next(t, conn, model.EventError)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(msg.Payload, &body))
	assert.Equal(t, ReasonRoomNotFound, body.Reason)
	assert.Equal(t, 0, e.registry.Count("ZZZZZZ"))
}

func (s *WSRoomSuite) TestInvalidPayloadOnlyReachesSender(t provider.T) {
	e := newEnv(t)
	defer e.close()

	a := e.dial(t)
	defer a.Close()
	b := e.dial(t)
	defer b.Close()

	join(t, a, roomCode)
	join(t, b, roomCode)

	send(t, a, Inbound{
		Type:     MessageUpdate,
		RoomCode: roomCode,
		RecordID: "dragon",
		Payload:  json.RawMessage(`{"members":[]}`),
	})

	msg := next(t, a, model.EventWriteFailed)
	var failed WriteFailed
	require.NoError(t, json.Unmarshal(msg.Payload, &failed))
	assert.Equal(t, "dragon", failed.RecordID)
	assert.Equal(t, ReasonInvalidPayload, failed.Reason)

	assert.Equal(t, 0, countWithin(b, model.EventRecordUpdated, 200*time.Millisecond))
}

func (s *WSRoomSuite) TestBadMessages(t provider.T) {
	e := newEnv(t)
	defer e.close()

	conn := e.dial(t)
	defer conn.Close()

	for _, raw := range []string{`{not json`, `{"type":"dance"}`} {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(raw)))
		msg := next(t, conn, model.EventError)

		var body ErrorBody
		require.NoError(t, json.Unmarshal(msg.Payload, &body))
		assert.Equal(t, ReasonBadMessage, body.Reason)
	}
}

func (s *WSRoomSuite) TestPresence(t provider.T) {
	e := newEnv(t)
	defer e.close()

	a := e.dial(t)
	defer a.Close()
	join(t, a, roomCode)

	b := e.dial(t)
	join(t, b, roomCode)

	var p Presence
	require.NoError(t, json.Unmarshal(next(t, a, model.EventPresence).Payload, &p))
	if p.Members == 1 {
		require.NoError(t, json.Unmarshal(next(t, a, model.EventPresence).Payload, &p))
	}
	assert.Equal(t, Presence{RoomCode: roomCode, Members: 2}, p)

	send(t, b, Inbound{Type: MessageLeave})
	require.NoError(t, json.Unmarshal(next(t, a, model.EventPresence).Payload, &p))
	assert.Equal(t, Presence{RoomCode: roomCode, Members: 1}, p)
	b.Close()
}

func (s *WSRoomSuite) TestDisconnectStopsDelivery(t provider.T) {
	e := newEnv(t)
	defer e.close()

	a := e.dial(t)
	defer a.Close()
	b := e.dial(t)

	join(t, a, roomCode)
	join(t, b, roomCode)
	require.Eventually(t, func() bool { return e.registry.Count(roomCode) == 2 }, time.Second, 10*time.Millisecond)

	require.NoError(t, b.Close())
	require.Eventually(t, func() bool { return e.registry.Count(roomCode) == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err := e.records.Write(context.Background(), model.WriteRequest{
		RoomCode: roomCode,
		RecordID: "dragon",
		Payload:  json.RawMessage(payload),
		Origin:   model.OriginRequest,
	})
	require.NoError(t, err)

	next(t, a, model.EventRecordUpdated)
	assert.Len(t, e.registry.MembersOf(roomCode), 1)
}

func (s *WSRoomSuite) TestDisconnectRefusesSnapshotDeliveries(t provider.T) {
	e := newEnv(t)
	defer e.close()

	conn := e.dial(t)
	join(t, conn, roomCode)

	members := e.registry.MembersOf(roomCode)
	require.Len(t, members, 1)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return e.registry.Count(roomCode) == 0 }, 2*time.Second, 10*time.Millisecond)

	assert.False(t, members[0].Deliver(model.RecordUpdated(model.RecordEvent{RoomCode: roomCode, RecordID: "dragon"})))
}

func (s *WSRoomSuite) TestUpdateWhenRoomDirectoryFails(t provider.T) {
	e := newEnv(t)
	defer e.close()

	a := e.dial(t)
	defer a.Close()
	join(t, a, roomCode)

	_, err := e.db.Exec("DROP TABLE rooms")
	require.NoError(t, err)

	send(t, a, Inbound{
		Type:     MessageUpdate,
		RoomCode: roomCode,
		RecordID: "dragon",
		Payload:  json.RawMessage(payload),
	})

	var body ErrorBody
	require.NoError(t, json.Unmarshal(next(t, a, model.EventError).Payload, &body))
	assert.Equal(t, ReasonUnavailable, body.Reason)

	_, err = e.records.Read(context.Background(), roomCode, "dragon")
	assert.ErrorIs(t, err, usecase_record.ErrRecordNotFound)
}

type presenceInbox struct {
	mu       sync.Mutex
	presence []Presence
}

func (p *presenceInbox) ID() string {
	return "observer"
}

func (p *presenceInbox) Deliver(e model.Event) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if body, ok := e.Payload.(Presence); ok {
		p.presence = append(p.presence, body)
	}
	return true
}

func (p *presenceInbox) last() (Presence, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.presence) == 0 {
		return Presence{}, false
	}
	return p.presence[len(p.presence)-1], true
}

func (s *WSRoomSuite) TestStalledClientEvictionAnnouncesPresence(t provider.T) {
	e := newEnv(t)
	defer e.close()

	observer := &presenceInbox{}
	e.registry.Join(observer, roomCode)

	stalled := newClient("stalled", e.hub, nil, 1)
	e.registry.Join(stalled, roomCode)
	stalled.room = roomCode
	require.True(t, stalled.Deliver(model.Event{Type: model.EventPresence}))

	_, err := e.records.Write(context.Background(), model.WriteRequest{
		RoomCode: roomCode,
		RecordID: "dragon",
		Payload:  json.RawMessage(payload),
		Origin:   model.OriginRequest,
	})
	require.NoError(t, err)

	_, member := e.registry.RoomOf("stalled")
	require.False(t, member)
	select {
	case <-stalled.done:
	default:
		t.Fatalf("stalled client was not shut down")
	}

	// what the read pump does once the write pump closes the socket
	e.hub.disconnect(stalled)

	got, ok := observer.last()
	require.True(t, ok)
	assert.Equal(t, Presence{RoomCode: roomCode, Members: 1}, got)
}

func TestWSRoomSuite(t *testing.T) {
	suite.RunSuite(t, new(WSRoomSuite))
}
