package realtime

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dial connects a test client to the hub in the room named by ?room=.
func dialRoom(t *testing.T, hub *Hub) (*httptest.Server, func(room string) *websocket.Conn) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := Join(w, r, hub, r.URL.Query().Get("room")); err != nil {
			t.Errorf("join: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	dial := func(room string) *websocket.Conn {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?room=" + room
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		require.NoError(t, err)
		t.Cleanup(func() { conn.Close() })
		return conn
	}
	return srv, dial
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(payload, &ev))
	return ev
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func TestPublishReachesRoomMembers(t *testing.T) {
	hub := newTestHub(t)
	_, dial := dialRoom(t, hub)

	a := dial(UserRoom("u1"))
	b := dial(UserRoom("u1"))
	time.Sleep(50 * time.Millisecond) // let registrations land

	hub.Publish(UserRoom("u1"), Event{Type: ProductCreated, Data: map[string]string{"id": "p1"}})

	for _, conn := range []*websocket.Conn{a, b} {
		ev := readEvent(t, conn)
		assert.Equal(t, ProductCreated, ev.Type)
	}
}

func TestPublishIsRoomScoped(t *testing.T) {
	hub := newTestHub(t)
	_, dial := dialRoom(t, hub)

	owner := dial(UserRoom("u1"))
	other := dial(UserRoom("u2"))
	time.Sleep(50 * time.Millisecond)

	hub.Publish(UserRoom("u1"), Event{Type: ProductUpdated, Data: map[string]string{"id": "p1"}})

	ev := readEvent(t, owner)
	assert.Equal(t, ProductUpdated, ev.Type)

	// The other user's connection must stay silent.
	require.NoError(t, other.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	_, _, err := other.ReadMessage()
	assert.Error(t, err, "read should time out with no event")
}

func TestPublishToEmptyRoomIsNoop(t *testing.T) {
	hub := newTestHub(t)
	// No members anywhere: must not block or panic.
	hub.Publish(UserRoom("ghost"), Event{Type: ProductDeleted, Data: DeletedKeys{ID: "p1"}})
}

func TestPerConnectionOrdering(t *testing.T) {
	hub := newTestHub(t)
	_, dial := dialRoom(t, hub)

	conn := dial(UserRoom("u1"))
	time.Sleep(50 * time.Millisecond)

	for i := 0; i < 20; i++ {
		hub.Publish(UserRoom("u1"), Event{Type: ProductUpdated, Data: map[string]int{"seq": i}})
	}

	for i := 0; i < 20; i++ {
		ev := readEvent(t, conn)
		data, ok := ev.Data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, float64(i), data["seq"], "events must arrive in publish order")
	}
}

func TestDisconnectLeavesRoom(t *testing.T) {
	hub := newTestHub(t)
	_, dial := dialRoom(t, hub)

	conn := dial(UserRoom("u1"))
	time.Sleep(50 * time.Millisecond)
	conn.Close()
	time.Sleep(50 * time.Millisecond)

	// Publishing after the disconnect must not block or panic.
	hub.Publish(UserRoom("u1"), Event{Type: ProductUpdated, Data: nil})
}
