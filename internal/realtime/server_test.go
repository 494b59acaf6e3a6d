package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenAuth(token string) (uint, error) {
	switch token {
	case "alice":
		return 1, nil
	case "bob":
		return 2, nil
	}
	return 0, errors.New("bad token")
}

func startServer(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	srv := httptest.NewServer(NewServer(hub, tokenAuth))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestServer_RejectsMissingOrInvalidToken(t *testing.T) {
	_, url := startServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=mallory", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_JoinOwnRoomAndReceive(t *testing.T) {
	hub, url := startServer(t)
	conn := dial(t, url+"?token=bob")

	require.NoError(t, conn.WriteJSON(map[string]any{
		"event": EventJoinUserRoom,
		"data":  map[string]any{"user_id": 2},
	}))
	joined := readFrame(t, conn)
	assert.Equal(t, EventRoomJoined, joined.Event)
	assert.JSONEq(t, `{"room":"user_2"}`, string(joined.Data))

	require.NoError(t, hub.Publish(context.Background(), RoomName(2), EventNewMessage, map[string]any{
		"message": map[string]any{"id": 11, "subject": "Hello", "content": "Is it available?"},
	}))
	got := readFrame(t, conn)
	assert.Equal(t, EventNewMessage, got.Event)
	assert.Contains(t, string(got.Data), "Is it available?")
}

func TestServer_BearerHeaderAndStringUserID(t *testing.T) {
	_, url := startServer(t)
	conn, _, err := websocket.DefaultDialer.Dial(url, http.Header{"Authorization": {"Bearer alice"}})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"event": EventJoinUserRoom,
		"data":  map[string]any{"user_id": "1"},
	}))
	assert.Equal(t, EventRoomJoined, readFrame(t, conn).Event)
}

func TestServer_RefusesForeignRoom(t *testing.T) {
	hub, url := startServer(t)
	conn := dial(t, url+"?token=alice")

	require.NoError(t, conn.WriteJSON(map[string]any{
		"event": EventJoinUserRoom,
		"data":  map[string]any{"user_id": 2},
	}))
	f := readFrame(t, conn)
	assert.Equal(t, EventError, f.Event)
	assert.Contains(t, string(f.Data), "error")
	assert.Zero(t, hub.Members(RoomName(2)))
}

func TestServer_UnknownEvent(t *testing.T) {
	_, url := startServer(t)
	conn := dial(t, url+"?token=alice")

	require.NoError(t, conn.WriteJSON(map[string]any{"event": "shout"}))
	assert.Equal(t, EventError, readFrame(t, conn).Event)
}

func TestServer_DisconnectLeavesRoom(t *testing.T) {
	hub, url := startServer(t)
	conn, _, err := websocket.DefaultDialer.Dial(url+"?token=alice", nil)
	require.NoError(t, err)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"event": EventJoinUserRoom,
		"data":  map[string]any{"user_id": 1},
	}))
	readFrame(t, conn)
	assert.Equal(t, 1, hub.Members(RoomName(1)))

	conn.Close()
	assert.Eventually(t, func() bool { return hub.Members(RoomName(1)) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestServer_AllowOrigins(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		wantOK  bool
	}{
		{name: "listed origin", allowed: []string{"https://app.example.com"}, origin: "https://app.example.com", wantOK: true},
		{name: "unlisted origin", allowed: []string{"https://app.example.com"}, origin: "https://evil.example.com"},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://anything.example.com", wantOK: true},
		{name: "no origin header", allowed: []string{"https://app.example.com"}, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(NewServer(NewHub(), tokenAuth).AllowOrigins(tt.allowed))
			t.Cleanup(srv.Close)

			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"?token=alice", header)
			if tt.wantOK {
				require.NoError(t, err)
				conn.Close()
				return
			}
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		})
	}
}
