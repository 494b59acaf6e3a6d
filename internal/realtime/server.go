package realtime

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Authenticator resolves an access token to a user id.
type Authenticator func(token string) (uint, error)

// Server upgrades authenticated HTTP requests to WebSocket connections.
type Server struct {
	hub          *Hub
	authenticate Authenticator
	upgrader     websocket.Upgrader
	sendBuffer   int
}

// NewServer creates a WebSocket endpoint backed by hub. Until AllowOrigins is
// called, browsers may only connect from the server's own host.
func NewServer(hub *Hub, authenticate Authenticator) *Server {
	return &Server{
		hub:          hub,
		authenticate: authenticate,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		sendBuffer: DefaultSendBuffer,
	}
}

// AllowOrigins applies the HTTP CORS origin list to the upgrade. "*" allows
// any origin; requests without an Origin header are not from a browser and pass.
func (s *Server) AllowOrigins(origins []string) *Server {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			s.upgrader.CheckOrigin = func(*http.Request) bool { return true }
			return s
		}
		allowed[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	s.upgrader.CheckOrigin = func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}
	return s
}

func requestToken(r *http.Request) string {
	if t := r.URL.Query().Get("token"); t != "" {
		return t
	}
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func writeHTTPError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// ServeHTTP authenticates, upgrades and then serves the connection until it closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := requestToken(r)
	if token == "" {
		writeHTTPError(w, http.StatusUnauthorized, "missing token")
		return
	}
	userID, err := s.authenticate(token)
	if err != nil {
		writeHTTPError(w, http.StatusUnauthorized, "invalid or expired token")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("realtime: upgrade failed: %v", err)
		return
	}

	sub := NewSubscriber(userID, s.sendBuffer)
	go writePump(conn, sub)
	s.readPump(conn, sub)
}

// joinRequest accepts user_id as a number or a numeric string.
type joinRequest struct {
	UserID json.RawMessage `json:"user_id"`
}

func (j joinRequest) id() (uint, bool) {
	raw := strings.Trim(string(j.UserID), `"`)
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func (s *Server) reply(sub *Subscriber, event string, data any) {
	frame, err := EncodeFrame(event, data)
	if err != nil {
		return
	}
	if !sub.enqueue(frame) {
		log.Printf("realtime: dropped %s reply for connection %s", event, sub.ID)
	}
}

func (s *Server) readPump(conn *websocket.Conn, sub *Subscriber) {
	defer func() {
		s.hub.Leave(sub)
		close(sub.send)
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame Frame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("realtime: connection %s closed: %v", sub.ID, err)
			}
			return
		}
		s.handle(sub, frame)
	}
}

func (s *Server) handle(sub *Subscriber, frame Frame) {
	switch frame.Event {
	case EventJoinUserRoom:
		var req joinRequest
		if err := json.Unmarshal(frame.Data, &req); err != nil {
			s.reply(sub, EventError, map[string]string{"error": "user_id is required"})
			return
		}
		userID, ok := req.id()
		if !ok {
			s.reply(sub, EventError, map[string]string{"error": "user_id is required"})
			return
		}
		if userID != sub.UserID {
			s.reply(sub, EventError, map[string]string{"error": "cannot join another user's room"})
			return
		}
		room := RoomName(userID)
		s.hub.Join(sub, room)
		s.reply(sub, EventRoomJoined, map[string]string{"room": room})
	default:
		s.reply(sub, EventError, map[string]string{"error": "unknown event " + strconv.Quote(frame.Event)})
	}
}

func writePump(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-sub.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
