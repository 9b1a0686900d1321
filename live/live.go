// Package live pushes appointment changes to connected admin dashboards
// over websockets, so approvals made on one screen show up on the others
// without a refresh.
package live

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"garage/appointments"
	"garage/middleware"
	"garage/models"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	UserID string
}

type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			if h.clients[c] {
				delete(h.clients, c)
				close(c.Send)
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				select {
				case c.Send <- msg:
				default:
					close(c.Send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()

		case <-h.done:
			h.mu.Lock()
			for c := range h.clients {
				close(c.Send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast queues a payload for every connected client.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// updatePayload is what the dashboard receives for each change.
type updatePayload struct {
	Kind        appointments.EventKind `json:"kind"`
	ID          string                 `json:"id"`
	Appointment models.Appointment     `json:"appointment"`
	HTML        string                 `json:"html,omitempty"`
}

// ForwardEvents bridges the manager's event stream onto the hub, rendering
// a card fragment alongside each change. Runs until the events channel or
// ctx closes.
func ForwardEvents(ctx context.Context, hub *Hub, events <-chan appointments.Event, renderer appointments.Renderer) {
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			out := updatePayload{
				Kind:        ev.Kind,
				ID:          ev.ID,
				Appointment: ev.Appointment,
			}
			if renderer != nil && ev.Kind != appointments.EventDeleted {
				out.HTML = renderer.Render(ev.Appointment)
			}
			data, err := json.Marshal(out)
			if err != nil {
				log.Println("live: marshal:", err)
				continue
			}
			hub.Broadcast(data)
		case <-ctx.Done():
			return
		}
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// ServeWS authenticates the ?token= query parameter, verifies admin
// privileges and joins the connection to the hub. Browsers cannot set an
// Authorization header on a websocket handshake, hence the query token.
func ServeWS(hub *Hub, checker admincheck) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		claims, err := middleware.ValidateJWT(r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		ok, err := checker.IsAdmin(ctx, claims.UserID)
		cancel()
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		if !ok {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("live: upgrade:", err)
			return
		}

		client := &Client{
			Conn:   conn,
			Send:   make(chan []byte, 256),
			UserID: claims.UserID,
		}
		hub.register <- client
		go writePump(client)
		go readPump(client, hub)
	}
}

type admincheck interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// readPump discards inbound frames; the dashboard socket is one-way. It
// exists to notice the close handshake and unregister the client.
func readPump(c *Client, hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.Conn.Close()
	}()
	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			break
		}
	}
}
