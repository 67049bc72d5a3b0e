package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	EventStockUpdate       = "stock_update"
	EventTransactionUpdate = "transaction_update"
)

// Event is one realtime notification scoped to a shop.
type Event struct {
	Type    string    `json:"type"`
	Action  string    `json:"action"`
	ShopID  uuid.UUID `json:"shopId"`
	Payload any       `json:"payload,omitempty"`
}

// Client is a subscriber. A nil ShopID receives events of every shop.
type Client struct {
	ShopID *uuid.UUID
	write  func(msg []byte) error
	close  func()
}

func NewClient(conn *websocket.Conn, shopID *uuid.UUID) *Client {
	return &Client{
		ShopID: shopID,
		write:  func(msg []byte) error { return conn.WriteMessage(websocket.TextMessage, msg) },
		close:  func() { conn.Close() },
	}
}

func (c *Client) wants(shopID uuid.UUID) bool {
	return c.ShopID == nil || *c.ShopID == shopID
}

type Hub struct {
	clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client
	broadcast  chan Event
	done       chan struct{}
	mutex      sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		done:       make(chan struct{}),
	}
}

// Publish queues an event without blocking the caller. Events are dropped when the queue is full.
func (h *Hub) Publish(e Event) {
	select {
	case h.broadcast <- e:
	default:
		log.Warn().Str("type", e.Type).Str("shop_id", e.ShopID.String()).Msg("ws broadcast queue full, event dropped")
	}
}

// Run dispatches until ctx is cancelled, then closes every connection.
// Done is closed when Run returns.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for c := range h.clients {
				c.close()
				delete(h.clients, c)
			}
			h.mutex.Unlock()
			return

		case c := <-h.Register:
			h.mutex.Lock()
			h.clients[c] = true
			h.mutex.Unlock()
			log.Debug().Msg("New WS Client Connected")

		case c := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.close()
			}
			h.mutex.Unlock()

		case e := <-h.broadcast:
			message, err := json.Marshal(e)
			if err != nil {
				log.Error().Err(err).Str("type", e.Type).Msg("ws marshal event")
				continue
			}
			h.mutex.Lock()
			for c := range h.clients {
				if !c.wants(e.ShopID) {
					continue
				}
				if err := c.write(message); err != nil {
					c.close()
					delete(h.clients, c)
				}
			}
			h.mutex.Unlock()
		}
	}
}

// Serve registers conn and blocks until the peer disconnects or the hub stops.
func (h *Hub) Serve(conn *websocket.Conn, shopID *uuid.UUID) {
	h.serve(NewClient(conn, shopID), func() error {
		_, _, err := conn.ReadMessage()
		return err
	})
}

func (h *Hub) serve(c *Client, read func() error) {
	select {
	case h.Register <- c:
	case <-h.done:
		c.close()
		return
	}
	defer func() {
		select {
		case h.Unregister <- c:
		case <-h.done:
		}
	}()

	for {
		// Keep alive loop
		if err := read(); err != nil {
			break
		}
	}
}

// Done is closed once Run has stopped.
func (h *Hub) Done() <-chan struct{} { return h.done }

// Clients returns the number of connected subscribers.
func (h *Hub) Clients() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.clients)
}
