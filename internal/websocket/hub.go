package websocket

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"

	"github.com/appiumctl/api/internal/logger"
	"github.com/appiumctl/api/internal/model"
)

// AllJobs is the channel receiving events for every job.
const AllJobs = "*"

// Client represents a WebSocket client
type Client struct {
	Channel string
	Conn    *websocket.Conn
	Send    chan []byte
}

// NewClient creates a client subscribed to channel (a job id or AllJobs).
func NewClient(channel string, conn *websocket.Conn) *Client {
	return &Client{
		Channel: channel,
		Conn:    conn,
		Send:    make(chan []byte, 256),
	}
}

// Hub maintains active WebSocket connections
type Hub struct {
	// Clients grouped by channel
	clients map[string]map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan *BroadcastMessage
	quit       chan struct{}

	log *logger.Logger
	mu  sync.RWMutex
}

// BroadcastMessage represents a message to broadcast
type BroadcastMessage struct {
	JobID   string
	Message []byte
}

// NewHub creates a new Hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *BroadcastMessage, 256),
		quit:       make(chan struct{}),
		log:        log,
	}
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.Channel] == nil {
				h.clients[client.Channel] = make(map[*Client]bool)
			}
			h.clients[client.Channel][client] = true
			h.mu.Unlock()
			h.log.Debug("websocket client registered", "channel", client.Channel)

		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
			h.log.Debug("websocket client unregistered", "channel", client.Channel)

		case msg := <-h.broadcast:
			h.mu.Lock()
			h.deliver(msg.JobID, msg.Message)
			h.deliver(AllJobs, msg.Message)
			h.mu.Unlock()

		case <-h.quit:
			h.mu.Lock()
			for _, clients := range h.clients {
				for client := range clients {
					h.remove(client)
				}
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop ends Run and closes every client's send channel.
func (h *Hub) Stop() {
	close(h.quit)
}

func (h *Hub) deliver(channel string, message []byte) {
	for client := range h.clients[channel] {
		select {
		case client.Send <- message:
		default:
			h.log.Warn("websocket client too slow, dropping", "channel", channel)
			h.remove(client)
		}
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.clients[client.Channel]
	if !ok {
		return
	}
	if _, ok := clients[client]; ok {
		delete(clients, client)
		close(client.Send)
		if len(clients) == 0 {
			delete(h.clients, client.Channel)
		}
	}
}

// Register adds a new client
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// reply queues a message for one client if it is still registered.
func (h *Hub) reply(client *Client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if !h.clients[client.Channel][client] {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

// Subscribers returns the number of clients on a channel.
func (h *Hub) Subscribers(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[channel])
}

// Notify publishes a job transition to the job's subscribers and to AllJobs.
// It never blocks: when the broadcast queue is full the event is dropped.
func (h *Hub) Notify(ev model.JobEvent) {
	h.publish(ev.Job.ID, model.WSJobMessage{
		Type:  model.WSMessageTypeJob,
		Event: ev.Type,
		JobID: ev.Job.ID,
		Job:   ev.Job,
	})
	if ev.Entry != nil {
		h.publish(ev.Job.ID, model.WSLogMessage{
			Type:  model.WSMessageTypeLog,
			JobID: ev.Job.ID,
			Entry: *ev.Entry,
		})
	}
}

func (h *Hub) publish(jobID string, msg interface{}) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("failed to marshal websocket message", "job_id", jobID, "error", err)
		return
	}

	select {
	case h.broadcast <- &BroadcastMessage{JobID: jobID, Message: data}:
	default:
		h.log.Warn("websocket broadcast queue full, dropping", "job_id", jobID)
	}
}

// HandleConnection handles a WebSocket connection
func (h *Hub) HandleConnection(c *websocket.Conn, channel string) {
	client := NewClient(channel, c)

	h.Register(client)
	defer h.Unregister(client)

	// Start writer goroutine
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case message, ok := <-client.Send:
				if !ok {
					c.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
				if err := c.WriteMessage(websocket.TextMessage, message); err != nil {
					return
				}

			case <-ticker.C:
				// Send ping for keep-alive
				if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()

	// Reader loop
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read error", "channel", channel, "error", err)
			}
			break
		}

		var msg model.WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			data, _ := json.Marshal(model.WSErrorMessage{
				Type:  model.WSMessageTypeError,
				Error: model.WSError{Code: "BAD_MESSAGE", Message: "message must be a JSON object"},
			})
			h.reply(client, data)
			continue
		}

		if msg.Type == model.WSMessageTypePing {
			pong := model.WSMessage{Type: model.WSMessageTypePong}
			data, _ := json.Marshal(pong)
			h.reply(client, data)
		}
	}
}
