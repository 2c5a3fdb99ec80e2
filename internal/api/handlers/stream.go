package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wonny/quantedge/internal/analytics"
	"github.com/wonny/quantedge/internal/contracts"
	"github.com/wonny/quantedge/internal/quotes"
	"github.com/wonny/quantedge/pkg/logger"
)

const (
	streamBuffer    = 16
	streamWriteWait = 10 * time.Second
	streamPongWait  = 90 * time.Second
	streamPingEvery = 45 * time.Second
)

// StreamMessage is pushed to websocket subscribers
type StreamMessage struct {
	Type   string               `json:"type"` // snapshot, cycle
	Status contracts.FeedStatus `json:"status"`
	Quotes []contracts.Quote    `json:"quotes"`
	Cycle  *quotes.CycleResult  `json:"cycle,omitempty"`
}

type streamClient struct {
	conn *websocket.Conn
	out  chan StreamMessage
	done chan struct{}
}

// StreamHub fans refresh cycles out to websocket clients.
// 느린 클라이언트는 메시지를 건너뜀 (사이클을 막지 않음)
type StreamHub struct {
	svc      *analytics.Service
	logger   *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[*streamClient]struct{}
}

// NewStreamHub creates a hub
func NewStreamHub(svc *analytics.Service, log *logger.Logger) *StreamHub {
	return &StreamHub{
		svc:    svc,
		logger: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*streamClient]struct{}),
	}
}

// PublishCycle broadcasts the board after a refresh cycle (aggregator OnCycle)
func (h *StreamHub) PublishCycle(result quotes.CycleResult) {
	h.broadcast(StreamMessage{
		Type:   "cycle",
		Status: h.svc.Status(),
		Quotes: h.svc.Quotes(),
		Cycle:  &result,
	})
}

func (h *StreamHub) broadcast(msg StreamMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.out <- msg:
		default:
		}
	}
}

// Clients returns the number of connected subscribers
func (h *StreamHub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the request and streams until the client leaves
// GET /ws/quotes
func (h *StreamHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Debug("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	cl := &streamClient{
		conn: conn,
		out:  make(chan StreamMessage, streamBuffer),
		done: make(chan struct{}),
	}

	// 현재 보드를 먼저 전송
	cl.out <- StreamMessage{
		Type:   "snapshot",
		Status: h.svc.Status(),
		Quotes: h.svc.Quotes(),
	}

	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()

	h.logger.WithField("remote", r.RemoteAddr).Debug("Stream client connected")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.writeLoop(cl)
	}()

	conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	delete(h.clients, cl)
	h.mu.Unlock()
	close(cl.done)
	wg.Wait()

	h.logger.WithField("remote", r.RemoteAddr).Debug("Stream client disconnected")
}

func (h *StreamHub) writeLoop(cl *streamClient) {
	ping := time.NewTicker(streamPingEvery)
	defer ping.Stop()

	for {
		select {
		case msg := <-cl.out:
			cl.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := cl.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ping.C:
			cl.conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-cl.done:
			return
		}
	}
}
