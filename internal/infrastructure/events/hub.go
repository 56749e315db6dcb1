// Package events рассылка событий синхронизации: websocket-лента и MQTT
package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	syncdomain "farmsurvey/internal/domain/sync"

	"github.com/coder/websocket"
	"golang.org/x/exp/slog"
)

const (
	broadcastBuffer = 100
	writeTimeout    = 5 * time.Second
)

var ErrHubClosed = errors.New("event hub closed")

// ClientGauge получает текущее число подключенных клиентов
type ClientGauge interface {
	SetLiveClients(n int)
}

// Hub websocket-лента событий синхронизации для панели координатора
type Hub struct {
	originPatterns []string
	gauge          ClientGauge
	log            *slog.Logger

	clients   map[*websocket.Conn]struct{}
	clientsMu sync.RWMutex

	broadcast chan []byte
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

// NewHub запускает цикл рассылки; остановка через Close
func NewHub(originPatterns []string, gauge ClientGauge, log *slog.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Hub{
		originPatterns: originPatterns,
		gauge:          gauge,
		log:            log.With("component", "event_hub"),
		clients:        make(map[*websocket.Conn]struct{}),
		broadcast:      make(chan []byte, broadcastBuffer),
		ctx:            ctx,
		cancel:         cancel,
	}

	h.wg.Add(1)
	go h.broadcastLoop()

	return h
}

// Publish ставит событие в очередь рассылки; при переполнении событие отбрасывается
func (h *Hub) Publish(_ context.Context, e syncdomain.Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	select {
	case <-h.ctx.Done():
		return ErrHubClosed
	default:
	}

	select {
	case h.broadcast <- data:
	default:
		h.log.Warn("broadcast channel full, dropping event", "type", e.Type)
	}
	return nil
}

// ServeHTTP принимает websocket-подключение
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	h.clientsMu.Lock()
	h.clients[conn] = struct{}{}
	count := len(h.clients)
	h.clientsMu.Unlock()

	h.setGauge(count)
	h.log.Debug("live client connected", "clients", count)

	// чтение нужно только для обнаружения отключения
	h.readLoop(conn)
}

// Clients число подключенных клиентов
func (h *Hub) Clients() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Close отключает всех клиентов и останавливает рассылку
func (h *Hub) Close() {
	h.cancel()

	h.clientsMu.Lock()
	for conn := range h.clients {
		_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
		delete(h.clients, conn)
	}
	h.clientsMu.Unlock()

	h.wg.Wait()
	h.setGauge(0)
}

func (h *Hub) broadcastLoop() {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return
		case data := <-h.broadcast:
			h.clientsMu.RLock()
			clients := make([]*websocket.Conn, 0, len(h.clients))
			for conn := range h.clients {
				clients = append(clients, conn)
			}
			h.clientsMu.RUnlock()

			for _, conn := range clients {
				ctx, cancel := context.WithTimeout(h.ctx, writeTimeout)
				err := conn.Write(ctx, websocket.MessageText, data)
				cancel()

				if err != nil {
					h.log.Debug("failed to send to live client", "error", err)
					h.removeClient(conn)
				}
			}
		}
	}
}

func (h *Hub) readLoop(conn *websocket.Conn) {
	defer h.removeClient(conn)

	for {
		if _, _, err := conn.Read(h.ctx); err != nil {
			return
		}
	}
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.clientsMu.Lock()
	if _, ok := h.clients[conn]; !ok {
		h.clientsMu.Unlock()
		return
	}
	delete(h.clients, conn)
	count := len(h.clients)
	h.clientsMu.Unlock()

	_ = conn.Close(websocket.StatusNormalClosure, "")
	h.setGauge(count)
	h.log.Debug("live client disconnected", "clients", count)
}

func (h *Hub) setGauge(n int) {
	if h.gauge != nil {
		h.gauge.SetLiveClients(n)
	}
}
