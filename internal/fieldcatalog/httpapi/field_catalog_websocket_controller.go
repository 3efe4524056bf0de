package httpapi

import (
	"context"
	"loanportal-server/internal/fieldcatalog/domain"
	"loanportal-server/internal/fieldcatalog/usecases"
	"loanportal-server/internal/infra/async"
	"loanportal-server/internal/infra/httpserver"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// CatalogChangeMessage is pushed to editors so they reload the catalog of
// the changed context.
type CatalogChangeMessage struct {
	Type              string    `json:"type"`
	Context           string    `json:"context"`
	FieldDefinitionID string    `json:"field_definition_id"`
	FieldName         string    `json:"field_name"`
	Version           int64     `json:"version"`
	OccurredAt        time.Time `json:"occurred_at"`
}

type feedClient struct {
	conn *websocket.Conn
	// filter is empty when the client follows every context.
	filter domain.FieldContext
}

type FieldCatalogWebSocketController struct {
	broker     async.InternalBroker
	clients    map[*websocket.Conn]feedClient
	clientsMux sync.RWMutex
	register   chan feedClient
	unregister chan *websocket.Conn
	ctx        context.Context
	cancel     context.CancelFunc
	ready      chan struct{}
}

func NewFieldCatalogWebSocketController(broker async.InternalBroker) *FieldCatalogWebSocketController {
	ctx, cancel := context.WithCancel(context.Background())

	wsc := &FieldCatalogWebSocketController{
		broker:     broker,
		clients:    make(map[*websocket.Conn]feedClient),
		register:   make(chan feedClient),
		unregister: make(chan *websocket.Conn),
		ctx:        ctx,
		cancel:     cancel,
		ready:      make(chan struct{}),
	}

	go wsc.run()

	return wsc
}

var _ httpserver.Controller = (*FieldCatalogWebSocketController)(nil)

func (wsc *FieldCatalogWebSocketController) AddRoutes(router *http.ServeMux) {
	router.Handle("GET /ws/field-catalog", wsc.handleWebSocket())
}

// Ready is closed once the controller listens on the broker.
func (wsc *FieldCatalogWebSocketController) Ready() <-chan struct{} {
	return wsc.ready
}

func (wsc *FieldCatalogWebSocketController) Shutdown() {
	wsc.cancel()
}

func (wsc *FieldCatalogWebSocketController) ClientCount() int {
	wsc.clientsMux.RLock()
	defer wsc.clientsMux.RUnlock()
	return len(wsc.clients)
}

func (wsc *FieldCatalogWebSocketController) handleWebSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter domain.FieldContext
		if raw := httpserver.GetQueryParam(r, "context"); raw != "" {
			parsed, err := domain.ParseFieldContext(raw)
			if err != nil {
				httpserver.ReplyWithError(w, http.StatusNotFound, unknownContextErrMessage)
				return
			}
			filter = parsed
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("websocket upgrade failed", slog.String("error", err.Error()))
			return
		}

		slog.Info("catalog feed connection established",
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("context", string(filter)))

		select {
		case wsc.register <- feedClient{conn: conn, filter: filter}:
		case <-wsc.ctx.Done():
			conn.Close()
			return
		}

		go wsc.handlePingPong(conn)
		go wsc.handleClient(conn)
	}
}

// handleClient only drains the connection; the feed is one way.
func (wsc *FieldCatalogWebSocketController) handleClient(conn *websocket.Conn) {
	defer func() {
		select {
		case wsc.unregister <- conn:
		case <-wsc.ctx.Done():
		}
	}()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Error("websocket read error", slog.String("error", err.Error()))
			} else {
				slog.Debug("websocket connection closed", slog.String("error", err.Error()))
			}
			return
		}
	}
}

func (wsc *FieldCatalogWebSocketController) handlePingPong(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-wsc.ctx.Done():
			return
		case <-ticker.C:
			wsc.clientsMux.Lock()
			_, ok := wsc.clients[conn]
			if ok {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					ok = false
				}
			}
			wsc.clientsMux.Unlock()
			if !ok {
				return
			}
		}
	}
}

func (wsc *FieldCatalogWebSocketController) run() {
	subscription, err := wsc.broker.Subscribe(usecases.CatalogChangesTopic)
	if err != nil {
		slog.Error("subscribing to catalog changes", slog.String("error", err.Error()))
		return
	}
	defer wsc.broker.Unsubscribe(usecases.CatalogChangesTopic, subscription)
	defer wsc.closeAll()

	close(wsc.ready)

	for {
		select {
		case <-wsc.ctx.Done():
			return

		case client := <-wsc.register:
			wsc.clientsMux.Lock()
			wsc.clients[client.conn] = client
			total := len(wsc.clients)
			wsc.clientsMux.Unlock()
			slog.Info("catalog feed client registered", slog.Int("total_clients", total))

		case conn := <-wsc.unregister:
			wsc.remove(conn)

		case brokerMsg, ok := <-subscription.Receiver:
			if !ok {
				return
			}
			event, isEvent := brokerMsg.Value.(domain.FieldDefinitionEvent)
			if !isEvent {
				slog.Warn("unexpected catalog change payload", slog.String("event", brokerMsg.Event))
				continue
			}
			wsc.broadcast(event)
		}
	}
}

func (wsc *FieldCatalogWebSocketController) broadcast(event domain.FieldDefinitionEvent) {
	message := CatalogChangeMessage{
		Type:              event.Type,
		Context:           event.Context,
		FieldDefinitionID: event.FieldDefinitionID,
		FieldName:         event.FieldName,
		Version:           event.Version,
		OccurredAt:        event.Time().UTC(),
	}

	// gorilla connections allow one writer at a time, so writes hold the
	// exclusive lock.
	wsc.clientsMux.Lock()
	failed := make([]*websocket.Conn, 0)
	for conn, client := range wsc.clients {
		if client.filter != "" && client.filter != event.FieldContext() {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(message); err != nil {
			slog.Warn("writing to catalog feed client", slog.String("error", err.Error()))
			failed = append(failed, conn)
		}
	}
	wsc.clientsMux.Unlock()

	for _, conn := range failed {
		wsc.remove(conn)
	}
}

func (wsc *FieldCatalogWebSocketController) remove(conn *websocket.Conn) {
	wsc.clientsMux.Lock()
	_, ok := wsc.clients[conn]
	delete(wsc.clients, conn)
	total := len(wsc.clients)
	wsc.clientsMux.Unlock()

	if ok {
		conn.Close()
		slog.Info("catalog feed client unregistered", slog.Int("total_clients", total))
	}
}

func (wsc *FieldCatalogWebSocketController) closeAll() {
	wsc.clientsMux.Lock()
	defer wsc.clientsMux.Unlock()
	for conn := range wsc.clients {
		conn.Close()
		delete(wsc.clients, conn)
	}
}
