package hub

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dnldd/signal/shared"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single subscriber write.
	writeWait = time.Second * 10
	// pongWait is the duration a subscriber may go silent before its
	// connection is dropped.
	pongWait = time.Second * 60
	// pingPeriod is the interval between keepalive pings.
	pingPeriod = time.Second * 30
	// maxMessageSize bounds inbound subscriber messages.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// parseFilter builds a subscription filter from stream query parameters.
func parseFilter(values url.Values) Filter {
	var filter Filter
	for _, raw := range strings.Split(values.Get("strategy_ids"), ",") {
		id := strings.TrimSpace(raw)
		if id != "" {
			filter.StrategyIDs = append(filter.StrategyIDs, id)
		}
	}

	for _, raw := range strings.Split(values.Get("symbols"), ",") {
		symbol := strings.TrimSpace(raw)
		if symbol != "" {
			filter.Symbols = append(filter.Symbols, symbol)
		}
	}

	return filter
}

// readLoop drains subscriber messages to keep pong handling live. The
// subscription is cancelled when the connection errors or closes.
func (h *Hub) readLoop(conn *websocket.Conn, sub *Subscription) {
	defer sub.Cancel()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			return
		}
	}
}

// HandleSignalStream upgrades the request and streams matching signals to
// the subscriber until it disconnects or is removed.
func (h *Hub) HandleSignalStream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.cfg.Logger.Error().Err(err).Msg("upgrading signal stream")
		return
	}

	sub := h.Subscribe(parseFilter(r.URL.Query()))

	go h.readLoop(conn, sub)

	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
		sub.Cancel()
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-sub.Done():
			return
		case signal := <-sub.signals:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteJSON(signal)
			if err != nil {
				h.cfg.Logger.Error().Err(err).Msgf("writing signal to subscriber %s", sub.ID)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				return
			}
		}
	}
}

// HandleSignalPublish accepts a signal and fans it out to subscribers. It
// exists as an injection hook for integration checks and does not persist.
func (h *Hub) HandleSignalPublish(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var signal shared.Signal
	err := json.NewDecoder(r.Body).Decode(&signal)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "malformed signal payload"})
		return
	}

	if signal.IdempotencyKey == "" {
		signal.IdempotencyKey = uuid.NewString()
	}
	if signal.CorrelationID == "" {
		signal.CorrelationID = uuid.NewString()
	}

	h.Broadcast(signal)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"accepted":        true,
		"idempotency_key": signal.IdempotencyKey,
	})
}
