package hub

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dnldd/signal/shared"
	"github.com/gorilla/websocket"
	"github.com/peterldowns/testy/assert"
)

// waitFor polls the provided condition until it holds or the wait lapses.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	for idx := 0; idx < 100; idx++ {
		if cond() {
			return
		}

		time.Sleep(time.Millisecond * 10)
	}

	t.Fatal("timed out waiting for condition")
}

func setupStreamServer(t *testing.T) (*Hub, *httptest.Server) {
	hub := setupHub(t, 0)

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/signals/stream", hub.HandleSignalStream)
	mux.HandleFunc("/v1/signals/publish", hub.HandleSignalPublish)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return hub, server
}

func TestHandleSignalStream(t *testing.T) {
	hub, server := setupStreamServer(t)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") +
		"/v1/signals/stream?strategy_ids=str-1&symbols=BTC-USD"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.NoError(t, err)
	defer conn.Close()

	waitFor(t, func() bool { return hub.SubscriberCount() == 1 })

	// Ensure matching signals stream to the subscriber.
	sent := hubSignal("str-1", "BTC-USD")
	hub.Broadcast(sent)

	var received shared.Signal
	conn.SetReadDeadline(time.Now().Add(time.Second * 2))
	err = conn.ReadJSON(&received)
	assert.NoError(t, err)
	assert.Equal(t, received.StrategyID, "str-1")
	assert.Equal(t, received.Symbol, "BTC-USD")
	assert.Equal(t, received.IdempotencyKey, sent.IdempotencyKey)

	// Ensure filtered-out signals are skipped.
	hub.Broadcast(hubSignal("str-2", "BTC-USD"))
	followup := hubSignal("str-1", "BTC-USD")
	hub.Broadcast(followup)

	conn.SetReadDeadline(time.Now().Add(time.Second * 2))
	err = conn.ReadJSON(&received)
	assert.NoError(t, err)
	assert.Equal(t, received.IdempotencyKey, followup.IdempotencyKey)

	// Ensure disconnecting removes the subscriber.
	conn.Close()
	waitFor(t, func() bool { return hub.SubscriberCount() == 0 })
}

func TestHandleSignalPublish(t *testing.T) {
	hub, server := setupStreamServer(t)

	sub := hub.Subscribe(Filter{})

	// Ensure published signals are acked and fanned out with generated
	// trace keys.
	payload := `{"side":"long","price":100.5,"confidence":0.9,"strategy_id":"str-1","symbol":"BTC-USD"}`
	resp, err := http.Post(server.URL+"/v1/signals/publish", "application/json",
		strings.NewReader(payload))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusOK)

	var ack struct {
		Accepted       bool   `json:"accepted"`
		IdempotencyKey string `json:"idempotency_key"`
	}
	err = json.NewDecoder(resp.Body).Decode(&ack)
	assert.NoError(t, err)
	assert.True(t, ack.Accepted)
	assert.NotEqual(t, ack.IdempotencyKey, "")

	select {
	case received := <-sub.Signals():
		assert.Equal(t, received.IdempotencyKey, ack.IdempotencyKey)
		assert.Equal(t, received.Symbol, "BTC-USD")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a published signal")
	}

	// Ensure malformed payloads are rejected.
	resp, err = http.Post(server.URL+"/v1/signals/publish", "application/json",
		strings.NewReader("{not json"))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, resp.StatusCode, http.StatusBadRequest)

	// Ensure non-POST requests are rejected.
	getResp, err := http.Get(server.URL + "/v1/signals/publish")
	assert.NoError(t, err)
	defer getResp.Body.Close()
	assert.Equal(t, getResp.StatusCode, http.StatusMethodNotAllowed)
}
