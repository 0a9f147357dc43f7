package exchange

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBarStream_ResubscribesAfterReconnect(t *testing.T) {
	upgrader := websocket.Upgrader{}
	frames := make(chan string, 4)
	done := make(chan struct{})

	var mu sync.Mutex
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		attempt := attempts
		mu.Unlock()

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return
		}
		frames <- string(msg)
		if attempt == 1 {
			// Drop the first connection to force the client to redial.
			conn.Close()
			return
		}
		<-done
		conn.Close()
	}))
	// Unblock the second handler before the server shuts down.
	defer srv.Close()
	defer close(done)

	s := NewBarStream("ws" + strings.TrimPrefix(srv.URL, "http"))
	s.redialWait = 10 * time.Millisecond
	require.NoError(t, s.Connect())
	defer s.Close()

	require.NoError(t, s.Subscribe("BTCUSDT", "60"))
	assert.Contains(t, waitForFrame(t, frames), "kline.60.BTCUSDT")

	// The server hangs up after the first frame; the stream redials and
	// replays the subscription on its own.
	assert.Contains(t, waitForFrame(t, frames), "kline.60.BTCUSDT")
}

func waitForFrame(t *testing.T, frames chan string) string {
	t.Helper()
	select {
	case f := <-frames:
		return f
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a subscribe frame")
		return ""
	}
}

func TestBarStream_DispatchForwardsOnlyConfirmedBars(t *testing.T) {
	s := NewBarStream("ws://unused")

	s.dispatch([]byte(`{"topic":"kline.60.BTCUSDT","data":[
		{"start":1700000000000,"interval":"60","open":"100","high":"110","low":"90","close":"105","confirm":false},
		{"start":1700000000000,"interval":"60","open":"100","high":"110","low":"90","close":"106","confirm":true}
	]}`))

	select {
	case ev := <-s.Events():
		assert.Equal(t, "BTCUSDT", ev.Symbol)
		assert.Equal(t, "60", ev.Timeframe)
		assert.Equal(t, 106.0, ev.Close)
		assert.Equal(t, time.UnixMilli(1700000000000).UTC(), ev.Start.UTC())
	default:
		t.Fatal("expected a confirmed bar event")
	}

	select {
	case ev := <-s.Events():
		t.Fatalf("unexpected extra event: %+v", ev)
	default:
	}
}
