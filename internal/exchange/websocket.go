package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// BarEvent is one confirmed (closed) kline delivered by the stream.
type BarEvent struct {
	Symbol    string
	Timeframe string
	Start     time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
}

// BarStream delivers closed-bar events over the Bybit public kline
// websocket. It is an alternative driver to the cron loop: instead of a
// timed wait, the cycle runs when the exchange confirms the bar.
type BarStream struct {
	url    string
	events chan BarEvent
	ctx    context.Context
	cancel context.CancelFunc

	redialWait time.Duration

	mu      sync.Mutex
	conn    *websocket.Conn
	topics  []string // replayed after every reconnect
	running bool
}

// NewBarStream creates a bar stream against the given websocket endpoint,
// e.g. wss://stream.bybit.com/v5/public/linear.
func NewBarStream(url string) *BarStream {
	ctx, cancel := context.WithCancel(context.Background())
	return &BarStream{
		url:        url,
		events:     make(chan BarEvent, 64),
		ctx:        ctx,
		cancel:     cancel,
		redialWait: 5 * time.Second,
	}
}

// Connect dials the endpoint and starts the read and keepalive loops.
func (s *BarStream) Connect() error {
	conn, err := s.dial()
	if err != nil {
		return fmt.Errorf("failed to connect to WebSocket: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.running = true
	s.mu.Unlock()

	go s.readMessages()
	go s.pingLoop()
	return nil
}

// Subscribe subscribes to kline confirmations for one symbol/timeframe. The
// subscription is remembered so it survives reconnects.
func (s *BarStream) Subscribe(symbol, timeframe string) error {
	topic := fmt.Sprintf("kline.%s.%s", timeframe, symbol)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.writeSubscribe([]string{topic}); err != nil {
		return err
	}
	s.topics = append(s.topics, topic)

	log.Printf("[INFO] subscribed to %s", topic)
	return nil
}

// writeSubscribe sends one subscribe frame. Caller holds s.mu.
func (s *BarStream) writeSubscribe(topics []string) error {
	sub := map[string]interface{}{
		"op":   "subscribe",
		"args": topics,
	}
	data, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal subscribe message: %w", err)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		return fmt.Errorf("failed to send subscribe message: %w", err)
	}
	return nil
}

// Events returns the closed-bar event channel.
func (s *BarStream) Events() <-chan BarEvent {
	return s.events
}

// Close shuts the stream down.
func (s *BarStream) Close() error {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *BarStream) readMessages() {
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
		}

		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()

		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Printf("[ERROR] websocket read: %v", err)
			s.reconnect()
			continue
		}
		s.dispatch(message)
	}
}

// dispatch parses a kline push and forwards only confirmed bars.
func (s *BarStream) dispatch(message []byte) {
	var push struct {
		Topic string `json:"topic"`
		Data  []struct {
			Start     int64  `json:"start"`
			Interval  string `json:"interval"`
			Open      string `json:"open"`
			High      string `json:"high"`
			Low       string `json:"low"`
			Close     string `json:"close"`
			Confirm   bool   `json:"confirm"`
			Timestamp int64  `json:"timestamp"`
		} `json:"data"`
	}
	if err := json.Unmarshal(message, &push); err != nil || push.Topic == "" {
		return
	}

	var symbol string
	if n, err := fmt.Sscanf(push.Topic, "kline.%s", &symbol); n == 1 && err == nil {
		// topic format: kline.{interval}.{symbol}
		if i := lastDot(symbol); i >= 0 {
			symbol = symbol[i+1:]
		}
	}

	for _, bar := range push.Data {
		if !bar.Confirm {
			continue
		}
		ev := BarEvent{
			Symbol:    symbol,
			Timeframe: bar.Interval,
			Start:     time.UnixMilli(bar.Start),
			Open:      parseWsFloat(bar.Open),
			High:      parseWsFloat(bar.High),
			Low:       parseWsFloat(bar.Low),
			Close:     parseWsFloat(bar.Close),
		}
		select {
		case s.events <- ev:
		default:
			log.Printf("[WARN] bar event dropped, consumer too slow: %s", symbol)
		}
	}
}

func (s *BarStream) pingLoop() {
	ticker := time.NewTicker(20 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.mu.Lock()
			err := s.conn.WriteMessage(websocket.TextMessage, []byte(`{"op":"ping"}`))
			s.mu.Unlock()
			if err != nil {
				log.Printf("[ERROR] websocket ping: %v", err)
				return
			}
		}
	}
}

// reconnect redials until it gets a connection, then replays every recorded
// subscription so the stream keeps delivering the same topics.
func (s *BarStream) reconnect() {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return
	}

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-time.After(s.redialWait):
		}

		conn, err := s.dial()
		if err != nil {
			log.Printf("[ERROR] websocket reconnect: %v", err)
			continue
		}

		s.mu.Lock()
		s.conn = conn
		topics := len(s.topics)
		if topics > 0 {
			err = s.writeSubscribe(append([]string(nil), s.topics...))
		}
		s.mu.Unlock()
		if err != nil {
			log.Printf("[ERROR] websocket resubscribe: %v", err)
			conn.Close()
			continue
		}

		log.Printf("[INFO] websocket reconnected, %d topic(s) resubscribed", topics)
		return
	}
}

func (s *BarStream) dial() (*websocket.Conn, error) {
	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second
	conn, _, err := dialer.Dial(s.url, nil)
	return conn, err
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}

func parseWsFloat(s string) float64 {
	var f float64
	fmt.Sscanf(s, "%f", &f)
	return f
}
