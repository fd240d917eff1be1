package indodax

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/loanticker/internal/domain"
	"github.com/iho/loanticker/internal/usecase"
)

// DefaultStreamURL is the public websocket endpoint.
const DefaultStreamURL = "wss://socket.indodax.com/ws"

const (
	subscribeMethod = "subscribe"
	writeTimeout    = 10 * time.Second
)

// StreamDialer opens websocket connections. It implements usecase.StreamDialer.
type StreamDialer struct {
	url    string
	dialer *websocket.Dialer
	logger zerolog.Logger
}

// NewStreamDialer creates a dialer for url.
func NewStreamDialer(url string, logger zerolog.Logger) *StreamDialer {
	if url == "" {
		url = DefaultStreamURL
	}
	return &StreamDialer{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Dial opens one connection.
func (d *StreamDialer) Dial(ctx context.Context) (usecase.StreamConn, error) {
	ws, resp, err := d.dialer.DialContext(ctx, d.url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", d.url, err)
	}
	return &streamConn{ws: ws, logger: d.logger}, nil
}

type subscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int      `json:"id"`
}

type streamMessage struct {
	T string          `json:"t"`
	C json.RawMessage `json:"c"`
}

type streamConn struct {
	ws        *websocket.Conn
	logger    zerolog.Logger
	writeMu   sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

func (c *streamConn) Subscribe(ctx context.Context, channels []string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline := time.Now().Add(writeTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.ws.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return c.ws.WriteJSON(subscribeRequest{Method: subscribeMethod, Params: channels, ID: 1})
}

// ReadUpdate skips frames that carry no channel or no parseable price.
func (c *streamConn) ReadUpdate(ctx context.Context) (domain.TickerUpdate, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.TickerUpdate{}, err
		}

		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return domain.TickerUpdate{}, err
		}

		upd, err := decodeUpdate(data)
		if err != nil {
			c.logger.Debug().Err(err).Bytes("frame", data).Msg("skipping stream frame")
			continue
		}
		return upd, nil
	}
}

func (c *streamConn) Close() error {
	c.closeOnce.Do(func() {
		c.writeMu.Lock()
		_ = c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		c.closeErr = c.ws.Close()
	})
	return c.closeErr
}

func decodeUpdate(data []byte) (domain.TickerUpdate, error) {
	var msg streamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return domain.TickerUpdate{}, fmt.Errorf("%w: %v", domain.ErrMalformedQuote, err)
	}
	if msg.T == "" || len(msg.C) == 0 {
		return domain.TickerUpdate{}, domain.ErrMalformedQuote
	}

	var price decimal.Decimal
	if err := price.UnmarshalJSON(msg.C); err != nil {
		return domain.TickerUpdate{}, fmt.Errorf("%w: %v", domain.ErrMalformedQuote, err)
	}
	return domain.TickerUpdate{Channel: msg.T, Price: price}, nil
}
