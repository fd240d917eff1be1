package handler

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/iho/loanticker/internal/adapter/http/dto"
	"github.com/iho/loanticker/internal/domain"
	"github.com/iho/loanticker/internal/usecase"
)

// PriceSource is the read side of the price table.
type PriceSource interface {
	Snapshot() []domain.PriceQuote
	Get(symbol string) (domain.PriceQuote, bool)
	Subscribe() (<-chan []domain.PriceQuote, func())
}

// FeedStatusProvider reports the price feed health.
type FeedStatusProvider interface {
	Status() usecase.FeedStatus
}

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// PriceHandler serves the price table over HTTP and websocket.
type PriceHandler struct {
	prices   PriceSource
	status   FeedStatusProvider
	upgrader websocket.Upgrader
	logger   zerolog.Logger

	// Websocket streams are hijacked, so http.Server.Shutdown does not see
	// them. Shutdown closes them through closing and waits on streams.
	mu      sync.Mutex
	closed  bool
	closing chan struct{}
	streams sync.WaitGroup
}

// NewPriceHandler creates a new PriceHandler.
func NewPriceHandler(prices PriceSource, status FeedStatusProvider, logger zerolog.Logger) *PriceHandler {
	return &PriceHandler{
		prices: prices,
		status: status,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		logger:  logger,
		closing: make(chan struct{}),
	}
}

// Shutdown sends a going-away close frame to every open stream, refuses new
// ones and waits for the open ones to finish or ctx to end.
func (h *PriceHandler) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	if !h.closed {
		h.closed = true
		close(h.closing)
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.streams.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *PriceHandler) trackStream() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.streams.Add(1)
	return true
}

// List returns every price together with the feed status.
func (h *PriceHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.PricesFromStatus(h.prices.Snapshot(), h.status.Status()))
}

// Get returns the price of one symbol.
func (h *PriceHandler) Get(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(chi.URLParam(r, "symbol"))

	q, ok := h.prices.Get(symbol)
	if !ok {
		writeError(w, mapDomainError(domain.ErrUnknownSymbol), "price not available", symbol)
		return
	}

	writeJSON(w, http.StatusOK, dto.PriceFromDomain(q))
}

// Stream upgrades to a websocket and pushes the whole table, first
// immediately and then after every applied update.
func (h *PriceHandler) Stream(w http.ResponseWriter, r *http.Request) {
	if !h.trackStream() {
		writeError(w, http.StatusServiceUnavailable, "server shutting down", "")
		return
	}
	defer h.streams.Done()

	ws, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer ws.Close()

	updates, cancel := h.prices.Subscribe()
	defer cancel()

	// The reader only drains control frames and notices the client leaving.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		ws.SetReadLimit(512)
		ws.SetReadDeadline(time.Now().Add(wsPongWait))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	if err := h.push(ws, h.prices.Snapshot()); err != nil {
		return
	}

	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case <-h.closing:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			ws.WriteControl(websocket.CloseMessage, msg, time.Now().Add(wsWriteWait))
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			if err := h.push(ws, snap); err != nil {
				h.logger.Debug().Err(err).Msg("websocket push failed")
				return
			}
		case <-ping.C:
			if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}

func (h *PriceHandler) push(ws *websocket.Conn, quotes []domain.PriceQuote) error {
	ws.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return ws.WriteJSON(dto.PricesFromStatus(quotes, h.status.Status()))
}
