package rest

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/bergason/inventory"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type   string   `json:"type"`
	Tokens []string `json:"tokens"`
}

// handleRealtime streams ledger events to token holders. Clients send
// {"type":"listen","tokens":[...]}; tokens are resolved server-side so the
// pub/sub channels never carry bearer credentials.
func (h *Handler) handleRealtime(c echo.Context) error {
	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	if h.signal == nil {
		return nil
	}

	ctx := c.Request().Context()

	input := make(chan []string)
	output := make(chan inventory.Event)

	go h.signal.Realtime(ctx, input, output)

	// quit is buffered so the reader can always report and exit; done lets the
	// reader bail out of a pending subscription send once the write loop has
	// returned. Only the reader closes input.
	quit := make(chan struct{}, 1)
	done := make(chan struct{})
	defer close(done)

	go func() {
		defer close(input)
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				quit <- struct{}{}
				return
			}

			switch req.Type {
			case "listen":
				ids := make([]string, 0, len(req.Tokens))
				for _, token := range req.Tokens {
					id, err := h.tokens.Resolve(ctx, token)
					if err != nil {
						// Unknown tokens are skipped, not reported; the
						// stream must not confirm token validity.
						continue
					}
					ids = append(ids, id)
				}
				select {
				case input <- ids:
				case <-done:
					return
				}
				slog.DebugContext(
					ctx, fmt.Sprintf("Socket subscribe: %d inventories", len(ids)),
					slog.String("module", "socket"),
				)
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
