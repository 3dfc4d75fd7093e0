package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"checkers/internal/core"
	"checkers/internal/server/processor"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Stream message types
const (
	StreamState = "state"
	StreamError = "error"
	StreamClick = "click"
	StreamTap   = "tap"
)

// StreamMessage is one frame on the stream socket
type StreamMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StreamUpgrade admits only websocket upgrades for known games
func (h *HTTPHandler) StreamUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	gameID := c.Params("gameId")
	if !isValidUUID(gameID) {
		return invalidGameID(c)
	}
	if resp := h.proc.Execute(processor.NewGetGameCommand(gameID)); !resp.Success {
		return c.Status(fiber.StatusNotFound).JSON(resp.Error)
	}

	c.Locals("wsGameID", gameID)
	return c.Next()
}

// Stream pushes the game state on every version change. Clients may send
// click and tap messages on the same socket; failures come back as errors.
func (h *HTTPHandler) Stream(conn *websocket.Conn) {
	gameID, _ := conn.Locals("wsGameID").(string)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	failures := make(chan *core.ErrorResponse, 8)
	go h.readStream(ctx, cancel, conn, gameID, failures)

	var (
		last uint64
		sent bool
	)
	for {
		waitCtx, stop := context.WithCancel(ctx)
		notify := h.svc.RegisterWait(waitCtx, gameID, last)

		resp := h.proc.Execute(processor.NewGetGameCommand(gameID))
		if !resp.Success {
			stop()
			writeStream(conn, StreamError, resp.Error)
			return
		}

		state := resp.Data.(core.GameResponse)
		if !sent || state.Version != last {
			stop()
			if err := writeStream(conn, StreamState, state); err != nil {
				return
			}
			last, sent = state.Version, true
			continue
		}

		select {
		case <-notify:
		case e := <-failures:
			if err := writeStream(conn, StreamError, e); err != nil {
				stop()
				return
			}
		case <-ctx.Done():
			stop()
			return
		}
		stop()
	}
}

// readStream applies inbound clicks until the socket closes
func (h *HTTPHandler) readStream(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, gameID string, failures chan<- *core.ErrorResponse) {
	defer cancel()

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var (
			cmd processor.Command
			msg StreamMessage
		)
		if err := json.Unmarshal(data, &msg); err != nil {
			report(ctx, failures, &core.ErrorResponse{Error: "invalid message", Code: core.ErrInvalidRequest, Details: err.Error()})
			continue
		}

		switch msg.Type {
		case StreamClick:
			var req core.ClickRequest
			if err := decodeStream(msg.Payload, &req); err != nil {
				report(ctx, failures, &core.ErrorResponse{Error: "invalid click", Code: core.ErrInvalidRequest, Details: err.Error()})
				continue
			}
			cmd = processor.NewClickCommand(gameID, req)
		case StreamTap:
			var req core.TapRequest
			if err := decodeStream(msg.Payload, &req); err != nil {
				report(ctx, failures, &core.ErrorResponse{Error: "invalid tap", Code: core.ErrInvalidRequest, Details: err.Error()})
				continue
			}
			cmd = processor.NewTapCommand(gameID, req)
		default:
			report(ctx, failures, &core.ErrorResponse{Error: "unknown message type: " + msg.Type, Code: core.ErrInvalidRequest})
			continue
		}

		// State changes reach the writer through the wait registry
		if resp := h.proc.Execute(cmd); !resp.Success {
			report(ctx, failures, resp.Error)
		}
	}
}

func decodeStream(payload json.RawMessage, out any) error {
	if err := json.Unmarshal(payload, out); err != nil {
		return err
	}
	if err := validate.Struct(out); err != nil {
		return errors.New(describeValidation(err))
	}
	return nil
}

func report(ctx context.Context, failures chan<- *core.ErrorResponse, e *core.ErrorResponse) {
	select {
	case failures <- e:
	case <-ctx.Done():
	}
}

func writeStream(conn *websocket.Conn, kind string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(StreamMessage{Type: kind, Payload: payload}); err != nil {
		log.Printf("Stream write failed: %v", err)
		return err
	}
	return nil
}
