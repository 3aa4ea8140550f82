package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"questsolver/internal/protocol"
)

// RemoteError is an ERROR message returned by the server.
type RemoteError struct {
	Code    string
	Message string
}

func (e *RemoteError) Error() string { return e.Code + ": " + e.Message }

type Client struct {
	conn *websocket.Conn
}

func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error { return c.conn.Close() }

// Solve sends req and waits for the reply carrying the same req_id. A missing
// req_id is filled with a fresh uuid.
func (c *Client) Solve(ctx context.Context, req protocol.SolveMsg) (protocol.ResultMsg, error) {
	req.Type = protocol.TypeSolve
	if req.ProtocolVersion == "" {
		req.ProtocolVersion = protocol.Version
	}
	if req.ReqID == "" {
		req.ReqID = uuid.NewString()
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(dl)
		_ = c.conn.SetReadDeadline(dl)
	} else {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.conn.SetReadDeadline(time.Time{})
	}
	if err := c.conn.WriteJSON(req); err != nil {
		return protocol.ResultMsg{}, fmt.Errorf("send SOLVE: %w", err)
	}

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return protocol.ResultMsg{}, err
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil || base.ReqID != req.ReqID {
			continue
		}
		switch base.Type {
		case protocol.TypeResult:
			var res protocol.ResultMsg
			if err := json.Unmarshal(msg, &res); err != nil {
				return protocol.ResultMsg{}, err
			}
			return res, nil
		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err != nil {
				return protocol.ResultMsg{}, err
			}
			return protocol.ResultMsg{}, &RemoteError{Code: e.Code, Message: e.Message}
		}
	}
}

// Send writes a raw message. Used for requests the typed API cannot express.
func (c *Client) Send(raw []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, raw)
}

// Receive reads the next raw message.
func (c *Client) Receive() ([]byte, error) {
	_, msg, err := c.conn.ReadMessage()
	return msg, err
}
