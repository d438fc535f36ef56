// Package niri talks to the niri compositor over its IPC socket.
//
// Every request opens its own connection, writes one JSON line and reads
// one JSON line back. Dial and round trip share a single deadline.
package niri

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

// SocketEnv names the environment variable niri exports with its socket path.
const SocketEnv = "NIRI_SOCKET"

// DefaultTimeout bounds a request when the client has no timeout set.
const DefaultTimeout = 2 * time.Second

var (
	// ErrConnection means the compositor could not be reached in time.
	ErrConnection = errors.New("compositor connection error")
	// ErrProtocol means the compositor replied with an error or with an
	// unexpected or malformed response.
	ErrProtocol = errors.New("compositor protocol error")
)

// Window is a live toplevel as reported by the compositor.
type Window struct {
	ID          uint64  `json:"id"`
	Title       *string `json:"title"`
	AppID       *string `json:"app_id"`
	PID         *int    `json:"pid,omitempty"`
	WorkspaceID *uint64 `json:"workspace_id,omitempty"`
	IsFocused   bool    `json:"is_focused"`
}

// Compositor is the subset of the IPC surface the launcher needs.
type Compositor interface {
	Windows(ctx context.Context) ([]Window, error)
	Spawn(ctx context.Context, command []string) error
	FocusWindow(ctx context.Context, id uint64) error
}

// Client is a Compositor backed by the niri socket.
type Client struct {
	Socket  string
	Timeout time.Duration
}

// NewClient returns a client for socket. An empty socket falls back to
// $NIRI_SOCKET.
func NewClient(socket string, timeout time.Duration) *Client {
	if socket == "" {
		socket = os.Getenv(SocketEnv)
	}
	return &Client{Socket: socket, Timeout: timeout}
}

type spawnAction struct {
	Spawn struct {
		Command []string `json:"command"`
	} `json:"Spawn"`
}

type focusAction struct {
	FocusWindow struct {
		ID uint64 `json:"id"`
	} `json:"FocusWindow"`
}

type actionRequest struct {
	Action interface{} `json:"Action"`
}

type reply struct {
	Ok  json.RawMessage `json:"Ok"`
	Err *string         `json:"Err"`
}

// Windows lists every open window.
func (c *Client) Windows(ctx context.Context) ([]Window, error) {
	ok, err := c.request(ctx, "Windows")
	if err != nil {
		return nil, err
	}

	var resp struct {
		Windows *[]Window `json:"Windows"`
	}
	if err := json.Unmarshal(ok, &resp); err != nil || resp.Windows == nil {
		return nil, fmt.Errorf("%w: expected Windows response, got %s", ErrProtocol, truncate(ok))
	}
	return *resp.Windows, nil
}

// Spawn asks the compositor to start command.
func (c *Client) Spawn(ctx context.Context, command []string) error {
	var a spawnAction
	a.Spawn.Command = command
	if a.Spawn.Command == nil {
		a.Spawn.Command = []string{}
	}
	return c.action(ctx, actionRequest{Action: a})
}

// FocusWindow asks the compositor to focus window id.
func (c *Client) FocusWindow(ctx context.Context, id uint64) error {
	var a focusAction
	a.FocusWindow.ID = id
	return c.action(ctx, actionRequest{Action: a})
}

// Version returns the compositor version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	ok, err := c.request(ctx, "Version")
	if err != nil {
		return "", err
	}
	var resp struct {
		Version *string `json:"Version"`
	}
	if err := json.Unmarshal(ok, &resp); err != nil || resp.Version == nil {
		return "", fmt.Errorf("%w: expected Version response, got %s", ErrProtocol, truncate(ok))
	}
	return *resp.Version, nil
}

func (c *Client) action(ctx context.Context, req actionRequest) error {
	ok, err := c.request(ctx, req)
	if err != nil {
		return err
	}
	var handled string
	if err := json.Unmarshal(ok, &handled); err != nil || handled != "Handled" {
		return fmt.Errorf("%w: expected Handled response, got %s", ErrProtocol, truncate(ok))
	}
	return nil
}

// request performs one round trip and returns the Ok payload.
func (c *Client) request(ctx context.Context, req interface{}) (json.RawMessage, error) {
	if c.Socket == "" {
		return nil, fmt.Errorf("%w: %s is not set", ErrConnection, SocketEnv)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", c.Socket)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrConnection, c.Socket, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	line, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: encode request: %v", ErrProtocol, err)
	}
	if _, err := conn.Write(append(line, '\n')); err != nil {
		return nil, c.ioError(ctx, "write", err)
	}

	raw, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(bytes.TrimSpace(raw)) > 0) {
		return nil, c.ioError(ctx, "read", err)
	}

	var r reply
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("%w: malformed reply %s: %v", ErrProtocol, truncate(raw), err)
	}
	if r.Err != nil {
		return nil, fmt.Errorf("%w: compositor error: %s", ErrProtocol, *r.Err)
	}
	if len(r.Ok) == 0 {
		return nil, fmt.Errorf("%w: reply has neither Ok nor Err", ErrProtocol)
	}
	return r.Ok, nil
}

func (c *Client) ioError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrConnection, op, c.Socket, ctxErr)
	}
	return fmt.Errorf("%w: %s %s: %v", ErrConnection, op, c.Socket, err)
}

func truncate(b []byte) string {
	const limit = 120
	s := string(bytes.TrimSpace(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
