package management

import (
	"fmt"
	"io"
	"net"
	"strings"
	"time"
)

// Client talks to a running daemon's management socket.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient returns a client for the given management socket path.
func NewClient(socketPath string) *Client {
	return &Client{socketPath: socketPath, timeout: 10 * time.Second}
}

// SendCommand sends one command line and returns the daemon's full reply.
func (c *Client) SendCommand(command string) (string, error) {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return "", fmt.Errorf("connect to management socket %s: %w", c.socketPath, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(c.timeout))

	if _, err := fmt.Fprintln(conn, command); err != nil {
		return "", fmt.Errorf("send command: %w", err)
	}
	reply, err := io.ReadAll(conn)
	if err != nil {
		return "", fmt.Errorf("read reply: %w", err)
	}
	response := strings.TrimRight(string(reply), "\n")
	if strings.HasPrefix(response, "ERROR: ") {
		return "", fmt.Errorf("%s", strings.TrimPrefix(response, "ERROR: "))
	}
	return response, nil
}
