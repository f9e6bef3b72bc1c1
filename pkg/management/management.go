// Package management implements the daemon's local control channel: a unix
// socket accepting one-line commands (status, stats, logs, ...) and
// replying with plain text. It exists so `xaxd ctl` can inspect a running
// daemon without touching the translation listener.
package management

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"xaxlib-go/pkg/log"
)

// CommandHandler handles one command invocation. It receives the arguments
// after the command word and returns the response text.
type CommandHandler func(args []string) (string, error)

// CommandInfo pairs a handler with its help description.
type CommandInfo struct {
	Handler     CommandHandler
	Description string
}

// Server listens on a unix socket for control commands.
type Server struct {
	socketPath string
	listener   net.Listener
	handlers   map[string]CommandInfo
	mu         sync.RWMutex
	quit       chan struct{}
	wg         sync.WaitGroup
	startTime  time.Time
}

// NewServer creates a management server bound to socketPath. Built-in
// commands: status, ping, logs, help.
func NewServer(socketPath string) *Server {
	s := &Server{
		socketPath: socketPath,
		handlers:   make(map[string]CommandInfo),
		quit:       make(chan struct{}),
		startTime:  time.Now(),
	}
	s.RegisterHandler("status", "Show daemon status and uptime", s.handleStatus)
	s.RegisterHandler("ping", "Check if the management interface is responsive", s.handlePing)
	s.RegisterHandler("logs", "Show recent log entries", s.handleLogs)
	s.RegisterHandler("help", "Show help for commands", s.handleHelp)
	return s
}

// RegisterHandler adds a command with its description.
func (s *Server) RegisterHandler(command, description string, handler CommandHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[strings.ToLower(command)] = CommandInfo{Handler: handler, Description: description}
}

// Start begins accepting control connections.
func (s *Server) Start() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o755); err != nil {
		return fmt.Errorf("create socket dir: %w", err)
	}
	// A stale socket from an unclean shutdown blocks the bind.
	if err := os.Remove(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove stale socket: %w", err)
	}
	l, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("listen on management socket: %w", err)
	}
	s.listener = l

	s.wg.Add(1)
	go s.acceptLoop()
	log.Printf("management socket listening on %s", s.socketPath)
	return nil
}

// Stop closes the listener and waits for in-flight commands.
func (s *Server) Stop() {
	close(s.quit)
	if s.listener != nil {
		s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				log.Warnf("management accept failed: %v", err)
				continue
			}
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConn(conn)
		}()
	}
}

// handleConn serves exactly one command per connection.
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(10 * time.Second))

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil && line == "" {
		return
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		fmt.Fprintln(conn, "ERROR: empty command")
		return
	}

	s.mu.RLock()
	info, ok := s.handlers[strings.ToLower(fields[0])]
	s.mu.RUnlock()
	if !ok {
		fmt.Fprintf(conn, "ERROR: unknown command %q, try 'help'\n", fields[0])
		return
	}

	response, err := info.Handler(fields[1:])
	if err != nil {
		fmt.Fprintf(conn, "ERROR: %v\n", err)
		return
	}
	fmt.Fprintln(conn, strings.TrimRight(response, "\n"))
}

func (s *Server) handleStatus(args []string) (string, error) {
	return fmt.Sprintf("uptime: %s\nlog writes: %d", time.Since(s.startTime).Round(time.Second), log.WritesSinceStart()), nil
}

func (s *Server) handlePing(args []string) (string, error) {
	return "pong", nil
}

func (s *Server) handleLogs(args []string) (string, error) {
	n := 20
	if len(args) > 0 {
		if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil {
			return "", fmt.Errorf("invalid count %q", args[0])
		}
	}
	entries, err := log.GetLastNLogs(n)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "(no log entries)", nil
	}
	return strings.Join(entries, "\n"), nil
}

func (s *Server) handleHelp(args []string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.handlers))
	for name := range s.handlers {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("Available commands:\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  %-10s %s\n", name, s.handlers[name].Description)
	}
	return b.String(), nil
}
