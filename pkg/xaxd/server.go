package xaxd

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/netip"
	"os"
	"sync"

	"xaxlib-go/pkg/log"
	"xaxlib-go/pkg/management"
	"xaxlib-go/pkg/mapper"
	v1 "xaxlib-go/pkg/protocol/v1"
)

// Server is the decision daemon: one accept loop, one goroutine per
// translator connection, one request/response exchange per message.
type Server struct {
	cfg      *Config
	mapper   mapper.Mapper
	listener net.Listener
	mgmt     *management.Server
	api      *API
	stats    Stats
	alloc    *mapper.LeaseAllocator
	closers  []io.Closer
	quit     chan struct{}
	wg       sync.WaitGroup
}

// NewServer wires the mapper selected by the configuration.
func NewServer(cfg *Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Server{cfg: cfg, quit: make(chan struct{})}

	prefix, err := netip.ParsePrefix(cfg.NAT64Prefix)
	if err != nil {
		return nil, fmt.Errorf("parse nat64_prefix: %w", err)
	}
	pm, err := mapper.NewPrefixMapper(prefix, cfg.AllowPrivate)
	if err != nil {
		return nil, err
	}
	if cfg.TranslatorIPv4 != "" {
		v4, err := netip.ParseAddr(cfg.TranslatorIPv4)
		if err != nil {
			return nil, fmt.Errorf("parse translator_ipv4: %w", err)
		}
		v6, err := netip.ParseAddr(cfg.TranslatorIPv6)
		if err != nil {
			return nil, fmt.Errorf("parse translator_ipv6: %w", err)
		}
		if err := pm.SetTranslatorPair(v4, v6); err != nil {
			return nil, err
		}
	}
	switch cfg.Mode {
	case "prefix":
		s.mapper = pm
	case "pool":
		alloc, err := mapper.NewLeaseAllocator(cfg.PoolCIDR, cfg.LeaseDuration, cfg.PoolDB)
		if err != nil {
			return nil, err
		}
		s.alloc = alloc
		s.closers = append(s.closers, alloc)
		s.mapper = mapper.NewPoolMapper(pm, alloc)
	}
	return s, nil
}

// Stats returns the daemon's counters.
func (s *Server) Stats() StatsSnapshot { return s.stats.Snapshot() }

// Start binds the translation listener, the management socket and, when
// configured, the HTTP API, then serves until Stop.
func (s *Server) Start() error {
	if s.cfg.ListenProto == "unix" {
		if err := os.Remove(s.cfg.ListenAddr); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove stale socket: %w", err)
		}
	}
	l, err := net.Listen(s.cfg.ListenProto, s.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen on %s %s: %w", s.cfg.ListenProto, s.cfg.ListenAddr, err)
	}
	s.listener = l
	log.Printf("xaxd listening on %s %s (mode=%s, prefix=%s)",
		s.cfg.ListenProto, s.cfg.ListenAddr, s.cfg.Mode, s.cfg.NAT64Prefix)

	if s.cfg.ManagementSocket != "" {
		s.mgmt = management.NewServer(s.cfg.ManagementSocket)
		s.mgmt.RegisterHandler("stats", "Show translation counters", s.handleStatsCommand)
		if err := s.mgmt.Start(); err != nil {
			s.listener.Close()
			return err
		}
	}
	if s.cfg.APIListenAddr != "" {
		s.api = NewAPI(s)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.api.Run(s.cfg.APIListenAddr)
		}()
	}

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Stop shuts everything down and waits for in-flight connections.
func (s *Server) Stop() {
	close(s.quit)
	if s.listener != nil {
		s.listener.Close()
	}
	if s.api != nil {
		s.api.Shutdown()
	}
	s.wg.Wait()
	if s.mgmt != nil {
		s.mgmt.Stop()
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil {
			log.Errorf("close failed: %v", err)
		}
	}
	if s.cfg.ListenProto == "unix" {
		os.Remove(s.cfg.ListenAddr)
	}
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
				log.Warnf("accept failed: %v", err)
				continue
			}
		}
		s.stats.Connections.Add(1)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serveConn(conn)
		}()
	}
}

// serveConn answers requests on one translator connection until the peer
// hangs up or sends something unparsable. On a decode failure the real
// transaction id is unrecoverable, so the best-effort reply carries a zero
// id and CodeMalformedRequest, then the connection is dropped: framing may
// be corrupt beyond this message.
func (s *Server) serveConn(conn net.Conn) {
	defer conn.Close()
	peer := conn.RemoteAddr()
	log.Debugf("translator connected: %v", peer)

	for {
		raw, err := v1.ReadWireformat(conn)
		if err != nil {
			if errors.Is(err, v1.ErrInvalidMessageData) {
				s.replyBadRequest(conn, peer, err)
			} else if err != io.EOF {
				log.Debugf("connection %v read failed: %v", peer, err)
			}
			return
		}
		req, err := v1.ParseRequest(raw)
		if err != nil {
			s.replyBadRequest(conn, peer, err)
			return
		}
		s.stats.Requests.Add(1)

		response := s.decide(req)
		if _, err := conn.Write(response.Encode()); err != nil {
			log.Debugf("connection %v write failed: %v", peer, err)
			return
		}
	}
}

// decide runs the mapper and builds the correlated reply.
func (s *Server) decide(req *v1.RequestMessage) v1.Message {
	family, addr, err := s.mapper.Translate(req)
	if err != nil {
		code := v1.CodeNoMapping
		var terr *mapper.TranslationError
		if errors.As(err, &terr) {
			code = terr.Code
		} else {
			log.Errorf("mapper returned untyped error: %v", err)
		}
		log.Debugf("translation ERROR (%s) for %s %s", code, req.Family(), req.Address())
		s.stats.Refusals.Add(1)
		response, err := req.GenerateErroneousResponse(code)
		if err != nil {
			// Codes come from the mapper's closed set; reaching this means
			// a bug, not bad input.
			log.Errorf("failed to build erroneous response: %v", err)
			response, _ = req.GenerateErroneousResponse(v1.CodeNoMapping)
		}
		return response
	}

	response, err := req.GenerateSuccessfulResponse(family, addr)
	if err != nil {
		log.Errorf("mapper produced invalid result (%s, %s): %v", family, addr, err)
		s.stats.Refusals.Add(1)
		fallback, _ := req.GenerateErroneousResponse(v1.CodeNoMapping)
		return fallback
	}
	log.Debugf("translation SUCCESS: %s %s => %s %s", req.Family(), req.Address(), family, addr)
	s.stats.Successes.Add(1)
	return response
}

func (s *Server) replyBadRequest(conn net.Conn, peer net.Addr, cause error) {
	s.stats.DecodeErrors.Add(1)
	log.Warnf("invalid message from %v: %v", peer, cause)
	response, _ := v1.NewErroneousResponse(0, v1.CodeMalformedRequest)
	if _, err := conn.Write(response.Encode()); err != nil {
		log.Debugf("connection %v write failed: %v", peer, err)
	}
}

func (s *Server) handleStatsCommand(args []string) (string, error) {
	snap := s.stats.Snapshot()
	return fmt.Sprintf("connections: %d\nrequests: %d\nsuccesses: %d\nrefusals: %d\ndecode errors: %d",
		snap.Connections, snap.Requests, snap.Successes, snap.Refusals, snap.DecodeErrors), nil
}
