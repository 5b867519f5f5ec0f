package redisserver

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/yndnr/minikv/internal/telemetry/metric"
	"github.com/yndnr/minikv/pkg/cmap"
	"github.com/yndnr/minikv/pkg/resp"
)

// Config holds the Redis server configuration.
type Config struct {
	// Addr is the TCP listen address.
	Addr string
	// MaxWorkers bounds the number of connections served concurrently.
	// When every worker is busy the accept loop stops accepting.
	MaxWorkers int
	// ReadBuffer is the size of the per-connection read chunk in bytes.
	ReadBuffer int
	// RateLimit is the maximum number of commands per second per connection.
	// Set to 0 to disable rate limiting.
	RateLimit int
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Addr:       "127.0.0.1:6379",
		MaxWorkers: 50,
		ReadBuffer: 1024,
		RateLimit:  0,
	}
}

// Server represents the Redis protocol server.
type Server struct {
	cfg     *Config
	handler *CommandHandler
	logger  *slog.Logger
	metrics *metric.Registry

	workers *semaphore.Weighted
	conns   *cmap.Map[*Conn]

	mu      sync.Mutex
	ln      net.Listener
	cancel  context.CancelFunc
	running atomic.Bool
	wg      sync.WaitGroup
	errc    chan error
}

// Conn represents a single Redis client connection.
type Conn struct {
	id      string
	netConn net.Conn
	bw      *bufio.Writer
	limiter *rate.Limiter

	closed atomic.Bool
}

func newConn(c net.Conn, rateLimit int) *Conn {
	conn := &Conn{
		id:      ulid.Make().String(),
		netConn: c,
		bw:      bufio.NewWriter(c),
	}
	if rateLimit > 0 {
		conn.limiter = rate.NewLimiter(rate.Limit(rateLimit), rateLimit)
	}
	return conn
}

// ID returns the connection's ULID.
func (c *Conn) ID() string {
	return c.id
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.netConn.RemoteAddr()
}

func (c *Conn) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	return c.netConn.Close()
}

// New creates a new Redis protocol server backed by store. cfg is copied;
// zero MaxWorkers and ReadBuffer take their defaults.
func New(cfg *Config, store Store, logger *slog.Logger, metrics *metric.Registry) *Server {
	c := *DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	if logger == nil {
		logger = slog.Default()
	}
	if c.MaxWorkers < 1 {
		c.MaxWorkers = DefaultConfig().MaxWorkers
	}
	if c.ReadBuffer <= 0 {
		c.ReadBuffer = DefaultConfig().ReadBuffer
	}

	return &Server{
		cfg:     &c,
		handler: NewCommandHandler(store, logger, metrics),
		logger:  logger,
		metrics: metrics,
		workers: semaphore.NewWeighted(int64(c.MaxWorkers)),
		conns:   cmap.New[*Conn](),
		errc:    make(chan error, 1),
	}
}

// Start listens on the configured address and serves in the background.
// It returns once the listener is bound. Cancelling ctx stops the server
// the way Shutdown does, without waiting for connections.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("redis server listening", "address", ln.Addr().String(), "max_workers", s.cfg.MaxWorkers)

	s.serveBackground(ctx, ln)
	return nil
}

func (s *Server) serveBackground(ctx context.Context, ln net.Listener) {
	ctx = s.bind(ctx, ln)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.acceptLoop(ctx, ln); err != nil {
			s.logger.Error("redis server error", "error", err)
			s.errc <- err
		}
	}()
}

// Err returns a channel that receives the error that stopped a server
// started with Start. It never receives after a clean shutdown.
func (s *Server) Err() <-chan error {
	return s.errc
}

// Serve accepts connections on ln until Shutdown is called or ctx is
// cancelled. It returns a non-nil error only for accept failures that
// retrying cannot clear.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	return s.acceptLoop(s.bind(ctx, ln), ln)
}

func (s *Server) bind(ctx context.Context, ln net.Listener) context.Context {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.ln = ln
	s.cancel = cancel
	s.mu.Unlock()
	s.running.Store(true)

	context.AfterFunc(ctx, func() { _ = s.stop() })
	return ctx
}

// Addr returns the listener address, or nil before the server is serving.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// ActiveConns returns the number of connections currently being served.
func (s *Server) ActiveConns() int {
	return s.conns.Count()
}

// Shutdown stops accepting, wakes idle connections and waits for every
// connection goroutine to return or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	firstErr := s.stop()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Info("redis server stopped")
	return firstErr
}

// stop closes the listener, cancels the serving context and wakes idle
// connections. It is safe to call more than once.
func (s *Server) stop() error {
	s.running.Store(false)

	s.mu.Lock()
	ln, cancel := s.ln, s.cancel
	s.mu.Unlock()

	var err error
	if ln != nil {
		if cerr := ln.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = cerr
		}
	}
	if cancel != nil {
		cancel()
	}

	// Unblock connections parked in Read. A connection that is executing
	// a command finishes writing its replies before it observes this.
	now := time.Now()
	for _, c := range s.conns.All() {
		_ = c.netConn.SetReadDeadline(now)
	}
	return err
}

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// retryableAccept reports whether an Accept error is expected to clear on
// its own, such as running out of file descriptors.
func retryableAccept(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	for _, errno := range []syscall.Errno{
		syscall.EMFILE, syscall.ENFILE, syscall.ENOBUFS, syscall.ENOMEM,
		syscall.ECONNABORTED, syscall.ECONNRESET,
	} {
		if errors.Is(err, errno) {
			return true
		}
	}
	return false
}

func (s *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	var delay time.Duration
	for {
		// Take a worker slot before accepting so a saturated pool leaves
		// new clients in the listen backlog.
		if err := s.workers.Acquire(ctx, 1); err != nil {
			return nil
		}

		c, err := ln.Accept()
		if err != nil {
			s.workers.Release(1)
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			if ctx.Err() != nil {
				return nil
			}
			if !retryableAccept(err) {
				return err
			}

			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay = min(2*delay, maxAcceptDelay)
			}
			s.logger.Warn("accept error, retrying", "error", err, "delay", delay)
			t := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				t.Stop()
				return nil
			case <-t.C:
			}
			continue
		}
		delay = 0

		conn := newConn(c, s.cfg.RateLimit)
		s.conns.Set(conn.id, conn)
		if !s.running.Load() {
			s.conns.Delete(conn.id)
			_ = conn.Close()
			s.workers.Release(1)
			return nil
		}
		s.metrics.ConnOpened()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.workers.Release(1)
			defer s.metrics.ConnClosed()
			defer s.conns.Delete(conn.id)
			s.serveConn(ctx, conn)
		}()
	}
}

func (s *Server) serveConn(ctx context.Context, c *Conn) {
	defer c.Close()

	log := s.logger.With("conn_id", c.id, "remote", c.RemoteAddr().String())
	log.Debug("connection opened")
	defer log.Debug("connection closed")

	buf := make([]byte, s.cfg.ReadBuffer)
	for {
		n, err := c.netConn.Read(buf)
		if n > 0 {
			if !s.serveChunk(ctx, c, log, buf[:n]) {
				return
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() && !s.running.Load() {
				return
			}
			log.Warn("connection read error", "error", err)
			return
		}
	}
}

// serveChunk decodes and executes every command in chunk, in order, and
// flushes the replies. A decode error answers -ERR and drops the rest of
// the chunk. It reports false when the connection must be closed.
func (s *Server) serveChunk(ctx context.Context, c *Conn, log *slog.Logger, chunk []byte) bool {
	for len(chunk) > 0 {
		args, next, err := resp.DecodeCommand(chunk)
		if err != nil {
			s.metrics.IncProtocolErrors()
			log.Debug("protocol error", "error", err)
			_ = resp.WriteReply(c.bw, resp.Err())
			break
		}
		chunk = chunk[next:]

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				_ = c.bw.Flush()
				return false
			}
		}

		if err := resp.WriteReply(c.bw, s.handler.Handle(args)); err != nil {
			break
		}
	}

	if err := c.bw.Flush(); err != nil {
		log.Warn("connection write error", "error", err)
		return false
	}
	return true
}
