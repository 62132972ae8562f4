package logging

import (
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

const (
	defaultDialTimeout  = 2 * time.Second
	defaultWriteTimeout = time.Second
	defaultRetryBackoff = 5 * time.Second
	defaultQueueSize    = 1024
)

// LogstashWriter mirrors log output to a Logstash TCP input. Writes are
// queued and shipped by a background goroutine, so the caller never blocks
// on a slow or unreachable collector. Entries are dropped when the queue is
// full or while the collector is in a retry cool-down.
type LogstashWriter struct {
	addr         string
	dialTimeout  time.Duration
	writeTimeout time.Duration
	retryBackoff time.Duration

	queue chan []byte
	done  chan struct{}
	wg    sync.WaitGroup

	closeOnce sync.Once
	closed    chan struct{}
}

// Option configures a LogstashWriter.
type Option func(*LogstashWriter)

// WithDialTimeout overrides the TCP dial timeout.
func WithDialTimeout(d time.Duration) Option {
	return func(w *LogstashWriter) { w.dialTimeout = d }
}

// WithWriteTimeout overrides the per-entry write deadline.
func WithWriteTimeout(d time.Duration) Option {
	return func(w *LogstashWriter) { w.writeTimeout = d }
}

// WithRetryBackoff overrides the cool-down after a failed dial or write.
func WithRetryBackoff(d time.Duration) Option {
	return func(w *LogstashWriter) { w.retryBackoff = d }
}

// WithQueueSize overrides the number of entries buffered between the log
// package and the shipping goroutine.
func WithQueueSize(n int) Option {
	return func(w *LogstashWriter) {
		if n > 0 {
			w.queue = make(chan []byte, n)
		}
	}
}

// NewLogstashWriter starts a writer shipping to a Logstash TCP input at addr.
// The returned writer is safe for concurrent use.
func NewLogstashWriter(addr string, opts ...Option) (*LogstashWriter, error) {
	if strings.TrimSpace(addr) == "" {
		return nil, errors.New("logstash: empty address")
	}

	w := &LogstashWriter{
		addr:         addr,
		dialTimeout:  defaultDialTimeout,
		writeTimeout: defaultWriteTimeout,
		retryBackoff: defaultRetryBackoff,
		queue:        make(chan []byte, defaultQueueSize),
		done:         make(chan struct{}),
		closed:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Write implements io.Writer. The payload is copied and queued; it never
// blocks on the network. A full queue drops the entry rather than stalling
// the logger.
func (w *LogstashWriter) Write(p []byte) (int, error) {
	select {
	case <-w.closed:
		return 0, io.ErrClosedPipe
	default:
	}
	if len(p) == 0 {
		return 0, nil
	}

	data := make([]byte, len(p), len(p)+1)
	copy(data, p)
	if data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}

	select {
	case w.queue <- data:
	default:
	}
	return len(p), nil
}

// Close stops the shipping goroutine and tears down the connection. Entries
// still sitting in the queue are flushed on a best-effort basis.
func (w *LogstashWriter) Close() error {
	w.closeOnce.Do(func() {
		close(w.closed)
		close(w.done)
	})
	w.wg.Wait()
	return nil
}

func (w *LogstashWriter) run() {
	defer w.wg.Done()

	var conn net.Conn
	var nextRetry time.Time

	defer func() {
		if conn != nil {
			_ = conn.Close()
		}
	}()

	ship := func(entry []byte) {
		if conn == nil {
			if !nextRetry.IsZero() && time.Now().Before(nextRetry) {
				return
			}
			c, err := net.DialTimeout("tcp", w.addr, w.dialTimeout)
			if err != nil {
				nextRetry = time.Now().Add(w.retryBackoff)
				return
			}
			conn = c
			nextRetry = time.Time{}
		}

		if w.writeTimeout > 0 {
			_ = conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
		}
		if _, err := conn.Write(entry); err != nil {
			_ = conn.Close()
			conn = nil
			nextRetry = time.Now().Add(w.retryBackoff)
		}
	}

	for {
		select {
		case entry := <-w.queue:
			ship(entry)
		case <-w.done:
			for {
				select {
				case entry := <-w.queue:
					ship(entry)
				default:
					return
				}
			}
		}
	}
}
