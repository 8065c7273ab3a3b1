package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	writeDeadline = time.Second
	readDeadline  = time.Second
	pingInterval  = 200 * time.Millisecond
	pongWait      = pingInterval * 4
)

// ErrCongestion indicates too many waiters on the socket for a given op.
var ErrCongestion = errors.New("bus: socket operation failed due to congestion")

// sock serializes reads and writes to a websocket connection, which only
// tolerates one concurrent reader and one concurrent writer.
type sock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	conn     *websocket.Conn
}

func newSock(conn *websocket.Conn) *sock {
	return &sock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		conn:     conn,
	}
}

func (s *sock) read(ctx context.Context, fn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case s.readSem <- struct{}{}:
		defer func() { <-s.readSem }()
		return fn(s.conn)
	case <-time.After(readDeadline):
		return ErrCongestion
	}
}

func (s *sock) write(ctx context.Context, fn func(*websocket.Conn) error) error {
	select {
	case <-ctx.Done():
		return nil
	case s.writeSem <- struct{}{}:
		defer func() { <-s.writeSem }()
		return fn(s.conn)
	case <-time.After(writeDeadline):
		return ErrCongestion
	}
}

// WebSocketBus is the gorilla/websocket-backed Bus: every Envelope,
// regardless of topic, travels over one connection to a broker endpoint
// and is demultiplexed to per-topic subscriber channels on receipt.
type WebSocketBus struct {
	sock *sock
	log  zerolog.Logger

	mu     sync.Mutex
	topics map[string][]chan Envelope
	closed bool

	group    *errgroup.Group
	groupCtx context.Context
	cancel   context.CancelFunc
}

// Dial opens a websocket connection to url and starts the read/ping loops.
func Dial(ctx context.Context, url string, log zerolog.Logger) (*WebSocketBus, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("bus: dial %s: %w", url, err)
	}
	return newWebSocketBus(ctx, conn, log), nil
}

// NewWebSocketBus wraps an already-established connection (e.g. the server
// side of an http.Upgrade), starting the same read/ping loops as Dial.
func NewWebSocketBus(ctx context.Context, conn *websocket.Conn, log zerolog.Logger) *WebSocketBus {
	return newWebSocketBus(ctx, conn, log)
}

func newWebSocketBus(ctx context.Context, conn *websocket.Conn, log zerolog.Logger) *WebSocketBus {
	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)

	b := &WebSocketBus{
		sock:     newSock(conn),
		log:      log.With().Str("component", "bus").Logger(),
		topics:   make(map[string][]chan Envelope),
		group:    group,
		groupCtx: groupCtx,
		cancel:   cancel,
	}

	pong := make(chan struct{}, 1)
	conn.SetPongHandler(func(string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	group.Go(func() error { return b.readLoop(groupCtx) })
	group.Go(func() error { return b.pingLoop(groupCtx, pong) })

	return b
}

func (b *WebSocketBus) readLoop(ctx context.Context) error {
	for {
		var env Envelope
		err := b.sock.read(ctx, func(conn *websocket.Conn) error {
			return conn.ReadJSON(&env)
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		b.dispatch(env)
	}
}

func (b *WebSocketBus) dispatch(env Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.topics[env.Topic] {
		select {
		case ch <- env:
		default:
			b.log.Warn().Str("topic", env.Topic).Msg("dropping envelope, subscriber congested")
		}
	}
}

func (b *WebSocketBus) pingLoop(ctx context.Context, pong <-chan struct{}) error {
	ticker := channerics.NewTicker(ctx.Done(), pingInterval)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pong:
			lastPong = time.Now()
		case <-ticker:
			if time.Since(lastPong) > pongWait {
				return errors.New("bus: pong deadline exceeded")
			}
			err := b.sock.write(ctx, func(conn *websocket.Conn) error {
				return conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeDeadline))
			})
			if err != nil {
				return err
			}
		}
	}
}

func (b *WebSocketBus) Publish(topic, messageType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	env := Envelope{Topic: topic, MessageType: messageType, Payload: raw}
	return b.sock.write(b.groupCtx, func(conn *websocket.Conn) error {
		if err := conn.SetWriteDeadline(time.Now().Add(writeDeadline)); err != nil {
			return err
		}
		return conn.WriteJSON(env)
	})
}

func (b *WebSocketBus) Subscribe(topic string) <-chan Envelope {
	ch := make(chan Envelope, 32)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.topics[topic] = append(b.topics[topic], ch)
	return ch
}

// Close cancels the read/ping loops, joins them, and closes every
// subscriber channel.
func (b *WebSocketBus) Close() error {
	b.cancel()
	// Closing the connection unblocks a readLoop parked in ReadJSON, which
	// would otherwise keep Wait from returning.
	_ = b.sock.conn.Close()
	err := b.group.Wait()

	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		for _, chans := range b.topics {
			for _, ch := range chans {
				close(ch)
			}
		}
		b.topics = nil
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
