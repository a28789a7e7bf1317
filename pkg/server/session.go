package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	rcerrors "github.com/vango-dev/reconcile/internal/errors"
	"github.com/vango-dev/reconcile/pkg/host"
	"github.com/vango-dev/reconcile/pkg/host/loop"
	"github.com/vango-dev/reconcile/pkg/host/mirror"
	"github.com/vango-dev/reconcile/pkg/patch"
	"github.com/vango-dev/reconcile/pkg/protocol"
	"github.com/vango-dev/reconcile/pkg/scenario"
	"github.com/vango-dev/reconcile/pkg/transition"
)

// session plays the scenario for one client. The player runs on its own
// realtime loop; after every task and frame the mirrored mutations are
// drained and queued for the client.
type session struct {
	id     string
	server *Server
	conn   *websocket.Conn
	loop   *loop.Realtime
	mirror *mirror.Backend
	player *scenario.Player
	send   chan outbound
	logger *slog.Logger
}

// outbound is an encoded frame waiting for the write loop.
type outbound struct {
	data []byte
	last bool // close the connection after writing
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		s.wsError("upgrade")
		return
	}

	sess, err := s.newSession(conn)
	if err != nil {
		s.logger.Error("session setup failed", "error", err)
		conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		conn.WriteMessage(websocket.BinaryMessage, errorFrame(err))
		conn.Close()
		return
	}

	s.wg.Add(1)
	defer s.wg.Done()
	s.track(sess)
	defer s.untrack(sess)

	// The request context carries request values such as spans; the
	// session lives until the client leaves or the server shuts down.
	ctx, cancel := context.WithCancel(context.WithoutCancel(r.Context()))
	defer cancel()
	stop := context.AfterFunc(s.base, cancel)
	defer stop()

	sess.logger.Info("session started")
	err = sess.run(ctx)
	switch {
	case err == nil, errors.Is(err, ErrClientGone), errors.Is(err, context.Canceled):
		sess.logger.Info("session closed")
	default:
		sess.logger.Warn("session ended", "error", err)
	}
}

func (s *Server) newSession(conn *websocket.Conn) (*session, error) {
	id := uuid.NewString()
	logger := s.logger.With("session", id)
	sess := &session{
		id:     id,
		server: s,
		conn:   conn,
		loop:   loop.NewRealtime(s.config.FrameInterval, logger),
		send:   make(chan outbound, s.config.SendQueue),
		logger: logger,
	}

	opts := append([]scenario.Option{}, s.player...)
	opts = append(opts,
		scenario.WithLogger(logger),
		scenario.WithBackend(func(b host.Backend) host.Backend {
			sess.mirror = mirror.New(b)
			return sess.mirror
		}),
	)
	if s.collector != nil {
		opts = append(opts,
			scenario.WithTransitionOptions(transition.WithObserver(s.collector)),
			scenario.WithEngineOptions(patch.WithObserver(s.collector)),
		)
	}
	p, err := scenario.NewLivePlayer(s.file, sess.loop, opts...)
	if err != nil {
		return nil, NewSessionError(id, "create", err)
	}
	sess.player = p
	sess.loop.AfterEach(sess.flush)
	return sess, nil
}

// run sends the Hello frame and serves the session until ctx is done,
// the client leaves or a write fails.
func (ss *session) run(ctx context.Context) error {
	hello := &protocol.Hello{
		Version:       protocol.Version,
		SessionID:     ss.id,
		RootID:        ss.mirror.Bind(ss.player.Root()),
		FrameInterval: ss.loop.FrameInterval(),
		ServerTime:    time.Now(),
	}
	frame := protocol.NewFrame(protocol.FrameHello, protocol.EncodeHello(hello))
	if err := ss.write(frame.Encode()); err != nil {
		return NewSessionError(ss.id, "hello", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ss.loop.Run(ctx) })
	g.Go(ss.readLoop)
	g.Go(func() error { return ss.writeLoop(ctx) })
	g.Go(func() error { return ss.play(ctx) })
	return g.Wait()
}

// play runs the scenario. A failure is queued behind the mutations that
// preceded it, as an error frame that closes the connection.
func (ss *session) play(ctx context.Context) error {
	snaps, err := ss.player.Play(ctx)
	if err == nil {
		ss.logger.Info("playback finished", "snapshots", len(snaps))
		return nil
	}
	if ctx.Err() != nil {
		return nil
	}
	ss.logger.Error("playback failed", "error", err)
	data := errorFrame(err)
	ss.loop.Post(func() { ss.enqueue(outbound{data: data, last: true}) })
	return nil
}

// flush runs on the loop goroutine after every task and frame.
func (ss *session) flush() {
	muts := ss.mirror.Drain()
	if len(muts) == 0 {
		return
	}
	for _, f := range protocol.MutationFrames(muts) {
		if !ss.enqueue(outbound{data: f.Encode()}) {
			return
		}
	}
}

// enqueue queues a frame without blocking the loop. A full queue drops
// the client.
func (ss *session) enqueue(o outbound) bool {
	select {
	case ss.send <- o:
		return true
	default:
		ss.logger.Warn("send queue full, dropping client")
		ss.server.wsError("queue_full")
		ss.conn.Close()
		return false
	}
}

// readLoop discards client messages and returns when the connection
// closes. Pongs extend the read deadline.
func (ss *session) readLoop() error {
	cfg := ss.server.config
	ss.conn.SetReadLimit(cfg.MaxMessageSize)
	ss.conn.SetReadDeadline(time.Now().Add(2 * cfg.HeartbeatInterval))
	ss.conn.SetPongHandler(func(string) error {
		return ss.conn.SetReadDeadline(time.Now().Add(2 * cfg.HeartbeatInterval))
	})

	for {
		if _, _, err := ss.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				ss.logger.Debug("read error", "error", err)
				ss.server.wsError("read")
			}
			return ErrClientGone
		}
	}
}

// writeLoop is the only writer of the connection after the Hello frame.
func (ss *session) writeLoop(ctx context.Context) error {
	ticker := time.NewTicker(ss.server.config.HeartbeatInterval)
	defer ticker.Stop()
	defer ss.conn.Close()

	for {
		select {
		case <-ctx.Done():
			ss.closeWith(websocket.CloseGoingAway, "server shutting down")
			return nil
		case o := <-ss.send:
			if err := ss.write(o.data); err != nil {
				ss.server.wsError("write")
				return NewSessionError(ss.id, "write", err)
			}
			if o.last {
				ss.closeWith(websocket.CloseInternalServerErr, "playback failed")
				return ErrPlaybackFailed
			}
		case <-ticker.C:
			deadline := time.Now().Add(ss.server.config.WriteTimeout)
			if err := ss.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				ss.server.wsError("ping")
				return NewSessionError(ss.id, "ping", err)
			}
		}
	}
}

func (ss *session) write(data []byte) error {
	ss.conn.SetWriteDeadline(time.Now().Add(ss.server.config.WriteTimeout))
	if err := ss.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		return err
	}
	if ss.server.collector != nil {
		ss.server.collector.FrameSent(len(data))
	}
	return nil
}

func (ss *session) closeWith(code int, reason string) {
	deadline := time.Now().Add(ss.server.config.WriteTimeout)
	ss.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), deadline)
}

// errorFrame encodes err as a fatal error frame. Coded errors keep their
// code.
func errorFrame(err error) []byte {
	em := &protocol.ErrorMessage{Code: "E402", Message: err.Error(), Fatal: true}
	var coded *rcerrors.Error
	if errors.As(err, &coded) {
		em.Code = coded.Code
	}
	return protocol.NewFrame(protocol.FrameError, protocol.EncodeErrorMessage(em)).Encode()
}
