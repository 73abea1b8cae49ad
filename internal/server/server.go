// Package server exposes the matching engine over the OrderDispatcher
// (unary limit/market/modify/cancel) and StatStream (server-streaming
// rfq/orderbook) services from spec §6, over a length-prefixed TCP
// protocol (internal/wire). This is a collaborator: it never implements
// matching itself, only translates wire requests into engine.Operation
// calls and periodic read-only queries.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"gemmy/internal/book"
	"gemmy/internal/depth"
	"gemmy/internal/engine"
	"gemmy/internal/publisher"
	"gemmy/internal/rfq"
	"gemmy/internal/wire"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const defaultConnTimeout = 30 * time.Second

var ErrImproperConversion = errors.New("server: improper task type conversion")

// Core is the subset of *engine.Engine the dispatcher needs. Kept as an
// interface, as the teacher's internal/net/server.go does, so the
// dispatcher can be tested against a fake without a real book.
type Core interface {
	Execute(op engine.Operation) engine.ExecutionResult
	View(fn func(b *book.Book))
}

type rfqSubscription struct {
	conn     net.Conn
	quantity uint64
	side     book.Side
}

type orderbookSubscription struct {
	conn        net.Conn
	granularity depth.Granularity
	maxLevels   int
}

// Server is the TCP front end for one engine instance.
type Server struct {
	address        string
	symbol         string
	engine         Core
	pub            publisher.Publisher
	pool           WorkerPool
	streamInterval time.Duration

	cancel context.CancelFunc

	mu      sync.Mutex
	rfqSubs map[string]rfqSubscription
	obSubs  map[string]orderbookSubscription
}

// New builds a Server that has not started listening yet.
func New(address, symbol string, eng Core, pub publisher.Publisher, poolSize int, streamInterval time.Duration) *Server {
	return &Server{
		address:        address,
		symbol:         symbol,
		engine:         eng,
		pub:            pub,
		pool:           NewWorkerPool(poolSize),
		streamInterval: streamInterval,
		rfqSubs:        make(map[string]rfqSubscription),
		obSubs:         make(map[string]orderbookSubscription),
	}
}

// Run accepts connections and serves them until ctx is cancelled.
func (s *Server) Run(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	defer s.cancel()

	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.address)
	if err != nil {
		log.Error().Err(err).Str("address", s.address).Msg("unable to start listener")
		return
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Error().Err(err).Msg("unable to close listener")
		}
	}()

	t.Go(func() error {
		s.pool.Setup(t, s.handleTask)
		return nil
	})
	t.Go(func() error { return s.streamRfq(t) })
	t.Go(func() error { return s.streamOrderbook(t) })

	log.Info().Str("address", s.address).Msg("server running")

	for {
		select {
		case <-ctx.Done():
			return
		default:
			conn, err := listener.Accept()
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
					log.Error().Err(err).Msg("error accepting client")
					continue
				}
			}
			s.pool.AddTask(conn)
		}
	}
}

// Shutdown stops the accept loop and all streaming goroutines.
func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
}

// handleTask reads exactly one frame off conn, dispatches it, then
// re-enqueues conn so a bounded pool of goroutines round-robins across
// many live connections instead of dedicating one goroutine per
// connection for its whole lifetime (ported from the teacher's
// read-one-then-requeue worker loop).
func (s *Server) handleTask(t *tomb.Tomb, task any) error {
	conn, ok := task.(net.Conn)
	if !ok {
		return ErrImproperConversion
	}

	select {
	case <-t.Dying():
		return nil
	default:
	}

	_ = conn.SetReadDeadline(time.Now().Add(defaultConnTimeout))
	msgType, body, err := wire.ReadMessage(conn)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error reading frame")
		}
		s.forgetConn(conn)
		_ = conn.Close()
		return nil
	}

	if err := s.dispatch(conn, msgType, body); err != nil {
		log.Error().Err(err).Str("address", conn.RemoteAddr().String()).Msg("error dispatching frame")
		_ = wire.WriteMessage(conn, msgType, wire.EncodeAck("error: "+err.Error()))
	}

	s.pool.AddTask(conn)
	return nil
}

func (s *Server) dispatch(conn net.Conn, msgType wire.MessageType, body []byte) error {
	switch msgType {
	case wire.MsgLimit:
		req, err := wire.DecodeLimitRequest(body)
		if err != nil {
			return err
		}
		op := engine.LimitOp{Order: book.LimitOrder{ID: req.ID, Side: fromWireSide(req.Side), Price: req.Price, Quantity: req.Quantity}}
		return s.execute(conn, wire.MsgLimit, op)

	case wire.MsgMarket:
		req, err := wire.DecodeMarketRequest(body)
		if err != nil {
			return err
		}
		op := engine.MarketOp{Order: book.MarketOrder{ID: req.ID, Side: fromWireSide(req.Side), Quantity: req.Quantity}}
		return s.execute(conn, wire.MsgMarket, op)

	case wire.MsgModify:
		req, err := wire.DecodeModifyRequest(body)
		if err != nil {
			return err
		}
		op := engine.ModifyOp{ID: req.ID, Side: fromWireSide(req.Side), NewPrice: req.NewPrice, NewQuantity: req.NewQuantity}
		return s.execute(conn, wire.MsgModify, op)

	case wire.MsgCancel:
		req, err := wire.DecodeCancelRequest(body)
		if err != nil {
			return err
		}
		op := engine.CancelOp{ID: req.ID, Side: fromWireSide(req.Side)}
		return s.execute(conn, wire.MsgCancel, op)

	case wire.MsgRfqSubscribe:
		req, err := wire.DecodeRfqSubscribeRequest(body)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.rfqSubs[conn.RemoteAddr().String()] = rfqSubscription{conn: conn, quantity: req.Quantity, side: fromWireSide(req.Side)}
		s.mu.Unlock()
		return wire.WriteMessage(conn, wire.MsgRfqSubscribe, wire.EncodeAck("subscribed"))

	case wire.MsgOrderbookSubscribe:
		req, err := wire.DecodeOrderbookSubscribeRequest(body)
		if err != nil {
			return err
		}
		s.mu.Lock()
		s.obSubs[conn.RemoteAddr().String()] = orderbookSubscription{conn: conn, granularity: req.Granularity, maxLevels: int(req.MaxLevels)}
		s.mu.Unlock()
		return wire.WriteMessage(conn, wire.MsgOrderbookSubscribe, wire.EncodeAck("subscribed"))

	default:
		return fmt.Errorf("unknown message type %d", msgType)
	}
}

func (s *Server) execute(conn net.Conn, msgType wire.MessageType, op engine.Operation) error {
	result := s.engine.Execute(op)

	ack := describeResult(result)
	if err := wire.WriteMessage(conn, msgType, wire.EncodeAck(ack)); err != nil {
		return err
	}

	if executed, ok := result.(engine.Executed); ok && s.pub != nil {
		evt := publisher.NewEvent(s.symbol, executed.Fill)
		if err := s.pub.Publish(context.Background(), evt); err != nil {
			log.Error().Err(err).Msg("publish execution event")
		}
	}
	return nil
}

func (s *Server) forgetConn(conn net.Conn) {
	key := conn.RemoteAddr().String()
	s.mu.Lock()
	delete(s.rfqSubs, key)
	delete(s.obSubs, key)
	s.mu.Unlock()
}

// streamRfq periodically re-evaluates every active RFQ subscription and
// pushes a fresh frame, per spec §6's "periodic re-evaluations".
func (s *Server) streamRfq(t *tomb.Tomb) error {
	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.Dying():
			return nil
		case <-ticker.C:
			s.mu.Lock()
			subs := make([]rfqSubscription, 0, len(s.rfqSubs))
			for _, sub := range s.rfqSubs {
				subs = append(subs, sub)
			}
			s.mu.Unlock()

			for _, sub := range subs {
				var frame wire.RfqFrame
				s.engine.View(func(b *book.Book) {
					frame = toWireRfq(rfq.Evaluate(b, sub.quantity, sub.side))
				})
				if err := wire.WriteMessage(sub.conn, wire.MsgRfqSubscribe, frame.Encode()); err != nil {
					s.forgetConn(sub.conn)
				}
			}
		}
	}
}

// streamOrderbook periodically re-evaluates every active depth
// subscription and pushes a fresh snapshot.
func (s *Server) streamOrderbook(t *tomb.Tomb) error {
	ticker := time.NewTicker(s.streamInterval)
	defer ticker.Stop()
	for {
		select {
		case <-t.Dying():
			return nil
		case <-ticker.C:
			s.mu.Lock()
			subs := make([]orderbookSubscription, 0, len(s.obSubs))
			for _, sub := range s.obSubs {
				subs = append(subs, sub)
			}
			s.mu.Unlock()

			for _, sub := range subs {
				var frame wire.OrderbookFrame
				s.engine.View(func(b *book.Book) {
					frame = toWireOrderbook(depth.Project(b, sub.granularity, sub.maxLevels))
				})
				if err := wire.WriteMessage(sub.conn, wire.MsgOrderbookSubscribe, frame.Encode()); err != nil {
					s.forgetConn(sub.conn)
				}
			}
		}
	}
}

func fromWireSide(s wire.OrderSide) book.Side {
	if s == wire.SideBid {
		return book.Bid
	}
	return book.Ask
}

func describeResult(result engine.ExecutionResult) string {
	switch r := result.(type) {
	case engine.Executed:
		switch fr := r.Fill.(type) {
		case engine.Created:
			return fmt.Sprintf("created %s", fr.Order.ID)
		case engine.Filled:
			return fmt.Sprintf("filled %d records", len(fr.Fills))
		case engine.PartiallyFilled:
			return fmt.Sprintf("partially filled %d records", len(fr.Fills))
		case engine.Cancelled:
			return fmt.Sprintf("cancelled %s", fr.ID)
		case engine.Modified:
			return fmt.Sprintf("modified %s", fr.ID)
		}
	case engine.Rejected:
		return fmt.Sprintf("rejected: %s", r.Reason)
	}
	return "unknown"
}

func toWireRfq(result rfq.Result) wire.RfqFrame {
	switch r := result.(type) {
	case rfq.CompleteFill:
		return wire.RfqFrame{Status: wire.RfqCompleteFill, Price: r.VWAP, Quantity: r.Quantity}
	case rfq.PartialFill:
		return wire.RfqFrame{Status: wire.RfqPartialFill, Price: r.VWAP, Quantity: r.Quantity}
	case rfq.ConvertLimit:
		return wire.RfqFrame{Status: wire.RfqConvertLimit, Price: r.BestSamePrice}
	default:
		return wire.RfqFrame{Status: wire.RfqNotPossible}
	}
}

func toWireOrderbook(snap depth.Snapshot) wire.OrderbookFrame {
	frame := wire.OrderbookFrame{
		HasMaxBid:      snap.HasMaxBid,
		MaxBid:         snap.MaxBid,
		HasMinAsk:      snap.HasMinAsk,
		MinAsk:         snap.MinAsk,
		HasLastTrade:   snap.HasLastTrade,
		LastTradePrice: snap.LastTradePrice,
	}
	frame.Bids = make([]wire.LevelWire, len(snap.Bids))
	for i, lvl := range snap.Bids {
		frame.Bids[i] = wire.LevelWire{Price: lvl.Price, Quantity: lvl.Quantity}
	}
	frame.Asks = make([]wire.LevelWire, len(snap.Asks))
	for i, lvl := range snap.Asks {
		frame.Asks[i] = wire.LevelWire{Price: lvl.Price, Quantity: lvl.Quantity}
	}
	return frame
}

// NewOrderID mints a fresh random order id, for a caller that must supply
// one itself since the core never mints ids.
func NewOrderID() uuid.UUID { return uuid.New() }
