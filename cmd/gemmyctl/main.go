// Command gemmyctl is a small manual test client for a running gemmy
// server: it sends one OrderDispatcher request or opens a StatStream
// subscription and prints whatever comes back.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"gemmy/internal/wire"

	"github.com/google/uuid"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the gemmy server")
	action := flag.String("action", "limit", "action: limit, market, modify, cancel, rfq, orderbook")
	sideStr := flag.String("side", "buy", "order side: buy or sell")
	price := flag.Uint64("price", 100, "limit price (integer units)")
	qty := flag.Uint64("qty", 10, "quantity")
	idStr := flag.String("id", "", "order id (required for modify/cancel; generated otherwise)")
	granStr := flag.String("granularity", "p", "orderbook granularity: p00, p0, p, p10, p100")
	maxLevels := flag.Uint("levels", 10, "max depth levels per side for orderbook subscription")
	flag.Parse()

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("dial %s: %v", *serverAddr, err)
	}
	defer conn.Close()

	side := wire.SideBid
	if strings.EqualFold(*sideStr, "sell") {
		side = wire.SideAsk
	}

	id := uuid.New()
	if *idStr != "" {
		parsed, err := uuid.Parse(*idStr)
		if err != nil {
			log.Fatalf("invalid -id: %v", err)
		}
		id = parsed
	}

	switch strings.ToLower(*action) {
	case "limit":
		req := wire.LimitRequest{ID: id, Side: side, Price: *price, Quantity: *qty}
		if err := wire.WriteMessage(conn, wire.MsgLimit, req.Encode()); err != nil {
			log.Fatalf("send limit: %v", err)
		}
		fmt.Printf("sent limit order %s\n", id)

	case "market":
		req := wire.MarketRequest{ID: id, Side: side, Quantity: *qty}
		if err := wire.WriteMessage(conn, wire.MsgMarket, req.Encode()); err != nil {
			log.Fatalf("send market: %v", err)
		}
		fmt.Printf("sent market order %s\n", id)

	case "modify":
		requireID(*idStr)
		req := wire.ModifyRequest{ID: id, Side: side, NewPrice: *price, NewQuantity: *qty}
		if err := wire.WriteMessage(conn, wire.MsgModify, req.Encode()); err != nil {
			log.Fatalf("send modify: %v", err)
		}
		fmt.Printf("sent modify for %s\n", id)

	case "cancel":
		requireID(*idStr)
		req := wire.CancelRequest{ID: id, Side: side}
		if err := wire.WriteMessage(conn, wire.MsgCancel, req.Encode()); err != nil {
			log.Fatalf("send cancel: %v", err)
		}
		fmt.Printf("sent cancel for %s\n", id)

	case "rfq":
		req := wire.RfqSubscribeRequest{Quantity: *qty, Side: side}
		if err := wire.WriteMessage(conn, wire.MsgRfqSubscribe, req.Encode()); err != nil {
			log.Fatalf("subscribe rfq: %v", err)
		}
		streamRfq(conn)
		return

	case "orderbook":
		req := wire.OrderbookSubscribeRequest{Granularity: parseGranularity(*granStr), MaxLevels: uint32(*maxLevels)}
		if err := wire.WriteMessage(conn, wire.MsgOrderbookSubscribe, req.Encode()); err != nil {
			log.Fatalf("subscribe orderbook: %v", err)
		}
		streamOrderbook(conn)
		return

	default:
		log.Fatalf("unknown action %q", *action)
	}

	msgType, body, err := wire.ReadMessage(conn)
	if err != nil {
		log.Fatalf("read ack: %v", err)
	}
	fmt.Printf("ack (type %d): %s\n", msgType, wire.DecodeAck(body))
}

func requireID(idStr string) {
	if idStr == "" {
		log.Fatal("-id is required for this action")
	}
}

func parseGranularity(s string) wire.Granularity {
	switch strings.ToLower(s) {
	case "p00":
		return wire.P00
	case "p0":
		return wire.P0
	case "p10":
		return wire.P10
	case "p100":
		return wire.P100
	default:
		return wire.P
	}
}

func streamRfq(conn net.Conn) {
	fmt.Println("streaming rfq re-evaluations, press Ctrl+C to exit")
	for {
		msgType, body, err := wire.ReadMessage(conn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "stream ended: %v\n", err)
			return
		}
		if msgType != wire.MsgRfqSubscribe {
			continue
		}
		frame, err := wire.DecodeRfqFrame(body)
		if err != nil {
			fmt.Fprintf(os.Stderr, "decode rfq frame: %v\n", err)
			continue
		}
		fmt.Printf("rfq status=%d price=%d quantity=%d\n", frame.Status, frame.Price, frame.Quantity)
	}
}

func streamOrderbook(conn net.Conn) {
	fmt.Println("streaming orderbook snapshots, press Ctrl+C to exit")
	for {
		msgType, body, err := wire.ReadMessage(conn)
		if err != nil {
			fmt.Fprintf(os.Stderr, "stream ended: %v\n", err)
			return
		}
		if msgType != wire.MsgOrderbookSubscribe {
			continue
		}
		frame, err := wire.DecodeOrderbookFrame(body)
		if err != nil {
			fmt.Fprintf(os.Stderr, "decode orderbook frame: %v\n", err)
			continue
		}
		fmt.Printf("bid=%v(%v) ask=%v(%v) last=%v(%v) bids=%d asks=%d\n",
			frame.MaxBid, frame.HasMaxBid, frame.MinAsk, frame.HasMinAsk, frame.LastTradePrice, frame.HasLastTrade,
			len(frame.Bids), len(frame.Asks))
	}
}
