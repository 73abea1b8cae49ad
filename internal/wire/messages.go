package wire

import (
	"encoding/binary"
	"errors"

	"github.com/google/uuid"
)

var ErrMessageTooShort = errors.New("wire: message too short")

// MessageType tags the payload of a frame sent to the OrderDispatcher or
// StatStream service.
type MessageType uint8

const (
	MsgLimit MessageType = iota
	MsgMarket
	MsgModify
	MsgCancel
	MsgRfqSubscribe
	MsgOrderbookSubscribe
)

const idLen = 16 // uuid.UUID is a 16-byte opaque value

// LimitRequest is the OrderDispatcher.limit unary call payload.
type LimitRequest struct {
	ID       uuid.UUID
	Side     OrderSide
	Price    uint64
	Quantity uint64
}

const limitRequestLen = idLen + 1 + 8 + 8

func (r LimitRequest) Encode() []byte {
	buf := make([]byte, limitRequestLen)
	copy(buf[0:idLen], r.ID[:])
	buf[idLen] = byte(r.Side)
	binary.BigEndian.PutUint64(buf[idLen+1:idLen+9], r.Price)
	binary.BigEndian.PutUint64(buf[idLen+9:idLen+17], r.Quantity)
	return buf
}

func DecodeLimitRequest(b []byte) (LimitRequest, error) {
	if len(b) < limitRequestLen {
		return LimitRequest{}, ErrMessageTooShort
	}
	var r LimitRequest
	copy(r.ID[:], b[0:idLen])
	r.Side = OrderSide(b[idLen])
	r.Price = binary.BigEndian.Uint64(b[idLen+1 : idLen+9])
	r.Quantity = binary.BigEndian.Uint64(b[idLen+9 : idLen+17])
	return r, nil
}

// MarketRequest is the OrderDispatcher.market unary call payload.
type MarketRequest struct {
	ID       uuid.UUID
	Side     OrderSide
	Quantity uint64
}

const marketRequestLen = idLen + 1 + 8

func (r MarketRequest) Encode() []byte {
	buf := make([]byte, marketRequestLen)
	copy(buf[0:idLen], r.ID[:])
	buf[idLen] = byte(r.Side)
	binary.BigEndian.PutUint64(buf[idLen+1:idLen+9], r.Quantity)
	return buf
}

func DecodeMarketRequest(b []byte) (MarketRequest, error) {
	if len(b) < marketRequestLen {
		return MarketRequest{}, ErrMessageTooShort
	}
	var r MarketRequest
	copy(r.ID[:], b[0:idLen])
	r.Side = OrderSide(b[idLen])
	r.Quantity = binary.BigEndian.Uint64(b[idLen+1 : idLen+9])
	return r, nil
}

// ModifyRequest is the OrderDispatcher.modify unary call payload.
type ModifyRequest struct {
	ID          uuid.UUID
	Side        OrderSide
	NewPrice    uint64
	NewQuantity uint64
}

const modifyRequestLen = idLen + 1 + 8 + 8

func (r ModifyRequest) Encode() []byte {
	buf := make([]byte, modifyRequestLen)
	copy(buf[0:idLen], r.ID[:])
	buf[idLen] = byte(r.Side)
	binary.BigEndian.PutUint64(buf[idLen+1:idLen+9], r.NewPrice)
	binary.BigEndian.PutUint64(buf[idLen+9:idLen+17], r.NewQuantity)
	return buf
}

func DecodeModifyRequest(b []byte) (ModifyRequest, error) {
	if len(b) < modifyRequestLen {
		return ModifyRequest{}, ErrMessageTooShort
	}
	var r ModifyRequest
	copy(r.ID[:], b[0:idLen])
	r.Side = OrderSide(b[idLen])
	r.NewPrice = binary.BigEndian.Uint64(b[idLen+1 : idLen+9])
	r.NewQuantity = binary.BigEndian.Uint64(b[idLen+9 : idLen+17])
	return r, nil
}

// CancelRequest is the OrderDispatcher.cancel unary call payload.
type CancelRequest struct {
	ID   uuid.UUID
	Side OrderSide
}

const cancelRequestLen = idLen + 1

func (r CancelRequest) Encode() []byte {
	buf := make([]byte, cancelRequestLen)
	copy(buf[0:idLen], r.ID[:])
	buf[idLen] = byte(r.Side)
	return buf
}

func DecodeCancelRequest(b []byte) (CancelRequest, error) {
	if len(b) < cancelRequestLen {
		return CancelRequest{}, ErrMessageTooShort
	}
	var r CancelRequest
	copy(r.ID[:], b[0:idLen])
	r.Side = OrderSide(b[idLen])
	return r, nil
}

// Ack is the unary acknowledgement every OrderDispatcher call returns.
func EncodeAck(s string) []byte { return []byte(s) }
func DecodeAck(b []byte) string { return string(b) }

// RfqSubscribeRequest starts a StatStream.rfq periodic re-evaluation.
type RfqSubscribeRequest struct {
	Quantity uint64
	Side     OrderSide
}

const rfqSubscribeRequestLen = 8 + 1

func (r RfqSubscribeRequest) Encode() []byte {
	buf := make([]byte, rfqSubscribeRequestLen)
	binary.BigEndian.PutUint64(buf[0:8], r.Quantity)
	buf[8] = byte(r.Side)
	return buf
}

func DecodeRfqSubscribeRequest(b []byte) (RfqSubscribeRequest, error) {
	if len(b) < rfqSubscribeRequestLen {
		return RfqSubscribeRequest{}, ErrMessageTooShort
	}
	return RfqSubscribeRequest{
		Quantity: binary.BigEndian.Uint64(b[0:8]),
		Side:     OrderSide(b[8]),
	}, nil
}

// RfqFrame is one periodic StatStream.rfq push.
type RfqFrame struct {
	Status   RfqStatus
	Price    uint64 // VWAP for (Complete|Partial)Fill, best same-side price for ConvertLimit, 0 for NotPossible
	Quantity uint64
}

const rfqFrameLen = 1 + 8 + 8

func (f RfqFrame) Encode() []byte {
	buf := make([]byte, rfqFrameLen)
	buf[0] = byte(f.Status)
	binary.BigEndian.PutUint64(buf[1:9], f.Price)
	binary.BigEndian.PutUint64(buf[9:17], f.Quantity)
	return buf
}

func DecodeRfqFrame(b []byte) (RfqFrame, error) {
	if len(b) < rfqFrameLen {
		return RfqFrame{}, ErrMessageTooShort
	}
	return RfqFrame{
		Status:   RfqStatus(b[0]),
		Price:    binary.BigEndian.Uint64(b[1:9]),
		Quantity: binary.BigEndian.Uint64(b[9:17]),
	}, nil
}

// OrderbookSubscribeRequest starts a StatStream.orderbook periodic
// snapshot push at the given granularity, capped to maxLevels per side
// (0 means unbounded).
type OrderbookSubscribeRequest struct {
	Granularity Granularity
	MaxLevels   uint32
}

const orderbookSubscribeRequestLen = 1 + 4

func (r OrderbookSubscribeRequest) Encode() []byte {
	buf := make([]byte, orderbookSubscribeRequestLen)
	buf[0] = byte(r.Granularity)
	binary.BigEndian.PutUint32(buf[1:5], r.MaxLevels)
	return buf
}

func DecodeOrderbookSubscribeRequest(b []byte) (OrderbookSubscribeRequest, error) {
	if len(b) < orderbookSubscribeRequestLen {
		return OrderbookSubscribeRequest{}, ErrMessageTooShort
	}
	return OrderbookSubscribeRequest{
		Granularity: Granularity(b[0]),
		MaxLevels:   binary.BigEndian.Uint32(b[1:5]),
	}, nil
}

// LevelWire is one bucketed depth level on the wire.
type LevelWire struct {
	Price    uint64
	Quantity uint64
}

// OrderbookFrame is one periodic StatStream.orderbook push.
type OrderbookFrame struct {
	HasMaxBid      bool
	MaxBid         uint64
	HasMinAsk      bool
	MinAsk         uint64
	HasLastTrade   bool
	LastTradePrice uint64
	Bids           []LevelWire
	Asks           []LevelWire
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}

// Encode serializes the frame as: 3 presence flags, 3 uint64 fields,
// then bid count + bid levels, then ask count + ask levels.
func (f OrderbookFrame) Encode() []byte {
	size := 3 + 8*3 + 4 + len(f.Bids)*16 + 4 + len(f.Asks)*16
	buf := make([]byte, size)
	off := 0
	buf[off] = boolByte(f.HasMaxBid)
	off++
	buf[off] = boolByte(f.HasMinAsk)
	off++
	buf[off] = boolByte(f.HasLastTrade)
	off++
	binary.BigEndian.PutUint64(buf[off:off+8], f.MaxBid)
	off += 8
	binary.BigEndian.PutUint64(buf[off:off+8], f.MinAsk)
	off += 8
	binary.BigEndian.PutUint64(buf[off:off+8], f.LastTradePrice)
	off += 8

	binary.BigEndian.PutUint32(buf[off:off+4], uint32(len(f.Bids)))
	off += 4
	for _, lvl := range f.Bids {
		binary.BigEndian.PutUint64(buf[off:off+8], lvl.Price)
		off += 8
		binary.BigEndian.PutUint64(buf[off:off+8], lvl.Quantity)
		off += 8
	}

	binary.BigEndian.PutUint32(buf[off:off+4], uint32(len(f.Asks)))
	off += 4
	for _, lvl := range f.Asks {
		binary.BigEndian.PutUint64(buf[off:off+8], lvl.Price)
		off += 8
		binary.BigEndian.PutUint64(buf[off:off+8], lvl.Quantity)
		off += 8
	}
	return buf
}

func DecodeOrderbookFrame(b []byte) (OrderbookFrame, error) {
	const fixedLen = 3 + 8*3 + 4
	if len(b) < fixedLen {
		return OrderbookFrame{}, ErrMessageTooShort
	}
	var f OrderbookFrame
	off := 0
	f.HasMaxBid = b[off] != 0
	off++
	f.HasMinAsk = b[off] != 0
	off++
	f.HasLastTrade = b[off] != 0
	off++
	f.MaxBid = binary.BigEndian.Uint64(b[off : off+8])
	off += 8
	f.MinAsk = binary.BigEndian.Uint64(b[off : off+8])
	off += 8
	f.LastTradePrice = binary.BigEndian.Uint64(b[off : off+8])
	off += 8

	bidCount := binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	for i := uint32(0); i < bidCount; i++ {
		if len(b) < off+16 {
			return OrderbookFrame{}, ErrMessageTooShort
		}
		f.Bids = append(f.Bids, LevelWire{
			Price:    binary.BigEndian.Uint64(b[off : off+8]),
			Quantity: binary.BigEndian.Uint64(b[off+8 : off+16]),
		})
		off += 16
	}

	if len(b) < off+4 {
		return OrderbookFrame{}, ErrMessageTooShort
	}
	askCount := binary.BigEndian.Uint32(b[off : off+4])
	off += 4
	for i := uint32(0); i < askCount; i++ {
		if len(b) < off+16 {
			return OrderbookFrame{}, ErrMessageTooShort
		}
		f.Asks = append(f.Asks, LevelWire{
			Price:    binary.BigEndian.Uint64(b[off : off+8]),
			Quantity: binary.BigEndian.Uint64(b[off+8 : off+16]),
		})
		off += 16
	}

	return f, nil
}
