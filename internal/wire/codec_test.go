package wire

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadMessage_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	req := LimitRequest{ID: uuid.New(), Side: SideBid, Price: 100, Quantity: 10}
	require.NoError(t, WriteMessage(&buf, MsgLimit, req.Encode()))

	msgType, body, err := ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, MsgLimit, msgType)

	decoded, err := DecodeLimitRequest(body)
	require.NoError(t, err)
	assert.Equal(t, req, decoded)
}

func TestReadFrame_RejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, make([]byte, 16)))
	// Corrupt the length prefix to claim a frame larger than MaxFrameSize.
	raw := buf.Bytes()
	raw[0], raw[1], raw[2], raw[3] = 0xff, 0xff, 0xff, 0xff

	_, err := ReadFrame(bytes.NewReader(raw))
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestOrderbookFrame_RoundTrip(t *testing.T) {
	frame := OrderbookFrame{
		HasMaxBid: true, MaxBid: 99,
		HasMinAsk: true, MinAsk: 101,
		HasLastTrade: true, LastTradePrice: 100,
		Bids: []LevelWire{{Price: 99, Quantity: 10}, {Price: 98, Quantity: 5}},
		Asks: []LevelWire{{Price: 101, Quantity: 7}},
	}
	decoded, err := DecodeOrderbookFrame(frame.Encode())
	require.NoError(t, err)
	assert.Equal(t, frame, decoded)
}

func TestRfqFrame_RoundTrip(t *testing.T) {
	frame := RfqFrame{Status: RfqPartialFill, Price: 100, Quantity: 5}
	decoded, err := DecodeRfqFrame(frame.Encode())
	require.NoError(t, err)
	assert.Equal(t, frame, decoded)
}
