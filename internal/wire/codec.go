package wire

import (
	"encoding/binary"
	"errors"
	"io"
)

// MaxFrameSize bounds a single frame's payload to guard against a
// corrupt or hostile length prefix forcing an unbounded allocation.
const MaxFrameSize = 1 << 20 // 1 MiB

var ErrFrameTooLarge = errors.New("wire: frame exceeds MaxFrameSize")

// WriteFrame writes a 4-byte big-endian length prefix followed by
// payload, the length-prefixed framing spec §6 calls for.
func WriteFrame(w io.Writer, payload []byte) error {
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadFrame reads one length-prefixed frame from r.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(header[:])
	if n > MaxFrameSize {
		return nil, ErrFrameTooLarge
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteMessage frames a MessageType-tagged payload as one length-prefixed
// frame, [type byte][body...], written by WriteFrame (header and payload
// are two separate writes).
func WriteMessage(w io.Writer, msgType MessageType, body []byte) error {
	framed := make([]byte, 1+len(body))
	framed[0] = byte(msgType)
	copy(framed[1:], body)
	return WriteFrame(w, framed)
}

// ReadMessage reads one WriteMessage frame back into its type and body.
func ReadMessage(r io.Reader) (MessageType, []byte, error) {
	frame, err := ReadFrame(r)
	if err != nil {
		return 0, nil, err
	}
	if len(frame) < 1 {
		return 0, nil, ErrMessageTooShort
	}
	return MessageType(frame[0]), frame[1:], nil
}
