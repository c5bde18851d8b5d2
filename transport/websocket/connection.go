package websocket

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/pixelgrove/gostones-backend/internal/room"
)

// Message is the wire envelope: a protocol code plus a code-specific payload.
type Message struct {
	Type    uint8           `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// frame represents a WebSocket frame and its metadata.
type frame struct {
	isFin   bool
	opCode  byte
	length  uint64
	payload []byte
}

// connection is one hijacked client socket; it implements room.Client.
// Writes are serialized because both the read-loop goroutine and room timer
// callbacks push messages.
type connection struct {
	sessionID string
	conn      net.Conn
	bufrw     *bufio.ReadWriter

	writeMu sync.Mutex

	roomMu      sync.Mutex
	currentRoom *room.Room
}

func newConnection(sessionID string, conn net.Conn, bufrw *bufio.ReadWriter) *connection {
	return &connection{
		sessionID: sessionID,
		conn:      conn,
		bufrw:     bufrw,
	}
}

func (that *connection) SessionID() string {
	return that.sessionID
}

func (that *connection) Close() error {
	return that.conn.Close()
}

func (that *connection) room() *room.Room {
	that.roomMu.Lock()
	defer that.roomMu.Unlock()

	return that.currentRoom
}

func (that *connection) setRoom(r *room.Room) {
	that.roomMu.Lock()
	defer that.roomMu.Unlock()

	that.currentRoom = r
}

// Send - marshals a protocol message and writes it as a single text frame.
func (that *connection) Send(msgType uint8, payload any) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	responseBytes, err := json.Marshal(Message{
		Type:    msgType,
		Payload: payloadBytes,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	that.writeMu.Lock()
	defer that.writeMu.Unlock()

	f := frame{
		isFin:   true,
		opCode:  1, // text frame
		length:  uint64(len(responseBytes)),
		payload: responseBytes,
	}

	if err = that.writeFrame(f); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	return nil
}

func (that *connection) writeFrame(frameData frame) error {
	buf := make([]byte, 2)
	buf[0] |= frameData.opCode

	if frameData.isFin {
		buf[0] |= 0x80
	}

	switch {
	case frameData.length < 126:
		buf[1] |= byte(frameData.length)
	case frameData.length < 1<<16:
		buf[1] |= 126
		size := make([]byte, 2)
		binary.BigEndian.PutUint16(size, uint16(frameData.length))
		buf = append(buf, size...) //nolint: makezero // header is sized per branch
	default:
		buf[1] |= 127
		size := make([]byte, 8)
		binary.BigEndian.PutUint64(size, frameData.length)
		buf = append(buf, size...) //nolint: makezero // header is sized per branch
	}

	buf = append(buf, frameData.payload...) //nolint: makezero // header is sized per branch

	if _, err := that.bufrw.Write(buf); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	if err := that.bufrw.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}

	return nil
}

func (that *connection) readRequest() ([]byte, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(that.bufrw, header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	payload, err := that.readPayload(header)
	if err != nil {
		return nil, err
	}

	return payload, nil
}

func (that *connection) readPayload(header []byte) ([]byte, error) {
	finBit := header[0] >> 7
	opCode := header[0] & 0x0f
	maskBit := header[1] >> 7
	payloadLen := header[1] & 0x7f

	size, err := that.readPayloadLength(payloadLen)
	if err != nil {
		return nil, err
	}

	mask, err := that.readMask(maskBit)
	if err != nil {
		return nil, err
	}

	payload, err := that.readData(size, mask)
	if err != nil {
		return nil, err
	}

	if opCode == 8 {
		return nil, io.EOF
	}

	if finBit == 1 {
		return payload, nil
	}

	return nil, nil
}

func (that *connection) readPayloadLength(payloadLen byte) (uint64, error) {
	if payloadLen < 126 {
		return uint64(payloadLen), nil
	}

	if payloadLen == 126 {
		length := make([]byte, 2)
		if _, err := io.ReadFull(that.bufrw, length); err != nil {
			return 0, fmt.Errorf("failed to read payload length: %w", err)
		}
		return uint64(binary.BigEndian.Uint16(length)), nil
	}

	length := make([]byte, 8)
	if _, err := io.ReadFull(that.bufrw, length); err != nil {
		return 0, fmt.Errorf("failed to read payload length: %w", err)
	}

	return binary.BigEndian.Uint64(length), nil
}

func (that *connection) readMask(maskBit byte) ([]byte, error) {
	if maskBit == 0 {
		return nil, nil
	}

	mask := make([]byte, 4)
	if _, err := io.ReadFull(that.bufrw, mask); err != nil {
		return nil, fmt.Errorf("failed to read mask: %w", err)
	}

	return mask, nil
}

func (that *connection) readData(size uint64, mask []byte) ([]byte, error) {
	payload := make([]byte, size)
	if _, err := io.ReadFull(that.bufrw, payload); err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	if mask != nil {
		for i := range payload {
			payload[i] ^= mask[i%4]
		}
	}

	return payload, nil
}
