package websocket

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	opText  = 0x1
	opClose = 0x8

	finBit  = 0x80
	maskBit = 0x80
)

// writeFrame - writes one final, unmasked text frame (server to client).
func writeFrame(bufrw *bufio.ReadWriter, payload []byte) error {
	header := make([]byte, 2, 10)
	header[0] = finBit | opText

	length := uint64(len(payload))
	switch {
	case length < 126:
		header[1] = byte(length)
	case length < 1<<16:
		header[1] = 126
		header = binary.BigEndian.AppendUint16(header, uint16(length))
	default:
		header[1] = 127
		header = binary.BigEndian.AppendUint64(header, length)
	}

	if _, err := bufrw.Write(header); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}

	if _, err := bufrw.Write(payload); err != nil {
		return fmt.Errorf("failed to write frame payload: %w", err)
	}

	if err := bufrw.Flush(); err != nil {
		return fmt.Errorf("failed to flush frame: %w", err)
	}

	return nil
}

// readFrame - reads one client frame and returns its unmasked payload. A
// close frame is reported as io.EOF.
func readFrame(bufrw *bufio.ReadWriter) ([]byte, error) {
	header := make([]byte, 2)
	if _, err := io.ReadFull(bufrw, header); err != nil {
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}

	opCode := header[0] & 0x0f
	masked := header[1]&maskBit != 0

	length := uint64(header[1] & 0x7f)
	switch length {
	case 126:
		ext := make([]byte, 2)
		if _, err := io.ReadFull(bufrw, ext); err != nil {
			return nil, fmt.Errorf("failed to read frame length: %w", err)
		}
		length = uint64(binary.BigEndian.Uint16(ext))
	case 127:
		ext := make([]byte, 8)
		if _, err := io.ReadFull(bufrw, ext); err != nil {
			return nil, fmt.Errorf("failed to read frame length: %w", err)
		}
		length = binary.BigEndian.Uint64(ext)
	}

	var mask []byte
	if masked {
		mask = make([]byte, 4)
		if _, err := io.ReadFull(bufrw, mask); err != nil {
			return nil, fmt.Errorf("failed to read frame mask: %w", err)
		}
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(bufrw, payload); err != nil {
		return nil, fmt.Errorf("failed to read frame payload: %w", err)
	}

	if masked {
		for i := range payload {
			payload[i] ^= mask[i%4]
		}
	}

	if opCode == opClose {
		return nil, io.EOF
	}

	return payload, nil
}
