package websocket

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReadWriter(buf *bytes.Buffer) *bufio.ReadWriter {
	return bufio.NewReadWriter(bufio.NewReader(buf), bufio.NewWriter(buf))
}

// maskedFrame builds a client-side frame the way browsers send them: final,
// text opcode, masked payload.
func maskedFrame(payload []byte) []byte {
	mask := []byte{0x1f, 0x2e, 0x3d, 0x4c}

	frame := []byte{finBit | opText, maskBit | byte(len(payload))}
	frame = append(frame, mask...)
	for i, b := range payload {
		frame = append(frame, b^mask[i%4])
	}

	return frame
}

func TestReadFrame(t *testing.T) {
	t.Run("Unmasks a client text frame", func(t *testing.T) {
		// Given: a masked frame as a client would send it
		buf := bytes.NewBuffer(maskedFrame([]byte(`{"action":"ping"}`)))

		// When: the server reads it
		payload, err := readFrame(newTestReadWriter(buf))

		// Then: the payload comes back unmasked
		require.NoError(t, err)
		assert.Equal(t, `{"action":"ping"}`, string(payload))
	})

	t.Run("Reports a close frame as EOF", func(t *testing.T) {
		buf := bytes.NewBuffer([]byte{finBit | opClose, 0})

		_, err := readFrame(newTestReadWriter(buf))

		require.ErrorIs(t, err, io.EOF)
	})
}

func TestWriteFrame(t *testing.T) {
	t.Run("Round-trips a server frame through the reader", func(t *testing.T) {
		// Given: a payload written as a server frame (unmasked)
		buf := &bytes.Buffer{}
		payload := []byte(`{"action":"message","payload":{"text":"pong"}}`)

		require.NoError(t, writeFrame(newTestReadWriter(buf), payload))

		// When: it is read back
		got, err := readFrame(newTestReadWriter(buf))

		// Then: the payload survives unchanged
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("Encodes extended lengths for large payloads", func(t *testing.T) {
		buf := &bytes.Buffer{}
		payload := bytes.Repeat([]byte("x"), 300)

		require.NoError(t, writeFrame(newTestReadWriter(buf), payload))

		got, err := readFrame(newTestReadWriter(buf))

		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})
}
