package stream

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFraming(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WritePacket([]byte{1, 2, 3}))
	require.NoError(t, w.WritePacket(nil))
	require.Equal(t, []byte{3, 0, 0, 0, 1, 2, 3, 0, 0, 0, 0}, buf.Bytes())

	r := NewReader(&buf)
	pkt, err := r.ReadPacket()
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, pkt)
	pkt, err = r.ReadPacket()
	require.NoError(t, err)
	require.Empty(t, pkt)
	_, err = r.ReadPacket()
	require.Equal(t, io.EOF, err)
}

func TestTruncated(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{4, 0, 0, 0, 1, 2}))
	_, err := r.ReadPacket()
	require.Equal(t, io.ErrUnexpectedEOF, err)

	r = NewReader(bytes.NewReader([]byte{4, 0}))
	_, err = r.ReadPacket()
	require.Equal(t, io.ErrUnexpectedEOF, err)
}

func TestTooLarge(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0, 0, 0, 0x10}))
	_, err := r.ReadPacket()
	require.Equal(t, ErrPacketTooLarge, err)
}
