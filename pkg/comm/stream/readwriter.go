// Package stream frames packets over a byte stream: a 4-byte
// little-endian length followed by the packet.
package stream

import (
	"encoding/binary"
	"errors"
	"io"
	"sync"
)

// MaxPacketSize bounds the length prefix accepted by ReadPacket.
const MaxPacketSize = 1 << 20

// ErrPacketTooLarge is returned for a length prefix over MaxPacketSize.
var ErrPacketTooLarge = errors.New("packet too large")

// ReadWriter implements comm.PacketReadWriter.
type ReadWriter struct {
	rw io.ReadWriter

	writeLock sync.Mutex
}

// New wraps rw. Either direction may be unused.
func New(rw io.ReadWriter) *ReadWriter {
	return &ReadWriter{rw: rw}
}

// NewWriter wraps a writer only, e.g. a capture file.
func NewWriter(w io.Writer) *ReadWriter {
	return New(struct {
		io.Reader
		io.Writer
	}{Writer: w})
}

// NewReader wraps a reader only.
func NewReader(r io.Reader) *ReadWriter {
	return New(struct {
		io.Reader
		io.Writer
	}{Reader: r})
}

// ReadPacket implements comm.PacketReader. A clean end of stream between
// packets is io.EOF; inside a packet it is io.ErrUnexpectedEOF.
func (p *ReadWriter) ReadPacket() ([]byte, error) {
	var size uint32
	if err := binary.Read(p.rw, binary.LittleEndian, &size); err != nil {
		return nil, err
	}
	if size > MaxPacketSize {
		return nil, ErrPacketTooLarge
	}
	pkt := make([]byte, size)
	if _, err := io.ReadFull(p.rw, pkt); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return pkt, nil
}

// WritePacket implements comm.PacketWriter. Concurrent writers don't
// interleave.
func (p *ReadWriter) WritePacket(pkt []byte) error {
	buf := make([]byte, 4+len(pkt))
	binary.LittleEndian.PutUint32(buf, uint32(len(pkt)))
	copy(buf[4:], pkt)
	p.writeLock.Lock()
	defer p.writeLock.Unlock()
	_, err := p.rw.Write(buf)
	return err
}
