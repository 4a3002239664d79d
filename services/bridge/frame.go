package bridge

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// -----------------------------------------------------------------------------
// Minimal framing: type byte, big-endian uint16 length, payload.
// -----------------------------------------------------------------------------

const (
	framePing   byte = 0x01
	framePong   byte = 0x02
	frameState  byte = 0x20 // variant tag + encoded JoystickState
	frameConfig byte = 0x21 // variant tag + encoded JoystickConfig
	frameClose  byte = 0x7f
)

// maxPayload bounds a frame; the largest one sent is a tag plus an 8-byte
// state.
const maxPayload = 64

var errFrameTooLarge = errors.New("frame too large")

// Variant tags, the first payload byte of state and config frames.
const (
	tagPro byte = 'P'
	tagStd byte = 'S'
)

// Frame is a very simple length-prefixed frame.
type Frame struct {
	Type    byte
	Payload []byte
}

type framedReader struct{ r io.Reader }

// framedWriter may be shared by goroutines; each frame is written whole.
type framedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func newFramedReader(r io.Reader) *framedReader { return &framedReader{r: r} }
func newFramedWriter(w io.Writer) *framedWriter { return &framedWriter{w: w} }

func (fr *framedReader) ReadFrame() (Frame, error) {
	var hdr [3]byte
	if _, err := io.ReadFull(fr.r, hdr[:]); err != nil {
		return Frame{}, err
	}
	typ := hdr[0]
	n := int(hdr[1])<<8 | int(hdr[2])
	if n > maxPayload {
		return Frame{}, errFrameTooLarge
	}
	var buf []byte
	if n > 0 {
		buf = make([]byte, n)
		if _, err := io.ReadFull(fr.r, buf); err != nil {
			return Frame{}, err
		}
	}
	return Frame{Type: typ, Payload: buf}, nil
}

func (fw *framedWriter) WriteFrame(f Frame) error {
	if len(f.Payload) > maxPayload {
		return fmt.Errorf("%w: %d", errFrameTooLarge, len(f.Payload))
	}
	// One Write per frame so a UART driver never interleaves halves.
	buf := make([]byte, 3+len(f.Payload))
	buf[0] = f.Type
	buf[1] = byte(len(f.Payload) >> 8)
	buf[2] = byte(len(f.Payload))
	copy(buf[3:], f.Payload)

	fw.mu.Lock()
	defer fw.mu.Unlock()
	_, err := fw.w.Write(buf)
	return err
}
