package protocol

import (
	"bytes"
	"errors"
	"fmt"
)

var (
	ErrBadFrame      = errors.New("bad frame")
	ErrPayloadTooBig = errors.New("payload exceeds frame size")
)

// Frame is one decoded frame
type Frame struct {
	Seq     uint8
	Payload []byte
}

// EncodeFrame appends a complete frame carrying payload to dst
func EncodeFrame(dst []byte, seq uint8, payload []byte) ([]byte, error) {
	if len(payload) > PayloadMax {
		return dst, fmt.Errorf("%w: %d > %d bytes", ErrPayloadTooBig, len(payload), PayloadMax)
	}
	start := len(dst)
	dst = append(dst, byte(len(payload)+FrameMin), seq&SeqMask|SeqDest)
	dst = append(dst, payload...)
	crc := CRC16(dst[start:])
	return append(dst, byte(crc>>8), byte(crc), SyncByte), nil
}

// FrameDecoder reassembles frames from a byte stream.
// After a corrupt frame it discards input up to the next sync byte.
type FrameDecoder struct {
	fifo     *FifoBuffer
	synced   bool
	overflow int
	dropped  int
}

// NewFrameDecoder creates a decoder buffering up to four maximal frames
func NewFrameDecoder() *FrameDecoder {
	return &FrameDecoder{
		fifo:   NewFifoBuffer(4*FrameMax + 1),
		synced: true,
	}
}

// Write buffers received bytes. It never fails; bytes that do not fit are
// counted and discarded, and the decoder resynchronizes.
func (d *FrameDecoder) Write(p []byte) (int, error) {
	n := d.fifo.Write(p)
	if n < len(p) {
		d.overflow += len(p) - n
		d.synced = false
	}
	return len(p), nil
}

// Next returns the next complete frame. ok is false when more bytes are
// needed. A non-nil error wrapping ErrBadFrame reports a discarded frame;
// decoding continues on the following call.
func (d *FrameDecoder) Next() (f Frame, ok bool, err error) {
	for {
		data := d.fifo.Data()
		if len(data) == 0 {
			return Frame{}, false, nil
		}

		if !d.synced {
			i := bytes.IndexByte(data, SyncByte)
			if i < 0 {
				d.fifo.Pop(len(data))
				return Frame{}, false, nil
			}
			d.fifo.Pop(i + 1)
			d.synced = true
			continue
		}

		if data[0] == SyncByte {
			d.fifo.Pop(1)
			continue
		}
		if len(data) < FrameMin {
			return Frame{}, false, nil
		}

		n := int(data[FramePosLen])
		if n < FrameMin || n > FrameMax {
			return Frame{}, false, d.reject("length %d", n)
		}
		seq := data[FramePosSeq]
		if seq&^SeqMask != SeqDest {
			return Frame{}, false, d.reject("sequence byte 0x%02x", seq)
		}
		if len(data) < n {
			return Frame{}, false, nil
		}
		if data[n-1] != SyncByte {
			return Frame{}, false, d.reject("missing sync byte")
		}
		want := uint16(data[n-3])<<8 | uint16(data[n-2])
		if got := CRC16(data[:n-FrameTrailerSize]); got != want {
			return Frame{}, false, d.reject("crc 0x%04x, expected 0x%04x", got, want)
		}

		payload := make([]byte, n-FrameMin)
		copy(payload, data[FrameHeaderSize:n-FrameTrailerSize])
		d.fifo.Pop(n)
		return Frame{Seq: seq, Payload: payload}, true, nil
	}
}

func (d *FrameDecoder) reject(format string, args ...any) error {
	d.synced = false
	d.dropped++
	// the leading byte is never a sync byte here, so resync makes progress
	return fmt.Errorf("%w: %s", ErrBadFrame, fmt.Sprintf(format, args...))
}

// Dropped returns the number of frames rejected so far
func (d *FrameDecoder) Dropped() int {
	return d.dropped
}

// Overflow returns the number of received bytes discarded for lack of space
func (d *FrameDecoder) Overflow() int {
	return d.overflow
}

// Reset discards buffered input
func (d *FrameDecoder) Reset() {
	d.fifo.Reset()
	d.synced = true
}
