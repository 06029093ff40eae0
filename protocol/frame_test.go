package protocol

import (
	"bytes"
	"errors"
	"testing"
)

func mustFrame(t *testing.T, seq uint8, payload []byte) []byte {
	t.Helper()
	frame, err := EncodeFrame(nil, seq, payload)
	if err != nil {
		t.Fatalf("EncodeFrame failed: %v", err)
	}
	return frame
}

func TestEncodeFrameLayout(t *testing.T) {
	frame := mustFrame(t, 3, []byte{0x01, 0x21})

	if len(frame) != 7 {
		t.Fatalf("Expected 7-byte frame, got %d: % X", len(frame), frame)
	}
	if frame[FramePosLen] != 7 {
		t.Errorf("Length byte = %d, expected 7", frame[FramePosLen])
	}
	if frame[FramePosSeq] != SeqDest|3 {
		t.Errorf("Sequence byte = 0x%02X, expected 0x13", frame[FramePosSeq])
	}
	crc := CRC16(frame[:4])
	if frame[4] != byte(crc>>8) || frame[5] != byte(crc) {
		t.Errorf("CRC bytes % X, expected %04X", frame[4:6], crc)
	}
	if frame[6] != SyncByte {
		t.Errorf("Last byte 0x%02X, expected sync", frame[6])
	}
}

func TestEncodeFrameTooLarge(t *testing.T) {
	_, err := EncodeFrame(nil, 0, make([]byte, PayloadMax+1))
	if !errors.Is(err, ErrPayloadTooBig) {
		t.Errorf("Expected ErrPayloadTooBig, got %v", err)
	}
	if _, err := EncodeFrame(nil, 0, make([]byte, PayloadMax)); err != nil {
		t.Errorf("Maximal payload rejected: %v", err)
	}
}

func TestFrameDecoderSplitWrites(t *testing.T) {
	stream := append(mustFrame(t, 0, []byte{0x01, 0x24}), mustFrame(t, 1, []byte{0x02})...)

	dec := NewFrameDecoder()
	var frames []Frame
	// one byte at a time, as a slow UART delivers them
	for _, b := range stream {
		dec.Write([]byte{b})
		for {
			f, ok, err := dec.Next()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !ok {
				break
			}
			frames = append(frames, f)
		}
	}

	if len(frames) != 2 {
		t.Fatalf("Expected 2 frames, got %d", len(frames))
	}
	if frames[0].Seq != SeqDest || !bytes.Equal(frames[0].Payload, []byte{0x01, 0x24}) {
		t.Errorf("Frame 0 = %+v", frames[0])
	}
	if frames[1].Seq != SeqDest|1 || !bytes.Equal(frames[1].Payload, []byte{0x02}) {
		t.Errorf("Frame 1 = %+v", frames[1])
	}
}

func TestFrameDecoderResyncsAfterCorruption(t *testing.T) {
	bad := mustFrame(t, 0, []byte{0x01, 0x21})
	bad[3] ^= 0x40
	good := mustFrame(t, 1, []byte{0x02})

	dec := NewFrameDecoder()
	dec.Write([]byte{0x00, 0x13})
	dec.Write(bad)
	dec.Write(good)

	var errs []error
	var frames []Frame
	for i := 0; i < 10; i++ {
		f, ok, err := dec.Next()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ok {
			break
		}
		frames = append(frames, f)
	}

	if len(errs) == 0 {
		t.Error("Expected the corrupt prefix to be reported")
	}
	for _, err := range errs {
		if !errors.Is(err, ErrBadFrame) {
			t.Errorf("Expected ErrBadFrame, got %v", err)
		}
	}
	if len(frames) != 1 || frames[0].Seq != SeqDest|1 {
		t.Fatalf("Expected only the good frame, got %+v", frames)
	}
	if dec.Dropped() != len(errs) {
		t.Errorf("Dropped() = %d, reported %d", dec.Dropped(), len(errs))
	}
}

func TestFrameDecoderBadCRC(t *testing.T) {
	frame := mustFrame(t, 0, []byte{0x01, 0x0C})
	frame[len(frame)-2] ^= 0xFF

	dec := NewFrameDecoder()
	dec.Write(frame)
	_, ok, err := dec.Next()
	if ok || !errors.Is(err, ErrBadFrame) {
		t.Fatalf("Expected ErrBadFrame, got ok=%v err=%v", ok, err)
	}

	// the trailing sync byte resynchronizes the stream
	dec.Write(mustFrame(t, 2, []byte{0x02}))
	f, ok, err := dec.Next()
	if err != nil || !ok {
		t.Fatalf("Expected frame after resync, got ok=%v err=%v", ok, err)
	}
	if f.Seq != SeqDest|2 {
		t.Errorf("Unexpected sequence 0x%02X", f.Seq)
	}
}

func TestFrameDecoderOverflow(t *testing.T) {
	dec := NewFrameDecoder()
	n, err := dec.Write(make([]byte, 8*FrameMax))
	if err != nil || n != 8*FrameMax {
		t.Fatalf("Write = %d, %v", n, err)
	}
	if dec.Overflow() == 0 {
		t.Error("Expected overflow to be counted")
	}
	dec.Reset()
	dec.Write(mustFrame(t, 0, nil))
	if _, ok, err := dec.Next(); !ok || err != nil {
		t.Errorf("Expected empty frame after reset, got ok=%v err=%v", ok, err)
	}
}

func TestNextSeq(t *testing.T) {
	if NextSeq(SeqDest) != 0x11 {
		t.Errorf("NextSeq(0x10) = 0x%02X", NextSeq(SeqDest))
	}
	if NextSeq(0x1F) != SeqDest {
		t.Errorf("NextSeq(0x1F) = 0x%02X, expected wrap to 0x10", NextSeq(0x1F))
	}
}
