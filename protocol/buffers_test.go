package protocol

import (
	"bytes"
	"testing"
)

func TestFifoBuffer(t *testing.T) {
	fifo := NewFifoBuffer(8)

	if fifo.Free() != 7 {
		t.Errorf("Expected 7 bytes free, got %d", fifo.Free())
	}

	if n := fifo.Write([]byte{1, 2, 3, 4, 5}); n != 5 {
		t.Errorf("Expected to write 5 bytes, wrote %d", n)
	}
	if fifo.Available() != 5 {
		t.Errorf("Expected 5 bytes available, got %d", fifo.Available())
	}

	fifo.Pop(3)
	if !bytes.Equal(fifo.Data(), []byte{4, 5}) {
		t.Errorf("After pop, expected [4 5], got %v", fifo.Data())
	}

	// wraps around the end of the ring
	if n := fifo.Write([]byte{6, 7, 8, 9, 10, 11}); n != 5 {
		t.Errorf("Expected to write 5 bytes into a 7-byte ring holding 2, wrote %d", n)
	}
	if !bytes.Equal(fifo.Data(), []byte{4, 5, 6, 7, 8, 9, 10}) {
		t.Errorf("Wrapped data mismatch: %v", fifo.Data())
	}
	if fifo.Free() != 0 {
		t.Errorf("Expected full buffer, %d free", fifo.Free())
	}

	fifo.Pop(100)
	if fifo.Available() != 0 {
		t.Errorf("Expected empty buffer, got %d bytes", fifo.Available())
	}
}

func TestFifoBufferReset(t *testing.T) {
	fifo := NewFifoBuffer(4)
	fifo.Write([]byte{1, 2})
	fifo.Reset()

	if fifo.Available() != 0 || len(fifo.Data()) != 0 {
		t.Error("Reset should empty the buffer")
	}
}
