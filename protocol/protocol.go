// Package protocol implements the framed serial link between a host-side
// controller and a remote lamp/sensor panel.
//
// A frame is
//
//	len | seq | payload... | crc16 hi | crc16 lo | 0x7E
//
// where len counts the whole frame, seq carries 0x10 in its high nibble and
// a 4-bit sequence number in its low nibble, and the payload is a list of
// VLQ-encoded commands.
package protocol

// Version of the panel link, reported by identify_response
const Version uint32 = 1

// Frame layout
const (
	FrameHeaderSize  = 2
	FrameTrailerSize = 3
	FrameMin         = FrameHeaderSize + FrameTrailerSize
	FrameMax         = 64
	PayloadMax       = FrameMax - FrameMin

	FramePosLen = 0
	FramePosSeq = 1

	SyncByte = 0x7E
	SeqDest  = 0x10
	SeqMask  = 0x0F
)

// NextSeq returns the sequence byte following seq
func NextSeq(seq uint8) uint8 {
	return ((seq + 1) & SeqMask) | SeqDest
}
