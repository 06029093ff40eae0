package protocol

import "errors"

var (
	ErrInvalidVLQ  = errors.New("invalid VLQ encoding")
	ErrShortBuffer = errors.New("buffer too short for VLQ")
)

// AppendVLQ appends v in the variable-length encoding used by command
// payloads: 7 bits per byte, most significant first, continuation in bit 7.
// Values in [-32, 96) take one byte.
func AppendVLQ(dst []byte, v int32) []byte {
	if v < -(1<<26) || v >= 3<<26 {
		dst = append(dst, byte(v>>28)&0x7F|0x80)
	}
	if v < -(1<<19) || v >= 3<<19 {
		dst = append(dst, byte(v>>21)&0x7F|0x80)
	}
	if v < -(1<<12) || v >= 3<<12 {
		dst = append(dst, byte(v>>14)&0x7F|0x80)
	}
	if v < -(1<<5) || v >= 3<<5 {
		dst = append(dst, byte(v>>7)&0x7F|0x80)
	}
	return append(dst, byte(v)&0x7F)
}

// AppendVLQUint appends an unsigned value
func AppendVLQUint(dst []byte, v uint32) []byte {
	return AppendVLQ(dst, int32(v))
}

// DecodeVLQ reads one value from the front of *data and advances it
func DecodeVLQ(data *[]byte) (int32, error) {
	buf := *data
	if len(buf) == 0 {
		return 0, ErrShortBuffer
	}

	c := uint32(buf[0])
	v := c & 0x7F
	if c&0x60 == 0x60 {
		// negative: sign-extend the first 5 bits
		v |= ^uint32(0x1F)
	}
	i := 1
	for c&0x80 != 0 {
		if i == len(buf) {
			return 0, ErrShortBuffer
		}
		if i == 5 {
			return 0, ErrInvalidVLQ
		}
		c = uint32(buf[i])
		v = v<<7 | c&0x7F
		i++
	}
	*data = buf[i:]
	return int32(v), nil
}

// DecodeVLQUint reads one unsigned value from the front of *data
func DecodeVLQUint(data *[]byte) (uint32, error) {
	v, err := DecodeVLQ(data)
	return uint32(v), err
}
