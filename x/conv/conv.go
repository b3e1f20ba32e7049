// Package conv formats numbers into caller buffers without fmt or strconv,
// for log lines on the MCU.
package conv

// AppendUint appends the base-10 form of n to b.
func AppendUint(b []byte, n uint64) []byte {
	var tmp [20]byte
	i := len(tmp)
	for {
		i--
		tmp[i] = byte('0' + n%10)
		n /= 10
		if n == 0 {
			break
		}
	}
	return append(b, tmp[i:]...)
}

// AppendInt appends the base-10 form of n to b.
func AppendInt(b []byte, n int64) []byte {
	if n < 0 {
		b = append(b, '-')
		return AppendUint(b, uint64(-n))
	}
	return AppendUint(b, uint64(n))
}

const hexd = "0123456789abcdef"

// AppendHex8 appends v as two lowercase hex digits.
func AppendHex8(b []byte, v uint8) []byte {
	return append(b, hexd[v>>4], hexd[v&0xF])
}
