package door

// ValidPayload reports whether buf counts down to 1: buf[i] == len(buf)-i.
func ValidPayload(buf []byte) bool {
	for i, b := range buf {
		if int(b) != len(buf)-i {
			return false
		}
	}
	return true
}

// Payload builds the key payload of width bytes: width, width-1, ..., 1.
func Payload(width int) []byte {
	buf := make([]byte, width)
	for i := range buf {
		buf[i] = byte(width - i)
	}
	return buf
}
