package serial

import "context"

// WriteByte transmits b and re-arms the receiver, as the firmware's putc.
func (e *Engine) WriteByte(b byte) error {
	e.TransmitByte(b)
	e.ArmReceive()
	return nil
}

// Write implements io.Writer.
func (e *Engine) Write(p []byte) (int, error) {
	for _, b := range p {
		e.WriteByte(b)
	}
	return len(p), nil
}

// WriteString transmits s byte by byte.
func (e *Engine) WriteString(s string) (int, error) {
	for i := 0; i < len(s); i++ {
		e.WriteByte(s[i])
	}
	return len(s), nil
}

// WriteLine transmits text for human readers. No terminator is added.
func (e *Engine) WriteLine(text string) {
	e.WriteString(text)
}

// WriteDecimal prints b in decimal without padding.
func (e *Engine) WriteDecimal(b byte) {
	if b >= 100 {
		e.WriteByte('0' + b/100)
	}
	if b >= 10 {
		e.WriteByte('0' + b%100/10)
	}
	e.WriteByte('0' + b%10)
}

// Read implements io.Reader. It blocks until at least one byte arrived
// and returns whatever is ready, which is at most one byte.
func (e *Engine) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b, err := e.ReadByte(context.Background())
	if err != nil {
		return 0, err
	}
	p[0] = b
	return 1, nil
}
