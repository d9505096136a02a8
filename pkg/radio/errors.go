package radio

import "errors"

var (
	// ErrInvalidParams indicates params that can't be encoded.
	ErrInvalidParams = errors.New("invalid radio params")
	// ErrInvalidMode indicates a mode SetMode can't switch to.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrPayloadSize indicates a buffer not matching the payload width.
	ErrPayloadSize = errors.New("payload size mismatch")
	// ErrDataReadyStuck indicates DR stayed asserted after the payload
	// was clocked out.
	ErrDataReadyStuck = errors.New("data ready stuck")
)
