package mqtt

import "errors"

// ErrPublishTimeout is returned when the broker did not complete a
// publish in time.
var ErrPublishTimeout = errors.New("mqtt publish timeout")
