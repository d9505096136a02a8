package serial

import "sync/atomic"

const mailFull uint32 = 0x100

// mailbox is a single-slot handoff between the timer handler and the
// reader. A deposit over an unread byte replaces it.
type mailbox struct {
	slot     uint32
	overruns uint32
}

func (m *mailbox) deposit(b byte) {
	if atomic.SwapUint32(&m.slot, mailFull|uint32(b))&mailFull != 0 {
		atomic.AddUint32(&m.overruns, 1)
	}
}

func (m *mailbox) take() (byte, bool) {
	v := atomic.SwapUint32(&m.slot, 0)
	return byte(v), v&mailFull != 0
}

func (m *mailbox) overrunCount() int {
	return int(atomic.LoadUint32(&m.overruns))
}
