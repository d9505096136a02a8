// Package serial implements an asynchronous serial transport driven only
// by one compare timer and one edge interrupt.
//
// Frames are 8N1: a start bit (space), 8 data bits LSB first and a stop bit
// (mark). Transmit is interrupt driven with the caller busy-waiting for
// completion. Receive starts on the falling edge of the start bit, samples
// at bit centres and deposits the byte into a single-slot mailbox.
package serial
