// Package console decodes the diagnostic text a door unit prints on its
// serial port back into events.
//
// The firmware prints words and decimal payload bytes back to back with
// no separators, e.g. "WaitingSignal654321CorrectWaitingOpen      ".
// Words are recognized by keyword; digit runs are split into payload
// bytes using the known payload width.
package console
