// Package radio drives an RF-24G (nRF2401) ShockBurst front-end over a
// bit-banged three wire interface: CLK, a bidirectional DATA line and the
// CE/CS control lines, with DR signalling a received payload.
//
// The front-end has no addressable registers. Configuration is a 112 bit
// word shifted in while CS is high and latched when CS falls; switching
// between transmit and receive shifts a single RXEN bit the same way.
// Packets are shifted in (transmit) or out (receive) MSB first while CE is
// high.
package radio
