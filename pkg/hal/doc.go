// Package hal abstracts the few hardware facilities the protocol engines
// consume: digital pins, one edge interrupt, a compare timer and a coarse
// delay.
//
// Engines are written against these interfaces only. Package sim supplies a
// deterministic implementation with a virtual clock, package periph drives
// real pins on Linux boards.
package hal
