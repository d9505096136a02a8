// Package door is the access-control application running on the units:
// the receiver polls the radio and opens the door for a valid payload,
// the handheld sends the payload while its button is held.
//
// Both sides are framework controllers. They report what they do as
// msgs.DoorEvent messages posted to the loop, and the receiver keeps
// printing its progress on the serial console as the firmware did.
package door
