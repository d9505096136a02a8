// Package msgs defines the events a door unit reports and the typed
// envelope they travel in over MQTT, websockets and capture files.
package msgs
