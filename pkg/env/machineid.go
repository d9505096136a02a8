// Package env provides facts about the host a unit runs on.
package env

import (
	"os"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID scopes the protected machine ID to this application.
const AppID = "rfdoor"

// IDLength is the number of hex digits kept from the machine ID.
const IDLength = 12

// MachineID retrieves a short ID identifying the machine. The raw machine
// ID is never exposed. Hosts without one fall back to the host name.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err == nil && len(id) >= IDLength {
		return id[:IDLength]
	}
	glog.Warningf("machine id unavailable: %v", err)
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	return AppID
}

// UnitID derives a unit ID from the machine ID and a role.
func UnitID(role string) string {
	return role + "-" + MachineID()
}
