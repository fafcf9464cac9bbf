// Package hostvars projects a host record onto the variables exposed to the
// orchestration tool for that host.
package hostvars

import "github.com/zarrenspry/vcd-inventory/pkg/host"

// Variable names emitted for every host.
const (
	KeyAnsibleHost = "ansible_host"
	KeyOSType      = "os_type"
	KeyPowerState  = "power_state"
)

// Variable names emitted only when the record carries the attribute.
const (
	KeyCPUHotAddEnabled    = "cpu_hot_add_enabled"
	KeyMemoryHotAddEnabled = "memory_hot_add_enabled"
	KeyHardwareVersion     = "hardware_version"
	KeyStorageProfile      = "storage_profile"
	KeyToolsVersion        = "tools_version"
)

// Vars is the variable map of a single host.
type Vars map[string]any

// Project returns the variables for rec. os_type and power_state are always
// present; ansible_host is omitted when the address is unresolved, and
// hardware attributes are omitted when absent from the record.
func Project(rec host.Record) Vars {
	v := Vars{
		KeyOSType:     rec.OSType,
		KeyPowerState: rec.PowerState,
	}
	if rec.HasAddress() {
		v[KeyAnsibleHost] = rec.Address
	}

	hw := rec.Hardware
	if hw.CPUHotAddEnabled != nil {
		v[KeyCPUHotAddEnabled] = *hw.CPUHotAddEnabled
	}
	if hw.MemoryHotAddEnabled != nil {
		v[KeyMemoryHotAddEnabled] = *hw.MemoryHotAddEnabled
	}
	if hw.HardwareVersion != nil {
		v[KeyHardwareVersion] = *hw.HardwareVersion
	}
	if hw.StorageProfile != nil {
		v[KeyStorageProfile] = *hw.StorageProfile
	}
	if hw.ToolsVersion != nil {
		v[KeyToolsVersion] = *hw.ToolsVersion
	}
	return v
}
