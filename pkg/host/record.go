// Package host defines the discovered virtual machine record handed to the
// inventory engine by a source.
package host

import (
	"github.com/zarrenspry/vcd-inventory/pkg/metadata"
)

// Record is one discovered virtual machine. Records are produced by a source
// and are not modified afterwards.
type Record struct {
	// ID is the unique identifier assigned by the virtualization API.
	ID string `json:"id" yaml:"id"`

	// Name is the inventory hostname.
	Name string `json:"name" yaml:"name"`

	// Address is the resolved IP address; empty when unresolved.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`

	// Metadata holds the raw, string or list valued, metadata entries.
	Metadata map[string]metadata.Value `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	PowerState string `json:"powerState" yaml:"powerState"`
	OSType     string `json:"osType" yaml:"osType"`

	Hardware Hardware `json:"hardware,omitzero" yaml:"hardware,omitempty"`
}

// Hardware holds optional hardware attributes. A nil field means the API did
// not report the attribute.
type Hardware struct {
	CPUHotAddEnabled    *bool   `json:"cpuHotAddEnabled,omitempty" yaml:"cpuHotAddEnabled,omitempty"`
	MemoryHotAddEnabled *bool   `json:"memoryHotAddEnabled,omitempty" yaml:"memoryHotAddEnabled,omitempty"`
	HardwareVersion     *string `json:"hardwareVersion,omitempty" yaml:"hardwareVersion,omitempty"`
	StorageProfile      *string `json:"storageProfile,omitempty" yaml:"storageProfile,omitempty"`
	ToolsVersion        *string `json:"toolsVersion,omitempty" yaml:"toolsVersion,omitempty"`
}

// HasAddress reports whether the record carries a resolved address.
func (r Record) HasAddress() bool {
	return r.Address != ""
}

// NormalizedMetadata returns the record's metadata in normalized form.
func (r Record) NormalizedMetadata() metadata.Normalized {
	return metadata.Normalize(r.Metadata)
}
