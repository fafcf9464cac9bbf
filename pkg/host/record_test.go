package host

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"k8s.io/utils/ptr"

	"github.com/zarrenspry/vcd-inventory/pkg/metadata"
)

func sampleRecord() Record {
	return Record{
		ID:      "urn:vcloud:vm:1",
		Name:    "web_1",
		Address: "192.168.1.10",
		Metadata: map[string]metadata.Value{
			"env":  metadata.Scalar("Development"),
			"type": metadata.List("web", "frontend"),
		},
		PowerState: "Powered on",
		OSType:     "ubuntu64Guest",
		Hardware: Hardware{
			CPUHotAddEnabled: ptr.To(true),
			HardwareVersion:  ptr.To("vmx-19"),
		},
	}
}

func TestRecord_JSONRoundTrip(t *testing.T) {
	rec := sampleRecord()

	b, err := json.Marshal(rec)
	require.NoError(t, err)

	var back Record
	require.NoError(t, json.Unmarshal(b, &back))

	assert.Equal(t, rec.ID, back.ID)
	assert.Equal(t, rec.Address, back.Address)
	assert.Equal(t, rec.Hardware, back.Hardware)
	assert.Nil(t, back.Hardware.MemoryHotAddEnabled)
	assert.Equal(t, rec.NormalizedMetadata(), back.NormalizedMetadata())
	assert.True(t, back.Metadata["type"].IsList())
}

func TestRecord_YAMLRoundTrip(t *testing.T) {
	rec := sampleRecord()

	b, err := yaml.Marshal(rec)
	require.NoError(t, err)

	var back Record
	require.NoError(t, yaml.Unmarshal(b, &back))

	assert.Equal(t, rec.Name, back.Name)
	assert.Equal(t, rec.Hardware, back.Hardware)
	assert.Equal(t, rec.NormalizedMetadata(), back.NormalizedMetadata())
}

func TestRecord_HasAddress(t *testing.T) {
	rec := sampleRecord()
	assert.True(t, rec.HasAddress())

	rec.Address = ""
	assert.False(t, rec.HasAddress())
}
