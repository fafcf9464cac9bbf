package vcd

import "encoding/json"

// queryRecords is one page of GET /api/query?type=vm&format=records.
type queryRecords struct {
	Page     int        `json:"page"`
	PageSize int        `json:"pageSize"`
	Total    int        `json:"total"`
	Record   []vmRecord `json:"record"`
}

type vmRecord struct {
	Name           string `json:"name"`
	Href           string `json:"href"`
	Status         Status `json:"status"`
	ContainerName  string `json:"containerName"`
	IsVAppTemplate bool   `json:"isVAppTemplate"`
}

// vm is the subset of the VM document the inventory uses.
type vm struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Href           string          `json:"href"`
	Status         Status          `json:"status"`
	Section        []vmSection     `json:"section"`
	VMSpecSection  *vmSpecSection  `json:"vmSpecSection"`
	VMCapabilities *vmCapabilities `json:"vmCapabilities"`
	StorageProfile *reference      `json:"storageProfile"`
}

// vmSection holds the fields of the OVF sections the inventory reads; the
// _type discriminator tells them apart.
type vmSection struct {
	Type              string              `json:"_type"`
	NetworkConnection []networkConnection `json:"networkConnection"`
	OSType            string              `json:"osType"`
	VMwareTools       *struct {
		Version string `json:"version"`
	} `json:"vmWareTools"`
}

type networkConnection struct {
	Network                string `json:"network"`
	NetworkConnectionIndex int    `json:"networkConnectionIndex"`
	IPAddress              string `json:"ipAddress"`
	IsConnected            bool   `json:"isConnected"`
}

type vmSpecSection struct {
	OSType          string `json:"osType"`
	HardwareVersion *struct {
		Value string `json:"value"`
	} `json:"hardwareVersion"`
}

type vmCapabilities struct {
	MemoryHotAddEnabled *bool `json:"memoryHotAddEnabled"`
	CPUHotAddEnabled    *bool `json:"cpuHotAddEnabled"`
}

type reference struct {
	Name string `json:"name"`
	Href string `json:"href"`
}

// metadataDoc is GET {vm}/metadata.
type metadataDoc struct {
	MetadataEntry []metadataEntry `json:"metadataEntry"`
}

type metadataEntry struct {
	Key        string `json:"key"`
	TypedValue struct {
		Type  string          `json:"_type"`
		Value json.RawMessage `json:"value"`
	} `json:"typedValue"`
}

const (
	sectionNetworkConnection = "NetworkConnectionSectionType"
	sectionOperatingSystem   = "OperatingSystemSectionType"
	sectionRuntimeInfo       = "RuntimeInfoSectionType"
)
