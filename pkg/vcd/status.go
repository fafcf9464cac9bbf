package vcd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// statusText is the vCloud object status table.
var statusText = map[int]string{
	-1: "Could not be created",
	0:  "Unresolved",
	1:  "Resolved",
	2:  "Deployed",
	3:  "Suspended",
	4:  "Powered on",
	5:  "Waiting for user input",
	6:  "Unknown state",
	7:  "Unrecognized state",
	8:  "Powered off",
	9:  "Inconsistent state",
	10: "Children do not all have the same status",
	11: "Upload initiated, OVF descriptor pending",
	12: "Upload initiated, copying contents",
	13: "Upload initiated , disk contents pending",
	14: "Upload has been quarantined",
	15: "Upload quarantine period has expired",
}

// statusCodes maps the symbolic names used by the query service.
var statusCodes = map[string]int{
	"FAILED_CREATION":       -1,
	"UNRESOLVED":            0,
	"RESOLVED":              1,
	"DEPLOYED":              2,
	"SUSPENDED":             3,
	"POWERED_ON":            4,
	"WAITING_FOR_INPUT":     5,
	"UNKNOWN":               6,
	"UNRECOGNIZED":          7,
	"POWERED_OFF":           8,
	"INCONSISTENT_STATE":    9,
	"MIXED":                 10,
	"DESCRIPTOR_PENDING":    11,
	"COPYING_CONTENTS":      12,
	"DISK_CONTENTS_PENDING": 13,
	"QUARANTINED":           14,
	"QUARANTINE_EXPIRED":    15,
}

// Status is a vCloud object status as either a numeric code or a symbolic
// name.
type Status string

// UnmarshalJSON accepts numbers and strings.
func (s *Status) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return fmt.Errorf("status: %w", err)
		}
		*s = Status(v)
		return nil
	}
	*s = Status(data)
	return nil
}

// PowerState renders s the way it appears in host variables: known codes
// and names map to their description, anything else is passed through.
func (s Status) PowerState() string {
	raw := strings.TrimSpace(string(s))
	if raw == "" {
		return statusText[6]
	}
	if code, err := strconv.Atoi(raw); err == nil {
		if text, ok := statusText[code]; ok {
			return text
		}
		return statusText[7]
	}
	if code, ok := statusCodes[strings.ToUpper(raw)]; ok {
		return statusText[code]
	}
	return raw
}
