package cache

import (
	"encoding/json"

	"github.com/google/uuid"
)

// namespace scopes fingerprints to this tool.
var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/zarrenspry/vcd-inventory/cache"))

// Target identifies what an inventory run queries. Two runs share cache
// entries only when every field matches.
type Target struct {
	Host       string `json:"host"`
	Org        string `json:"org"`
	VDC        string `json:"vdc"`
	User       string `json:"user"`
	APIVersion string `json:"api_version"`
	CIDR       string `json:"cidr"`
	Source     string `json:"source"`
}

// Fingerprint returns a stable name-based UUID for t.
func Fingerprint(t Target) string {
	// struct fields marshal in declaration order, which makes the encoding
	// canonical; json escaping keeps field boundaries unambiguous.
	b, _ := json.Marshal(t)
	return uuid.NewSHA1(namespace, b).String()
}
