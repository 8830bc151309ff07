// Package util contains small helpers shared by the sweep packages.
package util

import (
	"github.com/rs/xid"
)

// GenScanID generates a scan ID string.
// IDs are globally unique and sortable.
func GenScanID() string {
	id := xid.New()
	return id.String()
}
