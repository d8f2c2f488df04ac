// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

//go:build !windows

package convert

import (
	"os"

	"github.com/google/renameio/v2"
)

// writeFileAtomic replaces filename via a temp file in the same directory
// and a rename, so readers never see a truncated file. The directory must
// already exist.
func writeFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return renameio.WriteFile(filename, data, perm)
}
