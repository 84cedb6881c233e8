package cli

import (
	"fmt"
	"os"

	"github.com/roach88/taylorlab/internal/store"
)

// openExisting opens a history database for reading. Unlike analyze --db,
// it refuses to create a missing file.
func openExisting(opts *RootOptions, path string) (*store.Store, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found: %s", path)
		}
		return nil, err
	}
	opts.logger().Debug("opening database", "path", path)
	return store.Open(path)
}
