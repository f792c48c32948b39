package root

import (
	"fmt"
	"strconv"

	"github.com/omarnaeem59-commits/Modern-Boostly/internal/engine"
)

// resolveRef maps a 1-based list position or a literal id to an id in ids.
func resolveRef(ref string, ids []string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(ids) {
			return "", fmt.Errorf("%w: no entry #%d", engine.ErrNotFound, n)
		}
		return ids[n-1], nil
	}
	for _, id := range ids {
		if id == ref {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %s", engine.ErrNotFound, ref)
}
