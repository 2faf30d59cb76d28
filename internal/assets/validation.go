package assets

import (
	"fmt"
	"strings"
)

// ValidateAssetName rejects names that are empty or contain path separators
// or dots, so a name always maps to exactly one file in its directory.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}
