// Package registry holds the namespaced identifier type and the lookup
// tables for skills, stats and traits. Lookups report "not found" instead of
// failing: persisted rows may reference identifiers from content packs that
// are no longer installed, and callers decide whether that is fatal.
package registry

import (
	"strings"

	"github.com/dmitrijs2005/skillkeeper/internal/common"
)

// DefaultNamespace is assumed when an identifier string carries no namespace.
const DefaultNamespace = "core"

// ID is a namespaced identifier such as "core:strength".
type ID struct {
	Namespace string
	Key       string
}

func NewID(namespace, key string) ID {
	return ID{Namespace: namespace, Key: key}
}

// ParseID parses "namespace:key". A bare "key" is placed in
// DefaultNamespace. Empty strings and extra separators are rejected.
func ParseID(s string) (ID, error) {
	if s == "" {
		return ID{}, common.ErrInvalidID
	}
	parts := strings.Split(s, ":")
	switch len(parts) {
	case 1:
		return ID{Namespace: DefaultNamespace, Key: parts[0]}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return ID{}, common.ErrInvalidID
		}
		return ID{Namespace: parts[0], Key: parts[1]}, nil
	default:
		return ID{}, common.ErrInvalidID
	}
}

func (id ID) String() string {
	return id.Namespace + ":" + id.Key
}

func (id ID) IsZero() bool {
	return id.Namespace == "" && id.Key == ""
}
