package domain

import "errors"

// MaxSupplierLevel is the highest hierarchy level a network may occupy
// while still acting as a supplier. A supplier at this level or above
// is rejected, bounding dependent chains to five populated levels.
const MaxSupplierLevel = 4

var (
	// ErrSupplierNotAllowedForFactory is returned when a factory candidate names a supplier
	ErrSupplierNotAllowedForFactory = errors.New("a supplier cannot be set for a Factory network")

	// ErrHierarchyDepthExceeded is returned when the chosen supplier already sits at the maximum level
	ErrHierarchyDepthExceeded = errors.New("hierarchy depth limit reached: supplier is already at the maximum level")

	// ErrInvalidNetworkType is returned for an unknown network type
	ErrInvalidNetworkType = errors.New("invalid network type")
)

// ValidateHierarchy enforces the supplier-graph invariants for a
// candidate network. It is pure: the caller resolves the supplier
// (when one is referenced) and passes it in. Both create and update
// paths must call this before persisting whenever the type or the
// supplier changes.
func ValidateHierarchy(networkType NetworkType, supplier *Network) error {
	if !networkType.IsValid() {
		return ErrInvalidNetworkType
	}
	if networkType == NetworkTypeFactory && supplier != nil {
		return ErrSupplierNotAllowedForFactory
	}
	if supplier != nil && supplier.NetworkLevel >= MaxSupplierLevel {
		return ErrHierarchyDepthExceeded
	}
	return nil
}

// AssignLevel derives a network's hierarchy level at creation time.
// Factories anchor the hierarchy at level 0; anything supplied by an
// existing network sits one level below it; a non-factory without a
// supplier starts at level 1. Must run only after ValidateHierarchy
// has accepted the candidate. The level is immutable afterwards.
func AssignLevel(networkType NetworkType, supplier *Network) int {
	if networkType == NetworkTypeFactory {
		return 0
	}
	if supplier != nil {
		return supplier.NetworkLevel + 1
	}
	return 1
}
