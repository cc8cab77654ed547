package utils

// SliceToSet builds a membership set from a slice so callers can test
// containment without rescanning.
func SliceToSet[T comparable](slice []T) map[T]struct{} {
	set := make(map[T]struct{}, len(slice))
	for _, item := range slice {
		set[item] = struct{}{}
	}
	return set
}
