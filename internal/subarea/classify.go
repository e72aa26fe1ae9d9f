// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package subarea

const (
	// LabelMulti marks a reference researcher with several sub-areas, none
	// of them the current one.
	LabelMulti = "multi"

	// LabelExternal marks a co-author absent from the reference set.
	LabelExternal = "external"
)

// Classify labels id relative to the area being built: the current area
// when id lists it, otherwise id's only area, otherwise multi, and
// external when id is not a reference researcher.
func Classify(id string, refs *ReferenceSet, current string) string {
	if refs == nil {
		return LabelExternal
	}
	labels := refs.Labels(id)
	if labels == nil {
		return LabelExternal
	}
	for _, l := range labels {
		if l == current {
			return current
		}
	}
	if len(labels) == 1 {
		return labels[0]
	}
	return LabelMulti
}

// IsGeneric reports whether label is external or multi.
func IsGeneric(label string) bool {
	return label == LabelExternal || label == LabelMulti
}

// MergeLabel combines a node's existing label with a newly derived one. A
// generic label is upgraded to a specific one; a specific label is never
// replaced.
func MergeLabel(existing, incoming string) string {
	if existing == "" {
		return incoming
	}
	if IsGeneric(existing) && incoming != "" && !IsGeneric(incoming) {
		return incoming
	}
	return existing
}
