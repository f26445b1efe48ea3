package suggest

import (
	"fmt"
	"sort"
)

// typePair canonicalizes an unordered entity-type pair so that affinity
// statistics are direction-agnostic.
func typePair(a, b string) [2]string {
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}
}

// stringSet builds a set from a slice, dropping duplicates.
func stringSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		set[it] = struct{}{}
	}
	return set
}

// sortedKeys returns the set's members in ascending order. Every map
// traversal that feeds output goes through this, keeping results
// byte-identical across calls.
func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// intersect returns the members of a that are also in b.
func intersect(a, b map[string]struct{}) map[string]struct{} {
	if len(b) < len(a) {
		a, b = b, a
	}
	out := make(map[string]struct{})
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

// jaccard computes |a∩b| / |a∪b|. Two empty sets score 0: the absence of
// tags is no evidence of relatedness.
func jaccard(a, b map[string]struct{}) float64 {
	union := len(a) + len(b)
	if union == 0 {
		return 0
	}
	inter := len(intersect(a, b))
	union -= inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// metadataSimilarity compares two decoded metadata objects over their shared
// keys: scalar values contribute 1 on exact match, list values contribute
// their set-overlap ratio. The result is the average over shared keys, and
// matched reports the keys that contributed anything, sorted.
func metadataSimilarity(src, cand map[string]any) (score float64, matched []string) {
	if len(src) == 0 || len(cand) == 0 {
		return 0, nil
	}
	shared := 0
	total := 0.0
	for key, sv := range src {
		cv, ok := cand[key]
		if !ok {
			continue
		}
		shared++
		sim := valueSimilarity(sv, cv)
		total += sim
		if sim > 0 {
			matched = append(matched, key)
		}
	}
	if shared == 0 {
		return 0, nil
	}
	sort.Strings(matched)
	return total / float64(shared), matched
}

// valueSimilarity scores one metadata value pair. Lists compare as sets of
// their stringified elements; scalars compare by stringified equality,
// mirroring the original store which stringifies scalars on write. A list on
// one side and a scalar on the other never match.
func valueSimilarity(a, b any) float64 {
	la, aIsList := asStringSet(a)
	lb, bIsList := asStringSet(b)
	switch {
	case aIsList && bIsList:
		return jaccard(la, lb)
	case aIsList || bIsList:
		return 0
	default:
		if fmt.Sprint(a) == fmt.Sprint(b) {
			return 1
		}
		return 0
	}
}

// asStringSet converts a JSON array value to a set of stringified elements.
func asStringSet(v any) (map[string]struct{}, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	set := make(map[string]struct{}, len(list))
	for _, item := range list {
		set[fmt.Sprint(item)] = struct{}{}
	}
	return set, true
}
