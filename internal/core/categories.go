package core

// The source of truth for category aliasing. Budgets reference categories by
// free-text label, and a handful of labels are spellings of the same bucket:
// a "Food" budget must absorb spend recorded under "Food & Dining". Both
// budget matching and presentation read this one table.
var aliasGroups = [][]string{
	{"Food", "Food & Dining"},
	{"Transport", "Transportation"},
	{"Shopping"},
	{"Entertainment"},
	{"Bills"},
}

var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string][]string {
	idx := make(map[string][]string)
	for _, group := range aliasGroups {
		for _, label := range group {
			idx[label] = group
		}
	}
	return idx
}

// MatchingCategories returns the alias group containing category, or the
// category alone when it has no known aliases. The returned slice is a copy;
// callers may mutate it.
func MatchingCategories(category string) []string {
	if group, ok := aliasIndex[category]; ok {
		out := make([]string, len(group))
		copy(out, group)
		return out
	}
	return []string{category}
}

// SameCategoryBucket reports whether two labels fall in the same alias
// group.
func SameCategoryBucket(a, b string) bool {
	if a == b {
		return true
	}
	for _, label := range MatchingCategories(a) {
		if label == b {
			return true
		}
	}
	return false
}
