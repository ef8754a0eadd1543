package properties

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// PrimaryCategory always sorts first when properties are grouped.
const PrimaryCategory = "Typography"

// CategoryGroup is the set of properties shown under one heading.
type CategoryGroup struct {
	Category   string             `json:"category"`
	Properties []EditableProperty `json:"properties"`
}

// Group buckets properties by category. PrimaryCategory comes first and the
// remaining categories follow in collation order. Properties keep their
// relative order inside a group.
func Group(props []EditableProperty) []CategoryGroup {
	index := make(map[string]int)
	var groups []CategoryGroup

	for _, p := range props {
		cat := p.Category
		if cat == "" {
			cat = DefaultCategory
		}
		i, ok := index[cat]
		if !ok {
			i = len(groups)
			index[cat] = i
			groups = append(groups, CategoryGroup{Category: cat})
		}
		groups[i].Properties = append(groups[i].Properties, p)
	}

	col := collate.New(language.English, collate.IgnoreCase)
	sort.SliceStable(groups, func(i, j int) bool {
		a, b := groups[i].Category, groups[j].Category
		if a == PrimaryCategory || b == PrimaryCategory {
			return a == PrimaryCategory && b != PrimaryCategory
		}
		return col.CompareString(a, b) < 0
	})

	return groups
}
