package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// Category groups products. Roots have no parent.
type Category struct {
	ID        uuid.UUID
	ParentID  *uuid.UUID
	Name      string
	NameEn    string
	SortOrder int
	CreatedAt time.Time
	Children  []*Category
}

// BuildTree links a flat category list into trees and returns the roots.
// Siblings are ordered by SortOrder, then Name. Categories whose parent is
// not in the list are treated as roots.
func BuildTree(flat []*Category) []*Category {
	byID := make(map[uuid.UUID]*Category, len(flat))
	for _, c := range flat {
		c.Children = nil
		byID[c.ID] = c
	}

	var roots []*Category
	for _, c := range flat {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok && parent != c {
				parent.Children = append(parent.Children, c)
				continue
			}
		}
		roots = append(roots, c)
	}

	sortCategories(roots)
	return roots
}

func sortCategories(cs []*Category) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].SortOrder != cs[j].SortOrder {
			return cs[i].SortOrder < cs[j].SortOrder
		}
		return cs[i].Name < cs[j].Name
	})
	for _, c := range cs {
		sortCategories(c.Children)
	}
}
