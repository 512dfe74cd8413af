package model

import (
	"sort"
	"strings"
)

type Category struct {
	ID       int64
	Label    string
	ParentID *int64
}

// CategoryTree indexes a category forest for label resolution.
type CategoryTree struct {
	byID     map[int64]*Category
	children map[int64][]*Category
	roots    []*Category
}

func NewCategoryTree(categories []*Category) *CategoryTree {
	t := &CategoryTree{
		byID:     make(map[int64]*Category, len(categories)),
		children: make(map[int64][]*Category),
	}
	for _, c := range categories {
		t.byID[c.ID] = c
	}
	for _, c := range categories {
		if c.ParentID == nil || t.byID[*c.ParentID] == nil {
			t.roots = append(t.roots, c)
			continue
		}
		t.children[*c.ParentID] = append(t.children[*c.ParentID], c)
	}
	sortByLabel(t.roots)
	for _, list := range t.children {
		sortByLabel(list)
	}
	return t
}

func sortByLabel(list []*Category) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Label == list[j].Label {
			return list[i].ID < list[j].ID
		}
		return list[i].Label < list[j].Label
	})
}

// Path returns the labels from the root down to the category, or nil if id is unknown.
func (t *CategoryTree) Path(id int64) []string {
	var path []string
	seen := make(map[int64]bool)
	for c := t.byID[id]; c != nil; {
		if seen[c.ID] {
			break
		}
		seen[c.ID] = true
		path = append(path, c.Label)
		if c.ParentID == nil {
			break
		}
		c = t.byID[*c.ParentID]
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// FullLabel joins Path with sep after applying escape to every component.
func (t *CategoryTree) FullLabel(id int64, sep string, escape func(string) string) string {
	path := t.Path(id)
	if escape != nil {
		for i := range path {
			path[i] = escape(path[i])
		}
	}
	return strings.Join(path, sep)
}

// Walk visits categories in pre-order, siblings sorted by label.
func (t *CategoryTree) Walk(fn func(c *Category) error) error {
	var visit func(list []*Category) error
	visit = func(list []*Category) error {
		for _, c := range list {
			if err := fn(c); err != nil {
				return err
			}
			if err := visit(t.children[c.ID]); err != nil {
				return err
			}
		}
		return nil
	}
	return visit(t.roots)
}
