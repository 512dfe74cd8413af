package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/hance08/tally/internal/constants"
	"github.com/hance08/tally/internal/model"
	"github.com/hance08/tally/internal/store"
)

type CategoryService struct {
	repo store.Repository
}

func NewCategoryService(repo store.Repository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (cs *CategoryService) CreateCategory(ctx context.Context, label string, parentID *int64) (int64, error) {
	label = strings.TrimSpace(label)
	if label == "" || len(label) > constants.MaxLabelLen {
		return 0, fmt.Errorf("%w: category label must be 1 to %d characters", ErrInvalidInput, constants.MaxLabelLen)
	}
	return cs.repo.CreateCategory(ctx, label, parentID)
}

// EnsurePath returns the id of the category at the end of path, creating missing levels.
// Path components are separated by ':'.
func (cs *CategoryService) EnsurePath(ctx context.Context, path string) (int64, error) {
	categories, err := cs.repo.GetAllCategories(ctx)
	if err != nil {
		return 0, err
	}

	var parentID *int64
	var id int64
	for _, label := range strings.Split(path, constants.CategorySeparator) {
		label = strings.TrimSpace(label)
		found := false
		for _, c := range categories {
			if c.Label == label && sameParent(c.ParentID, parentID) {
				id, found = c.ID, true
				break
			}
		}
		if !found {
			if id, err = cs.CreateCategory(ctx, label, parentID); err != nil {
				return 0, err
			}
			categories = append(categories, &model.Category{ID: id, Label: label, ParentID: parentID})
		}
		parent := id
		parentID = &parent
	}
	return id, nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (cs *CategoryService) GetAllCategories(ctx context.Context) ([]*model.Category, error) {
	return cs.repo.GetAllCategories(ctx)
}

// CreateTag returns the id of a new tag; an existing label is an ErrDuplicate.
func (cs *CategoryService) CreateTag(ctx context.Context, label string) (int64, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return 0, fmt.Errorf("%w: tag label can't be empty", ErrInvalidInput)
	}
	return cs.repo.CreateTag(ctx, label)
}
