package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/spicyjump/storefront/services/catalog/domain/models"
	"github.com/spicyjump/storefront/services/catalog/domain/repositories"
)

// CategoryService serves the read-only category tree.
type CategoryService struct {
	categories repositories.CategoryRepository
}

func NewCategoryService(categories repositories.CategoryRepository) *CategoryService {
	return &CategoryService{categories: categories}
}

// Tree returns the root categories with their descendants attached.
func (s *CategoryService) Tree(ctx context.Context) ([]*models.Category, error) {
	all, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return models.BuildTree(all), nil
}

func (s *CategoryService) Get(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// Children returns the direct children of id. The parent must exist.
func (s *CategoryService) Children(ctx context.Context, id uuid.UUID) ([]*models.Category, error) {
	if _, err := s.categories.GetByID(ctx, id); err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	children, err := s.categories.Children(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list child categories: %w", err)
	}
	return children, nil
}

// Search matches keyword against both names. A blank keyword matches nothing.
func (s *CategoryService) Search(ctx context.Context, keyword string) ([]*models.Category, error) {
	if strings.TrimSpace(keyword) == "" {
		return []*models.Category{}, nil
	}
	found, err := s.categories.Search(ctx, keyword)
	if err != nil {
		return nil, fmt.Errorf("search categories: %w", err)
	}
	return found, nil
}
