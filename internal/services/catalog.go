package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/siplanskills/backend/internal/apierr"
	"github.com/siplanskills/backend/internal/logger"
	"github.com/siplanskills/backend/internal/repos"
	"github.com/siplanskills/backend/internal/types"
)

type CatalogService interface {
	ListSystems(ctx context.Context) ([]*types.System, error)
	ListProductsBySystem(ctx context.Context, systemID uuid.UUID) ([]*types.Product, error)
	ListLessonsByProduct(ctx context.Context, productID uuid.UUID) ([]*types.Lesson, error)
	GetLesson(ctx context.Context, lessonID uuid.UUID) (*types.Lesson, error)
}

type catalogService struct {
	db          *gorm.DB
	log         *logger.Logger
	systemRepo  repos.SystemRepo
	productRepo repos.ProductRepo
	lessonRepo  repos.LessonRepo
}

func NewCatalogService(
	db *gorm.DB,
	log *logger.Logger,
	systemRepo repos.SystemRepo,
	productRepo repos.ProductRepo,
	lessonRepo repos.LessonRepo,
) CatalogService {
	serviceLog := log.With("service", "CatalogService")
	return &catalogService{
		db:          db,
		log:         serviceLog,
		systemRepo:  systemRepo,
		productRepo: productRepo,
		lessonRepo:  lessonRepo,
	}
}

func (s *catalogService) ListSystems(ctx context.Context) ([]*types.System, error) {
	systems, err := s.systemRepo.List(ctx, nil)
	if err != nil {
		return nil, apierr.DataUnavailable(fmt.Errorf("list systems: %w", err))
	}
	return systems, nil
}

func (s *catalogService) ListProductsBySystem(ctx context.Context, systemID uuid.UUID) ([]*types.Product, error) {
	if systemID == uuid.Nil {
		return nil, apierr.InvalidArgument(fmt.Errorf("system id is required"))
	}
	products, err := s.productRepo.ListBySystemID(ctx, nil, systemID)
	if err != nil {
		return nil, apierr.DataUnavailable(fmt.Errorf("list products: %w", err))
	}
	return products, nil
}

// ListLessonsByProduct returns the ordered lessons of a product. An
// unknown product yields an empty list, not an error.
func (s *catalogService) ListLessonsByProduct(ctx context.Context, productID uuid.UUID) ([]*types.Lesson, error) {
	if productID == uuid.Nil {
		return nil, apierr.InvalidArgument(fmt.Errorf("product id is required"))
	}
	lessons, err := s.lessonRepo.ListByProductID(ctx, nil, productID)
	if err != nil {
		return nil, apierr.DataUnavailable(fmt.Errorf("list lessons: %w", err))
	}
	return lessons, nil
}

func (s *catalogService) GetLesson(ctx context.Context, lessonID uuid.UUID) (*types.Lesson, error) {
	if lessonID == uuid.Nil {
		return nil, apierr.InvalidArgument(fmt.Errorf("lesson id is required"))
	}
	lessons, err := s.lessonRepo.GetByIDs(ctx, nil, []uuid.UUID{lessonID})
	if err != nil {
		return nil, apierr.DataUnavailable(fmt.Errorf("fetch lesson: %w", err))
	}
	if len(lessons) == 0 {
		return nil, apierr.NotFound(fmt.Errorf("lesson not found"))
	}
	return lessons[0], nil
}
