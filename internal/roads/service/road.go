package service

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	roadserrors "roadbook/internal/roads/errors"
	"roadbook/internal/roads/repository"
	"roadbook/pkg/config"
	apperrors "roadbook/pkg/errors"
	"roadbook/pkg/model"
)

type RoadService interface {
	Create(ctx context.Context, road *model.Road) error
	GetByID(ctx context.Context, id string) (*model.Road, error)
	GetAll(ctx context.Context, search string, limit int, offset int64) ([]*model.Road, int64, error)
	Update(ctx context.Context, id string, updates *model.RoadUpdate) error
	Delete(ctx context.Context, id string) error
}

type roadService struct {
	repo     repository.RoadRepository
	validate *validator.Validate
	cfg      *config.Config
}

func NewRoadService(repo repository.RoadRepository, cfg *config.Config) RoadService {
	return &roadService{
		repo:     repo,
		validate: validator.New(),
		cfg:      cfg,
	}
}

func (s *roadService) Create(ctx context.Context, road *model.Road) error {
	road.Name = strings.TrimSpace(road.Name)
	if road.HourlyCapacity <= 0 {
		road.HourlyCapacity = s.cfg.DefaultHourlyCapacity
	}
	if err := s.validate.Struct(road); err != nil {
		s.cfg.Log.Warn("Road validation failed", "error", err)
		return apperrors.Validation("Road validation failed", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, road); err != nil {
		s.cfg.Log.Error("Failed to create road", "error", err)
		return apperrors.Internal("Failed to create road", err)
	}

	s.cfg.Log.Info("Road created", "id", road.ID, "name", road.Name, "hourly_capacity", road.HourlyCapacity)
	return nil
}

func (s *roadService) GetByID(ctx context.Context, id string) (*model.Road, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Road ID cannot be empty")
	}

	road, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roadserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Road", id)
		}
		if errors.Is(err, roadserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid road ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve road", err)
	}
	return road, nil
}

func (s *roadService) GetAll(ctx context.Context, search string, limit int, offset int64) ([]*model.Road, int64, error) {
	var count int64
	var roads []*model.Road
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountAll(ctx, search)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count roads", "error", errCount)
			errCount = apperrors.Internal("Failed to count roads", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		roads, errFind = s.repo.FindAll(ctx, search, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list roads", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve roads", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return roads, count, nil
}

func (s *roadService) Update(ctx context.Context, id string, updates *model.RoadUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Road ID cannot be empty")
	}
	if err := s.validate.Struct(updates); err != nil {
		s.cfg.Log.Warn("Road update validation failed", "id", id, "error", err)
		return apperrors.Validation("Invalid update input", map[string]any{"error": err.Error()})
	}

	existing, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	merged := s.merge(existing, updates)
	if err := s.repo.Update(ctx, id, merged); err != nil {
		if errors.Is(err, roadserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Road", id)
		}
		s.cfg.Log.Error("Failed to update road", "id", id, "error", err)
		return apperrors.Internal("Failed to update road", err)
	}

	s.cfg.Log.Info("Road updated", "id", id)
	return nil
}

func (s *roadService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Road ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, roadserrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Road", id)
		}
		if errors.Is(err, roadserrors.ErrInvalidID) {
			return apperrors.InvalidInput("Invalid road ID format")
		}
		return apperrors.Internal("Failed to delete road", err)
	}

	s.cfg.Log.Info("Road deleted", "id", id)
	return nil
}

func (s *roadService) merge(existing *model.Road, updates *model.RoadUpdate) *model.Road {
	merged := *existing

	if updates.Name != "" {
		merged.Name = strings.TrimSpace(updates.Name)
	}
	if updates.RoadType != "" {
		merged.RoadType = updates.RoadType
	}
	if updates.Country != nil {
		merged.Country = *updates.Country
	}
	if updates.Region != nil {
		merged.Region = *updates.Region
	}
	if updates.HourlyCapacity != nil {
		merged.HourlyCapacity = *updates.HourlyCapacity
	}
	if updates.Geometry != nil {
		merged.Geometry = *updates.Geometry
	}

	return &merged
}
