package service

import (
	"context"
	"errors"
	"sync"

	slotserrors "roadbook/internal/slots/errors"
	"roadbook/internal/slots/repository"
	"roadbook/pkg/config"
	apperrors "roadbook/pkg/errors"
	"roadbook/pkg/model"
)

type SlotService interface {
	GetByID(ctx context.Context, id string) (*model.Slot, error)
	GetFiltered(ctx context.Context, filter repository.SlotFilter, limit int, offset int64) ([]*model.Slot, int64, error)
	UpdateCapacity(ctx context.Context, id string, updates *model.SlotUpdate) error
	Delete(ctx context.Context, id string) error
}

type slotService struct {
	repo repository.SlotRepository
	cfg  *config.Config
}

func NewSlotService(repo repository.SlotRepository, cfg *config.Config) SlotService {
	return &slotService{
		repo: repo,
		cfg:  cfg,
	}
}

func (s *slotService) GetByID(ctx context.Context, id string) (*model.Slot, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Slot ID cannot be empty")
	}

	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, slotserrors.ErrNotFound) || errors.Is(err, slotserrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Slot", id)
		}
		return nil, apperrors.Internal("Failed to retrieve slot", err)
	}
	return slot, nil
}

func (s *slotService) GetFiltered(ctx context.Context, filter repository.SlotFilter, limit int, offset int64) ([]*model.Slot, int64, error) {
	var count int64
	var slots []*model.Slot
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountFiltered(ctx, filter)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count slots", "error", errCount)
			errCount = apperrors.Internal("Failed to count slots", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		slots, errFind = s.repo.FindFiltered(ctx, filter, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list slots", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve slots", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	if slots == nil {
		slots = []*model.Slot{}
	}
	return slots, count, nil
}

func (s *slotService) UpdateCapacity(ctx context.Context, id string, updates *model.SlotUpdate) error {
	if id == "" {
		return apperrors.InvalidInput("Slot ID cannot be empty")
	}
	if updates == nil || updates.Capacity == nil {
		return apperrors.InvalidInput("capacity is required")
	}
	if *updates.Capacity < 0 {
		return apperrors.InvalidInput("capacity cannot be negative")
	}

	err := s.repo.UpdateCapacity(ctx, id, *updates.Capacity)
	if err != nil {
		switch {
		case errors.Is(err, slotserrors.ErrNotFound), errors.Is(err, slotserrors.ErrInvalidID):
			return apperrors.NotFoundWithID("Slot", id)
		case errors.Is(err, slotserrors.ErrCapacityBelowReserved):
			return apperrors.Conflict("Capacity cannot be set below the current reserved count")
		default:
			return apperrors.Internal("Failed to update slot", err)
		}
	}
	return nil
}

func (s *slotService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return apperrors.InvalidInput("Slot ID cannot be empty")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, slotserrors.ErrNotFound) || errors.Is(err, slotserrors.ErrInvalidID) {
			return apperrors.NotFoundWithID("Slot", id)
		}
		return apperrors.Internal("Failed to delete slot", err)
	}
	return nil
}
