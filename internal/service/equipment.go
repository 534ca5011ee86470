package service

import (
	"context"
	"encoding/json"
	"time"

	"equiprent-backend/internal/cache"
	"equiprent-backend/internal/domain"
	"equiprent-backend/internal/logger"
	"equiprent-backend/internal/repository"
)

const equipmentCacheTTL = 30 * time.Second

type equipmentService struct {
	equipmentRepo repository.EquipmentRepository
	cache         cache.Client
}

func NewEquipmentService(equipmentRepo repository.EquipmentRepository, cacheClient cache.Client) EquipmentService {
	return &equipmentService{equipmentRepo: equipmentRepo, cache: cacheClient}
}

func (s *equipmentService) AddEquipment(ctx context.Context, eq *domain.Equipment) error {
	if eq.TotalQuantity < 0 || !eq.DailyRate.IsPositive() {
		return &domain.InvalidLineInputError{Reason: "equipment requires non-negative quantity and a positive daily rate"}
	}
	if eq.AvailableQuantity == 0 && eq.ReservedQuantity == 0 && eq.MaintenanceQuantity == 0 {
		eq.AvailableQuantity = eq.TotalQuantity
	}
	if !eq.CountersConsistent() {
		return &domain.InvalidLineInputError{Reason: "stock counters must sum to total quantity"}
	}
	if eq.Status == "" {
		eq.Status = domain.EquipmentStatusAvailable
	}
	if eq.QRCode == "" {
		eq.QRCode = generateQRCode("EQP")
	}
	return s.equipmentRepo.Create(ctx, eq)
}

// GetEquipment serves recent reads from the cache. The cache is advisory;
// stock decisions always go through the repository's guarded updates.
func (s *equipmentService) GetEquipment(ctx context.Context, id int32) (*domain.Equipment, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cache.EquipmentKey(id)); err == nil {
			var eq domain.Equipment
			if err := json.Unmarshal([]byte(raw), &eq); err == nil {
				return &eq, nil
			}
		}
	}

	eq, err := s.equipmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(eq); err == nil {
			if err := s.cache.Set(ctx, cache.EquipmentKey(id), string(raw), equipmentCacheTTL); err != nil {
				logger.Warn("Failed to cache equipment", "equipment_id", id, "error", err)
			}
		}
	}
	return eq, nil
}

func (s *equipmentService) UpdateEquipment(ctx context.Context, eq *domain.Equipment) error {
	if err := s.equipmentRepo.Update(ctx, eq); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.EquipmentKey(eq.ID)); err != nil {
			logger.Warn("Failed to invalidate equipment cache", "equipment_id", eq.ID, "error", err)
		}
	}
	return nil
}

func (s *equipmentService) ListEquipment(ctx context.Context, page, pageSize int32) ([]domain.Equipment, int32, error) {
	return s.equipmentRepo.List(ctx, page, pageSize)
}

func (s *equipmentService) SearchEquipment(ctx context.Context, query, category string) ([]domain.Equipment, error) {
	return s.equipmentRepo.Search(ctx, query, category)
}

// AdjustStock moves units between available and maintenance or changes total
// stock, e.g. (-2, +2) sends two units to maintenance, (+5, 0) restocks five.
// A zero adjustment is rejected before touching the database.
func (s *equipmentService) AdjustStock(ctx context.Context, equipmentID, availableDelta, maintenanceDelta int32) (*domain.Equipment, error) {
	if availableDelta == 0 && maintenanceDelta == 0 {
		return nil, &domain.InvalidLineInputError{Reason: "stock adjustment requires a non-zero delta"}
	}
	if err := s.equipmentRepo.AdjustStock(ctx, equipmentID, availableDelta, maintenanceDelta); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, cache.EquipmentKey(equipmentID)); err != nil {
			logger.Warn("Failed to invalidate equipment cache", "equipment_id", equipmentID, "error", err)
		}
	}
	return s.equipmentRepo.GetByID(ctx, equipmentID)
}

// CheckAvailability is a non-mutating pre-check. It can race with concurrent
// reservations; the atomic check inside Reserve is authoritative.
func (s *equipmentService) CheckAvailability(ctx context.Context, equipmentID, quantity int32) (bool, error) {
	eq, err := s.GetEquipment(ctx, equipmentID)
	if err != nil {
		return false, err
	}
	return quantity > 0 && quantity <= eq.AvailableQuantity, nil
}
