package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "firedues/internal/errors"
	"firedues/internal/models"
)

// propertyService maintains properties and ownership periods.
type propertyService struct {
	db *gorm.DB
}

// NewPropertyService creates a new PropertyServicer.
func NewPropertyService(db *gorm.DB) PropertyServicer {
	return &propertyService{db: db}
}

// CreateProperty registers an active property.
func (s *propertyService) CreateProperty(ctx context.Context, in PropertyInput) (*models.Property, error) {
	property, err := newProperty(in)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(property).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateParcel
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return property, nil
}

// GetProperty retrieves a property by ID.
func (s *propertyService) GetProperty(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	if err := s.db.WithContext(ctx).First(&property, id).Error; err != nil {
		return nil, notFound(err, apperrors.ErrPropertyNotFound)
	}
	return &property, nil
}

// SetPropertyActive activates or retires a property. Inactive properties
// are skipped by rollover.
func (s *propertyService) SetPropertyActive(ctx context.Context, id uint, active bool) (*models.Property, error) {
	property, err := s.GetProperty(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(property).Update("active", active).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	property.Active = active
	return property, nil
}

// DeleteProperty removes a property nothing refers to.
func (s *propertyService) DeleteProperty(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var property models.Property
		if err := tx.Select("id").First(&property, id).Error; err != nil {
			return notFound(err, apperrors.ErrPropertyNotFound)
		}
		for _, dep := range []struct {
			model  interface{}
			column string
		}{
			{&models.Ownership{}, "property_id"},
			{&models.Assessment{}, "property_id"},
			{&models.Payment{}, "target_property_id"},
		} {
			var n int64
			if err := tx.Model(dep.model).Where(dep.column+" = ?", id).Count(&n).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if n > 0 {
				return apperrors.ErrPropertyHasDependents
			}
		}
		if err := tx.Delete(&models.Property{}, id).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return apperrors.ErrPropertyHasDependents
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	return appError(err)
}

// AddOwnership records that personID owns propertyID from start, until end when given.
func (s *propertyService) AddOwnership(ctx context.Context, personID, propertyID uint, start time.Time, end *time.Time) (*models.Ownership, error) {
	ownership := &models.Ownership{
		PersonID:   personID,
		PropertyID: propertyID,
		StartDate:  models.DateOnly(start),
	}
	if end != nil {
		e := models.DateOnly(*end)
		if e.Before(ownership.StartDate) {
			return nil, apperrors.ErrInvalidOwnershipDates
		}
		ownership.EndDate = &e
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := personExists(tx, personID); err != nil {
			return err
		}
		var property models.Property
		if err := tx.Select("id").First(&property, propertyID).Error; err != nil {
			return notFound(err, apperrors.ErrPropertyNotFound)
		}
		if err := tx.Create(ownership).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, appError(err)
	}
	return ownership, nil
}

// EndOwnership closes an ownership on end.
func (s *propertyService) EndOwnership(ctx context.Context, ownershipID uint, end time.Time) (*models.Ownership, error) {
	var ownership models.Ownership
	db := s.db.WithContext(ctx)
	if err := db.First(&ownership, ownershipID).Error; err != nil {
		return nil, notFound(err, apperrors.ErrOwnershipNotFound)
	}

	e := models.DateOnly(end)
	if e.Before(models.DateOnly(ownership.StartDate)) {
		return nil, apperrors.ErrInvalidOwnershipDates
	}
	if err := db.Model(&ownership).Update("end_date", e).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	ownership.EndDate = &e
	return &ownership, nil
}

func newProperty(in PropertyInput) (*models.Property, error) {
	line1 := strings.TrimSpace(in.AddressLine1)
	if line1 == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "address line 1 is required")
	}
	return &models.Property{
		AddressLine1: line1,
		AddressLine2: trimmedOrNil(in.AddressLine2),
		City:         trimmedOrNil(in.City),
		State:        trimmedOrNil(in.State),
		Zip:          trimmedOrNil(in.Zip),
		ParcelNumber: trimmedOrNil(in.ParcelNumber),
		Active:       true,
	}, nil
}
