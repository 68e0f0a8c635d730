package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "firedues/internal/errors"
	"firedues/internal/events"
	"firedues/internal/models"
	"firedues/internal/pagination"
)

// personService maintains members and announces new ones on the bus.
type personService struct {
	db  *gorm.DB
	bus events.Publisher
}

// NewPersonService creates a new PersonServicer. bus may be nil.
func NewPersonService(db *gorm.DB, bus events.Publisher) PersonServicer {
	return &personService{db: db, bus: bus}
}

// CreatePerson inserts a person and publishes PersonCreated after commit.
func (s *personService) CreatePerson(ctx context.Context, in PersonInput) (*models.Person, error) {
	person, err := newPerson(in)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Create(person).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	s.publishCreated(person.ID)
	return person, nil
}

// Intake registers a person, finds or creates their property by parcel
// number, and opens an ownership starting on asOf, all in one transaction.
func (s *personService) Intake(ctx context.Context, in IntakeInput, asOf time.Time) (*IntakeResult, error) {
	person, err := newPerson(in.Person)
	if err != nil {
		return nil, err
	}
	property, err := newProperty(in.Property)
	if err != nil {
		return nil, err
	}

	result := &IntakeResult{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(person).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		if property.ParcelNumber != nil {
			var existing models.Property
			err := tx.Where("parcel_number = ?", *property.ParcelNumber).First(&existing).Error
			switch {
			case err == nil:
				property = &existing
			case !errors.Is(err, gorm.ErrRecordNotFound):
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}
		if property.ID == 0 {
			if err := tx.Create(property).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
		}

		ownership := &models.Ownership{
			PersonID:   person.ID,
			PropertyID: property.ID,
			StartDate:  models.DateOnly(asOf),
		}
		if err := tx.Create(ownership).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		result.Person = person
		result.Property = property
		result.Ownership = ownership
		return nil
	})
	if err != nil {
		return nil, appError(err)
	}

	s.publishCreated(person.ID)
	return result, nil
}

// GetPerson retrieves a person by ID.
func (s *personService) GetPerson(ctx context.Context, id uint) (*models.Person, error) {
	var person models.Person
	if err := s.db.WithContext(ctx).First(&person, id).Error; err != nil {
		return nil, notFound(err, apperrors.ErrPersonNotFound)
	}
	return &person, nil
}

// ListPeople pages people by last name, optionally filtered by a name fragment.
func (s *personService) ListPeople(ctx context.Context, page pagination.PageRequest, search string) (*pagination.PageResponse[models.Person], error) {
	query := s.db.WithContext(ctx).Model(&models.Person{})
	if term := strings.TrimSpace(search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like)
	}
	resp, err := pagination.Fetch[models.Person](query, page, "last_name, first_name, id")
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return resp, nil
}

// DeletePerson removes a person with no ownerships, payments or notices.
func (s *personService) DeletePerson(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := personExists(tx, id); err != nil {
			return err
		}
		for _, dep := range []struct {
			model  interface{}
			column string
		}{
			{&models.Ownership{}, "person_id"},
			{&models.Payment{}, "person_id"},
			{&models.UtilityNotice{}, "matched_person_id"},
		} {
			var n int64
			if err := tx.Model(dep.model).Where(dep.column+" = ?", id).Count(&n).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if n > 0 {
				return apperrors.ErrPersonHasDependents
			}
		}
		if err := tx.Delete(&models.Person{}, id).Error; err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return apperrors.ErrPersonHasDependents
			}
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	return appError(err)
}

// ListOwnerships returns a person's ownerships with their properties, newest first.
func (s *personService) ListOwnerships(ctx context.Context, personID uint) ([]models.Ownership, error) {
	db := s.db.WithContext(ctx)
	if err := personExists(db, personID); err != nil {
		return nil, err
	}
	var ownerships []models.Ownership
	if err := db.Preload("Property").Where("person_id = ?", personID).Order("start_date DESC, id DESC").Find(&ownerships).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return ownerships, nil
}

func (s *personService) publishCreated(personID uint) {
	if s.bus != nil {
		s.bus.Publish(events.PersonCreated{PersonID: personID})
	}
}

func newPerson(in PersonInput) (*models.Person, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	if first == "" || last == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "first and last name are required")
	}
	return &models.Person{
		FirstName: first,
		LastName:  last,
		Email:     trimmedOrNil(in.Email),
		Phone:     trimmedOrNil(in.Phone),
		Notes:     trimmedOrNil(in.Notes),
		Active:    true,
	}, nil
}
