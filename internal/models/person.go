package models

import "time"

// Person is a district member who owns property and makes payments.
type Person struct {
	Base
	FirstName string  `gorm:"not null" json:"first_name"`
	LastName  string  `gorm:"not null;index" json:"last_name"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Notes     *string `json:"notes,omitempty"`
	Active    bool    `gorm:"not null" json:"active"`
}

// FullName returns "First Last".
func (p Person) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Property is a taxable unit. Properties are deactivated rather than deleted.
type Property struct {
	Base
	AddressLine1 string  `gorm:"not null" json:"address_line1"`
	AddressLine2 *string `json:"address_line2,omitempty"`
	City         *string `json:"city,omitempty"`
	State        *string `json:"state,omitempty"`
	Zip          *string `json:"zip,omitempty"`
	ParcelNumber *string `gorm:"uniqueIndex:idx_properties_parcel_number" json:"parcel_number,omitempty"`
	Active       bool    `gorm:"not null;index" json:"active"`
}

// Ownership links a person to a property for a date range. A nil EndDate
// means the ownership is still open.
type Ownership struct {
	Base
	PersonID   uint       `gorm:"not null;index" json:"person_id"`
	PropertyID uint       `gorm:"not null;index" json:"property_id"`
	StartDate  time.Time  `gorm:"not null" json:"start_date"`
	EndDate    *time.Time `json:"end_date,omitempty"`

	Person   *Person   `gorm:"foreignKey:PersonID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"-"`
	Property *Property `gorm:"foreignKey:PropertyID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT" json:"property,omitempty"`
}

// OwnedAt reports whether the ownership covers the calendar day of asOf.
func (o Ownership) OwnedAt(asOf time.Time) bool {
	day := DateOnly(asOf)
	if DateOnly(o.StartDate).After(day) {
		return false
	}
	return o.EndDate == nil || !DateOnly(*o.EndDate).Before(day)
}
