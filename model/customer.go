package model

import "time"

// Customer is a person the business keeps records for. A customer has zero
// or more Orders; orders are not removed with their customer unless the
// delete policy says so.
type Customer struct {
	RegistrationDate time.Time `json:"registration_date"`

	FullName    string `gorm:"size:255;not null" json:"full_name"`
	ContactInfo string `gorm:"size:255;not null" json:"contact_info"`
	Notes       string `gorm:"type:text"         json:"notes,omitempty"`

	Orders []Order `gorm:"foreignKey:CustomerID" json:"orders,omitempty"`
	ID     uint    `gorm:"primaryKey"            json:"id"`
}

// CustomerUpdate carries a partial change. A nil field keeps the stored
// value. FullName and ContactInfo also ignore blank strings; Notes set to ""
// clears the notes.
type CustomerUpdate struct {
	FullName    *string
	ContactInfo *string
	Notes       *string
}
