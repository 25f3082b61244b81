package model

import "time"

// Order represents a purchase linked to a Customer.
type Order struct {
	OrderDate   time.Time `json:"order_date"`
	Description string    `json:"description" gorm:"type:text;not null"`
	ID          uint      `json:"id"          gorm:"primaryKey"`
	CustomerID  uint      `json:"customer_id" gorm:"index;not null"`
	Amount      float64   `json:"amount"      gorm:"not null"`
}

// OrderUpdate carries a partial change to an order. Nil or blank Description
// keeps the stored value; nil Amount keeps the stored amount.
type OrderUpdate struct {
	Description *string
	Amount      *float64
}
