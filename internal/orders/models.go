package orders

import (
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"-"`
	Phone    string `json:"phone,omitempty"`
	Country  string `json:"country,omitempty"`
	Address  string `json:"address,omitempty"`
	City     string `json:"city,omitempty"`
	IsAdmin  bool   `json:"-"`
}

// UserSnapshot is the shape of a user embedded in an order: secrets and the
// admin flag stripped, frozen at placement time.
type UserSnapshot struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Country string `json:"country,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
}

func (u User) Snapshot() UserSnapshot {
	return UserSnapshot{
		ID:      u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Phone:   u.Phone,
		Country: u.Country,
		Address: u.Address,
		City:    u.City,
	}
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImgURL      string          `json:"img_url,omitempty"`
}

// OrderDetail is the line-item aggregate attached 1:1 to an order. Created
// atomically with its parent and never mutated afterward.
type OrderDetail struct {
	ID       string          `json:"id"`
	Price    decimal.Decimal `json:"price"`
	Products []Product       `json:"products"`
}

// Order is an immutable history record: created once per successful
// placement, never updated.
type Order struct {
	ID        string       `json:"id"`
	CreatedAt time.Time    `json:"date"`
	User      UserSnapshot `json:"user"`
	Detail    OrderDetail  `json:"order_details"`
}
