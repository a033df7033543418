package entity

import "time"

// Client representa un cliente de la agencia (receptor de propuestas y facturas).
type Client struct {
	ID        string
	AgencyID  string
	Name      string
	Email     string
	Phone     string
	Company   string
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}
