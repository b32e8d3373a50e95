package models

import "time"

// HealthReport summarizes the state of the data set behind the dashboard.
type HealthReport struct {
	Status       string    `json:"status"`
	Users        int       `json:"users"`
	Products     int       `json:"products"`
	Sales        int       `json:"sales"`
	LastSaleDate time.Time `json:"last_sale_date,omitempty"`
	Warnings     []string  `json:"warnings,omitempty"`
	CheckedAt    time.Time `json:"checked_at"`
}
