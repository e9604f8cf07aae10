package entity

import "github.com/shopspring/decimal"

// DashboardStats are merchant aggregates derived from payments at read time.
type DashboardStats struct {
	TotalPayments   int64                      `json:"total_payments"`
	ByStatus        map[PaymentStatus]int64    `json:"by_status"`
	CompletedTotals map[string]decimal.Decimal `json:"completed_totals"`
	ActiveLinks     int64                      `json:"active_links"`
	UnreadCount     int64                      `json:"unread_notifications"`
}

// StatusCount is one row of a GROUP BY status query.
type StatusCount struct {
	Status PaymentStatus
	Count  int64
}

// CurrencyTotal is one row of a SUM(amount) GROUP BY currency query.
type CurrencyTotal struct {
	Currency string
	Total    decimal.Decimal
}
