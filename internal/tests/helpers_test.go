package tests

import (
	"database/sql"

	"github.com/shopspring/decimal"
)

func decimalFromString(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func errNoRows() error {
	return sql.ErrNoRows
}
