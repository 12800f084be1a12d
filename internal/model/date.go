package model

import (
	"database/sql/driver"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date, a YYYY-MM-DD string in JSON and bound to a DATE
// column. Postgres hands DATE values back as time.Time; Scan folds every
// driver representation down to the plain string.
type Date string

func (d Date) Value() (driver.Value, error) {
	return string(d), nil
}

func (d *Date) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = ""
	case time.Time:
		*d = Date(v.Format(dateLayout))
	case string:
		*d = truncateToDate(v)
	case []byte:
		*d = truncateToDate(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Date", value)
	}
	return nil
}

// truncateToDate drops any time-of-day suffix a driver may append.
func truncateToDate(s string) Date {
	if len(s) > len(dateLayout) {
		return Date(s[:len(dateLayout)])
	}
	return Date(s)
}

func (Date) GormDataType() string {
	return "date"
}
