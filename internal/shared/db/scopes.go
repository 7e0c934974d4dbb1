package db

import (
	"gorm.io/gorm"
)

// NotIn filters rows whose column holds none of the given values.
//
//	db.Model(&models.TicketModel{}).Scopes(db.NotIn("cod_estado_senha", 6, 90, 91)).Count(&n)
func NotIn(column string, values ...any) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(values) == 0 {
			return db
		}
		return db.Where(column+" NOT IN ?", values)
	}
}

// IsNull filters rows whose column is unset, e.g. open clock entries.
func IsNull(column string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(column + " IS NULL")
	}
}
