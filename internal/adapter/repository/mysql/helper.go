package mysql

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// notFound swaps gorm's record-not-found for the domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// forUpdate adds SELECT ... FOR UPDATE. Dialects without row locks drop the clause.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}
