// Package models holds the gorm-mapped entities of the API.
package models

// All lists every migrated model, parents before children.
func All() []any {
	return []any{
		&User{},
		&Account{},
		&Category{},
		&Tag{},
		&Transaction{},
		&Budget{},
		&Goal{},
		&RecurringTransaction{},
		&Session{},
		&AuditLog{},
		&Backup{},
	}
}
