package store

import (
	"fmt"

	"gorm.io/gorm"
)

// Action is what happens to child rows when their parent row is deleted.
type Action int

const (
	Cascade Action = iota
	SetNull
	Restrict
)

func (a Action) String() string {
	switch a {
	case Cascade:
		return "cascade"
	case SetNull:
		return "set null"
	case Restrict:
		return "restrict"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Rule says how rows of Child referencing Parent through Column react to a
// parent delete.
type Rule struct {
	Parent string
	Child  string
	Column string
	Action Action
}

// deletionRules is the single source of truth for delete behavior. Rules of a
// parent run in order, before the parent rows go.
var deletionRules = []Rule{
	{"users", "accounts", "user_id", Cascade},
	{"users", "categories", "user_id", Cascade},
	{"users", "tags", "user_id", Cascade},
	{"users", "budgets", "user_id", Cascade},
	{"users", "goals", "user_id", Cascade},
	{"users", "recurring_transactions", "user_id", Cascade},
	{"users", "sessions", "user_id", Cascade},
	{"users", "backups", "user_id", Cascade},
	{"users", "audit_logs", "user_id", SetNull},

	{"accounts", "transactions", "account_id", Restrict},
	{"accounts", "recurring_transactions", "account_id", Cascade},

	{"categories", "transactions", "category_id", SetNull},
	{"categories", "categories", "parent_id", SetNull},
	{"categories", "budgets", "category_id", Cascade},
	{"categories", "recurring_transactions", "category_id", SetNull},

	{"transactions", "transaction_tags", "transaction_id", Cascade},
	{"tags", "transaction_tags", "tag_id", Cascade},
}

// DeletionRules returns a copy of the rule table.
func DeletionRules() []Rule {
	out := make([]Rule, len(deletionRules))
	copy(out, deletionRules)
	return out
}

func rulesFor(parent string) []Rule {
	var out []Rule
	for _, r := range deletionRules {
		if r.Parent == parent {
			out = append(out, r)
		}
	}
	return out
}

// hasDependents reports whether rows of table are themselves a parent.
func hasDependents(table string) bool {
	return len(rulesFor(table)) > 0
}

// deleteRows removes ids from table after applying every rule for it. direct
// is false when the delete was reached through a cascade, in which case
// Restrict children are removed with their parent. Callers run this inside a
// transaction.
func deleteRows(tx *gorm.DB, table string, ids []uint, direct bool) error {
	if len(ids) == 0 {
		return nil
	}
	for _, r := range rulesFor(table) {
		action := r.Action
		if action == Restrict {
			if direct {
				var n int64
				if err := tx.Table(r.Child).Where(r.Column+" IN ?", ids).Count(&n).Error; err != nil {
					return fmt.Errorf("check %s: %w", r.Child, err)
				}
				if n > 0 {
					return fmt.Errorf("%w: %d %s still reference this %s", ErrRestricted, n, r.Child, singular(table))
				}
				continue
			}
			action = Cascade
		}

		switch action {
		case Cascade:
			if err := cascadeTo(tx, r, ids); err != nil {
				return err
			}
		case SetNull:
			if err := tx.Table(r.Child).Where(r.Column+" IN ?", ids).Update(r.Column, nil).Error; err != nil {
				return fmt.Errorf("detach %s: %w", r.Child, err)
			}
		}
	}

	if err := tx.Exec("DELETE FROM "+table+" WHERE id IN ?", ids).Error; err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return nil
}

func cascadeTo(tx *gorm.DB, r Rule, ids []uint) error {
	if !hasDependents(r.Child) {
		if err := tx.Exec("DELETE FROM "+r.Child+" WHERE "+r.Column+" IN ?", ids).Error; err != nil {
			return fmt.Errorf("delete %s: %w", r.Child, err)
		}
		return nil
	}
	var childIDs []uint
	if err := tx.Table(r.Child).Where(r.Column+" IN ?", ids).Pluck("id", &childIDs).Error; err != nil {
		return fmt.Errorf("collect %s: %w", r.Child, err)
	}
	return deleteRows(tx, r.Child, childIDs, false)
}

func singular(table string) string {
	switch table {
	case "categories":
		return "category"
	case "recurring_transactions":
		return "recurring transaction"
	}
	if n := len(table); n > 1 && table[n-1] == 's' {
		return table[:n-1]
	}
	return table
}
