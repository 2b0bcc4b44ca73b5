package store

import (
	"strings"

	"github.com/frahmantamala/task-management/internal/core/datamodel"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Predicate narrows a query. A nil Predicate matches everything, which is
// how optional filter terms are bypassed.
type Predicate func(db *gorm.DB) *gorm.DB

// QueryOption shapes what a read returns without changing which rows match.
type QueryOption func(db *gorm.DB) *gorm.DB

func column(name string) clause.Column {
	return clause.Column{Table: clause.CurrentTable, Name: name}
}

// NotDeleted is applied to every read, preloaded associations included.
func NotDeleted(db *gorm.DB) *gorm.DB {
	return db.Where(clause.Eq{Column: column(datamodel.ColumnIsDeleted), Value: false})
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsFold matches rows whose column contains value, ignoring case and
// surrounding whitespace of value. Blank values are bypassed. The database
// folds both sides.
func ContainsFold(name, value string) Predicate {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	pattern := "%" + likeEscaper.Replace(value) + "%"
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(`UPPER(?) LIKE UPPER(?) ESCAPE '\'`, column(name), pattern)
	}
}

// EqualFold compares trimmed values case-insensitively. It is always applied.
func EqualFold(name, value string) Predicate {
	value = strings.TrimSpace(value)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("UPPER(TRIM(?)) = UPPER(?)", column(name), value)
	}
}

// Equal is bypassed when value is nil.
func Equal[V any](name string, value *V) Predicate {
	if value == nil {
		return nil
	}
	v := *value
	return Is(name, v)
}

func Is(name string, value any) Predicate {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: column(name), Value: value})
	}
}

func NotEqual(name string, value any) Predicate {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Neq{Column: column(name), Value: value})
	}
}

// All combines the present terms with AND.
func All(predicates ...Predicate) Predicate {
	present := lo.Filter(predicates, func(p Predicate, _ int) bool { return p != nil })
	if len(present) == 0 {
		return nil
	}
	return func(db *gorm.DB) *gorm.DB {
		for _, p := range present {
			db = p(db)
		}
		return db
	}
}

func (p Predicate) apply(db *gorm.DB) *gorm.DB {
	if p == nil {
		return db
	}
	return p(db)
}

// Preload loads the named association, skipping soft-deleted targets.
func Preload(association string) QueryOption {
	return func(db *gorm.DB) *gorm.DB {
		return db.Preload(association, NotDeleted)
	}
}
