package store

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/task-management/internal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Page is one slice of a filtered result. TotalCount ignores paging.
type Page[T any] struct {
	Items      []*T
	TotalCount int64
}

// Store is the persistence boundary for one row model. Reads never return
// soft-deleted rows and writes join the unit of work bound to the context.
type Store[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) *Store[T] {
	return &Store[T]{db: db}
}

func (s *Store[T]) query(ctx context.Context) *gorm.DB {
	return NotDeleted(Conn(ctx, s.db).WithContext(ctx).Model(new(T)))
}

func applyOptions(db *gorm.DB, opts []QueryOption) *gorm.DB {
	for _, opt := range opts {
		if opt != nil {
			db = opt(db)
		}
	}
	return db
}

// GetByID returns internal.ErrRecordNotFound when no live row has id.
func (s *Store[T]) GetByID(ctx context.Context, id int64, opts ...QueryOption) (*T, error) {
	var entity T
	err := applyOptions(s.query(ctx), opts).
		Where(clause.Eq{Column: column("id"), Value: id}).
		First(&entity).Error
	if err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

func (s *Store[T]) Exists(ctx context.Context, predicate Predicate) (bool, error) {
	var count int64
	if err := predicate.apply(s.query(ctx)).Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// Page skips pageIndex*pageSize matches and returns up to pageSize rows
// ordered by id.
func (s *Store[T]) Page(ctx context.Context, predicate Predicate, pageIndex, pageSize int, opts ...QueryOption) (Page[T], error) {
	if pageIndex < 0 || pageSize < 1 {
		return Page[T]{}, internal.ErrInvalidPage
	}

	q := predicate.apply(s.query(ctx))

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page[T]{}, translate(err)
	}

	items := make([]*T, 0)
	offset := int64(pageIndex) * int64(pageSize)
	if offset < total {
		err := applyOptions(q, opts).
			Order(clause.OrderByColumn{Column: column("id")}).
			Offset(int(offset)).
			Limit(pageSize).
			Find(&items).Error
		if err != nil {
			return Page[T]{}, translate(err)
		}
	}

	return Page[T]{Items: items, TotalCount: total}, nil
}

// Add inserts entity and fills its id. Associations are never written
// through the parent.
func (s *Store[T]) Add(ctx context.Context, entity *T) error {
	err := Conn(ctx, s.db).WithContext(ctx).Omit(clause.Associations).Create(entity).Error
	return translate(err)
}

func (s *Store[T]) Save(ctx context.Context, entity *T) error {
	err := Conn(ctx, s.db).WithContext(ctx).Omit(clause.Associations).Save(entity).Error
	return translate(err)
}

// translate maps driver failures onto the error taxonomy. Anything that is
// not a lookup miss or a uniqueness violation counts as storage trouble.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := internal.IsAppError(err); ok {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return internal.ErrRecordNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
		return internal.ErrDuplicateKey.WithCause(err)
	}
	return internal.NewStorageUnavailableError(err)
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
