package pagination

import (
	"github.com/frahmantamala/task-management/internal"
	"github.com/samber/lo"
)

const DefaultPageSize = 10

// SearchPage is the body of every search request.
type SearchPage[F any] struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	Criteria  F   `json:"criteria"`
}

// Normalize fills in the default page size when the client left it out.
func (p SearchPage[F]) Normalize() SearchPage[F] {
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

func (p SearchPage[F]) Validate() error {
	if p.PageIndex < 0 || p.PageSize < 1 {
		return internal.ErrInvalidPage
	}
	return nil
}

type PagedData[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
}

// Project maps stored rows to their response shape.
func Project[S any, T any](items []*S, total int64, fn func(*S) T) PagedData[T] {
	return PagedData[T]{
		Items:      lo.Map(items, func(item *S, _ int) T { return fn(item) }),
		TotalCount: total,
	}
}
