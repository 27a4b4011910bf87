package pagination

const (
	// DefaultSize is the standard page size when one is not provided.
	DefaultSize = 20
	// MaxSize caps how many rows any list query can request.
	MaxSize = 100
)

// Params holds page pagination inputs from controllers or services.
type Params struct {
	Page int
	Size int
}

// Normalize clamps both fields to their allowed ranges.
func (p Params) Normalize() Params {
	return Params{
		Page: NormalizePage(p.Page),
		Size: NormalizeSize(p.Size),
	}
}

// Offset converts the normalized page/size pair into a row offset.
func (p Params) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Size
}

// NormalizePage enforces 1-based page numbers.
func NormalizePage(page int) int {
	if page <= 0 {
		return 1
	}
	return page
}

// NormalizeSize enforces the configured default and maximum sizes.
func NormalizeSize(size int) int {
	if size <= 0 {
		return DefaultSize
	}
	if size > MaxSize {
		return MaxSize
	}
	return size
}

// Result is the generic paged container returned by list operations.
type Result[T any] struct {
	Items      []T   `json:"items"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
}

// NewResult assembles a Result, deriving TotalPages from the total count.
func NewResult[T any](items []T, params Params, total int64) Result[T] {
	n := params.Normalize()
	pages := int(total) / n.Size
	if int(total)%n.Size != 0 {
		pages++
	}
	if items == nil {
		items = []T{}
	}
	return Result[T]{
		Items:      items,
		Page:       n.Page,
		Size:       n.Size,
		TotalItems: total,
		TotalPages: pages,
	}
}
