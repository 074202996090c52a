package types

const (
	PublicPageSize = 12
	AdminPageSize  = 15
	MaxPageSize    = 100
)

type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
}

// Normalize clamps page to >= 1 and pageSize to 1..MaxPageSize, falling back to def.
func (p Pagination) Normalize(def int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = def
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type Page[T any] struct {
	Data     []T   `json:"data"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
	Total    int64 `json:"total"`
	LastPage int   `json:"lastPage"`
}

func NewPage[T any](data []T, pagination Pagination, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}

	lastPage := 1
	if pagination.PageSize > 0 && total > 0 {
		lastPage = int((total + int64(pagination.PageSize) - 1) / int64(pagination.PageSize))
	}

	return Page[T]{
		Data:     data,
		Page:     pagination.Page,
		PageSize: pagination.PageSize,
		Total:    total,
		LastPage: lastPage,
	}
}
