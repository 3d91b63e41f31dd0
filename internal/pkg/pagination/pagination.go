// Package pagination reads page/page_size query parameters and builds list envelopes.
package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	// DefaultPageSize is used when page_size is missing or not positive
	DefaultPageSize = 20
	// MaxPageSize caps page_size
	MaxPageSize = 100
)

// Params is a normalized page request
type Params struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Offset   int `json:"-"`
}

// Meta describes where a page sits in the full result set
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// Response is a page of items with its Meta
type Response struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta"`
}

// GetParams reads page and page_size from the query string.
// limit is accepted as an alias for page_size.
func GetParams(c *fiber.Ctx) *Params {
	size := c.Query("page_size")
	if size == "" {
		size = c.Query("limit")
	}
	return New(queryInt(c.Query("page"), 1), queryInt(size, DefaultPageSize))
}

// New clamps page and pageSize into range and derives the offset
func New(page, pageSize int) *Params {
	page = max(page, 1)
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	pageSize = min(pageSize, MaxPageSize)

	return &Params{Page: page, PageSize: pageSize, Offset: (page - 1) * pageSize}
}

// GetMeta computes page counts for total items
func GetMeta(params *Params, total int64) *Meta {
	size := int64(params.PageSize)
	pages := int((total + size - 1) / size)

	return &Meta{
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: pages,
		HasNext:    params.Page < pages,
		HasPrev:    params.Page > 1,
	}
}

// NewResponse wraps data with its Meta
func NewResponse(data interface{}, params *Params, total int64) *Response {
	return &Response{Data: data, Meta: GetMeta(params, total)}
}

func queryInt(raw string, fallback int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
