package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       any        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination contains offset-based pagination info.
type Pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
	Total  int `json:"total"`
}

// pageParams reads offset/limit, clamping limit to (0, max].
func pageParams(c *fiber.Ctx, def, max int) (offset, limit int) {
	offset = c.QueryInt("offset", 0)
	limit = c.QueryInt("limit", def)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > max {
		limit = def
	}
	return offset, limit
}

// paginate slices items in memory and sets the Link header.
func paginate[T any](c *fiber.Ctx, items []T, offset, limit int) PaginatedResponse {
	total := len(items)
	page := []T{}
	if offset < total {
		end := min(offset+limit, total)
		page = items[offset:end]
	}
	p := Pagination{Offset: offset, Limit: limit, Total: total}
	SetLinkHeaders(c, p)
	return PaginatedResponse{Data: page, Pagination: p}
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()
	links := []string{fmt.Sprintf(`<%s?offset=0&limit=%d>; rel="first"`, base, p.Limit)}

	if p.Offset > 0 {
		prev := max(p.Offset-p.Limit, 0)
		links = append(links, fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="prev"`, base, prev, p.Limit))
	}
	if p.Offset+p.Limit < p.Total {
		links = append(links, fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="next"`, base, p.Offset+p.Limit, p.Limit))
	}
	last := max(p.Total-p.Limit, 0)
	links = append(links, fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="last"`, base, last, p.Limit))

	c.Set("Link", strings.Join(links, ", "))
}
