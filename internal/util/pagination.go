package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 50
)

type Page struct {
	Page  int
	Limit int
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// ParsePage reads page/limit from the query string, clamping bad values.
func ParsePage(c *gin.Context) Page {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultPageSize)))
	if err != nil || limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Page{Page: page, Limit: limit}
}

func TotalPages(total int64, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// Pagination builds the pagination block; totalKey names the count, e.g.
// "totalQuestions".
func Pagination(p Page, total int64, totalKey string) gin.H {
	pages := TotalPages(total, p.Limit)
	return gin.H{
		"currentPage": p.Page,
		"totalPages":  pages,
		totalKey:      total,
		"hasNextPage": p.Page < pages,
		"hasPrevPage": p.Page > 1,
	}
}

// Paginated wraps a list with its pagination block under itemsKey.
func Paginated(itemsKey string, items interface{}, p Page, total int64, totalKey string) gin.H {
	return gin.H{
		itemsKey:     items,
		"pagination": Pagination(p, total, totalKey),
	}
}
