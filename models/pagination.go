package models

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage      = 1
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

type PageMetadata struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NormalizePage parses page and limit query values. Values that are not positive integers
// fall back to the defaults; limit is capped at MaxPageLimit.
func NormalizePage(rawPage string, rawLimit string) (page int, limit int) {
	page, err := strconv.Atoi(strings.TrimSpace(rawPage))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err = strconv.Atoi(strings.TrimSpace(rawLimit))
	if err != nil || limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return page, limit
}

func NewPageMetadata(total int64, page int, limit int) PageMetadata {
	if limit < 1 {
		limit = DefaultPageLimit
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return PageMetadata{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// pageOffset saturates at math.MaxInt instead of wrapping.
func pageOffset(page int, limit int) int {
	if page < 1 || limit < 1 {
		return 0
	}
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return (page - 1) * limit
}
