package helper

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type Paging struct {
	Limit  int
	Offset int
}

// ResolvePaging reads ?limit= & ?offset=, falling back to defaults on bad input.
// maxLimit 0 means no cap.
func ResolvePaging(c *fiber.Ctx, defaultLimit, maxLimit int) Paging {
	limit, err := strconv.Atoi(strings.TrimSpace(c.Query("limit")))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}

	offset, err := strconv.Atoi(strings.TrimSpace(c.Query("offset")))
	if err != nil || offset < 0 {
		offset = 0
	}
	return Paging{Limit: limit, Offset: offset}
}
