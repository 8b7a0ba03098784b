package helper

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

func call(t *testing.T, handler fiber.Handler, target string) (int, map[string]any) {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zaptest.NewLogger(t))})
	app.Get("/", handler)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	body := map[string]any{}
	require.NoError(t, sonic.Unmarshal(raw, &body), string(raw))
	return resp.StatusCode, body
}

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
		code    string
	}{
		{"fiber error", fiber.NewError(fiber.StatusConflict, "primary media already set"), 409, "primary media already set", "CONFLICT"},
		{"wrapped fiber error", fmt.Errorf("tx: %w", fiber.NewError(fiber.StatusTooManyRequests, "slow down")), 429, "slow down", "RATE_LIMITED"},
		{"validation", &ValidationError{Message: "missing required fields: location", Fields: map[string]string{"location": "required"}}, 400, "missing required fields: location", "VALIDATION_ERROR"},
		{"internal", errors.New("pq: connection refused"), 500, "internal server error", "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, func(c *fiber.Ctx) error { return tt.err }, "/")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.message, body["error"])
			assert.Equal(t, tt.code, body["error_code"])
		})
	}
}

func TestJsonResponses(t *testing.T) {
	status, body := call(t, func(c *fiber.Ctx) error { return JsonError(c, 0, "") }, "/")
	assert.Equal(t, 500, status)
	assert.Equal(t, "Internal Server Error", body["error"])

	status, body = call(t, func(c *fiber.Ctx) error {
		return JsonCreated(c, fiber.Map{"id": 7})
	}, "/")
	assert.Equal(t, 201, status)
	assert.Equal(t, true, body["success"])
	assert.EqualValues(t, 7, body["id"])

	_, body = call(t, func(c *fiber.Ctx) error { return JsonRecords(c, []int{1, 2}, 2) }, "/")
	assert.Len(t, body["records"], 2)
	assert.EqualValues(t, 2, body["count"])

	_, body = call(t, func(c *fiber.Ctx) error { return JsonValidationError(c, "invalid input", nil) }, "/")
	assert.Equal(t, map[string]any{}, body["errors"])
}

func TestResolvePaging(t *testing.T) {
	tests := []struct {
		query         string
		limit, offset int
	}{
		{"", DefaultListLimit, 0},
		{"?limit=5&offset=10", 5, 10},
		{"?limit=500", MaxListLimit, 0},
		{"?limit=-1&offset=-4", DefaultListLimit, 0},
		{"?limit=abc&offset=xyz", DefaultListLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got Paging
			app := fiber.New()
			app.Get("/", func(c *fiber.Ctx) error {
				got = ResolvePaging(c, DefaultListLimit, MaxListLimit)
				return nil
			})
			_, err := app.Test(httptest.NewRequest(http.MethodGet, "/"+tt.query, nil))
			require.NoError(t, err)
			assert.Equal(t, Paging{Limit: tt.limit, Offset: tt.offset}, got)
		})
	}
}

type sample struct {
	Location string  `json:"location" validate:"required"`
	Title    string  `json:"title" validate:"required"`
	Gender   *string `json:"gender" validate:"omitempty,oneof=male female"`
	Age      int     `json:"age" validate:"gte=0"`
}

func TestValidateStruct(t *testing.T) {
	err := ValidateStruct(&sample{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "missing required fields: location, title", ve.Message)
	assert.Equal(t, "required", ve.Fields["location"])

	g := "other"
	err = ValidateStruct(&sample{Location: "x", Title: "y", Gender: &g, Age: -1})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "invalid input", ve.Message)
	assert.Equal(t, "must be one of: male, female", ve.Fields["gender"])
	assert.Equal(t, "gte", ve.Fields["age"])

	assert.NoError(t, ValidateStruct(&sample{Location: "x", Title: "y"}))
}

func TestDBErrorClassification(t *testing.T) {
	assert.True(t, IsUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: media.victim_record_id")))
	assert.False(t, IsUniqueViolation(nil))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))

	assert.True(t, IsForeignKeyViolation(gorm.ErrForeignKeyViolated))
	assert.True(t, IsForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsForeignKeyViolation(errors.New("boom")))
}
