package controllers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantOffset int
		wantLimit  int
	}{
		{"defaults", "", 0, 20},
		{"second page", "page=2", 20, 20},
		{"custom size", "page=3&page_size=10", 20, 10},
		{"size capped", "page_size=500", 0, 100},
		{"garbage falls back", "page=abc&page_size=xyz", 0, 20},
		{"zero page", "page=0", 0, 20},
		{"negative size", "page_size=-5", 0, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/list", func(c *fiber.Ctx) error {
				offset, limit := paginate(c)
				assert.Equal(t, tt.wantOffset, offset)
				assert.Equal(t, tt.wantLimit, limit)
				return c.SendStatus(fiber.StatusNoContent)
			})

			req := httptest.NewRequest("GET", "/list?"+tt.query, nil)
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
		})
	}
}

func TestParseUintParam(t *testing.T) {
	app := fiber.New()
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		id, err := parseUintParam(c, "id")
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"id": id})
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/items/42", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	for _, bad := range []string{"abc", "0", "-1", "1.5"} {
		resp, err := app.Test(httptest.NewRequest("GET", "/items/"+bad, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "param %q", bad)
	}
}

func TestFormatTimePtr(t *testing.T) {
	assert.Nil(t, formatTimePtr(nil))

	now := time.Date(2026, 5, 1, 12, 34, 56, 0, time.Local)
	formatted := formatTimePtr(&now)
	assert.IsType(t, "", formatted)

	expected := now.UTC().Format(time.RFC3339)
	assert.Equal(t, expected, formatted)
}
