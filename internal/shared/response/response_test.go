package response_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-webtrack/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewPaginationMeta(t *testing.T) {
	meta := response.NewPaginationMeta(21, 2, 10)

	assert.Equal(t, int64(21), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 10, meta.PageSize)
}

func TestPage(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("second page", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/items?page=2&page_size=2", nil)

		response.Page(c, http.StatusOK, []int{1, 2, 3, 4, 5})

		var env struct {
			Ok   bool                    `json:"ok"`
			Data []int                   `json:"data"`
			Meta response.PaginationMeta `json:"meta"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.True(t, env.Ok)
		assert.Equal(t, []int{3, 4}, env.Data)
		assert.Equal(t, 3, env.Meta.TotalPages)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/items?page=9", nil)

		response.Page(c, http.StatusOK, []string{"a"})

		var env struct {
			Data []string `json:"data"`
		}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.Empty(t, env.Data)
	})
}
