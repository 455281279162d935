package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/propcore/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type validationInput struct {
	TenantID  string `json:"tenant_id" binding:"required"`
	Email     string `json:"email" binding:"omitempty,email"`
	RentMonth string `json:"rent_month" binding:"omitempty,rentmonth"`
	Status    string `json:"status" binding:"omitempty,oneof=PAID PENDING"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req validationInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleValidationError(t *testing.T) {
	router := newValidationRouter()

	t.Run("valid input passes", func(t *testing.T) {
		w := postJSON(router, `{"tenant_id":"t-1","rent_month":"2024-03","status":"PAID"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rule failures list every field by json name", func(t *testing.T) {
		w := postJSON(router, `{"email":"nope","rent_month":"2024-13","status":"LOST"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)

		messages := map[string]string{}
		for _, d := range resp.Error.Details {
			messages[d.Field] = d.Message
		}
		assert.Equal(t, "This field is required", messages["tenant_id"])
		assert.Equal(t, "Invalid email format", messages["email"])
		assert.Equal(t, "Must be a month in YYYY-MM format", messages["rent_month"])
		assert.Equal(t, "Must be one of: PAID PENDING", messages["status"])
	})

	t.Run("malformed json", func(t *testing.T) {
		w := postJSON(router, `{"tenant_id":`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidJSON)
	})
}

func TestValidateRentMonth(t *testing.T) {
	router := newValidationRouter()

	for _, month := range []string{"2024-01", "1999-12"} {
		assert.Equal(t, http.StatusOK, postJSON(router, `{"tenant_id":"x","rent_month":"`+month+`"}`).Code, month)
	}
	for _, month := range []string{"2024-1", "24-01", "2024/01", "2024-00", "march"} {
		assert.Equal(t, http.StatusBadRequest, postJSON(router, `{"tenant_id":"x","rent_month":"`+month+`"}`).Code, month)
	}
}
