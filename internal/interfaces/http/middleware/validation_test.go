package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/trade"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterValidations(t *testing.T) {
	v := validator.New()
	RegisterValidations(v)

	type payload struct {
		Mode   financing.PlanMode       `json:"mode" validate:"omitempty,plan_mode"`
		Comm   financing.CommissionMode `json:"comm" validate:"omitempty,commission_mode"`
		Party  trade.CommissionParty    `json:"party" validate:"omitempty,party"`
		Method financing.PaymentMethod  `json:"method" validate:"omitempty,payment_method"`
	}

	assert.NoError(t, v.Struct(payload{
		Mode:   financing.PlanModeInHouse,
		Comm:   financing.CommissionModeListBased,
		Party:  trade.CommissionPartyAlliance,
		Method: financing.PaymentMethodDebit,
	}))
	assert.NoError(t, v.Struct(payload{}))

	err := v.Struct(payload{Mode: "LAYAWAY", Comm: "gross", Party: "broker", Method: "CHEQUE"})
	details := ValidationDetails(err)
	require.Len(t, details, 4)
	fields := []string{details[0].Field, details[1].Field, details[2].Field, details[3].Field}
	assert.Equal(t, []string{"mode", "comm", "party", "method"}, fields)
	assert.Contains(t, details[0].Message, "IN_HOUSE")
}

func TestValidationDetails_NotAValidationError(t *testing.T) {
	assert.Nil(t, ValidationDetails(assert.AnError))
}

func TestHandleValidationError(t *testing.T) {
	SetupValidator()
	SetupValidator()

	type request struct {
		Amount int64                   `json:"amount" binding:"required,gt=0"`
		Method financing.PaymentMethod `json:"method" binding:"required,payment_method"`
	}

	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req request
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusOK)
	})

	post := func(body string) (*httptest.ResponseRecorder, dto.Response) {
		req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(RequestIDHeader, "req-v")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		var resp dto.Response
		if w.Code != http.StatusOK {
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		}
		return w, resp
	}

	t.Run("lists invalid fields", func(t *testing.T) {
		w, resp := post(`{"amount": 0, "method": "CHEQUE"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-v", resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, "amount", resp.Error.Details[0].Field)
		assert.Equal(t, "method", resp.Error.Details[1].Field)
	})

	t.Run("malformed body", func(t *testing.T) {
		w, resp := post(`{"amount": `)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeInvalidJSON, resp.Error.Code)
	})

	t.Run("valid body", func(t *testing.T) {
		w, _ := post(`{"amount": 100, "method": "CASH"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
