package handler

import (
	"fmt"
	"net/http"
	"testing"

	financingapp "github.com/erp/backoffice/internal/application/financing"
	"github.com/erp/backoffice/internal/domain/financing"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupOrderRouter() (*gin.Engine, *MockOrderService) {
	svc := new(MockOrderService)
	h := NewOrderHandler(svc)
	router := newTestRouter()
	router.POST("/orders", h.Create)
	router.PUT("/orders/:id/terms", h.ChangeTerms)
	router.GET("/orders/:id/schedule", h.GetSchedule)
	router.POST("/orders/:id/resync", h.Resync)
	router.POST("/financing/simulate", h.Simulate)
	router.GET("/financing/plans", h.ListPlans)
	return router, svc
}

func TestOrderHandler_Create(t *testing.T) {
	clientID := uuid.New()
	productID := uuid.New()
	planID := uuid.New()

	t.Run("creates a financed order", func(t *testing.T) {
		router, svc := setupOrderRouter()
		created := &financingapp.OrderResponse{
			ID:             uuid.New(),
			ClientID:       clientID,
			TotalList:      100000,
			DownPayment:    20000,
			BaseFinance:    80000,
			Interest:       16000,
			TotalToFinance: 96000,
			TotalFinal:     116000,
		}
		svc.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req financingapp.CreateOrderRequest) bool {
			return req.ClientID == clientID &&
				req.PlanID != nil && *req.PlanID == planID &&
				len(req.Items) == 1 && req.Items[0].UnitPrice == 100000 &&
				req.DownPayment == 20000
		})).Return(created, nil)

		body := fmt.Sprintf(`{"client_id":%q,"plan_id":%q,"down_payment":20000,"items":[{"product_id":%q,"quantity":1,"unit_price":100000}]}`,
			clientID, planID, productID)
		w := performRequest(router, http.MethodPost, "/orders", body)

		require.Equal(t, http.StatusCreated, w.Code)
		got := decodeData[financingapp.OrderResponse](t, w)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, int64(96000), got.TotalToFinance)
		assert.Equal(t, int64(116000), got.TotalFinal)
		svc.AssertExpectations(t)
	})

	t.Run("rejects an order without items", func(t *testing.T) {
		router, svc := setupOrderRouter()

		w := performRequest(router, http.MethodPost, "/orders", fmt.Sprintf(`{"client_id":%q,"items":[]}`, clientID))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		errInfo := decodeError(t, w)
		assert.Equal(t, dto.ErrCodeValidation, errInfo.Code)
		require.NotEmpty(t, errInfo.Details)
		assert.Equal(t, "items", errInfo.Details[0].Field)
		svc.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
	})

	t.Run("inactive plan is unprocessable", func(t *testing.T) {
		router, svc := setupOrderRouter()
		svc.On("CreateOrder", mock.Anything, mock.Anything).Return(nil, financing.ErrPlanInactive)

		body := fmt.Sprintf(`{"client_id":%q,"plan_id":%q,"items":[{"product_id":%q,"quantity":2,"unit_price":500}]}`,
			clientID, planID, productID)
		w := performRequest(router, http.MethodPost, "/orders", body)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, dto.ErrCodePlanInactive, decodeError(t, w).Code)
	})
}

func TestOrderHandler_ChangeTerms(t *testing.T) {
	orderID := uuid.New()

	t.Run("passes the expected version", func(t *testing.T) {
		router, svc := setupOrderRouter()
		svc.On("ChangeTerms", mock.Anything, orderID, financingapp.ChangeTermsRequest{DownPayment: 5000, Version: 3}).
			Return(&financingapp.OrderResponse{ID: orderID, Version: 4}, nil)

		w := performRequest(router, http.MethodPut, "/orders/"+orderID.String()+"/terms", `{"down_payment":5000,"version":3}`)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 4, decodeData[financingapp.OrderResponse](t, w).Version)
		svc.AssertExpectations(t)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		router, svc := setupOrderRouter()
		svc.On("ChangeTerms", mock.Anything, orderID, mock.Anything).
			Return(nil, shared.ErrConcurrencyConflict.WithMessage("Order was modified"))

		w := performRequest(router, http.MethodPut, "/orders/"+orderID.String()+"/terms", `{"version":1}`)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeConcurrencyConflict, decodeError(t, w).Code)
	})
}

func TestOrderHandler_GetSchedule(t *testing.T) {
	orderID := uuid.New()

	t.Run("returns the schedule", func(t *testing.T) {
		router, svc := setupOrderRouter()
		schedule := financingapp.ToScheduleResponse(orderID, []financing.Instalment{
			{Number: 1, Amount: 32000, IsPaid: true},
			{Number: 2, Amount: 32000},
			{Number: 3, Amount: 32000},
		})
		svc.On("GetSchedule", mock.Anything, orderID).Return(&schedule, nil)

		w := performRequest(router, http.MethodGet, "/orders/"+orderID.String()+"/schedule", "")

		require.Equal(t, http.StatusOK, w.Code)
		got := decodeData[financingapp.ScheduleResponse](t, w)
		assert.Len(t, got.Instalments, 3)
		assert.Equal(t, 1, got.Summary.PaidCount)
		assert.Equal(t, int64(64000), got.Summary.Outstanding)
	})

	t.Run("unknown order", func(t *testing.T) {
		router, svc := setupOrderRouter()
		svc.On("GetSchedule", mock.Anything, orderID).Return(nil, shared.ErrNotFound.WithMessage("Order not found"))

		w := performRequest(router, http.MethodGet, "/orders/"+orderID.String()+"/schedule", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Order not found", decodeError(t, w).Message)
	})

	t.Run("malformed id", func(t *testing.T) {
		router, svc := setupOrderRouter()

		w := performRequest(router, http.MethodGet, "/orders/123/schedule", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		svc.AssertNotCalled(t, "GetSchedule", mock.Anything, mock.Anything)
	})
}

func TestOrderHandler_Resync(t *testing.T) {
	orderID := uuid.New()

	t.Run("returns the rebuilt schedule", func(t *testing.T) {
		router, svc := setupOrderRouter()
		svc.On("Resync", mock.Anything, orderID).Return(&financingapp.ScheduleResponse{OrderID: orderID, Dropped: 300}, nil)

		w := performRequest(router, http.MethodPost, "/orders/"+orderID.String()+"/resync", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(300), decodeData[financingapp.ScheduleResponse](t, w).Dropped)
	})

	t.Run("busy order", func(t *testing.T) {
		router, svc := setupOrderRouter()
		svc.On("Resync", mock.Anything, orderID).Return(nil, shared.ErrLockTimeout)

		w := performRequest(router, http.MethodPost, "/orders/"+orderID.String()+"/resync", "")

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, dto.ErrCodeLockTimeout, decodeError(t, w).Code)
	})
}

func TestOrderHandler_Simulate(t *testing.T) {
	t.Run("quotes", func(t *testing.T) {
		router, svc := setupOrderRouter()
		quote := &financingapp.QuoteResponse{}
		quote.Months = 3
		quote.InstalmentAmount = 32000
		svc.On("Simulate", mock.Anything, mock.MatchedBy(func(req financingapp.SimulateRequest) bool {
			return req.ItemsTotal == 100000 && req.PaymentMethod == financing.PaymentMethodCard
		})).Return(quote, nil)

		w := performRequest(router, http.MethodPost, "/financing/simulate", `{"items_total":100000,"payment_method":"CARD"}`)

		require.Equal(t, http.StatusOK, w.Code)
		got := decodeData[financingapp.QuoteResponse](t, w)
		assert.Equal(t, 3, got.Months)
		assert.Equal(t, int64(32000), got.InstalmentAmount)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		router, _ := setupOrderRouter()

		w := performRequest(router, http.MethodPost, "/financing/simulate", `{"items_total":100,"payment_method":"CHEQUE"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		errInfo := decodeError(t, w)
		require.Len(t, errInfo.Details, 1)
		assert.Equal(t, "payment_method", errInfo.Details[0].Field)
	})
}

func TestOrderHandler_ListPlans(t *testing.T) {
	t.Run("filters by mode", func(t *testing.T) {
		router, svc := setupOrderRouter()
		svc.On("ListPlans", mock.Anything, financing.PlanModeInHouse).
			Return([]financingapp.PlanResponse{{ID: uuid.New(), Name: "6 meses", Mode: financing.PlanModeInHouse, Months: 6}}, nil)

		w := performRequest(router, http.MethodGet, "/financing/plans?mode=IN_HOUSE", "")

		require.Equal(t, http.StatusOK, w.Code)
		plans := decodeData[[]financingapp.PlanResponse](t, w)
		require.Len(t, plans, 1)
		assert.Equal(t, 6, plans[0].Months)
	})

	t.Run("rejects an unknown mode", func(t *testing.T) {
		router, svc := setupOrderRouter()

		w := performRequest(router, http.MethodGet, "/financing/plans?mode=LAYAWAY", "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "mode", decodeError(t, w).Details[0].Field)
		svc.AssertNotCalled(t, "ListPlans", mock.Anything, mock.Anything)
	})
}
