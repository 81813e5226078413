package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	aftersalesapp "github.com/tourze/aftersales/internal/application/aftersales"
	"github.com/tourze/aftersales/internal/domain/aftersales"
	"github.com/tourze/aftersales/internal/domain/shared"
	"github.com/tourze/aftersales/internal/interfaces/http/dto"
)

type expressHandlerMocks struct {
	repo        *MockAftersalesRepository
	expressRepo *MockExpressCompanyRepository
	addressRepo *MockReturnAddressRepository
	guard       *MockSubmissionGuard
}

func setupExpressTestHandler() (*ReturnExpressHandler, *expressHandlerMocks) {
	m := &expressHandlerMocks{
		repo:        new(MockAftersalesRepository),
		expressRepo: new(MockExpressCompanyRepository),
		addressRepo: new(MockReturnAddressRepository),
		guard:       new(MockSubmissionGuard),
	}
	service := aftersalesapp.NewReturnExpressService(
		m.repo, m.expressRepo, m.addressRepo, m.guard, zap.NewNop(),
	)
	return NewReturnExpressHandler(service), m
}

func pendingReturnRequest(t *testing.T, userID uuid.UUID) *aftersales.AftersalesRequest {
	t.Helper()
	ar := createTestAftersales(t, userID, aftersales.TypeReturnRefund, aftersales.ReasonQualityIssue)
	require.NoError(t, ar.Approve("admin01", "ok"))
	require.NoError(t, ar.StartProcessing())
	ar.ClearDomainEvents()
	ar.ClearPendingLogs()
	return ar
}

func TestReturnExpressHandler_SubmitReturnExpress(t *testing.T) {
	t.Run("records shipment", func(t *testing.T) {
		handler, m := setupExpressTestHandler()
		userID := uuid.New()
		ar := pendingReturnRequest(t, userID)
		company := &aftersales.ExpressCompany{
			ID:                  uuid.New(),
			Code:                "SF",
			Name:                "SF Express",
			Active:              true,
			TrackingURLTemplate: "https://track.example.com/{trackingNo}",
		}

		m.guard.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		m.guard.On("Release", mock.Anything, mock.Anything).Return(nil)
		m.repo.On("FindByID", mock.Anything, ar.ID).Return(ar, nil)
		m.expressRepo.On("FindByCode", mock.Anything, "SF").Return(company, nil)
		m.repo.On("SaveWithLock", mock.Anything, ar, mock.Anything).Return(nil)

		router := gin.New()
		router.POST("/aftersales/:id/return-express", handler.SubmitReturnExpress)

		w := performJSONRequest(router, http.MethodPost,
			"/aftersales/"+ar.ID.String()+"/return-express",
			aftersalesapp.SubmitReturnExpressRequest{
				CarrierCode:    "SF",
				TrackingNumber: "SF1234567890",
			}, &userID)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]any)
		assert.Equal(t, "PENDING_RECEIVE", data["state"])
		m.guard.AssertExpectations(t)
	})

	t.Run("concurrent submission conflicts", func(t *testing.T) {
		handler, m := setupExpressTestHandler()
		userID := uuid.New()
		id := uuid.New()

		m.guard.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(false, nil)

		router := gin.New()
		router.POST("/aftersales/:id/return-express", handler.SubmitReturnExpress)

		w := performJSONRequest(router, http.MethodPost,
			"/aftersales/"+id.String()+"/return-express",
			aftersalesapp.SubmitReturnExpressRequest{
				CarrierCode:    "SF",
				TrackingNumber: "SF1234567890",
			}, &userID)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown carrier rejected", func(t *testing.T) {
		handler, m := setupExpressTestHandler()
		userID := uuid.New()
		ar := pendingReturnRequest(t, userID)

		m.guard.On("Acquire", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
		m.guard.On("Release", mock.Anything, mock.Anything).Return(nil)
		m.repo.On("FindByID", mock.Anything, ar.ID).Return(ar, nil)
		m.expressRepo.On("FindByCode", mock.Anything, "NOPE").Return(nil, assert.AnError)

		router := gin.New()
		router.POST("/aftersales/:id/return-express", handler.SubmitReturnExpress)

		w := performJSONRequest(router, http.MethodPost,
			"/aftersales/"+ar.ID.String()+"/return-express",
			aftersalesapp.SubmitReturnExpressRequest{
				CarrierCode:    "NOPE",
				TrackingNumber: "X1",
			}, &userID)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing tracking number rejected", func(t *testing.T) {
		handler, _ := setupExpressTestHandler()
		userID := uuid.New()

		router := gin.New()
		router.POST("/aftersales/:id/return-express", handler.SubmitReturnExpress)

		w := performJSONRequest(router, http.MethodPost,
			"/aftersales/"+uuid.New().String()+"/return-express",
			map[string]any{"carrier_code": "SF"}, &userID)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReturnExpressHandler_ListCompanies(t *testing.T) {
	handler, m := setupExpressTestHandler()

	m.expressRepo.On("FindActive", mock.Anything).Return([]aftersales.ExpressCompany{
		{ID: uuid.New(), Code: "SF", Name: "SF Express", Active: true},
		{ID: uuid.New(), Code: "YTO", Name: "YTO Express", Active: true},
	}, nil)

	router := gin.New()
	router.GET("/express/companies", handler.ListCompanies)

	w := performJSONRequest(router, http.MethodGet, "/express/companies", nil, nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Data.([]any), 2)
}

func TestReturnExpressHandler_GetReturnAddress(t *testing.T) {
	t.Run("returns the default address", func(t *testing.T) {
		handler, m := setupExpressTestHandler()

		m.addressRepo.On("FindDefault", mock.Anything).Return(&aftersales.ReturnAddress{
			ID:        uuid.New(),
			Contact:   "Returns Desk",
			Phone:     "400-000-0000",
			Region:    "Zhejiang Hangzhou Xihu",
			Detail:    "1 Warehouse Rd",
			IsDefault: true,
		}, nil)

		router := gin.New()
		router.GET("/express/return-address", handler.GetReturnAddress)

		w := performJSONRequest(router, http.MethodGet, "/express/return-address", nil, nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		data := resp.Data.(map[string]any)
		assert.Equal(t, "Returns Desk", data["contact"])
	})

	t.Run("missing address not found", func(t *testing.T) {
		handler, m := setupExpressTestHandler()

		m.addressRepo.On("FindDefault", mock.Anything).Return(nil, shared.ErrNotFound)

		router := gin.New()
		router.GET("/express/return-address", handler.GetReturnAddress)

		w := performJSONRequest(router, http.MethodGet, "/express/return-address", nil, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
