package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"github.com/rei-nationwide/platform-api/internal/dto"
	"github.com/rei-nationwide/platform-api/internal/handler"
	"github.com/rei-nationwide/platform-api/internal/service"
	"github.com/rei-nationwide/platform-api/pkg/realestate"
)

type mockPropertyService struct {
	searchResult realestate.Result
	searchErr    error
	lookupResult service.LookupResult
	lookupErr    error
	skipResult   realestate.Result
	skipErr      error
	buyers       dto.BuyerSearchResponse
	buyersErr    error
}

func (m *mockPropertyService) Search(context.Context, dto.PropertySearchRequest) (realestate.Result, error) {
	return m.searchResult, m.searchErr
}

func (m *mockPropertyService) Lookup(context.Context, dto.AddressLookupRequest) (service.LookupResult, error) {
	return m.lookupResult, m.lookupErr
}

func (m *mockPropertyService) Comps(context.Context, dto.AddressLookupRequest) (realestate.Result, error) {
	return m.searchResult, m.searchErr
}

func (m *mockPropertyService) SkipTrace(context.Context, dto.AddressLookupRequest) (realestate.Result, error) {
	return m.skipResult, m.skipErr
}

func (m *mockPropertyService) SearchBuyers(context.Context, dto.BuyerSearchRequest) (dto.BuyerSearchResponse, error) {
	return m.buyers, m.buyersErr
}

func newPropertyApp(svc *mockPropertyService, recorder *recorderStub) *fiber.App {
	app := fiber.New()
	h := handler.NewPropertyHandler(svc, recorder, testLogger())
	group := app.Group("/api/v1", asUser(7, "acquisitions"))
	h.Register(group)
	h.RegisterRestricted(group)
	return app
}

func TestPropertyHandler_SearchForwardsUpstreamShape(t *testing.T) {
	svc := &mockPropertyService{searchResult: realestate.Result{
		"data": []interface{}{map[string]interface{}{"address": "1 Oak"}},
	}}
	recorder := &recorderStub{}
	app := newPropertyApp(svc, recorder)

	req := jsonRequest(t, http.MethodPost, "/api/v1/properties/search", dto.PropertySearchRequest{City: "Plano", State: "TX"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	// The provider payload comes back without the success envelope.
	var body map[string]interface{}
	decodeResponse(t, resp, &body)
	require.NotContains(t, body, "success")
	require.Len(t, body["data"], 1)

	require.Equal(t, 1, recorder.count())
	require.Equal(t, "property_search", recorder.last().Action)
	require.Equal(t, "Plano, TX", recorder.last().Detail)
	require.NotNil(t, recorder.last().UserID)
	require.Equal(t, uint(7), *recorder.last().UserID)
}

func TestPropertyHandler_SearchDegradedUpstreamStaysOK(t *testing.T) {
	svc := &mockPropertyService{searchResult: realestate.Result{
		"error": "upstream returned status 502",
		"data":  []interface{}{},
	}}
	app := newPropertyApp(svc, &recorderStub{})

	req := jsonRequest(t, http.MethodPost, "/api/v1/properties/search", dto.PropertySearchRequest{City: "Plano", State: "TX"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decodeResponse(t, resp, &body)
	require.Equal(t, "upstream returned status 502", body["error"])
}

func TestPropertyHandler_LookupAddressNotFound(t *testing.T) {
	svc := &mockPropertyService{lookupErr: service.ErrAddressNotFound}
	recorder := &recorderStub{}
	app := newPropertyApp(svc, recorder)

	req := jsonRequest(t, http.MethodPost, "/api/v1/properties/lookup", dto.AddressLookupRequest{Address: "nowhere at all"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	require.Zero(t, recorder.count(), "failed lookups are not recorded")
}

func TestPropertyHandler_SkipTraceRecordsActivity(t *testing.T) {
	svc := &mockPropertyService{skipResult: realestate.Result{"data": []interface{}{}}}
	recorder := &recorderStub{}
	app := newPropertyApp(svc, recorder)

	req := jsonRequest(t, http.MethodPost, "/api/v1/skip-trace", dto.AddressLookupRequest{Address: "123 Main St"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	require.Equal(t, 1, recorder.count())
	require.Equal(t, "skip_trace", recorder.last().Action)
	require.Equal(t, "/api/v1/skip-trace", recorder.last().Endpoint)
}

func TestPropertyHandler_BuyersUseEnvelope(t *testing.T) {
	svc := &mockPropertyService{buyers: dto.BuyerSearchResponse{Buyers: []dto.Buyer{
		{Name: "Lone Star Holdings", PurchaseCount: 4},
	}}}
	app := newPropertyApp(svc, &recorderStub{})

	req := jsonRequest(t, http.MethodPost, "/api/v1/buyers/search", dto.BuyerSearchRequest{City: "Houston", State: "TX"})
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                    `json:"success"`
		Data    dto.BuyerSearchResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)
	require.True(t, response.Success)
	require.Len(t, response.Data.Buyers, 1)
}

func TestPropertyHandler_InvalidBody(t *testing.T) {
	app := newPropertyApp(&mockPropertyService{}, &recorderStub{})

	req := jsonRequest(t, http.MethodPost, "/api/v1/properties/lookup", "not an object")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
