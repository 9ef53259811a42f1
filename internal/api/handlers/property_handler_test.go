package handlers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"homepath/api/internal/api/handlers"
	"homepath/api/internal/listings"
	"homepath/api/internal/models"
)

func setupPropertyRouter(search listings.ISearchClient) http.Handler {
	h := handlers.NewPropertyHandler(search, 0, zap.NewNop())
	r := newEngine()
	r.GET("/api/properties/search", h.Search)
	return r
}

func TestPropertyHandler_Search(t *testing.T) {
	mockSearch := new(MockSearchClient)
	router := setupPropertyRouter(mockSearch)
	want := models.PropertySearch{City: "Burnaby", MaxPrice: 800000, PropertyType: models.PropertyTownhome, MinBedrooms: 2}
	mockSearch.On("Search", mock.Anything, want).Return([]models.PropertyListing{
		{ID: "l-1", Address: "12-7400 Edmonds St", City: "Burnaby", Price: 749000, PTTSavings: 5000},
	}, nil)

	w := performRequest(router, "GET", "/api/properties/search?city=Burnaby&maxPrice=800000&propertyType=townhome&minBedrooms=2", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 1, data["count"])
	mockSearch.AssertExpectations(t)
}

func TestPropertyHandler_Search_MockCatalogue(t *testing.T) {
	router := setupPropertyRouter(listings.MockSearchClient{})

	w := performRequest(router, "GET", "/api/properties/search?city=Abbotsford", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decode(t, w)["data"].(map[string]interface{})
	results := data["listings"].([]interface{})
	assert.NotEmpty(t, results)
	for _, l := range results {
		assert.Equal(t, "Abbotsford", l.(map[string]interface{})["city"])
	}
}

func TestPropertyHandler_Search_InvalidRange(t *testing.T) {
	mockSearch := new(MockSearchClient)
	router := setupPropertyRouter(mockSearch)

	w := performRequest(router, "GET", "/api/properties/search?minPrice=900000&maxPrice=500000", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, fieldsOf(t, decode(t, w)), "maxPrice")

	w = performRequest(router, "GET", "/api/properties/search?propertyType=castle", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, fieldsOf(t, decode(t, w)), "propertyType")
	mockSearch.AssertNotCalled(t, "Search")
}

func TestPropertyHandler_Search_UpstreamDown(t *testing.T) {
	mockSearch := new(MockSearchClient)
	router := setupPropertyRouter(mockSearch)
	mockSearch.On("Search", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("%w: status 503", listings.ErrUpstream))

	w := performRequest(router, "GET", "/api/properties/search?city=Surrey", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])
}
