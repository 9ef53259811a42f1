package listings

import (
	"context"

	"homepath/api/internal/journey"
	"homepath/api/internal/models"
)

// MockSearchClient serves a fixed Metro Vancouver sample set. It backs
// MOCK_SERVICES runs and deployments without a listing API.
type MockSearchClient struct{}

func ptr[T any](v T) *T { return &v }

var sampleListings = []models.PropertyListing{
	{ID: "mock-1", Address: "1203-1480 Howe St", City: "Vancouver", Price: 489000, PropertyType: "condo", Bedrooms: ptr(1), Bathrooms: ptr(1.0), SquareFeet: ptr(560), YearBuilt: ptr(2008), StrataFee: ptr(412.0)},
	{ID: "mock-2", Address: "305-3090 Gladwin Rd", City: "Abbotsford", Price: 419900, PropertyType: "condo", Bedrooms: ptr(2), Bathrooms: ptr(2.0), SquareFeet: ptr(910), YearBuilt: ptr(2015), StrataFee: ptr(388.0)},
	{ID: "mock-3", Address: "18-7740 Grand St", City: "Mission", Price: 629000, PropertyType: "townhome", Bedrooms: ptr(3), Bathrooms: ptr(2.5), SquareFeet: ptr(1480), YearBuilt: ptr(2019)},
	{ID: "mock-4", Address: "45-19128 65 Ave", City: "Surrey", Price: 749900, PropertyType: "townhome", Bedrooms: ptr(3), Bathrooms: ptr(2.5), SquareFeet: ptr(1390), YearBuilt: ptr(2024), IsNewBuild: true},
	{ID: "mock-5", Address: "2261 Clearbrook Rd", City: "Abbotsford", Price: 899000, PropertyType: "detached", Bedrooms: ptr(4), Bathrooms: ptr(3.0), SquareFeet: ptr(2210), YearBuilt: ptr(1994)},
	{ID: "mock-6", Address: "11870 Pemberton Cres", City: "Maple Ridge", Price: 1149000, PropertyType: "detached", Bedrooms: ptr(5), Bathrooms: ptr(3.5), SquareFeet: ptr(2890), YearBuilt: ptr(2005)},
}

// Search filters the sample set by q.
func (MockSearchClient) Search(_ context.Context, q models.PropertySearch) ([]models.PropertyListing, error) {
	all := make([]models.PropertyListing, 0, len(sampleListings))
	for _, l := range sampleListings {
		if q.City != "" && l.City != q.City {
			continue
		}
		l.PTTSavings = journey.CalculatePTTSavings(l.Price)
		all = append(all, l)
	}
	return Filter(all, q), nil
}
