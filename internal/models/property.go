package models

// PropertyListing is a listing returned by the external property search API.
// Optional fields are pointers: the upstream omits them freely.
type PropertyListing struct {
	ID            string   `json:"id"`
	Address       string   `json:"address"`
	City          string   `json:"city"`
	Price         float64  `json:"price"`
	PropertyType  string   `json:"propertyType,omitempty"`
	Bedrooms      *int     `json:"bedrooms,omitempty"`
	Bathrooms     *float64 `json:"bathrooms,omitempty"`
	SquareFeet    *int     `json:"squareFeet,omitempty"`
	YearBuilt     *int     `json:"yearBuilt,omitempty"`
	IsNewBuild    bool     `json:"isNewBuild"`
	PhotoURL      *string  `json:"photoUrl,omitempty"`
	ListingURL    *string  `json:"listingUrl,omitempty"`
	Latitude      *float64 `json:"latitude,omitempty"`
	Longitude     *float64 `json:"longitude,omitempty"`
	PTTSavings    float64  `json:"pttSavings"`
	MLSNumber     *string  `json:"mlsNumber,omitempty"`
	DaysOnMarket  *int     `json:"daysOnMarket,omitempty"`
	StrataFee     *float64 `json:"strataFee,omitempty"`
	PropertyTaxes *float64 `json:"propertyTaxes,omitempty"`
}

// PropertySearch holds the filters accepted by the property search.
type PropertySearch struct {
	City         string       `form:"city"`
	MinPrice     float64      `form:"minPrice" binding:"gte=0"`
	MaxPrice     float64      `form:"maxPrice" binding:"gte=0"`
	PropertyType PropertyType `form:"propertyType" binding:"omitempty,oneof=condo townhome detached"`
	MinBedrooms  int          `form:"minBedrooms" binding:"gte=0"`
	Limit        int          `form:"limit" binding:"gte=0,lte=100"`
}
