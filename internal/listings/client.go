// Package listings queries the external property listing API.
package listings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"homepath/api/internal/cache"
	"homepath/api/internal/journey"
	"homepath/api/internal/models"
)

// DefaultLimit caps a search when the caller gives no limit.
const DefaultLimit = 24

// ErrUpstream wraps failures of the listing API.
var ErrUpstream = errors.New("listing service unavailable")

// ISearchClient searches property listings.
type ISearchClient interface {
	Search(ctx context.Context, q models.PropertySearch) ([]models.PropertyListing, error)
}

// HTTPSearchClient calls the listing API and caches results in Redis.
type HTTPSearchClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	rdb        redis.Cmdable
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewHTTPSearchClient creates a listing API client. rdb may be nil to disable caching.
func NewHTTPSearchClient(baseURL, apiKey string, timeout time.Duration, rdb redis.Cmdable, cacheTTL time.Duration, logger *zap.Logger) *HTTPSearchClient {
	return &HTTPSearchClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		rdb:        rdb,
		cacheTTL:   cacheTTL,
		logger:     logger.Named("listings"),
	}
}

// Search returns listings matching q, from cache when possible.
func (c *HTTPSearchClient) Search(ctx context.Context, q models.PropertySearch) ([]models.PropertyListing, error) {
	params := queryParams(q)
	key := "listings:" + params.Encode()

	if c.rdb != nil {
		cached, found, err := cache.GetJSON[[]models.PropertyListing](ctx, c.rdb, key)
		if err != nil {
			c.logger.Warn("listing cache read failed", zap.Error(err))
		} else if found {
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build listing request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("listing API call failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("listing API returned non-OK status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	listings, err := ParseListings(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	listings = Filter(listings, q)

	if c.rdb != nil {
		if err := cache.SetJSON(ctx, c.rdb, key, listings, c.cacheTTL); err != nil {
			c.logger.Warn("listing cache write failed", zap.Error(err))
		}
	}
	return listings, nil
}

func queryParams(q models.PropertySearch) url.Values {
	v := url.Values{}
	if q.City != "" {
		v.Set("city", q.City)
	}
	if q.MinPrice > 0 {
		v.Set("minPrice", strconv.FormatFloat(q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice > 0 {
		v.Set("maxPrice", strconv.FormatFloat(q.MaxPrice, 'f', -1, 64))
	}
	if q.PropertyType != "" {
		v.Set("propertyType", string(q.PropertyType))
	}
	if q.MinBedrooms > 0 {
		v.Set("minBedrooms", strconv.Itoa(q.MinBedrooms))
	}
	v.Set("limit", strconv.Itoa(limitOf(q)))
	return v
}

func limitOf(q models.PropertySearch) int {
	if q.Limit <= 0 {
		return DefaultLimit
	}
	return q.Limit
}

// ParseListings validates a listing API payload and maps it onto
// PropertyListing. Records without an id, address or positive price are
// dropped; optional fields are kept only when present with the right type.
func ParseListings(body []byte) ([]models.PropertyListing, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("listing response is not valid JSON")
	}
	arr := gjson.GetBytes(body, "listings")
	if !arr.IsArray() {
		return nil, errors.New("listing response has no listings array")
	}

	out := make([]models.PropertyListing, 0, len(arr.Array()))
	arr.ForEach(func(_, item gjson.Result) bool {
		id := item.Get("id").String()
		address := item.Get("address").String()
		price := item.Get("price")
		if id == "" || address == "" || price.Type != gjson.Number || price.Float() <= 0 {
			return true
		}

		l := models.PropertyListing{
			ID:            id,
			Address:       address,
			City:          item.Get("city").String(),
			Price:         price.Float(),
			PropertyType:  item.Get("propertyType").String(),
			IsNewBuild:    item.Get("isNewBuild").Bool(),
			Bedrooms:      optInt(item.Get("bedrooms")),
			Bathrooms:     optFloat(item.Get("bathrooms")),
			SquareFeet:    optInt(item.Get("sqft")),
			YearBuilt:     optInt(item.Get("yearBuilt")),
			PhotoURL:      optString(item.Get("photos.0")),
			ListingURL:    optString(item.Get("url")),
			Latitude:      optFloat(item.Get("location.lat")),
			Longitude:     optFloat(item.Get("location.lng")),
			MLSNumber:     optString(item.Get("mlsNumber")),
			DaysOnMarket:  optInt(item.Get("daysOnMarket")),
			StrataFee:     optFloat(item.Get("strataFee")),
			PropertyTaxes: optFloat(item.Get("taxes")),
		}
		l.PTTSavings = journey.CalculatePTTSavings(l.Price)
		out = append(out, l)
		return true
	})
	return out, nil
}

// Filter applies q to listings the upstream may not have filtered exactly.
func Filter(listings []models.PropertyListing, q models.PropertySearch) []models.PropertyListing {
	out := make([]models.PropertyListing, 0, len(listings))
	for _, l := range listings {
		switch {
		case q.MinPrice > 0 && l.Price < q.MinPrice:
			continue
		case q.MaxPrice > 0 && l.Price > q.MaxPrice:
			continue
		case q.PropertyType != "" && l.PropertyType != string(q.PropertyType):
			continue
		case q.MinBedrooms > 0 && (l.Bedrooms == nil || *l.Bedrooms < q.MinBedrooms):
			continue
		}
		out = append(out, l)
		if len(out) == limitOf(q) {
			break
		}
	}
	return out
}

func optInt(r gjson.Result) *int {
	if r.Type != gjson.Number {
		return nil
	}
	v := int(r.Int())
	return &v
}

func optFloat(r gjson.Result) *float64 {
	if r.Type != gjson.Number {
		return nil
	}
	v := r.Float()
	return &v
}

func optString(r gjson.Result) *string {
	if r.Type != gjson.String || r.String() == "" {
		return nil
	}
	v := r.String()
	return &v
}
