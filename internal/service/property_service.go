package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/rei-nationwide/platform-api/internal/dto"
	"github.com/rei-nationwide/platform-api/pkg/realestate"
)

// ErrAddressNotFound indicates address autocomplete produced no candidates.
var ErrAddressNotFound = errors.New("address not found")

const (
	defaultMinEquity     = 40
	defaultSearchResults = 10
	defaultBuyerResults  = 20
	defaultMinPurchases  = 2
	compsRadiusMiles     = 0.5
	buyerLookbackDays    = 365
)

// PropertyGateway is the outbound contract to the property data provider.
// *realestate.Client satisfies it; tests provide stubs.
type PropertyGateway interface {
	AutoComplete(ctx context.Context, search string) realestate.Result
	PropertyDetail(ctx context.Context, addressID string) realestate.Result
	PropertySearch(ctx context.Context, filters []realestate.Filter, size int) realestate.Result
	SkipTrace(ctx context.Context, addressID string) realestate.Result
	PropertyComps(ctx context.Context, addressID string, radius float64) realestate.Result
}

// LookupResult pairs the autocomplete candidates with the property detail.
// Either half may itself be a degraded upstream value.
type LookupResult struct {
	Autocomplete realestate.Result `json:"autocomplete"`
	Detail       realestate.Result `json:"detail"`
}

// PropertyService fronts the property data provider for search, lookup,
// comparable sales, skip tracing and buyer aggregation.
type PropertyService interface {
	Search(ctx context.Context, req dto.PropertySearchRequest) (realestate.Result, error)
	Lookup(ctx context.Context, req dto.AddressLookupRequest) (LookupResult, error)
	Comps(ctx context.Context, req dto.AddressLookupRequest) (realestate.Result, error)
	SkipTrace(ctx context.Context, req dto.AddressLookupRequest) (realestate.Result, error)
	SearchBuyers(ctx context.Context, req dto.BuyerSearchRequest) (dto.BuyerSearchResponse, error)
}

type propertyService struct {
	gateway   PropertyGateway
	validator *validator.Validate
	logger    zerolog.Logger
	now       func() time.Time
}

// NewPropertyService constructs the property service.
func NewPropertyService(gateway PropertyGateway, validate *validator.Validate, logger zerolog.Logger) PropertyService {
	return &propertyService{
		gateway:   gateway,
		validator: validate,
		logger:    logger.With().Str("component", "property_service").Logger(),
		now:       time.Now,
	}
}

func (s *propertyService) Search(ctx context.Context, req dto.PropertySearchRequest) (realestate.Result, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	filters := []realestate.Filter{
		{Field: "city", Value: req.City, Operator: "="},
		{Field: "state", Value: req.State, Operator: "="},
	}

	minEquity := defaultMinEquity
	if req.MinEquity != nil {
		minEquity = *req.MinEquity
	}
	if minEquity > 0 {
		filters = append(filters, realestate.Filter{Field: "equity_percent", Value: minEquity, Operator: "ge"})
	}
	if req.AbsenteeOnly {
		filters = append(filters, realestate.Filter{Field: "absentee_owner", Value: true, Operator: "="})
	}
	if req.MinYearBuilt > 0 {
		filters = append(filters, realestate.Filter{Field: "year_built", Value: req.MinYearBuilt, Operator: "ge"})
	}

	size := req.MaxResults
	if size <= 0 {
		size = defaultSearchResults
	}

	return s.gateway.PropertySearch(ctx, filters, size), nil
}

func (s *propertyService) Lookup(ctx context.Context, req dto.AddressLookupRequest) (LookupResult, error) {
	autocomplete, addressID, err := s.resolveAddress(ctx, req)
	if err != nil {
		return LookupResult{}, err
	}

	detail := s.gateway.PropertyDetail(ctx, addressID)

	return LookupResult{Autocomplete: autocomplete, Detail: detail}, nil
}

func (s *propertyService) Comps(ctx context.Context, req dto.AddressLookupRequest) (realestate.Result, error) {
	_, addressID, err := s.resolveAddress(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.gateway.PropertyComps(ctx, addressID, compsRadiusMiles), nil
}

func (s *propertyService) SkipTrace(ctx context.Context, req dto.AddressLookupRequest) (realestate.Result, error) {
	_, addressID, err := s.resolveAddress(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.gateway.SkipTrace(ctx, addressID), nil
}

func (s *propertyService) SearchBuyers(ctx context.Context, req dto.BuyerSearchRequest) (dto.BuyerSearchResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return dto.BuyerSearchResponse{}, err
	}

	minPurchases := req.MinPurchases
	if minPurchases <= 0 {
		minPurchases = defaultMinPurchases
	}
	maxResults := req.MaxResults
	if maxResults <= 0 {
		maxResults = defaultBuyerResults
	}

	cutoff := s.now().AddDate(0, 0, -buyerLookbackDays).Format("2006-01-02")
	filters := []realestate.Filter{
		{Field: "city", Value: req.City, Operator: "="},
		{Field: "state", Value: req.State, Operator: "="},
		{Field: "last_sale_date", Value: cutoff, Operator: "ge"},
	}

	result := s.gateway.PropertySearch(ctx, filters, maxResults)
	buyers := aggregateBuyers(result.Data(), minPurchases)
	if len(buyers) > maxResults {
		buyers = buyers[:maxResults]
	}

	return dto.BuyerSearchResponse{Buyers: buyers}, nil
}

// resolveAddress turns a free-form address into an upstream address id. Only
// an empty candidate list maps to ErrAddressNotFound; a degraded autocomplete
// yields no candidates and is treated the same way.
func (s *propertyService) resolveAddress(ctx context.Context, req dto.AddressLookupRequest) (realestate.Result, string, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, "", err
	}

	autocomplete := s.gateway.AutoComplete(ctx, req.Address)
	candidates := autocomplete.Data()
	if len(candidates) == 0 {
		return nil, "", ErrAddressNotFound
	}

	first, ok := candidates[0].(map[string]interface{})
	if !ok {
		return nil, "", ErrAddressNotFound
	}
	addressID, ok := first["address_id"].(string)
	if !ok || addressID == "" {
		return nil, "", ErrAddressNotFound
	}

	return autocomplete, addressID, nil
}

// aggregateBuyers groups properties by owner name and keeps owners whose
// purchase count reaches the threshold, most active first.
func aggregateBuyers(properties []interface{}, minPurchases int) []dto.Buyer {
	type ownerGroup struct {
		count      int
		properties []interface{}
	}

	groups := make(map[string]*ownerGroup)
	order := make([]string, 0)

	for _, raw := range properties {
		property, ok := raw.(map[string]interface{})
		if !ok {
			continue
		}

		name := ownerName(property["owner"])
		if name == "" {
			continue
		}

		group, seen := groups[name]
		if !seen {
			group = &ownerGroup{}
			groups[name] = group
			order = append(order, name)
		}
		group.count++
		group.properties = append(group.properties, property)
	}

	buyers := make([]dto.Buyer, 0, len(groups))
	for _, name := range order {
		group := groups[name]
		if group.count < minPurchases {
			continue
		}

		recent := group.properties
		if len(recent) > 3 {
			recent = recent[:3]
		}
		buyers = append(buyers, dto.Buyer{Name: name, PurchaseCount: group.count, RecentProperties: recent})
	}

	sort.SliceStable(buyers, func(i, j int) bool {
		return buyers[i].PurchaseCount > buyers[j].PurchaseCount
	})

	return buyers
}

func ownerName(owner interface{}) string {
	switch v := owner.(type) {
	case map[string]interface{}:
		if name, ok := v["name"].(string); ok {
			return name
		}
		return ""
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}
