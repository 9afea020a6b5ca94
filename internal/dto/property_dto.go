package dto

// PropertySearchRequest filters an upstream property search.
type PropertySearchRequest struct {
	City         string `json:"city" validate:"required,min=1"`
	State        string `json:"state" validate:"required,len=2"`
	MinEquity    *int   `json:"min_equity"`
	AbsenteeOnly bool   `json:"absentee_only"`
	MinYearBuilt int    `json:"min_year_built"`
	MaxResults   int    `json:"max_results" validate:"omitempty,min=1,max=100"`
}

// AddressLookupRequest identifies a property by free-form address.
type AddressLookupRequest struct {
	Address string `json:"address" validate:"required,min=3"`
}

// BuyerSearchRequest filters the cash buyer aggregation.
type BuyerSearchRequest struct {
	City         string `json:"city" validate:"required,min=1"`
	State        string `json:"state" validate:"required,len=2"`
	MinPurchases int    `json:"min_purchases" validate:"omitempty,min=1"`
	MaxResults   int    `json:"max_results" validate:"omitempty,min=1,max=100"`
}

// Buyer is one aggregated portfolio buyer.
type Buyer struct {
	Name             string        `json:"name"`
	PurchaseCount    int           `json:"purchase_count"`
	RecentProperties []interface{} `json:"recent_properties"`
}

// BuyerSearchResponse wraps the aggregated buyer list.
type BuyerSearchResponse struct {
	Buyers []Buyer `json:"buyers"`
}
