package coingecko

import "github.com/shopspring/decimal"

// AssetSummary is one entry of the /coins/markets listing.
type AssetSummary struct {
	ID            string              `json:"id"`
	Symbol        string              `json:"symbol"`
	Name          string              `json:"name"`
	CurrentPrice  Amount `json:"current_price"`
	TotalVolume   Amount `json:"total_volume"`
	MarketCapRank *int   `json:"market_cap_rank"`
}

// Amount is a nullable upstream number. A value that is not a number is
// read as null so one bad field cannot fail the whole listing.
type Amount struct {
	decimal.NullDecimal
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	if err := a.NullDecimal.UnmarshalJSON(data); err != nil {
		a.NullDecimal = decimal.NullDecimal{}
	}
	return nil
}

// TotalVolume sums the known volumes of assets.
func TotalVolume(assets []AssetSummary) decimal.Decimal {
	total := decimal.Zero
	for _, a := range assets {
		if a.TotalVolume.Valid {
			total = total.Add(a.TotalVolume.Decimal)
		}
	}
	return total
}

// ListParams selects one page of the /coins/markets listing.
type ListParams struct {
	Currency string
	Order    string
	PerPage  int
	Page     int
}

// DefaultListParams matches the upstream defaults for a volume-ordered listing.
var DefaultListParams = ListParams{
	Currency: "usd",
	Order:    "volume_desc",
	PerPage:  100,
	Page:     1,
}

func (p ListParams) withDefaults() ListParams {
	if p.Currency == "" {
		p.Currency = DefaultListParams.Currency
	}
	if p.Order == "" {
		p.Order = DefaultListParams.Order
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultListParams.PerPage
	}
	if p.Page <= 0 {
		p.Page = DefaultListParams.Page
	}
	return p
}
