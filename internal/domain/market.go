package domain

import "time"

// Crypto identifies one tracked asset and the foreign key its rows are stored under.
type Crypto struct {
	ID  int
	Key string
}

// Asset is the market summary of a cryptocurrency.
type Asset struct {
	ID                string  `json:"id"`
	Rank              string  `json:"rank"`
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Supply            *string `json:"supply"`
	MaxSupply         *string `json:"maxSupply"`
	MarketCapUsd      *string `json:"marketCapUsd"`
	VolumeUsd24Hr     *string `json:"volumeUsd24Hr"`
	PriceUsd          *string `json:"priceUsd"`
	ChangePercent24Hr *string `json:"changePercent24Hr"`
	Vwap24Hr          *string `json:"vwap24Hr"`
	Explorer          *string `json:"explorer"`
}

// PricePoint is one daily price sample.
type PricePoint struct {
	PriceUsd string    `json:"priceUsd"`
	Time     int64     `json:"time"`
	Date     time.Time `json:"date"`
}

// Market is one exchange listing of an asset.
type Market struct {
	ExchangeID    string  `json:"exchangeId"`
	BaseID        string  `json:"baseId"`
	QuoteID       string  `json:"quoteId"`
	BaseSymbol    string  `json:"baseSymbol"`
	QuoteSymbol   string  `json:"quoteSymbol"`
	VolumeUsd24Hr *string `json:"volumeUsd24Hr"`
	PriceUsd      *string `json:"priceUsd"`
	VolumePercent *string `json:"volumePercent"`
}
