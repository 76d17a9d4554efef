package domain

// Currency is the closed set of price currencies the storefront sells in.
type Currency string

const (
	CurrencyYER Currency = "YER"
	CurrencySAR Currency = "SAR"
	CurrencyUSD Currency = "USD"
)

func (c Currency) Valid() bool {
	switch c {
	case CurrencyYER, CurrencySAR, CurrencyUSD:
		return true
	}
	return false
}
