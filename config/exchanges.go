package config

// Exchange identifies one of the supported venues. The set is closed:
// gateway behavior, catalog rows and API validation all key off it.
type Exchange string

// Supported exchanges.
const (
	Binance Exchange = "binance"
	Okx     Exchange = "okx"
	Bybit   Exchange = "bybit"
	Mexc    Exchange = "mexc"
	Bingx   Exchange = "bingx"
	Gateio  Exchange = "gateio"
	Kucoin  Exchange = "kucoin"
)

// SupportedExchanges returns the closed exchange set in a stable order.
func SupportedExchanges() []Exchange {
	return []Exchange{Binance, Okx, Bybit, Mexc, Bingx, Gateio, Kucoin}
}

// IsSupportedExchange reports whether name belongs to the closed set.
func IsSupportedExchange(name string) bool {
	for _, e := range SupportedExchanges() {
		if string(e) == name {
			return true
		}
	}
	return false
}

func (e Exchange) String() string {
	return string(e)
}

// ExchangeNames returns the supported set as plain strings.
func ExchangeNames() []string {
	exchanges := SupportedExchanges()
	names := make([]string, len(exchanges))
	for i, e := range exchanges {
		names[i] = string(e)
	}
	return names
}
