package enums

import (
	"fmt"
	"strings"
)

// CryptoCurrency is a gateway ticker such as "btc" or "usdttrc20".
type CryptoCurrency string

const (
	CryptoBTC       CryptoCurrency = "btc"
	CryptoETH       CryptoCurrency = "eth"
	CryptoLTC       CryptoCurrency = "ltc"
	CryptoTRX       CryptoCurrency = "trx"
	CryptoUSDTTRC20 CryptoCurrency = "usdttrc20"
	CryptoUSDTERC20 CryptoCurrency = "usdterc20"
	CryptoUSDCERC20 CryptoCurrency = "usdc"
	CryptoSOL       CryptoCurrency = "sol"
)

// uriSchemes maps a ticker to the wallet URI scheme of its chain.
var uriSchemes = map[CryptoCurrency]string{
	CryptoBTC:       "bitcoin",
	CryptoETH:       "ethereum",
	CryptoLTC:       "litecoin",
	CryptoTRX:       "tron",
	CryptoUSDTTRC20: "tron",
	CryptoUSDTERC20: "ethereum",
	CryptoUSDCERC20: "ethereum",
	CryptoSOL:       "solana",
}

// NormalizeCryptoCurrency lowercases and trims a raw ticker.
func NormalizeCryptoCurrency(value string) CryptoCurrency {
	return CryptoCurrency(strings.ToLower(strings.TrimSpace(value)))
}

// String implements fmt.Stringer.
func (c CryptoCurrency) String() string {
	return string(c)
}

// IsValid reports whether the ticker is one we can build a URI for.
func (c CryptoCurrency) IsValid() bool {
	_, ok := uriSchemes[c]
	return ok
}

// URIScheme returns the wallet URI scheme, or false for unknown tickers.
func (c CryptoCurrency) URIScheme() (string, bool) {
	scheme, ok := uriSchemes[c]
	return scheme, ok
}

// Display returns the upper-case ticker shown to users.
func (c CryptoCurrency) Display() string {
	return strings.ToUpper(string(c))
}

// ParseCryptoCurrency converts raw input into a known CryptoCurrency.
func ParseCryptoCurrency(value string) (CryptoCurrency, error) {
	c := NormalizeCryptoCurrency(value)
	if !c.IsValid() {
		return "", fmt.Errorf("invalid crypto currency %q", value)
	}
	return c, nil
}
