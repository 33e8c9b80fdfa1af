package balance

import "github.com/shopspring/decimal"

// SatsPerBitcoin is the number of satoshis in one BTC
const SatsPerBitcoin = 100_000_000

// SatsToBtc renders a satoshi amount as BTC with exactly 8 fractional digits
func SatsToBtc(sats int64) string {
	return decimal.NewFromInt(sats).Div(decimal.NewFromInt(SatsPerBitcoin)).StringFixed(8)
}

// String formats the balance in BTC
func (b Balance) String() string {
	return "confirmed " + SatsToBtc(b.Confirmed) + " BTC, pending " + SatsToBtc(b.Pending) + " BTC, total " + SatsToBtc(b.Total) + " BTC"
}
