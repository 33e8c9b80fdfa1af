package ui

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grendel/keyscope/internal/wallet"
	"github.com/grendel/keyscope/pkg/balance"
	"github.com/grendel/keyscope/pkg/crypto"
)

func TestPrintKeyReport(t *testing.T) {
	var buf bytes.Buffer
	cs := PlainColorScheme(&buf)

	wif := "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn"
	report := wallet.InspectKey(crypto.Codec{}, wif, crypto.Mainnet, true)
	require.True(t, report.Valid)

	PrintKeyReport(cs, report)
	out := buf.String()
	assert.Contains(t, out, "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH")
	assert.Contains(t, out, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")
	assert.Contains(t, out, "mainnet")
	assert.NotContains(t, out, wif)
}

func TestPrintKeyReportInvalid(t *testing.T) {
	var buf bytes.Buffer
	PrintKeyReport(PlainColorScheme(&buf), wallet.InspectKey(crypto.Codec{}, "nope", crypto.Mainnet, true))
	assert.Contains(t, buf.String(), "no")
	assert.Contains(t, buf.String(), "unsupported format")
}

func TestPrintAddressReport(t *testing.T) {
	var buf bytes.Buffer
	PrintAddressReport(PlainColorScheme(&buf), wallet.InspectAddress("3J98t1WpEZ73CNmQviecrnyiWrnqRhWNLy"))
	assert.Contains(t, buf.String(), "P2SH")
	assert.Contains(t, buf.String(), "base58")
	assert.Contains(t, buf.String(), "yes")
}

func TestPrintBalance(t *testing.T) {
	var buf bytes.Buffer
	PrintBalance(PlainColorScheme(&buf), balance.Balance{Confirmed: 150000000, Pending: -2, Total: 149999998})
	out := buf.String()
	assert.Contains(t, out, "150000000 sats (1.50000000 BTC)")
	assert.Contains(t, out, "-2 sats (-0.00000002 BTC)")
	assert.Contains(t, out, "149999998 sats (1.49999998 BTC)")
}

func TestPrintFooterTruncates(t *testing.T) {
	var buf bytes.Buffer
	long := string(bytes.Repeat([]byte("x"), 200))
	PrintFooter(PlainColorScheme(&buf), long)
	assert.Contains(t, buf.String(), "...")
	assert.NotContains(t, buf.String(), long)
}
