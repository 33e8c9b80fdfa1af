package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grendel/keyscope/pkg/balance"
	"github.com/grendel/keyscope/pkg/crypto"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCommand(&out, strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestHelpWithoutArgs(t *testing.T) {
	out, err := run(t, "")
	require.NoError(t, err)
	assert.Contains(t, out, "USAGE:")
	assert.Contains(t, out, ExplorerEnv)
}

func TestAddressCommand(t *testing.T) {
	out, err := run(t, "", "address", "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq")
	require.NoError(t, err)
	assert.Contains(t, out, "P2PKH")
	assert.Contains(t, out, "P2WPKH")

	out, err = run(t, "", "address", "bc1Qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2", "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2")
	require.Error(t, err)
	assert.Equal(t, "1 of 2 addresses invalid", err.Error())
	assert.Equal(t, 2, strings.Count(out, "Address:"), "duplicates are skipped")
	assert.Contains(t, out, "1 of 2 addresses valid")

	_, err = run(t, "", "address", "--network", "regtest", "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2")
	require.Error(t, err)
}

func TestAddressCommandFile(t *testing.T) {
	list := "# watch list\n1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2\n\nbc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq\n"
	out, err := run(t, list, "address", "--file", "-")
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(out, "Address:"))
	assert.Contains(t, out, "2 of 2 addresses valid")

	_, err = run(t, "not-an-address\n", "address", "-f", "-", "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2")
	require.Error(t, err)
	assert.Equal(t, "1 of 2 addresses invalid", err.Error())

	_, err = run(t, "", "address")
	require.Error(t, err)

	_, err = run(t, "", "address", "--file", "/nonexistent/keyscope-list.txt")
	require.Error(t, err)
}

func TestKeyCommand(t *testing.T) {
	wif := "KwDiBf89QgGbjEhKnhXJuH7LrciVrZi3qYjgd9M7rFU73sVHnoWn"
	out, err := run(t, "", "key", wif)
	require.NoError(t, err)
	assert.Contains(t, out, "1BgGZ9tcN4rm9KBzDn7KprQz87SZ26SAMH")
	assert.NotContains(t, out, wif)

	out, err = run(t, wif+"\n", "key", "--curve", "ethereum", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "bc1qw508d6qejxtdg4y5r3zarvary0c5xw7kv8f3t4")

	out, err = run(t, "", "key", "--network", "testnet", "--uncompressed", "0x0000000000000000000000000000000000000000000000000000000000000001")
	require.NoError(t, err)
	assert.Contains(t, out, "testnet")
	assert.Contains(t, out, "false")

	_, err = run(t, "", "key", strings.Repeat("00", 32))
	require.Error(t, err)

	_, err = run(t, "", "key", "--curve", "ed25519", wif)
	require.Error(t, err)
}

func TestBalanceCommand(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chain_stats":{"funded_txo_sum":300,"spent_txo_sum":100},"mempool_stats":{"funded_txo_sum":5,"spent_txo_sum":0}}`))
	}))
	defer srv.Close()

	out, err := run(t, "", "balance", "--explorer", srv.URL, "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq")
	require.NoError(t, err)
	assert.Contains(t, out, "205 sats (0.00000205 BTC)")
}

func TestBalanceCommandInfersSegwitNetwork(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"chain_stats":{"funded_txo_sum":1000,"spent_txo_sum":0},"mempool_stats":{"funded_txo_sum":0,"spent_txo_sum":0}}`))
	}))
	defer srv.Close()

	testnetAddress := "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx"
	out, err := run(t, "", "balance", "--explorer", srv.URL, testnetAddress)
	require.NoError(t, err)
	assert.Equal(t, "/address/"+testnetAddress, path)
	assert.Contains(t, out, "testnet")
	assert.Contains(t, out, "1000 sats (0.00001000 BTC)")

	_, err = run(t, "", "balance", "--explorer", srv.URL, "--network", "mainnet", testnetAddress)
	require.Error(t, err)
}

func TestBalanceNetwork(t *testing.T) {
	tests := []struct {
		flag    string
		address string
		want    crypto.Network
	}{
		{"", "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", crypto.Testnet},
		{"", "TB1QW508D6QEJXTDG4Y5R3ZARVARY0C5XW7KXPJZSX", crypto.Testnet},
		{"", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq", crypto.Mainnet},
		{"", "mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn", crypto.Mainnet},
		{"testnet", "mipcBbFg9gMiCh81Kj8tqqdgoZub1ZJRfn", crypto.Testnet},
		{"mainnet", "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", crypto.Mainnet},
	}
	for _, tt := range tests {
		net, err := balanceNetwork(tt.flag, tt.address)
		require.NoError(t, err)
		assert.Equal(t, tt.want, net, "%s %s", tt.flag, tt.address)
	}

	_, err := balanceNetwork("regtest", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq")
	assert.Error(t, err)
}

func TestBalanceCommandUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	t.Setenv(ExplorerEnv, srv.URL)
	out, err := run(t, "", "balance", "bc1qar0srrr7xfkvy5l643lydnw9re59gtzzwf5mdq")
	require.Error(t, err)
	assert.ErrorIs(t, err, balance.ErrLookupUnavailable)
	assert.Contains(t, out, "Balance unknown")
}

func TestReadKey(t *testing.T) {
	key, err := readKey("-", strings.NewReader("abc\r\nignored"))
	require.NoError(t, err)
	assert.Equal(t, "abc", key)

	key, err = readKey("-", strings.NewReader("no newline"))
	require.NoError(t, err)
	assert.Equal(t, "no newline", key)

	key, err = readKey("literal", nil)
	require.NoError(t, err)
	assert.Equal(t, "literal", key)
}
