package crypto

import (
	"bytes"
	"strings"

	"github.com/btcsuite/btcd/btcutil/base58"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/grendel/keyscope/pkg/common"
)

// Base58Alphabet defines the Bitcoin Base58 alphabet
const Base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

const (
	checksumSize = 4
	// Longest Base58Check string we bother decoding. Addresses are at most 35
	// characters and WIF keys 52; the base58 conversion is quadratic.
	maxBase58Len = 128
)

// decodeCheck decodes a Base58Check string into its version byte and payload.
// Nothing is returned unless the double-SHA256 checksum matches.
func decodeCheck(input string) (byte, []byte, error) {
	if input == "" {
		return 0, nil, formatError(ErrEmptyInput)
	}
	if common.HasOuterSpace(input) {
		return 0, nil, formatError(ErrOuterWhitespace)
	}
	if len(input) > maxBase58Len {
		return 0, nil, formatErrorf("%s: %d characters", ErrInvalidLength, len(input))
	}
	for i := 0; i < len(input); i++ {
		if strings.IndexByte(Base58Alphabet, input[i]) < 0 {
			return 0, nil, formatErrorf("%s: %q at position %d", ErrInvalidChars, input[i], i)
		}
	}

	raw := base58.Decode(input)
	if len(raw) < 1+checksumSize {
		return 0, nil, formatError(ErrInvalidLength)
	}

	n := len(raw) - checksumSize
	sum := chainhash.DoubleHashB(raw[:n])
	if !bytes.Equal(sum[:checksumSize], raw[n:]) {
		return 0, nil, formatError(ErrInvalidChecksum)
	}
	return raw[0], raw[1:n], nil
}

// encodeCheck is the inverse of decodeCheck
func encodeCheck(version byte, payload []byte) string {
	buf := make([]byte, 0, 1+len(payload)+checksumSize)
	buf = append(buf, version)
	buf = append(buf, payload...)
	sum := chainhash.DoubleHashB(buf)
	buf = append(buf, sum[:checksumSize]...)
	return base58.Encode(buf)
}

// DecodeBase58Check decodes a P2PKH/P2SH style string: one version byte followed
// by a 20-byte hash, protected by a 4-byte checksum.
func DecodeBase58Check(input string) (DecodedBase58Payload, error) {
	version, body, err := decodeCheck(input)
	if err != nil {
		return DecodedBase58Payload{}, err
	}
	if len(body) != 20 {
		return DecodedBase58Payload{}, formatErrorf("%s: payload is %d bytes, want 21", ErrInvalidLength, len(body)+1)
	}

	out := DecodedBase58Payload{Version: version}
	copy(out.Body[:], body)
	return out, nil
}

// EncodeBase58Check encodes a version byte and 20-byte hash. The result always
// round-trips through DecodeBase58Check.
func EncodeBase58Check(version byte, body [20]byte) string {
	return encodeCheck(version, body[:])
}

// IsValidBase58Address reports whether input is a P2PKH or P2SH address for one
// of the given networks. With no networks only mainnet version bytes (0x00, 0x05)
// are accepted; testnet bytes must be asked for explicitly.
func IsValidBase58Address(input string, nets ...Network) bool {
	decoded, err := DecodeBase58Check(input)
	if err != nil {
		return false
	}
	if len(nets) == 0 {
		nets = []Network{Mainnet}
	}
	for _, net := range nets {
		if !net.Valid() {
			continue
		}
		params := net.Params()
		if decoded.Version == params.PubKeyHashAddrID || decoded.Version == params.ScriptHashAddrID {
			return true
		}
	}
	return false
}
