package crypto

// common.go - Contains common definitions used across the crypto package
// This file defines the network enumeration, the value types passed between
// the codecs and the deriver, and the error taxonomy.

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pkg/errors"
)

// Network selects the version bytes and human-readable prefixes used by every codec
type Network int

// Supported networks
const (
	Mainnet Network = iota
	Testnet
)

// String returns the lowercase network name
func (n Network) String() string {
	switch n {
	case Mainnet:
		return "mainnet"
	case Testnet:
		return "testnet"
	default:
		return fmt.Sprintf("network(%d)", int(n))
	}
}

// Params returns the btcd chain parameters holding the network's version bytes
func (n Network) Params() *chaincfg.Params {
	if n == Testnet {
		return &chaincfg.TestNet3Params
	}
	return &chaincfg.MainNetParams
}

// Valid reports whether n is one of the supported networks
func (n Network) Valid() bool {
	return n == Mainnet || n == Testnet
}

// ParseNetwork maps "mainnet"/"testnet" (and the usual aliases) to a Network
func ParseNetwork(name string) (Network, error) {
	switch strings.ToLower(name) {
	case "mainnet", "main", "bitcoin", "btc":
		return Mainnet, nil
	case "testnet", "test", "testnet3", "tb":
		return Testnet, nil
	default:
		return Mainnet, errors.Wrapf(ErrUnsupportedFormat, "unknown network %q", name)
	}
}

// Networks lists every supported network, mainnet first
var Networks = []Network{Mainnet, Testnet}

// Error kinds. Every error returned by this package matches exactly one of them
// under errors.Is.
var (
	ErrFormat            = errors.New("format error")
	ErrRange             = errors.New("range error")
	ErrUnsupportedFormat = errors.New("unsupported format")
)

// Common validation error messages
const (
	ErrInvalidLength         = "invalid length"
	ErrInvalidChars          = "invalid characters"
	ErrInvalidChecksum       = "invalid checksum"
	ErrInvalidVersion        = "invalid version byte"
	ErrInvalidPrefix         = "invalid human-readable prefix"
	ErrMixedCase             = "mixed case"
	ErrInvalidPadding        = "non-zero padding bits"
	ErrInvalidWitnessVersion = "invalid witness version"
	ErrInvalidProgramLength  = "invalid witness program length"
	ErrOuterWhitespace       = "leading or trailing whitespace"
	ErrEmptyInput            = "empty input"
	ErrScalarOutOfRange      = "scalar is zero or not below the curve order"
	ErrInvalidPublicKey      = "invalid public key"
	ErrCompressionFlag       = "invalid compression flag"
)

func formatError(msg string) error {
	return errors.Wrap(ErrFormat, msg)
}

func formatErrorf(format string, args ...interface{}) error {
	return errors.Wrapf(ErrFormat, format, args...)
}

// Kind normalizes err to one of ErrFormat, ErrRange or ErrUnsupportedFormat.
// Errors that carry none of the kinds (for example a panic-free failure inside a
// Curve implementation) are reported as ErrFormat. Kind(nil) is nil.
func Kind(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrRange):
		return ErrRange
	case errors.Is(err, ErrUnsupportedFormat):
		return ErrUnsupportedFormat
	default:
		return ErrFormat
	}
}

// DecodedBase58Payload is a checksum-verified P2PKH/P2SH payload
type DecodedBase58Payload struct {
	Version byte
	Body    [20]byte
}

// DecodedBech32 is a checksum-verified segwit address
type DecodedBech32 struct {
	HRP            string // always lowercase
	WitnessVersion byte
	Program        []byte
}

// PrivateKeyMaterial is a range-checked secp256k1 scalar with its WIF metadata
type PrivateKeyMaterial struct {
	Scalar     [32]byte
	Compressed bool
	Network    Network
}

// String keeps the scalar out of logs and formatted output
func (k PrivateKeyMaterial) String() string {
	return fmt.Sprintf("PrivateKeyMaterial{network: %s, compressed: %t, scalar: <redacted>}", k.Network, k.Compressed)
}

// GoString is the %#v counterpart of String
func (k PrivateKeyMaterial) GoString() string {
	return k.String()
}

// Wipe zeroes the scalar in place
func (k *PrivateKeyMaterial) Wipe() {
	for i := range k.Scalar {
		k.Scalar[i] = 0
	}
}

// PublicKey is a SEC-encoded secp256k1 point, 33 bytes compressed or 65 uncompressed
type PublicKey struct {
	b []byte
}

// NewPublicKey checks the SEC encoding header and length and copies b.
// It is meant for Curve implementations; the point itself is not verified.
func NewPublicKey(b []byte) (PublicKey, error) {
	switch {
	case len(b) == 33 && (b[0] == 0x02 || b[0] == 0x03):
	case len(b) == 65 && b[0] == 0x04:
	default:
		return PublicKey{}, formatErrorf("%s: %d bytes", ErrInvalidPublicKey, len(b))
	}
	return PublicKey{b: append([]byte(nil), b...)}, nil
}

// Bytes returns a copy of the serialized key
func (p PublicKey) Bytes() []byte {
	return append([]byte(nil), p.b...)
}

// Compressed reports whether the key is in 33-byte form
func (p PublicKey) Compressed() bool {
	return len(p.b) == 33
}

// DerivedAddressSet holds the three addresses controlled by one public key
type DerivedAddressSet struct {
	Network    Network
	P2PKH      string
	P2WPKH     string
	P2SHP2WPKH string
}
