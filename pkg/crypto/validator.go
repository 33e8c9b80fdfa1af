package crypto

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip39"

	"github.com/grendel/keyscope/pkg/common"
)

// AddressKind is the encoding family of an address string
type AddressKind int

// Address kinds
const (
	AddressBase58 AddressKind = iota
	AddressBech32
)

func (k AddressKind) String() string {
	if k == AddressBech32 {
		return "bech32"
	}
	return "base58"
}

// KeyKind is the sniffed format of a private key string
type KeyKind int

// Key kinds
const (
	KeyUnrecognized KeyKind = iota
	KeyWIF
	KeyHex
	KeyMnemonic
)

func (k KeyKind) String() string {
	switch k {
	case KeyWIF:
		return "wif"
	case KeyHex:
		return "hex"
	case KeyMnemonic:
		return "mnemonic"
	default:
		return "unrecognized"
	}
}

// wifLeadChars are the first characters of mainnet (5, K, L) and testnet (9, c) WIF keys
const wifLeadChars = "5KL9c"

// ClassifyAddress picks the codec by prefix: "bc1"/"tb1" in any case is Bech32,
// everything else Base58.
func ClassifyAddress(input string) AddressKind {
	if common.HasPrefixFold(input, "bc1") || common.HasPrefixFold(input, "tb1") {
		return AddressBech32
	}
	return AddressBase58
}

// ClassifyPrivateKey sniffs the key format without parsing it. A 64-digit hex
// string is checked before the WIF lead characters because 5, 9 and c are also
// hex digits.
func ClassifyPrivateKey(input string) KeyKind {
	if common.IsBlank(input) || common.HasOuterSpace(input) {
		return KeyUnrecognized
	}

	if digits := common.TrimHexPrefix(input); len(digits) == 64 && common.IsHex(digits) {
		return KeyHex
	}
	if strings.Contains(input, " ") {
		if isMnemonic(input) {
			return KeyMnemonic
		}
		return KeyUnrecognized
	}
	if strings.IndexByte(wifLeadChars, input[0]) >= 0 {
		return KeyWIF
	}
	return KeyUnrecognized
}

func isMnemonic(input string) bool {
	switch len(strings.Fields(input)) {
	case 12, 15, 18, 21, 24:
		return bip39.IsMnemonicValid(input)
	default:
		return false
	}
}

// IsValidAddress validates a Bech32/Bech32m address on mainnet or testnet, or a
// mainnet Base58Check P2PKH/P2SH address.
func IsValidAddress(address string) bool {
	if common.IsBlank(address) {
		return false
	}
	if ClassifyAddress(address) == AddressBech32 {
		return IsValidBech32Address(address)
	}
	return IsValidBase58Address(address)
}

// IsValidAddressOn validates an address of either family for one network only
func IsValidAddressOn(address string, net Network) bool {
	if common.IsBlank(address) || !net.Valid() {
		return false
	}
	if ClassifyAddress(address) == AddressBase58 {
		return IsValidBase58Address(address, net)
	}
	decoded, err := DecodeSegwitAddress(address)
	return err == nil && decoded.HRP == net.Params().Bech32HRPSegwit
}

// normalize makes sure err carries one of the three error kinds so curve
// failures never surface as unrelated errors
func normalize(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrFormat) || errors.Is(err, ErrRange) || errors.Is(err, ErrUnsupportedFormat) {
		return err
	}
	return errors.Wrap(ErrFormat, err.Error())
}

// publicKey runs the curve and converts a panic inside it into an error
func (c Codec) publicKey(k PrivateKeyMaterial) (pub PublicKey, err error) {
	defer func() {
		if r := recover(); r != nil {
			pub, err = PublicKey{}, formatErrorf("curve failure: %v", r)
		}
	}()

	pub, err = c.curve().PublicKey(k.Scalar, k.Compressed)
	if err != nil {
		return PublicKey{}, normalize(err)
	}
	if pub.Compressed() != k.Compressed || len(pub.b) == 0 {
		return PublicKey{}, formatError(ErrInvalidPublicKey)
	}
	return pub, nil
}

// ParsePrivateKey sniffs the format and parses accordingly. net and compressed
// only apply to hex keys; WIF carries its own.
func (c Codec) ParsePrivateKey(input string, net Network, compressed bool) (PrivateKeyMaterial, error) {
	switch ClassifyPrivateKey(input) {
	case KeyWIF:
		return c.ParseWIF(input)
	case KeyHex:
		return c.ParseHex(input, net, compressed)
	case KeyMnemonic:
		return PrivateKeyMaterial{}, errors.Wrap(ErrUnsupportedFormat, "seed phrases need HD derivation, which is not supported")
	default:
		return PrivateKeyMaterial{}, errors.Wrap(ErrUnsupportedFormat, "not a WIF or hex private key")
	}
}

// IsValidPrivateKeyWIF reports whether wif parses as a mainnet or testnet WIF key
func (c Codec) IsValidPrivateKeyWIF(wif string) bool {
	k, err := c.ParseWIF(wif)
	k.Wipe()
	return err == nil
}

// IsValidPrivateKeyHex reports whether hex is a 64-digit in-range scalar
func (c Codec) IsValidPrivateKeyHex(hex string) bool {
	k, err := c.ParseHex(hex, Mainnet, true)
	k.Wipe()
	return err == nil
}

// DeriveFromKey derives the address set controlled by k
func (c Codec) DeriveFromKey(k PrivateKeyMaterial) (DerivedAddressSet, error) {
	if !k.Network.Valid() {
		return DerivedAddressSet{}, errors.Wrapf(ErrUnsupportedFormat, "network %s", k.Network)
	}
	pub, err := c.publicKey(k)
	if err != nil {
		return DerivedAddressSet{}, err
	}
	return DeriveAddresses(pub, k.Network), nil
}

// DeriveFromWIF derives the address set of a WIF key on the network its version
// byte names
func (c Codec) DeriveFromWIF(wif string) (DerivedAddressSet, error) {
	k, err := c.ParseWIF(wif)
	if err != nil {
		return DerivedAddressSet{}, normalize(err)
	}
	defer k.Wipe()
	return c.DeriveFromKey(k)
}

// DeriveFromHex derives the address set of a hex key on net
func (c Codec) DeriveFromHex(hex string, net Network, compressed bool) (DerivedAddressSet, error) {
	k, err := c.ParseHex(hex, net, compressed)
	if err != nil {
		return DerivedAddressSet{}, normalize(err)
	}
	defer k.Wipe()
	return c.DeriveFromKey(k)
}

// IsValidPrivateKeyWIF validates a WIF key with the default curve
func IsValidPrivateKeyWIF(wif string) bool {
	return defaultCodec.IsValidPrivateKeyWIF(wif)
}

// IsValidPrivateKeyHex validates a hex key with the default curve
func IsValidPrivateKeyHex(hex string) bool {
	return defaultCodec.IsValidPrivateKeyHex(hex)
}

// DeriveFromWIF derives addresses with the default curve
func DeriveFromWIF(wif string) (DerivedAddressSet, error) {
	return defaultCodec.DeriveFromWIF(wif)
}

// DeriveFromHex derives addresses with the default curve
func DeriveFromHex(hex string, net Network, compressed bool) (DerivedAddressSet, error) {
	return defaultCodec.DeriveFromHex(hex, net, compressed)
}

// ParsePrivateKey sniffs and parses a key with the default curve
func ParsePrivateKey(input string, net Network, compressed bool) (PrivateKeyMaterial, error) {
	return defaultCodec.ParsePrivateKey(input, net, compressed)
}

// String renders the set one address per line
func (s DerivedAddressSet) String() string {
	return fmt.Sprintf("network: %s\np2pkh: %s\np2wpkh: %s\np2sh-p2wpkh: %s", s.Network, s.P2PKH, s.P2WPKH, s.P2SHP2WPKH)
}
