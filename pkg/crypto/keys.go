package crypto

import (
	"encoding/hex"
	"fmt"

	"github.com/pkg/errors"

	"github.com/grendel/keyscope/pkg/common"
)

// Codec binds the address and key operations to a Curve. The zero value uses
// Secp256k1. Codec holds no state and is safe to copy and share.
type Codec struct {
	Curve Curve
}

// NewCodec returns a Codec backed by curve
func NewCodec(curve Curve) Codec {
	return Codec{Curve: curve}
}

var defaultCodec = Codec{Curve: Secp256k1{}}

func (c Codec) curve() Curve {
	if c.Curve == nil {
		return Secp256k1{}
	}
	return c.Curve
}

// checkScalar applies the curve range check to a decoded key
func (c Codec) checkScalar(k PrivateKeyMaterial) (PrivateKeyMaterial, error) {
	if !c.curve().IsValidScalar(k.Scalar) {
		k.Wipe()
		return PrivateKeyMaterial{}, errors.Wrap(ErrRange, ErrScalarOutOfRange)
	}
	return k, nil
}

// ParseWIFNetwork decodes a WIF key whose version byte must belong to net
func (c Codec) ParseWIFNetwork(input string, net Network) (PrivateKeyMaterial, error) {
	if !net.Valid() {
		return PrivateKeyMaterial{}, errors.Wrapf(ErrUnsupportedFormat, "network %s", net)
	}

	version, payload, err := decodeCheck(input)
	if err != nil {
		return PrivateKeyMaterial{}, err
	}
	defer wipe(payload)

	if version != net.Params().PrivateKeyID {
		return PrivateKeyMaterial{}, &versionError{version: version, net: net}
	}

	k := PrivateKeyMaterial{Network: net}
	switch len(payload) {
	case 32:
	case 33:
		if payload[32] != 0x01 {
			return PrivateKeyMaterial{}, formatErrorf("%s 0x%02x", ErrCompressionFlag, payload[32])
		}
		k.Compressed = true
	default:
		return PrivateKeyMaterial{}, formatErrorf("%s: WIF payload is %d bytes", ErrInvalidLength, len(payload)+1)
	}
	copy(k.Scalar[:], payload[:32])

	return c.checkScalar(k)
}

// ParseWIF decodes a WIF key, trying mainnet first and testnet second. Only a
// format failure triggers the second attempt; a range failure is final.
func (c Codec) ParseWIF(input string) (PrivateKeyMaterial, error) {
	k, err := c.ParseWIFNetwork(input, Mainnet)
	if err == nil || !errors.Is(err, ErrFormat) {
		return k, err
	}

	k, testErr := c.ParseWIFNetwork(input, Testnet)
	if testErr == nil || !errors.Is(testErr, ErrFormat) {
		return k, testErr
	}

	// A testnet key fails the mainnet attempt on its version byte, so the testnet
	// error is the specific one unless that attempt failed on the version too.
	var verr *versionError
	if !errors.As(testErr, &verr) {
		err = testErr
	}
	return PrivateKeyMaterial{}, errors.Wrap(err, "not a mainnet or testnet WIF")
}

// versionError is the FormatError for a WIF version byte of the wrong network
type versionError struct {
	version byte
	net     Network
}

func (e *versionError) Error() string {
	return fmt.Sprintf("%s 0x%02x for %s WIF: %v", ErrInvalidVersion, e.version, e.net, ErrFormat)
}

func (e *versionError) Unwrap() error {
	return ErrFormat
}

// ParseHex decodes a 64-digit hex scalar with an optional 0x prefix. Hex carries
// no network or compression metadata, so the caller supplies both.
func (c Codec) ParseHex(input string, net Network, compressed bool) (PrivateKeyMaterial, error) {
	if !net.Valid() {
		return PrivateKeyMaterial{}, errors.Wrapf(ErrUnsupportedFormat, "network %s", net)
	}
	if input == "" {
		return PrivateKeyMaterial{}, formatError(ErrEmptyInput)
	}
	if common.HasOuterSpace(input) {
		return PrivateKeyMaterial{}, formatError(ErrOuterWhitespace)
	}

	digits := common.TrimHexPrefix(input)
	if len(digits) != 64 {
		return PrivateKeyMaterial{}, formatErrorf("%s: %d hex digits, want 64", ErrInvalidLength, len(digits))
	}
	if !common.IsHex(digits) {
		return PrivateKeyMaterial{}, formatError(ErrInvalidChars)
	}

	k := PrivateKeyMaterial{Network: net, Compressed: compressed}
	if _, err := hex.Decode(k.Scalar[:], []byte(digits)); err != nil {
		return PrivateKeyMaterial{}, formatError(err.Error())
	}
	return c.checkScalar(k)
}

// EncodeWIF serializes a key in Wallet Import Format for its network
func EncodeWIF(k PrivateKeyMaterial) string {
	payload := make([]byte, 0, 33)
	payload = append(payload, k.Scalar[:]...)
	if k.Compressed {
		payload = append(payload, 0x01)
	}
	defer wipe(payload)
	return encodeCheck(k.Network.Params().PrivateKeyID, payload)
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// ParseWIF decodes a WIF key with the default curve
func ParseWIF(input string) (PrivateKeyMaterial, error) {
	return defaultCodec.ParseWIF(input)
}

// ParseHex decodes a hex key with the default curve
func ParseHex(input string, net Network, compressed bool) (PrivateKeyMaterial, error) {
	return defaultCodec.ParseHex(input, net, compressed)
}
