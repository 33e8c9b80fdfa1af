package crypto

import (
	"github.com/btcsuite/btcd/btcec/v2"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

// Curve is the secp256k1 capability the codec needs. Implementations must be safe
// for concurrent use and should run in constant time with respect to the scalar.
type Curve interface {
	// PublicKey multiplies the generator by scalar and serializes the point,
	// 33 bytes when compressed, 65 otherwise
	PublicKey(scalar [32]byte, compressed bool) (PublicKey, error)

	// IsValidScalar reports whether 1 <= scalar <= n-1
	IsValidScalar(scalar [32]byte) bool
}

// Secp256k1 is the default Curve, backed by btcec
type Secp256k1 struct{}

// IsValidScalar checks the range without branching on the scalar bytes
func (Secp256k1) IsValidScalar(scalar [32]byte) bool {
	var s btcec.ModNScalar
	overflow := s.SetBytes(&scalar)
	zero := s.IsZero()
	s.Zero()
	return overflow == 0 && !zero
}

// PublicKey derives the SEC-encoded public key
func (c Secp256k1) PublicKey(scalar [32]byte, compressed bool) (PublicKey, error) {
	// PrivKeyFromBytes reduces modulo n, so out-of-range input must not reach it
	if !c.IsValidScalar(scalar) {
		return PublicKey{}, errors.Wrap(ErrRange, ErrScalarOutOfRange)
	}

	priv, pub := btcec.PrivKeyFromBytes(scalar[:])
	defer priv.Zero()

	if compressed {
		return PublicKey{b: pub.SerializeCompressed()}, nil
	}
	return PublicKey{b: pub.SerializeUncompressed()}, nil
}

// EthereumCurve implements Curve with go-ethereum's crypto package. Its range
// check goes through math/big and is not constant time.
type EthereumCurve struct{}

// IsValidScalar reports whether go-ethereum accepts the scalar as a private key
func (EthereumCurve) IsValidScalar(scalar [32]byte) bool {
	_, err := ethcrypto.ToECDSA(scalar[:])
	return err == nil
}

// PublicKey derives the SEC-encoded public key
func (EthereumCurve) PublicKey(scalar [32]byte, compressed bool) (PublicKey, error) {
	priv, err := ethcrypto.ToECDSA(scalar[:])
	if err != nil {
		return PublicKey{}, errors.Wrap(ErrRange, err.Error())
	}
	defer priv.D.SetInt64(0)

	if compressed {
		return NewPublicKey(ethcrypto.CompressPubkey(&priv.PublicKey))
	}
	return NewPublicKey(ethcrypto.FromECDSAPub(&priv.PublicKey))
}
