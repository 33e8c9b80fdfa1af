package crypto

import (
	"github.com/minio/sha256-simd"
	"golang.org/x/crypto/ripemd160"
)

// Hash160 returns RIPEMD160(SHA256(b))
func Hash160(b []byte) [20]byte {
	sum := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sum[:])

	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// p2wpkhRedeemScript is the witness v0 output script OP_0 <20-byte hash>
func p2wpkhRedeemScript(pkh [20]byte) []byte {
	script := make([]byte, 0, 22)
	script = append(script, 0x00, 0x14)
	return append(script, pkh[:]...)
}

// DeriveAddresses builds the P2PKH, P2WPKH and P2SH-wrapped P2WPKH addresses of
// pub on net. All three come from the same hash so they always agree.
//
// pub must come from a Curve and net must be valid; anything else is a
// programming error and panics.
func DeriveAddresses(pub PublicKey, net Network) DerivedAddressSet {
	if len(pub.b) != 33 && len(pub.b) != 65 {
		panic("crypto: DeriveAddresses called with an uninitialized public key")
	}
	if !net.Valid() {
		panic("crypto: DeriveAddresses called with unknown network " + net.String())
	}

	params := net.Params()
	pkh := Hash160(pub.b)

	p2wpkh, err := EncodeSegwitAddress(params.Bech32HRPSegwit, 0, pkh[:])
	if err != nil {
		// a 20-byte v0 program under a known prefix always encodes
		panic(err)
	}

	return DerivedAddressSet{
		Network:    net,
		P2PKH:      EncodeBase58Check(params.PubKeyHashAddrID, pkh),
		P2WPKH:     p2wpkh,
		P2SHP2WPKH: EncodeBase58Check(params.ScriptHashAddrID, Hash160(p2wpkhRedeemScript(pkh))),
	}
}
