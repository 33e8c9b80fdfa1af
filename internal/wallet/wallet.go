package wallet

import (
	"fmt"

	"github.com/grendel/keyscope/pkg/crypto"
)

// AddressReport describes a validated address
type AddressReport struct {
	Address string
	Kind    crypto.AddressKind
	Type    string // P2PKH, P2SH, P2WPKH, P2WSH, P2TR or "witness vN"
	Network crypto.Network
	Valid   bool
}

// KeyReport describes a private key and the addresses it controls. The key
// itself is never kept.
type KeyReport struct {
	Kind       crypto.KeyKind
	Valid      bool
	Compressed bool
	Addresses  crypto.DerivedAddressSet
	Err        error
}

// InspectAddress validates address against nets and names its output type.
// Without nets it accepts what crypto.IsValidAddress accepts: segwit addresses
// of either network, Base58 addresses of mainnet only.
func InspectAddress(address string, nets ...crypto.Network) AddressReport {
	report := AddressReport{Address: address, Kind: crypto.ClassifyAddress(address)}
	if len(nets) == 0 {
		nets = []crypto.Network{crypto.Mainnet}
		if report.Kind == crypto.AddressBech32 {
			nets = crypto.Networks
		}
	}

	for _, net := range nets {
		if crypto.IsValidAddressOn(address, net) {
			report.Valid = true
			report.Network = net
			break
		}
	}
	if !report.Valid {
		return report
	}

	if report.Kind == crypto.AddressBech32 {
		decoded, _ := crypto.DecodeSegwitAddress(address)
		report.Type = witnessType(decoded)
		return report
	}

	decoded, _ := crypto.DecodeBase58Check(address)
	if decoded.Version == report.Network.Params().ScriptHashAddrID {
		report.Type = "P2SH"
	} else {
		report.Type = "P2PKH"
	}
	return report
}

func witnessType(d crypto.DecodedBech32) string {
	switch {
	case d.WitnessVersion == 0 && len(d.Program) == 20:
		return "P2WPKH"
	case d.WitnessVersion == 0 && len(d.Program) == 32:
		return "P2WSH"
	case d.WitnessVersion == 1 && len(d.Program) == 32:
		return "P2TR"
	default:
		return fmt.Sprintf("witness v%d", d.WitnessVersion)
	}
}

// InspectKey parses a WIF or hex key and derives its addresses. net and
// compressed only apply to hex input.
func InspectKey(codec crypto.Codec, input string, net crypto.Network, compressed bool) KeyReport {
	report := KeyReport{Kind: crypto.ClassifyPrivateKey(input)}

	k, err := codec.ParsePrivateKey(input, net, compressed)
	if err != nil {
		report.Err = err
		return report
	}
	defer k.Wipe()

	set, err := codec.DeriveFromKey(k)
	if err != nil {
		report.Err = err
		return report
	}

	report.Valid = true
	report.Compressed = k.Compressed
	report.Addresses = set
	return report
}

// Tracker drops repeated addresses from a batch
type Tracker map[string]struct{}

// IsDuplicate reports whether address was seen before and records it
func (t Tracker) IsDuplicate(address string) bool {
	if _, exists := t[address]; exists {
		return true
	}
	t[address] = struct{}{}
	return false
}
