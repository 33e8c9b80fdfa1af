package crypto

import (
	"strings"

	"github.com/grendel/keyscope/pkg/common"
)

// Bech32Charset maps 5-bit values to characters
const Bech32Charset = "qpzry9x8gf2tvdw0s3jn54khce6mua7l"

// Checksum constants: BIP-173 for witness version 0, BIP-350 for version 1 and above
const (
	bech32Const  uint32 = 1
	bech32mConst uint32 = 0x2bc830a3
)

const (
	bech32MaxLen      = 90
	bech32ChecksumLen = 6
	maxWitnessVersion = 16
	minProgramLen     = 2
	maxProgramLen     = 40
)

var bech32Generator = [5]uint32{0x3b6a57b2, 0x26508e6d, 0x1ea119fa, 0x3d4233dd, 0x2a1462b3}

func bech32Polymod(values []byte) uint32 {
	chk := uint32(1)
	for _, v := range values {
		top := chk >> 25
		chk = (chk&0x1ffffff)<<5 ^ uint32(v)
		for i := 0; i < 5; i++ {
			if (top>>uint(i))&1 == 1 {
				chk ^= bech32Generator[i]
			}
		}
	}
	return chk
}

// bech32HRPExpand is [high bits of each char] 0 [low bits of each char]
func bech32HRPExpand(hrp string) []byte {
	out := make([]byte, 0, 2*len(hrp)+1)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]>>5)
	}
	out = append(out, 0)
	for i := 0; i < len(hrp); i++ {
		out = append(out, hrp[i]&31)
	}
	return out
}

// checksumConstant picks Bech32 or Bech32m from the witness version
func checksumConstant(witnessVersion byte) uint32 {
	if witnessVersion == 0 {
		return bech32Const
	}
	return bech32mConst
}

func bech32VerifyChecksum(hrp string, words []byte, constant uint32) bool {
	return bech32Polymod(append(bech32HRPExpand(hrp), words...)) == constant
}

func bech32CreateChecksum(hrp string, words []byte, constant uint32) []byte {
	values := append(bech32HRPExpand(hrp), words...)
	values = append(values, make([]byte, bech32ChecksumLen)...)
	mod := bech32Polymod(values) ^ constant

	checksum := make([]byte, bech32ChecksumLen)
	for i := range checksum {
		checksum[i] = byte(mod>>uint(5*(5-i))) & 31
	}
	return checksum
}

// splitBech32 lowercases input and returns the human-readable part and the data
// words, checksum included. The checksum itself is not verified here because the
// constant depends on the witness version carried in the first word.
func splitBech32(input string) (string, []byte, error) {
	if input == "" {
		return "", nil, formatError(ErrEmptyInput)
	}
	if common.HasOuterSpace(input) {
		return "", nil, formatError(ErrOuterWhitespace)
	}
	if len(input) > bech32MaxLen {
		return "", nil, formatErrorf("%s: %d characters", ErrInvalidLength, len(input))
	}

	var hasLower, hasUpper bool
	for i := 0; i < len(input); i++ {
		c := input[i]
		if c < 33 || c > 126 {
			return "", nil, formatErrorf("%s: byte 0x%02x at position %d", ErrInvalidChars, c, i)
		}
		if c >= 'a' && c <= 'z' {
			hasLower = true
		} else if c >= 'A' && c <= 'Z' {
			hasUpper = true
		}
	}
	if hasLower && hasUpper {
		return "", nil, formatError(ErrMixedCase)
	}

	lower := strings.ToLower(input)
	pos := strings.LastIndexByte(lower, '1')
	if pos < 1 {
		return "", nil, formatError("missing separator")
	}
	// witness version word plus checksum
	if len(lower)-pos-1 < 1+bech32ChecksumLen {
		return "", nil, formatError(ErrInvalidLength)
	}

	hrp := lower[:pos]
	data := lower[pos+1:]
	words := make([]byte, len(data))
	for i := 0; i < len(data); i++ {
		idx := strings.IndexByte(Bech32Charset, data[i])
		if idx < 0 {
			return "", nil, formatErrorf("%s: %q at position %d", ErrInvalidChars, data[i], pos+1+i)
		}
		words[i] = byte(idx)
	}
	return hrp, words, nil
}

// ConvertBits regroups a sequence of fromBits-wide values into toBits-wide values.
// With pad set the trailing group is zero-filled; without it, leftover bits must
// be fewer than fromBits and all zero.
func ConvertBits(data []byte, fromBits, toBits uint, pad bool) ([]byte, error) {
	if fromBits < 1 || fromBits > 8 || toBits < 1 || toBits > 8 {
		return nil, formatError("invalid bit group size")
	}

	var (
		acc    uint32
		bits   uint
		maxv   = uint32(1)<<toBits - 1
		maxAcc = uint32(1)<<(fromBits+toBits-1) - 1
		out    = make([]byte, 0, len(data)*int(fromBits)/int(toBits)+1)
	)
	for _, v := range data {
		if uint32(v)>>fromBits != 0 {
			return nil, formatErrorf("value %d wider than %d bits", v, fromBits)
		}
		acc = (acc<<fromBits | uint32(v)) & maxAcc
		bits += fromBits
		for bits >= toBits {
			bits -= toBits
			out = append(out, byte(acc>>bits&maxv))
		}
	}

	if pad {
		if bits > 0 {
			out = append(out, byte(acc<<(toBits-bits)&maxv))
		}
	} else if bits >= fromBits || acc<<(toBits-bits)&maxv != 0 {
		return nil, formatError(ErrInvalidPadding)
	}
	return out, nil
}

// NetworkForHRP maps a segwit human-readable prefix to its network
func NetworkForHRP(hrp string) (Network, bool) {
	for _, net := range Networks {
		if hrp == net.Params().Bech32HRPSegwit {
			return net, true
		}
	}
	return Mainnet, false
}

// DecodeSegwitAddress decodes a Bech32 (witness v0) or Bech32m (v1..16) address
// with a "bc" or "tb" prefix.
func DecodeSegwitAddress(input string) (DecodedBech32, error) {
	hrp, words, err := splitBech32(input)
	if err != nil {
		return DecodedBech32{}, err
	}
	if _, ok := NetworkForHRP(hrp); !ok {
		return DecodedBech32{}, formatErrorf("%s: %q", ErrInvalidPrefix, hrp)
	}

	version := words[0]
	if version > maxWitnessVersion {
		return DecodedBech32{}, formatErrorf("%s: %d", ErrInvalidWitnessVersion, version)
	}
	if !bech32VerifyChecksum(hrp, words, checksumConstant(version)) {
		return DecodedBech32{}, formatError(ErrInvalidChecksum)
	}

	program, err := ConvertBits(words[1:len(words)-bech32ChecksumLen], 5, 8, false)
	if err != nil {
		return DecodedBech32{}, err
	}
	if len(program) < minProgramLen || len(program) > maxProgramLen {
		return DecodedBech32{}, formatErrorf("%s: %d bytes", ErrInvalidProgramLength, len(program))
	}

	return DecodedBech32{HRP: hrp, WitnessVersion: version, Program: program}, nil
}

// EncodeSegwitAddress is the inverse of DecodeSegwitAddress. The checksum constant
// follows the witness version.
func EncodeSegwitAddress(hrp string, witnessVersion byte, program []byte) (string, error) {
	if _, ok := NetworkForHRP(hrp); !ok {
		return "", formatErrorf("%s: %q", ErrInvalidPrefix, hrp)
	}
	if witnessVersion > maxWitnessVersion {
		return "", formatErrorf("%s: %d", ErrInvalidWitnessVersion, witnessVersion)
	}
	if len(program) < minProgramLen || len(program) > maxProgramLen {
		return "", formatErrorf("%s: %d bytes", ErrInvalidProgramLength, len(program))
	}

	regrouped, err := ConvertBits(program, 8, 5, true)
	if err != nil {
		return "", err
	}
	words := append([]byte{witnessVersion}, regrouped...)
	words = append(words, bech32CreateChecksum(hrp, words, checksumConstant(witnessVersion))...)

	var sb strings.Builder
	sb.Grow(len(hrp) + 1 + len(words))
	sb.WriteString(hrp)
	sb.WriteByte('1')
	for _, w := range words {
		sb.WriteByte(Bech32Charset[w])
	}
	return sb.String(), nil
}

// IsValidBech32Address reports whether input decodes as a segwit address
func IsValidBech32Address(input string) bool {
	_, err := DecodeSegwitAddress(input)
	return err == nil
}
