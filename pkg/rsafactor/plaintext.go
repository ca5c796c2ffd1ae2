package rsafactor

import (
	"encoding/hex"
	"math/big"
	"strings"
	"unicode"
	"unicode/utf8"

	xunicode "golang.org/x/text/encoding/unicode"
)

// Plaintext is a recovered message integer with its byte and text forms.
//
// Byte convention: big-endian, exactly max(1, ⌈bitlen/8⌉) bytes, no leading
// zero padding. A message whose original encoding began with zero bytes
// comes back without them.
type Plaintext struct {
	Int          *big.Int
	BitLen       int
	Bytes        []byte // Big-endian
	LittleEndian []byte // Same bytes reversed
	Text         string // Lossy UTF-8 decode; empty when HasText is false
	HasText      bool

	// Some encoders emit the integer least significant byte first, so the
	// reversed bytes get the same decode.
	LittleEndianText    string
	HasLittleEndianText bool
}

// Materialize converts m into its byte and text forms. It never fails;
// when the bytes do not decode to anything readable only the integer and
// bytes are populated.
func Materialize(m *big.Int) Plaintext {
	v := new(big.Int).Abs(m)
	b := v.Bytes()
	if len(b) == 0 {
		b = []byte{0}
	}

	le := make([]byte, len(b))
	for i := range b {
		le[len(b)-1-i] = b[i]
	}

	pt := Plaintext{Int: v, BitLen: v.BitLen(), Bytes: b, LittleEndian: le}
	if text, ok := decodeText(b); ok {
		pt.Text = text
		pt.HasText = true
	}
	if text, ok := decodeText(le); ok {
		pt.LittleEndianText = text
		pt.HasLittleEndianText = true
	}
	return pt
}

// Hex returns the big-endian bytes as lowercase hex.
func (p Plaintext) Hex() string {
	return hex.EncodeToString(p.Bytes)
}

// decodeText decodes b as UTF-8, replacing invalid sequences with U+FFFD.
// The result counts as text only if it has at least one printable rune
// that is not a replacement character.
func decodeText(b []byte) (string, bool) {
	out, err := xunicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return "", false
	}
	text := strings.TrimRight(string(out), "\x00")

	printable := false
	for _, r := range text {
		if r == utf8.RuneError {
			continue
		}
		if unicode.IsPrint(r) {
			printable = true
			break
		}
	}
	return text, printable
}
