package hci

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// DecodeHex converts a space separated hex dump ("04 3E 21") into bytes.
// Every token must be exactly one byte.
func DecodeHex(s string) ([]byte, error) {
	tokens := strings.Fields(s)
	b := make([]byte, len(tokens))
	for i, tok := range tokens {
		if len(tok) != 2 {
			return nil, errors.Errorf("invalid hex %q: token %q is not one byte", s, tok)
		}
		if _, err := hex.Decode(b[i:i+1], []byte(tok)); err != nil {
			return nil, errors.Wrapf(err, "invalid hex %q", s)
		}
	}
	return b, nil
}

// EncodeHex renders bytes the way hcidump prints them.
func EncodeHex(b []byte) string {
	return fmt.Sprintf("% X", b)
}

// MACFromLine extracts the device address from the first line of an
// incoming packet dump without running the full parser. Returns "" if the
// line is not an incoming packet or is too short to hold an address.
func MACFromLine(line string) string {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "> ") {
		return ""
	}
	terms := strings.Fields(line)
	if len(terms) < 14 {
		return ""
	}
	var sb strings.Builder
	for i := 13; i >= 8; i-- {
		sb.WriteString(strings.ToUpper(terms[i]))
	}
	return sb.String()
}
