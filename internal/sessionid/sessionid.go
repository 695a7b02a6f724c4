// Package sessionid generates time-ordered identifiers for game sessions.
//
// An ID is 16 bytes, a 48-bit millisecond timestamp followed by 80 random
// bits, encoded as 26 characters of Crockford base32. IDs generated later
// sort after earlier ones.
package sessionid

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/coder/quartz"
)

// Length is the number of characters in an encoded ID
const Length = 26

const alphabet = "0123456789abcdefghjkmnpqrstvwxyz"

var encoding = base32.NewEncoding(alphabet).WithPadding(base32.NoPadding)

// Generator creates session IDs from a clock and an entropy source
type Generator struct {
	clock   quartz.Clock
	entropy io.Reader
}

// NewGenerator returns a generator; nil arguments select the real clock and
// crypto/rand.
func NewGenerator(clock quartz.Clock, entropy io.Reader) *Generator {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if entropy == nil {
		entropy = rand.Reader
	}
	return &Generator{clock: clock, entropy: entropy}
}

// Generate returns a new ID
func (g *Generator) Generate() (string, error) {
	var raw [16]byte

	ms := uint64(g.clock.Now().UnixMilli())
	binary.BigEndian.PutUint16(raw[0:2], uint16(ms>>32))
	binary.BigEndian.PutUint32(raw[2:6], uint32(ms))

	if _, err := io.ReadFull(g.entropy, raw[6:]); err != nil {
		return "", fmt.Errorf("read entropy: %w", err)
	}
	return encoding.EncodeToString(raw[:]), nil
}

// Validate checks that id has the right length and alphabet
func Validate(id string) error {
	if len(id) != Length {
		return fmt.Errorf("session ID must be exactly %d characters, got %d", Length, len(id))
	}
	for i, char := range id {
		if !strings.ContainsRune(alphabet, char) {
			return fmt.Errorf("invalid character %c at position %d", char, i)
		}
	}
	return nil
}
