package fairness

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

// SeedSize is the number of random bytes behind every round commitment.
const SeedSize = 16

var ErrInvalidSeed = errors.New("invalid_seed")

// Commitment binds a round to a secret seed. Commit is public from the start
// of the round; the seed is only revealed after settlement.
type Commitment struct {
	seed   [SeedSize]byte
	Commit string
}

// Open draws a fresh seed from r (crypto/rand when nil) and commits to it.
func Open(r io.Reader) (Commitment, error) {
	if r == nil {
		r = rand.Reader
	}
	var c Commitment
	if _, err := io.ReadFull(r, c.seed[:]); err != nil {
		return Commitment{}, fmt.Errorf("read commitment seed: %w", err)
	}
	c.Commit = digest(c.seed[:])
	return c, nil
}

// Reveal returns the hex-encoded seed.
func (c Commitment) Reveal() string {
	return hex.EncodeToString(c.seed[:])
}

// Verify reports whether sha256(seed) matches commit. Both are hex strings.
func Verify(seedHex, commit string) bool {
	seed, err := DecodeSeed(seedHex)
	if err != nil {
		return false
	}
	want := strings.ToLower(strings.TrimSpace(commit))
	return subtle.ConstantTimeCompare([]byte(digest(seed)), []byte(want)) == 1
}

// CommitFor returns the commitment a hex seed produces.
func CommitFor(seedHex string) (string, error) {
	seed, err := DecodeSeed(seedHex)
	if err != nil {
		return "", err
	}
	return digest(seed), nil
}

func DecodeSeed(seedHex string) ([]byte, error) {
	seed, err := hex.DecodeString(strings.TrimSpace(seedHex))
	if err != nil || len(seed) == 0 {
		return nil, ErrInvalidSeed
	}
	return seed, nil
}

func digest(seed []byte) string {
	sum := sha256.Sum256(seed)
	return hex.EncodeToString(sum[:])
}
