// Package codegen issues the attendee-facing ticket codes: three uppercase
// letters followed by five digits, e.g. "ABC12345".
package codegen

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"regexp"
)

const (
	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"

	letterCount = 3
	digitCount  = 5

	// Length is the exact length of every ticket code.
	Length = letterCount + digitCount
)

var codePattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{5}$`)

// Valid reports whether code has the exact ticket code format.
func Valid(code string) bool {
	return codePattern.MatchString(code)
}

// Generator draws codes from an entropy source. Codes are not unique by
// themselves; the store's unique constraint decides.
type Generator struct {
	Rand io.Reader
}

// New returns a Generator backed by crypto/rand.
func New() *Generator {
	return &Generator{Rand: rand.Reader}
}

func (g *Generator) Generate() (string, error) {
	src := g.Rand
	if src == nil {
		src = rand.Reader
	}

	code := make([]byte, 0, Length)
	for i := 0; i < letterCount; i++ {
		c, err := pick(src, letters)
		if err != nil {
			return "", err
		}
		code = append(code, c)
	}
	for i := 0; i < digitCount; i++ {
		c, err := pick(src, digits)
		if err != nil {
			return "", err
		}
		code = append(code, c)
	}
	return string(code), nil
}

func pick(src io.Reader, alphabet string) (byte, error) {
	n, err := rand.Int(src, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, fmt.Errorf("failed to read entropy: %w", err)
	}
	return alphabet[n.Int64()], nil
}
