package idgen

import (
	"crypto/rand"
	"fmt"
	"io"
)

// Alphabet is the 64-symbol URL-safe set codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789_-"

const DefaultLength = 8

// Generator draws random short codes. It is safe for concurrent use as long
// as its random source is, which crypto/rand is.
type Generator struct {
	length int
	random io.Reader
}

func NewGenerator(length int) (*Generator, error) {
	return NewGeneratorWithReader(length, rand.Reader)
}

// NewGeneratorWithReader uses r as the entropy source instead of crypto/rand.
func NewGeneratorWithReader(length int, r io.Reader) (*Generator, error) {
	if length < 1 {
		return nil, fmt.Errorf("code length must be positive, got %d", length)
	}
	if r == nil {
		return nil, fmt.Errorf("random source is nil")
	}
	return &Generator{length: length, random: r}, nil
}

func (g *Generator) Length() int {
	return g.length
}

// Next returns a fresh code. The alphabet has 64 symbols so masking a byte to
// six bits keeps the distribution uniform.
func (g *Generator) Next() (string, error) {
	buf := make([]byte, g.length)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = Alphabet[b&63]
	}
	return string(buf), nil
}
