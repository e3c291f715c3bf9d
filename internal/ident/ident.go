// Package ident generates the short random identifiers used for trails
// and marks: a kind prefix followed by 8 lowercase base-36 characters.
// Collisions are statistically ignored; there is no uniqueness retry.
package ident

import (
	"crypto/rand"
	"fmt"
)

const (
	alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	tokenLen = 8

	// TrailPrefix and MarkPrefix distinguish entity kinds by eye.
	TrailPrefix = "t_"
	MarkPrefix  = "m_"
)

// TrailID returns a fresh trail identifier, e.g. "t_k39x0a7q".
func TrailID() string {
	return TrailPrefix + token()
}

// MarkID returns a fresh mark identifier, e.g. "m_8f2hw0pz".
func MarkID() string {
	return MarkPrefix + token()
}

func token() string {
	buf := make([]byte, tokenLen)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("ident: read random: %v", err))
	}
	for i, b := range buf {
		buf[i] = alphabet[int(b)%len(alphabet)]
	}
	return string(buf)
}
