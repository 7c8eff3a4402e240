package usecase

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	gameCodeLength   = 6
	gameCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateGameCode returns a random code of uppercase letters and digits.
func GenerateGameCode() (string, error) {
	code := make([]byte, gameCodeLength)
	limit := big.NewInt(int64(len(gameCodeAlphabet)))

	for i := range code {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("failed to read random: %w", err)
		}
		code[i] = gameCodeAlphabet[n.Int64()]
	}

	return string(code), nil
}
