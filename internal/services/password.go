package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	passwordLower   = "abcdefghijkmnopqrstuvwxyz"
	passwordUpper   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	passwordDigits  = "23456789"
	passwordSymbols = "!#%+=?"
)

// GeneratePassword mints a random password of the given length that satisfies
// the directory's complexity policy: at least one character from each class.
// Visually ambiguous characters are left out of the charsets.
func GeneratePassword(length int) (string, error) {
	if length < 8 {
		return "", fmt.Errorf("password length %d below policy minimum 8", length)
	}

	classes := []string{passwordLower, passwordUpper, passwordDigits, passwordSymbols}
	all := passwordLower + passwordUpper + passwordDigits + passwordSymbols

	chars := make([]byte, 0, length)
	for _, class := range classes {
		c, err := randomFrom(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}
	for len(chars) < length {
		c, err := randomFrom(all)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	// Shuffle so the class-guaranteed characters do not cluster at the front.
	for i := len(chars) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("failed to shuffle password: %w", err)
		}
		chars[i], chars[j.Int64()] = chars[j.Int64()], chars[i]
	}

	return string(chars), nil
}

func randomFrom(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, fmt.Errorf("failed to draw random character: %w", err)
	}
	return charset[n.Int64()], nil
}
