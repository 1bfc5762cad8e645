package services

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"

	"communityevents/internal/domain"
)

// checkinTokenBytes gives 256 bits of entropy.
const checkinTokenBytes = 32

func newCheckinToken() (string, error) {
	b := make([]byte, checkinTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// storeWithToken hands a fresh token to store. A collision on the unique token
// constraint is retried once with a new token; a second collision is an internal error.
func storeWithToken(generate func() (string, error), store func(token string) error) (string, error) {
	for attempt := 0; attempt < 2; attempt++ {
		token, err := generate()
		if err != nil {
			return "", fmt.Errorf("generate check-in token: %w", err)
		}
		err = store(token)
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, domain.ErrDuplicateToken) {
			return "", err
		}
	}
	return "", fmt.Errorf("store check-in token: %w", domain.ErrDuplicateToken)
}
