package joinCode

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/samborkent/uuidv7"
)

var ErrBadFormat = errors.New("not correct format")

// GenerateCode returns a URL safe code naming roundID plus a fresh nonce.
// The nonce is what makes a code unguessable from the round id alone.
func GenerateCode(roundID string) (code, nonce string) {
	nonce = uuidv7.New().String()
	return Encode(roundID, nonce), nonce
}

func Encode(roundID, nonce string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(roundID + "|" + nonce))
}

func Decode(code string) (roundID, nonce string, err error) {
	decoded, err := base64.RawURLEncoding.DecodeString(code)
	if err != nil {
		return "", "", err
	}
	parts := strings.Split(string(decoded), "|")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrBadFormat
	}
	return parts[0], parts[1], nil
}
