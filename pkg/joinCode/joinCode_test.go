package joinCode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateCode(t *testing.T) {
	code, nonce := GenerateCode("round-1")
	assert.NotEmpty(t, code, "Encoded code should not be empty")
	assert.NotEmpty(t, nonce)

	other, _ := GenerateCode("round-1")
	assert.NotEqual(t, code, other, "Codes for the same round should differ")
}

func TestDecode(t *testing.T) {
	code, nonce := GenerateCode("round-42")

	roundID, decodedNonce, err := Decode(code)

	assert.Nil(t, err, "Should not have an error during decoding")
	assert.Equal(t, "round-42", roundID, "Decoded round should match the original")
	assert.Equal(t, nonce, decodedNonce, "Decoded nonce should match the original")
}

func TestDecode_ErrorHandling(t *testing.T) {
	_, _, err := Decode("this is not a base64 string")
	assert.NotNil(t, err, "Expected an error for incorrect base64 string")

	_, _, err = Decode(Encode("", "nonce"))
	assert.ErrorIs(t, err, ErrBadFormat)
}
