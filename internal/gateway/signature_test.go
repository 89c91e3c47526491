package gateway

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"payment_id":"5077125051","payment_status":"finished"}`)
	sig := Sign("ipn-secret", body)
	require.Len(t, sig, 128)

	require.NoError(t, VerifySignature("ipn-secret", body, sig))
	require.NoError(t, VerifySignature("ipn-secret", body, strings.ToUpper(sig)))

	assert.ErrorIs(t, VerifySignature("ipn-secret", body, ""), ErrMissingSignature)
	assert.ErrorIs(t, VerifySignature("other", body, sig), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature("ipn-secret", append(body, ' '), sig), ErrInvalidSignature)
	assert.ErrorIs(t, VerifySignature("ipn-secret", body, "zz-not-hex"), ErrInvalidSignature)
}

func TestVerifySignatureRejectsBlankSecret(t *testing.T) {
	body := []byte(`{"payment_id":"5077125051","payment_status":"finished"}`)

	assert.ErrorIs(t, VerifySignature("", body, Sign("", body)), ErrMissingSecret)
	assert.ErrorIs(t, VerifySignature("  ", body, Sign("  ", body)), ErrMissingSecret)
}
