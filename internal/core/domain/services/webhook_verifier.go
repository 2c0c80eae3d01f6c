package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"orderflow/internal/pkg/errs"
)

// ErrProviderSignatureInvalid is returned when a webhook payload fails
// signature verification. Payloads carrying this error must be rejected
// without acknowledgement so the provider retries them.
var ErrProviderSignatureInvalid = errors.New("provider signature is invalid")

// WebhookVerifier is a domain service that authenticates payment provider
// webhooks before any reconciliation runs against them.
//
// Each provider shares a secret with the service; the provider signs the
// raw request body with HMAC-SHA256 and sends the hex digest in a
// signature header. Verification recomputes the digest over the exact raw
// bytes received and compares in constant time.
//
// Business rules:
//   - Verification happens before the payload is parsed
//   - An unknown provider is indistinguishable from a bad signature
//   - Comparison is constant time
//
// Example usage:
//
//	verifier, _ := NewWebhookVerifier(map[string]string{"stripe": secret})
//	if err := verifier.Verify("stripe", body, signature); err != nil {
//	    // respond 401, do not acknowledge
//	    return
//	}
//	// payload is authentic, hand it to reconciliation
type WebhookVerifier struct {
	secrets map[string]string
}

// NewWebhookVerifier creates a verifier over the per-provider secrets.
//
// Parameters:
//   - secrets: provider name to shared secret; must be non-empty
//
// Returns:
//   - WebhookVerifier: a verifier ready for use
//   - error: validation error when no secrets are configured
func NewWebhookVerifier(secrets map[string]string) (WebhookVerifier, error) {
	if len(secrets) == 0 {
		return WebhookVerifier{}, errs.NewValueIsRequiredError("secrets")
	}
	for provider, secret := range secrets {
		if secret == "" {
			return WebhookVerifier{}, errs.NewValueIsRequiredError(
				fmt.Sprintf("secret for provider %q", provider))
		}
	}

	return WebhookVerifier{secrets: secrets}, nil
}

// Verify authenticates a raw webhook body against the provider's secret.
//
// Parameters:
//   - provider: the provider name from the webhook route
//   - body: the exact raw request bytes, before any parsing
//   - signature: the hex HMAC-SHA256 digest sent by the provider
//
// Returns:
//   - error: ErrProviderSignatureInvalid when the provider is unknown,
//     the signature is malformed, or the digest does not match
func (v WebhookVerifier) Verify(provider string, body []byte, signature string) error {
	secret, ok := v.secrets[provider]
	if !ok {
		return fmt.Errorf("%w: unknown provider %q", ErrProviderSignatureInvalid, provider)
	}

	sent, err := hex.DecodeString(signature)
	if err != nil {
		return fmt.Errorf("%w: signature is not hex encoded", ErrProviderSignatureInvalid)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	if !hmac.Equal(sent, mac.Sum(nil)) {
		return fmt.Errorf("%w: digest mismatch", ErrProviderSignatureInvalid)
	}

	return nil
}

// Sign computes the hex HMAC-SHA256 digest a provider would send for the
// body. Used by tests and by outbound callback verification fixtures.
func (v WebhookVerifier) Sign(provider string, body []byte) (string, error) {
	secret, ok := v.secrets[provider]
	if !ok {
		return "", errs.NewObjectNotFoundError("provider", provider)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil)), nil
}
