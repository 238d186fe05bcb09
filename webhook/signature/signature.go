package signature

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"net/http"
	"regexp"
	"strings"

	"github.com/hookline/hookline/provider"
)

/* HMAC signature verification for inbound deliveries.
 * The raw body used for the digest must be byte-identical to what was
 * received on the wire: callers read it once and never re-serialize it.
 */

// VerificationError reports why a signature was rejected. The reason is safe
// to surface to the caller in a 401 response.
type VerificationError struct {
	Reason string
}

func (e *VerificationError) Error() string {
	return e.Reason
}

// algorithmPrefix matches optional prefixes like "sha256=" on simple signatures
var algorithmPrefix = regexp.MustCompile(`^sha\d+=`)

// Verifier checks deliveries against one provider's signature configuration
type Verifier struct {
	header    string
	algorithm string
	format    provider.SignatureFormat
	secrets   []string
}

// NewVerifier creates a verifier for a provider's configuration
func NewVerifier(p provider.Provider) *Verifier {
	return &Verifier{
		header:    p.SignatureHeader,
		algorithm: p.SignatureAlgorithm,
		format:    p.SignatureFormat,
		secrets:   p.Secrets,
	}
}

/* Verify checks the request signature against the raw body.
 * It is a no-op when the provider has no signature configuration.
 * Any configured secret matching is a success (secret rotation).
 */
func (v *Verifier) Verify(rawBody []byte, headers http.Header) error {
	if v.header == "" || len(v.secrets) == 0 {
		return nil
	}

	headerValue := strings.TrimSpace(headers.Get(v.header))
	if headerValue == "" {
		return &VerificationError{Reason: "Missing signature header"}
	}

	signature, err := v.extractSignature(headerValue)
	if err != nil {
		return err
	}

	for _, secret := range v.secrets {
		expected := v.calculateHMAC(secret, rawBody)
		// Constant-time comparison to prevent timing attacks
		if subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1 {
			return nil
		}
	}

	return &VerificationError{Reason: "Invalid signature"}
}

func (v *Verifier) extractSignature(headerValue string) (string, error) {
	switch v.format {
	case provider.FormatTimestamped:
		// Stripe-style: "t=timestamp,v1=signature"
		parts := make(map[string]string)
		for _, part := range strings.Split(headerValue, ",") {
			key, value, found := strings.Cut(part, "=")
			if !found {
				continue
			}
			parts[strings.TrimSpace(key)] = strings.TrimSpace(value)
		}
		sig, ok := parts["v1"]
		if !ok || sig == "" {
			return "", &VerificationError{Reason: "Missing v1 signature in timestamped header"}
		}
		return sig, nil
	default:
		// Simple: raw hex signature, strip any algorithm prefix like "sha256="
		return algorithmPrefix.ReplaceAllString(headerValue, ""), nil
	}
}

func (v *Verifier) calculateHMAC(secret string, body []byte) string {
	mac := hmac.New(newHash(v.algorithm), []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func newHash(algorithm string) func() hash.Hash {
	switch algorithm {
	case "sha1":
		return sha1.New
	case "sha512":
		return sha512.New
	default:
		return sha256.New
	}
}

// Sign computes the hex HMAC of body with secret using the given algorithm.
// Exposed for tests and for producing example deliveries.
func Sign(algorithm, secret string, body []byte) string {
	mac := hmac.New(newHash(algorithm), []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
