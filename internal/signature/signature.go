// Package signature verifies LINE webhook signatures.
//
// The platform signs the raw request body with HMAC-SHA256 keyed by the
// channel secret and sends the base64 digest in the x-line-signature
// header. Verification must run on the byte-exact body before any JSON
// parsing, and gates acceptance of the whole event batch.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// Verify reports whether signatureB64 is a valid MAC over body.
//
// Fails closed: an empty secret, an empty signature, or an undecodable
// signature all verify false rather than returning an error. The digest
// comparison is constant time.
func Verify(channelSecret string, body []byte, signatureB64 string) bool {
	if channelSecret == "" || signatureB64 == "" {
		return false
	}

	provided, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(channelSecret))
	mac.Write(body)
	expected := mac.Sum(nil)

	return hmac.Equal(expected, provided)
}
