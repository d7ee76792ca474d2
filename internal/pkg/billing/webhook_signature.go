package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// VerifyPaymongoWebhookSignature checks the Paymongo-Signature header
// (`t=<ts>,te=<test sig>,li=<live sig>`). The signature is HMAC-SHA256 over
// "<t>.<payload>" keyed with the webhook secret; either the test or the live
// signature may match depending on the key mode.
func VerifyPaymongoWebhookSignature(payload []byte, signatureHeader, webhookSecret string) bool {
	header := strings.TrimSpace(signatureHeader)
	secret := strings.TrimSpace(webhookSecret)
	if header == "" || secret == "" {
		return false
	}

	var timestamp, testSig, liveSig string
	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "te":
			testSig = kv[1]
		case "li":
			liveSig = kv[1]
		}
	}
	if timestamp == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(payload)
	expected := mac.Sum(nil)

	for _, sig := range []string{liveSig, testSig} {
		if sig == "" {
			continue
		}
		decoded, err := hex.DecodeString(strings.ToLower(sig))
		if err != nil {
			continue
		}
		if hmac.Equal(expected, decoded) {
			return true
		}
	}
	return false
}
