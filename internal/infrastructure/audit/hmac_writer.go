package audit

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignatureHeader carries the HMAC of the record value.
const SignatureHeader = "x-audit-signature"

// SignAuditPayload calculates the HMAC-SHA256 signature of a serialized audit event.
func SignAuditPayload(payload []byte, secretKey string) string {
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write(payload)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// VerifyAuditPayload reports whether signature matches payload under secretKey.
func VerifyAuditPayload(payload []byte, signature, secretKey string) bool {
	expected, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	h := hmac.New(sha256.New, []byte(secretKey))
	h.Write(payload)
	return hmac.Equal(expected, h.Sum(nil))
}
