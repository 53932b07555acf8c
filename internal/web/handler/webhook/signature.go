package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"
)

// Delivery headers carried by every signed webhook request.
const (
	HeaderID        = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"
)

// secretPrefix marks a portable signing secret; the part after it is the
// base64 encoded key material.
const secretPrefix = "whsec_"

var (
	// ErrBadSignature is returned when no signature matches the payload.
	ErrBadSignature = errors.New("webhook signature mismatch")
	// ErrBadTimestamp is returned for missing, malformed or stale timestamps.
	ErrBadTimestamp = errors.New("webhook timestamp outside tolerance")
	// ErrBadSecret is returned when the configured secret cannot be decoded.
	ErrBadSecret = errors.New("webhook secret is malformed")
)

// VerifySignature checks the delivery signature over "{id}.{timestamp}.{body}"
// with HMAC-SHA256. The signature header may carry several space-separated
// "v1,<base64>" candidates (the provider sends one per active secret during
// rotation); any match accepts the delivery.
func VerifySignature(secret, msgID, timestamp, sigHeader string, body []byte) error {
	if msgID == "" || timestamp == "" || sigHeader == "" {
		return ErrBadSignature
	}

	key, err := decodeSecret(secret)
	if err != nil {
		return err
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)

	expected := mac.Sum(nil)

	for _, candidate := range strings.Fields(sigHeader) {
		version, sig, found := strings.Cut(candidate, ",")
		if !found || version != "v1" {
			continue
		}

		decoded, errDecode := base64.StdEncoding.DecodeString(sig)
		if errDecode != nil {
			continue
		}

		if hmac.Equal(decoded, expected) {
			return nil
		}
	}

	return ErrBadSignature
}

// Sign computes the "v1,<base64>" signature for a delivery. It is the inverse
// of VerifySignature and is used by tests and outbound tooling.
func Sign(secret, msgID, timestamp string, body []byte) (string, error) {
	key, err := decodeSecret(secret)
	if err != nil {
		return "", err
	}

	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(msgID))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)

	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil)), nil
}

func decodeSecret(secret string) ([]byte, error) {
	if secret == "" {
		return nil, ErrBadSecret
	}

	raw, found := strings.CutPrefix(secret, secretPrefix)
	if !found {
		// plain shared secrets are used verbatim
		return []byte(secret), nil
	}

	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, ErrBadSecret
	}

	return key, nil
}
