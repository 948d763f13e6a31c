package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/awnumar/memguard"

	"github.com/jalvarado/sitegate/internal/util"
)

// signingKeyInfo is the HKDF context label for the cookie signing key.
// Changing it invalidates every outstanding cookie.
const signingKeyInfo = "sitegate/session-signing/v1"

var (
	// ErrMalformed is returned when the cookie is structurally broken:
	// missing separator, bad base64 or hex framing, or unparseable
	// payload JSON.
	ErrMalformed = errors.New("malformed session cookie")
	// ErrBadSignature is returned when the frame is intact but the
	// signature does not verify. Callers must collapse both errors to
	// the same "not authenticated" outcome.
	ErrBadSignature = errors.New("session cookie signature mismatch")
)

// Codec signs and verifies session cookies. The signing key is derived
// once from the operator-configured site secret and held in a memguard
// Enclave between uses.
type Codec struct {
	key *memguard.Enclave
}

// NewCodec derives the signing key from secret.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, errors.New("session signing secret must not be empty")
	}
	key, err := util.HKDF(secret, nil, []byte(signingKeyInfo))
	if err != nil {
		return nil, fmt.Errorf("deriving session signing key: %w", err)
	}
	// NewEnclave wipes the key slice after sealing it.
	return &Codec{key: memguard.NewEnclave(key)}, nil
}

// Encode serializes the session and frames it as
// base64(payload) "." hex(HMAC-SHA256(key, payload)).
func (c *Codec) Encode(s Session) (string, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encoding session payload: %w", err)
	}
	sig, err := c.sign(payload)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload) + "." + util.HexEncode(sig), nil
}

// Decode verifies and parses a cookie value. The signature is checked
// before the payload is parsed; any mismatch rejects the whole cookie
// regardless of payload content.
func (c *Codec) Decode(value string) (Session, error) {
	payloadPart, sigPart, ok := strings.Cut(value, ".")
	if !ok || payloadPart == "" || sigPart == "" {
		return Session{}, ErrMalformed
	}

	payload, err := base64.StdEncoding.DecodeString(payloadPart)
	if err != nil {
		return Session{}, ErrMalformed
	}
	supplied, err := util.HexDecode(sigPart)
	if err != nil {
		return Session{}, ErrMalformed
	}

	computed, err := c.sign(payload)
	if err != nil {
		return Session{}, err
	}
	if !util.SecureCompare(computed, supplied) {
		return Session{}, ErrBadSignature
	}

	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return Session{}, ErrMalformed
	}
	return s, nil
}

func (c *Codec) sign(payload []byte) ([]byte, error) {
	buf, err := c.key.Open()
	if err != nil {
		return nil, fmt.Errorf("opening signing key enclave: %w", err)
	}
	defer buf.Destroy()

	mac := hmac.New(sha256.New, buf.Bytes())
	mac.Write(payload)
	return mac.Sum(nil), nil
}
