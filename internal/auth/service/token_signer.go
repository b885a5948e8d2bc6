package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	authDomain "github.com/allisson/devicetrust/internal/auth/domain"
)

const (
	signatureSize  = sha256.Size
	tokenSeparator = '.'
)

// claimsEncMode encodes claims with Core Deterministic Encoding. The same claims
// always produce identical bytes, which keeps the MAC input canonical.
var claimsEncMode cbor.EncMode

// claimsDecMode rejects duplicate map keys and anything that is not a canonical claims map.
var claimsDecMode cbor.DecMode

func init() {
	var err error

	claimsEncMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("auth: CBOR encoder initialization failed: " + err.Error())
	}

	claimsDecMode, err = cbor.DecOptions{
		DupMapKey:       cbor.DupMapKeyEnforcedAPF,
		IndefLength:     cbor.IndefLengthForbidden,
		MaxNestedLevels: 4,
	}.DecMode()
	if err != nil {
		panic("auth: CBOR decoder initialization failed: " + err.Error())
	}
}

type tokenSigner struct {
	key []byte
}

// NewTokenSigner creates a TokenSigner using key for HMAC-SHA256.
//
// Token layout: base64url(payload || "." || mac) where payload is the CBOR claims
// and mac is the 32-byte HMAC-SHA256 of payload.
func NewTokenSigner(key []byte) (TokenSigner, error) {
	if len(key) != 32 {
		return nil, errors.New("token signing key must be exactly 32 bytes")
	}
	return &tokenSigner{key: key}, nil
}

func (s *tokenSigner) mac(payload []byte) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write(payload)
	return h.Sum(nil)
}

// Sign implements TokenSigner.
func (s *tokenSigner) Sign(claims *authDomain.Claims) (string, error) {
	payload, err := claimsEncMode.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("failed to encode claims: %w", err)
	}

	buf := make([]byte, 0, len(payload)+1+signatureSize)
	buf = append(buf, payload...)
	buf = append(buf, tokenSeparator)
	buf = append(buf, s.mac(payload)...)

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Parse implements TokenSigner.
func (s *tokenSigner) Parse(token string) (*authDomain.Claims, bool) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil || len(raw) < 2+signatureSize {
		return nil, false
	}

	sepIndex := len(raw) - signatureSize - 1
	if raw[sepIndex] != tokenSeparator {
		return nil, false
	}
	payload := raw[:sepIndex]
	signature := raw[sepIndex+1:]

	if !hmac.Equal(signature, s.mac(payload)) {
		return nil, false
	}

	var claims authDomain.Claims
	if err := claimsDecMode.Unmarshal(payload, &claims); err != nil {
		return nil, false
	}
	if claims.DeviceID == "" || claims.ID == "" {
		return nil, false
	}
	return &claims, true
}

// VerifySignature implements TokenSigner.
func (s *tokenSigner) VerifySignature(token string) bool {
	_, ok := s.Parse(token)
	return ok
}
