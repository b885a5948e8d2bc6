package domain

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/allisson/devicetrust/internal/config"
)

// MasterKeySize is the required length of the master key in bytes.
const MasterKeySize = 32

// MasterKey is the root symmetric key of the subsystem.
//
// It is never used directly: token signing, message encryption, token fingerprints
// and audit signing each use a subkey derived from it with HKDF.
type MasterKey struct {
	Key []byte
}

// Close zeroes the key material.
func (m *MasterKey) Close() {
	if m == nil {
		return
	}
	Zero(m.Key)
	m.Key = nil
}

// KMSKeeper is the subset of *secrets.Keeper used to unwrap the master key.
type KMSKeeper interface {
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KeeperOpener opens a KMSKeeper for a key URI.
type KeeperOpener interface {
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)
}

// LoadMasterKey loads the master key from configuration.
//
// MASTER_KEY is base64-decoded. When both KMS_PROVIDER and KMS_KEY_URI are set the
// decoded bytes are treated as KMS ciphertext and unwrapped through the keeper.
// The resulting key must be exactly 32 bytes. Intermediate buffers are zeroed.
func LoadMasterKey(
	ctx context.Context,
	cfg *config.Config,
	opener KeeperOpener,
	logger *slog.Logger,
) (*MasterKey, error) {
	if cfg.MasterKey == "" {
		return nil, ErrMasterKeyNotSet
	}

	decoded, err := base64.StdEncoding.DecodeString(cfg.MasterKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMasterKeyBase64, err)
	}

	key := decoded
	if cfg.KMSProvider != "" && cfg.KMSKeyURI != "" {
		key, err = unwrapWithKMS(ctx, cfg.KMSKeyURI, opener, decoded)
		Zero(decoded)
		if err != nil {
			return nil, err
		}
		logger.Info("master key unwrapped with kms", slog.String("kms_provider", cfg.KMSProvider))
	}

	if len(key) != MasterKeySize {
		size := len(key)
		Zero(key)
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", ErrInvalidKeySize, MasterKeySize, size)
	}

	return &MasterKey{Key: key}, nil
}

func unwrapWithKMS(ctx context.Context, keyURI string, opener KeeperOpener, ciphertext []byte) ([]byte, error) {
	keeper, err := opener.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKMSUnavailable, err)
	}
	defer func() {
		_ = keeper.Close()
	}()

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKMSUnavailable, err)
	}
	return plaintext, nil
}
