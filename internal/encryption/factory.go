package encryption

import (
	"fmt"

	"pictier/internal/config"
	"pictier/internal/pt"
)

// NewEncryptorFromConfig creates an Encryptor based on the configuration type.
// The "none" type yields a nil Encryptor: snapshots are stored as-is.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (pt.Encryptor, error) {
	switch cfg.Type {
	case "none", "":
		return nil, nil
	case "age":
		if cfg.PublicKeyPath == "" || cfg.PrivateKeyPath == "" {
			return nil, fmt.Errorf("age encryption requires public_key_path and private_key_path")
		}
		return NewAgeEncryptor(cfg), nil
	case "test":
		return NewFakeEncryptor(), nil
	default:
		return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
	}
}
