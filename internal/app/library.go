package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"pictier/internal/config"
	"pictier/internal/encryption"
	"pictier/internal/fs"
	"pictier/internal/pt"
	"pictier/internal/vault"
)

// InitLibrary creates the library directories and brings the catalog
// schema up to date. It is safe to run against an existing library.
func InitLibrary(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	fsmgr := fs.NewOSFilesystemManager(cfg.Filesystem.Ignore)
	if err := pt.NewLayout(cfg.Library.DataRoot).EnsureDirs(fsmgr); err != nil {
		return fmt.Errorf("preparing library: %w", err)
	}

	catalog, err := openCatalog(cfg)
	if err != nil {
		return err
	}
	defer catalog.Close()

	if err := catalog.Migrate(); err != nil {
		return fmt.Errorf("migrating catalog: %w", err)
	}
	return nil
}

// SetupEncryption generates the snapshot key pair for the configured
// encryptor, sealing the private key with passphrase.
func SetupEncryption(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	if enc == nil {
		return fmt.Errorf("encryption type is %q; set encryption.type first", cfg.Encryption.Type)
	}
	return enc.Setup(passphrase)
}

// ValidateVault checks that every configured vault is reachable.
func ValidateVault(ctx context.Context, cfg *config.Config) error {
	if len(cfg.Vaults) == 0 {
		return fmt.Errorf("no vault configured")
	}
	for _, vc := range cfg.Vaults {
		v, err := vault.NewVaultFromConfig(ctx, vc)
		if err != nil {
			return fmt.Errorf("creating vault %s: %w", vc.Name, err)
		}
		if err := v.ValidateSetup(); err != nil {
			return fmt.Errorf("vault %s: %w", vc.Name, err)
		}
	}
	return nil
}

// PullCatalog downloads the latest catalog snapshot from the first vault
// and writes it to dest, decrypting it when encryption is configured.
// passphrase is only called when a private key has to be unlocked.
// dest must not exist. It returns the snapshot version.
//
// Pulling does not open the local catalog, so it works when the local copy
// is missing or behind the vault.
func PullCatalog(ctx context.Context, cfg *config.Config, dest string, passphrase func() (string, error)) (int64, error) {
	if len(cfg.Vaults) == 0 {
		return 0, fmt.Errorf("no vault configured")
	}
	if _, err := os.Stat(dest); err == nil {
		return 0, fmt.Errorf("%s already exists", dest)
	}
	v, err := vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
	if err != nil {
		return 0, fmt.Errorf("creating vault: %w", err)
	}

	version, err := v.GetSnapshotVersion(cfg.LibraryID)
	if err != nil {
		return 0, fmt.Errorf("reading snapshot version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("vault %s has no snapshot for library %s", cfg.Vaults[0].Name, cfg.LibraryID)
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return 0, fmt.Errorf("creating encryptor: %w", err)
	}
	var dec pt.DecryptionContext
	if enc != nil {
		pass, err := passphrase()
		if err != nil {
			return 0, fmt.Errorf("reading passphrase: %w", err)
		}
		if dec, err = enc.Unlock(pass); err != nil {
			return 0, fmt.Errorf("unlocking private key: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return 0, fmt.Errorf("creating destination directory: %w", err)
	}
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return 0, fmt.Errorf("creating %s: %w", dest, err)
	}

	if err := download(v, cfg.LibraryID, dec, out); err != nil {
		out.Close()
		os.Remove(dest)
		return 0, err
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return 0, fmt.Errorf("writing %s: %w", dest, err)
	}
	return version, nil
}

// download streams the snapshot into w, decrypting through a pipe when
// dec is set.
func download(v pt.Vault, libraryID string, dec pt.DecryptionContext, w io.Writer) error {
	if dec == nil {
		if err := v.GetSnapshot(libraryID, w); err != nil {
			return fmt.Errorf("downloading snapshot: %w", err)
		}
		return nil
	}

	pr, pw := io.Pipe()
	go func() {
		pw.CloseWithError(v.GetSnapshot(libraryID, pw))
	}()
	err := dec.Decrypt(pr, w)
	pr.CloseWithError(errors.New("decryption stopped"))
	if err != nil {
		return fmt.Errorf("decrypting snapshot: %w", err)
	}
	return nil
}
