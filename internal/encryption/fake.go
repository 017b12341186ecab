package encryption

import (
	"bytes"
	"fmt"
	"io"

	"pictier/internal/pt"
)

// fakeMagic marks data written by FakeEncryptor.
var fakeMagic = []byte("PTFAKE\x00\x01")

// FakeEncryptor frames data with a fixed header instead of encrypting it.
// Output differs from the input but needs no keys, so it suits tests that
// exercise the snapshot path end to end.
type FakeEncryptor struct {
	SetupPassphrase string
}

var _ pt.Encryptor = (*FakeEncryptor)(nil)

func NewFakeEncryptor() *FakeEncryptor {
	return &FakeEncryptor{}
}

func (e *FakeEncryptor) Setup(passphrase string) error {
	e.SetupPassphrase = passphrase
	return nil
}

func (e *FakeEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(fakeMagic); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying snapshot: %w", err)
	}
	return nil
}

func (e *FakeEncryptor) Unlock(string) (pt.DecryptionContext, error) {
	return fakeDecryptor{}, nil
}

func (e *FakeEncryptor) IsConfigured() bool { return true }

type fakeDecryptor struct{}

func (fakeDecryptor) Decrypt(r io.Reader, w io.Writer) error {
	header := make([]byte, len(fakeMagic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("reading header: %w", err)
	}
	if !bytes.Equal(header, fakeMagic) {
		return fmt.Errorf("data was not produced by FakeEncryptor")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying snapshot: %w", err)
	}
	return nil
}
