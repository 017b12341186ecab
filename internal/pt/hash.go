package pt

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
)

// hashChunkSize bounds the memory used while hashing regardless of file size.
const hashChunkSize = 64 * 1024

// HashFile streams the file at path through SHA-256 and returns the lowercase
// hex digest. Identical bytes always produce the same digest; the filename is
// not part of the input.
func HashFile(fsmgr FilesystemManager, path string) (string, error) {
	f, err := fsmgr.Open(path)
	if err != nil {
		return "", ioErr("hash", path, err)
	}
	defer f.Close()

	digest, err := HashReader(f)
	if err != nil {
		return "", ioErr("hash", path, err)
	}
	return digest, nil
}

// HashReader streams r through SHA-256 in fixed-size chunks.
func HashReader(r io.Reader) (string, error) {
	h := sha256.New()
	buf := make([]byte, hashChunkSize)
	if _, err := io.CopyBuffer(h, r, buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
