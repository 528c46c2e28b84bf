// SPDX-License-Identifier: MPL-2.0

package pkgcache

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

const armorPrefix = "-----BEGIN PGP SIGNATURE"

// maxSignatureSize bounds detached signatures; real ones are well under 1KB.
const maxSignatureSize = 64 * 1024

type (
	// SignatureVerifier checks a detached signature over a package archive.
	SignatureVerifier interface {
		Verify(archive io.Reader, signature io.Reader) error
	}

	// OpenPGPVerifier verifies armored or binary detached OpenPGP signatures
	// against a fixed keyring.
	OpenPGPVerifier struct {
		keyring openpgp.EntityList
	}
)

// ErrEmptyKeyring is returned when a keyring holds no keys.
var ErrEmptyKeyring = errors.New("keyring contains no keys")

// NewOpenPGPVerifier creates a verifier over the given keyring.
func NewOpenPGPVerifier(keyring openpgp.EntityList) (*OpenPGPVerifier, error) {
	if len(keyring) == 0 {
		return nil, ErrEmptyKeyring
	}
	return &OpenPGPVerifier{keyring: keyring}, nil
}

// LoadKeyring reads an armored or binary OpenPGP keyring file.
func LoadKeyring(keyringPath string) (openpgp.EntityList, error) {
	f, err := os.Open(keyringPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyring: %w", err)
	}
	defer func() { _ = f.Close() }()

	entities, err := openpgp.ReadArmoredKeyRing(f)
	if err != nil {
		if _, seekErr := f.Seek(0, io.SeekStart); seekErr != nil {
			return nil, fmt.Errorf("failed to reset keyring file: %w", seekErr)
		}
		entities, err = openpgp.ReadKeyRing(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read keyring %s: %w", keyringPath, err)
		}
	}
	if len(entities) == 0 {
		return nil, ErrEmptyKeyring
	}
	return entities, nil
}

// Verify checks the detached signature over the archive contents.
func (v *OpenPGPVerifier) Verify(archive io.Reader, signature io.Reader) error {
	sig := bufio.NewReader(io.LimitReader(signature, maxSignatureSize))
	peek, _ := sig.Peek(len(armorPrefix))

	var err error
	if string(peek) == armorPrefix {
		_, err = openpgp.CheckArmoredDetachedSignature(v.keyring, archive, sig, nil)
	} else {
		_, err = openpgp.CheckDetachedSignature(v.keyring, archive, sig, nil)
	}
	if err != nil {
		return fmt.Errorf("signature verification failed: %w", err)
	}
	return nil
}
