// Package vault encrypts credential blobs at rest.
//
// Stored tokens have the form ivHex:cipherHex (AES-256-CBC, PKCS#7 padding,
// random IV per call). The key is used exactly as configured, so tokens
// written by any holder of the same 32-byte key stay readable. Rows written before encryption was introduced hold
// plaintext; Parse reports them as Legacy and Decrypt returns them unchanged.
// That fallback is a known weakening: a plaintext that happens to look like
// a token is treated as one. It lives in Decrypt only.
package vault

import (
	"bytes"
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const keyLen = 32

// keyCheckPlaintext is sealed once per database so a wrong key fails at start.
const keyCheckPlaintext = "gamestore vault key check"

var (
	ErrEmptyKey       = errors.New("vault key is empty")
	ErrInvalidKey     = errors.New("vault key must be 32 bytes or 64 hex characters")
	ErrMalformedToken = errors.New("malformed encrypted token")
	ErrKeyMismatch    = errors.New("vault key does not match the stored key check")
)

// Token is a parsed secret field: Encrypted or Legacy.
type Token interface {
	token()
}

type Encrypted struct {
	IV         []byte
	Ciphertext []byte
}

type Legacy struct {
	Plaintext string
}

func (Encrypted) token() {}
func (Legacy) token()    {}

func (e Encrypted) String() string {
	return hex.EncodeToString(e.IV) + ":" + hex.EncodeToString(e.Ciphertext)
}

// Parse classifies raw by format only; it never fails.
func Parse(raw string) Token {
	ivHex, cipherHex, ok := strings.Cut(raw, ":")
	if !ok || len(ivHex) != 2*aes.BlockSize || cipherHex == "" || len(cipherHex)%(2*aes.BlockSize) != 0 {
		return Legacy{Plaintext: raw}
	}
	iv, err := hex.DecodeString(ivHex)
	if err != nil {
		return Legacy{Plaintext: raw}
	}
	ciphertext, err := hex.DecodeString(cipherHex)
	if err != nil {
		return Legacy{Plaintext: raw}
	}
	return Encrypted{IV: iv, Ciphertext: ciphertext}
}

func LooksEncrypted(raw string) bool {
	_, ok := Parse(raw).(Encrypted)
	return ok
}

type Vault struct {
	block cipher.Block
}

// New takes the AES-256 key as 64 hex characters or 32 raw bytes.
func New(secret string) (*Vault, error) {
	key, err := parseKey(secret)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}
	return &Vault{block: block}, nil
}

func (v *Vault) Encrypt(plaintext string) (string, error) {
	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}
	padded := pad([]byte(plaintext))
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(v.block, iv).CryptBlocks(ciphertext, padded)
	return Encrypted{IV: iv, Ciphertext: ciphertext}.String(), nil
}

func (v *Vault) Decrypt(raw string) (string, error) {
	switch t := Parse(raw).(type) {
	case Legacy:
		return t.Plaintext, nil
	case Encrypted:
		plain := make([]byte, len(t.Ciphertext))
		cipher.NewCBCDecrypter(v.block, t.IV).CryptBlocks(plain, t.Ciphertext)
		unpadded, err := unpad(plain)
		if err != nil {
			return "", err
		}
		// A wrong key passes the padding check about once in 256 tries.
		if !utf8.Valid(unpadded) {
			return "", ErrMalformedToken
		}
		return string(unpadded), nil
	default:
		return "", ErrMalformedToken
	}
}

// KeyCheckStore persists the key check token. SaveKeyCheck keeps an
// existing token.
type KeyCheckStore interface {
	GetKeyCheck(ctx context.Context) (string, bool, error)
	SaveKeyCheck(ctx context.Context, token string) error
}

// VerifyKey seals a known value on first use and afterwards refuses to run
// with a key that cannot open it.
func (v *Vault) VerifyKey(ctx context.Context, store KeyCheckStore) error {
	token, ok, err := store.GetKeyCheck(ctx)
	if err != nil {
		return fmt.Errorf("load key check: %w", err)
	}
	if !ok {
		token, err = v.Encrypt(keyCheckPlaintext)
		if err != nil {
			return err
		}
		if err := store.SaveKeyCheck(ctx, token); err != nil {
			return fmt.Errorf("save key check: %w", err)
		}
		// Another instance may have stored its own check first.
		token, ok, err = store.GetKeyCheck(ctx)
		if err != nil {
			return fmt.Errorf("load key check: %w", err)
		}
		if !ok {
			return ErrKeyMismatch
		}
	}
	if !LooksEncrypted(token) {
		return ErrKeyMismatch
	}
	plain, err := v.Decrypt(token)
	if err != nil || plain != keyCheckPlaintext {
		return ErrKeyMismatch
	}
	return nil
}

func parseKey(secret string) ([]byte, error) {
	switch {
	case secret == "":
		return nil, ErrEmptyKey
	case len(secret) == 2*keyLen:
		key, err := hex.DecodeString(secret)
		if err != nil {
			return nil, ErrInvalidKey
		}
		return key, nil
	case len(secret) == keyLen:
		return []byte(secret), nil
	default:
		return nil, ErrInvalidKey
	}
}

func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	return append(b, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 || len(b)%aes.BlockSize != 0 {
		return nil, ErrMalformedToken
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize {
		return nil, ErrMalformedToken
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, ErrMalformedToken
		}
	}
	return b[:len(b)-n], nil
}
