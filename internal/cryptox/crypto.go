// Package cryptox implements the payload codec used on sensitive endpoints.
//
// Payloads are serialized to JSON and encrypted with AES in CBC mode using
// PKCS#7 padding. Every call draws a fresh 16-byte IV which travels next to
// the ciphertext in an Envelope. The key is a raw shared secret of 16, 24 or
// 32 bytes; it is not derived from anything.
package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/arkadconsole/internal/common"
)

// IVSize is the length of the initialization vector in bytes.
const IVSize = aes.BlockSize

// Envelope is the wire form exchanged in place of plaintext JSON.
// IV is hex encoded, Ciphertext is standard base64.
type Envelope struct {
	IV         string `json:"iv"`
	Ciphertext string `json:"ciphertext"`
}

// ValidateKey reports whether key has a valid AES length.
func ValidateKey(key []byte) error {
	switch len(key) {
	case 16, 24, 32:
		return nil
	default:
		return fmt.Errorf("%w: key must be 16, 24 or 32 bytes, got %d", common.ErrInvalidKey, len(key))
	}
}

// Encrypt serializes v to JSON and encrypts it under key.
//
// A non-serializable v is a caller error and is returned unwrapped from
// encoding/json.
//
// Example:
//
//	env, err := cryptox.Encrypt(map[string]string{"username": "admin"}, key)
//	if err != nil {
//	    return err
//	}
//	// env.IV is 32 hex characters, env.Ciphertext is base64
func Encrypt(v any, key []byte) (Envelope, error) {
	if err := ValidateKey(key); err != nil {
		return Envelope{}, err
	}

	plaintext, err := json.Marshal(v)
	if err != nil {
		return Envelope{}, err
	}
	defer common.WipeByteArray(plaintext)

	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return Envelope{}, fmt.Errorf("iv: %w", err)
	}

	ciphertext, err := sealCBC(plaintext, key, iv)
	if err != nil {
		return Envelope{}, err
	}

	return Envelope{
		IV:         hex.EncodeToString(iv),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}, nil
}

// Decrypt reverses Encrypt and unmarshals the plaintext into out.
//
// Any failure after the key check (bad IV, bad base64, bad padding, or JSON
// that does not parse) is reported as common.ErrDecryptionFailed, since a
// wrong key produces garbage rather than an explicit error.
func Decrypt(env Envelope, key []byte, out any) error {
	plaintext, err := Open(env, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(plaintext, out); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}
	return nil
}

// Open decrypts env and returns the raw plaintext with padding and trailing
// NUL bytes removed.
func Open(env Envelope, key []byte) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}

	iv, err := hex.DecodeString(env.IV)
	if err != nil || len(iv) != IVSize {
		return nil, fmt.Errorf("%w: malformed iv", common.ErrDecryptionFailed)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed ciphertext", common.ErrDecryptionFailed)
	}
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext is not a multiple of the block size", common.ErrDecryptionFailed)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	plaintext := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plaintext, ciphertext)

	plaintext, err = unpad(plaintext)
	if err != nil {
		return nil, err
	}

	return bytes.TrimRight(plaintext, "\x00"), nil
}

func sealCBC(plaintext, key, iv []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	padded := pad(plaintext)
	defer common.WipeByteArray(padded)
	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, padded)
	return out, nil
}

// pad applies PKCS#7 padding; a full block is added when the input is aligned.
func pad(b []byte) []byte {
	n := aes.BlockSize - len(b)%aes.BlockSize
	out := make([]byte, len(b), len(b)+n)
	copy(out, b)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpad(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty plaintext", common.ErrDecryptionFailed)
	}
	n := int(b[len(b)-1])
	if n == 0 || n > aes.BlockSize || n > len(b) {
		return nil, fmt.Errorf("%w: bad padding", common.ErrDecryptionFailed)
	}
	for _, c := range b[len(b)-n:] {
		if int(c) != n {
			return nil, fmt.Errorf("%w: bad padding", common.ErrDecryptionFailed)
		}
	}
	return b[:len(b)-n], nil
}
