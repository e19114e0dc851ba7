// Package aes256 implements AES-256 in CBC mode with PKCS#7 padding, the
// symmetric cipher used by the authenticated-encryption primitive.
package aes256

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"io"
)

var (
	ErrCiphertextLengthInvalid = errors.New("aes256: ciphertext length invalid")
	ErrPaddingInvalid          = errors.New("aes256: padding invalid")
)

// NewKey returns a random 32-byte AES-256 key.
func NewKey() ([]byte, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// Encrypt encrypts plaintext using AES-256 in CBC mode with PKCS#7 padding.
func Encrypt(plaintext []byte, key [32]byte, iv [16]byte) (ciphertext []byte, err error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	padded := pkcs7Pad(plaintext, block.BlockSize())
	ciphertext = make([]byte, len(padded))

	mode := cipher.NewCBCEncrypter(block, iv[:])
	mode.CryptBlocks(ciphertext, padded)
	return ciphertext, nil
}

// Decrypt decrypts ciphertext using AES-256 in CBC mode, removing PKCS#7 padding.
func Decrypt(ciphertext []byte, key [32]byte, iv [16]byte) (plaintext []byte, err error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}

	if len(ciphertext) == 0 || len(ciphertext)%block.BlockSize() != 0 {
		return nil, ErrCiphertextLengthInvalid
	}

	mode := cipher.NewCBCDecrypter(block, iv[:])
	padded := make([]byte, len(ciphertext))
	mode.CryptBlocks(padded, ciphertext)

	return pkcs7Unpad(padded)
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padtext := bytes.Repeat([]byte{byte(padding)}, padding)
	return append(data, padtext...)
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	length := len(data)
	if length == 0 {
		return nil, ErrPaddingInvalid
	}
	unpadding := int(data[length-1])
	if unpadding == 0 || unpadding > length {
		return nil, ErrPaddingInvalid
	}
	for _, b := range data[length-unpadding:] {
		if int(b) != unpadding {
			return nil, ErrPaddingInvalid
		}
	}
	return data[:length-unpadding], nil
}
