package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	cryptoDomain "github.com/allisson/bluegreen/internal/crypto/domain"
)

const (
	cbcIVSize  = aes.BlockSize
	cbcTagSize = 32
)

// AESCBCHMACCipher implements AEAD_AES_256_CBC_HMAC_SHA_512 over a 96-byte key
// split into MAC key, encryption key and IV key.
//
// The tag is HMAC-SHA-512 truncated to 32 bytes over AD || IV || C || AL, where
// AL is the bit length of AD as a 64-bit big-endian integer. In deterministic
// mode the IV is HMAC-SHA-512(ivKey, AD || AL || P) truncated to 16 bytes.
type AESCBCHMACCipher struct {
	block         cipher.Block
	macKey        []byte
	ivKey         []byte
	deterministic bool
}

// NewAESCBCHMAC creates the cipher from a 96-byte key.
func NewAESCBCHMAC(key []byte, deterministic bool) (*AESCBCHMACCipher, error) {
	if len(key) != 3*cryptoDomain.SubKeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	macKey := append([]byte(nil), key[:cryptoDomain.SubKeySize]...)
	encKey := key[cryptoDomain.SubKeySize : 2*cryptoDomain.SubKeySize]
	ivKey := append([]byte(nil), key[2*cryptoDomain.SubKeySize:]...)

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	return &AESCBCHMACCipher{
		block:         block,
		macKey:        macKey,
		ivKey:         ivKey,
		deterministic: deterministic,
	}, nil
}

// Encrypt returns C || T as ciphertext and the IV as nonce.
func (c *AESCBCHMACCipher) Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error) {
	al := associatedDataLength(aad)

	iv := make([]byte, cbcIVSize)
	if c.deterministic {
		mac := hmac.New(sha512.New, c.ivKey)
		mac.Write(aad)
		mac.Write(al)
		mac.Write(plaintext)
		copy(iv, mac.Sum(nil))
	} else if _, err := rand.Read(iv); err != nil {
		return nil, nil, fmt.Errorf("failed to generate iv: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	encrypted := make([]byte, len(padded))
	cipher.NewCBCEncrypter(c.block, iv).CryptBlocks(encrypted, padded)

	tag := c.tag(aad, iv, encrypted, al)
	return append(encrypted, tag...), iv, nil
}

// Decrypt verifies the tag before touching the ciphertext.
func (c *AESCBCHMACCipher) Decrypt(ciphertext, nonce, aad []byte) ([]byte, error) {
	if len(nonce) != cbcIVSize {
		return nil, cryptoDomain.ErrInvalidCiphertext
	}
	if len(ciphertext) < aes.BlockSize+cbcTagSize || (len(ciphertext)-cbcTagSize)%aes.BlockSize != 0 {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	encrypted := ciphertext[:len(ciphertext)-cbcTagSize]
	tag := ciphertext[len(ciphertext)-cbcTagSize:]

	expected := c.tag(aad, nonce, encrypted, associatedDataLength(aad))
	if !hmac.Equal(tag, expected) {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	padded := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(c.block, nonce).CryptBlocks(padded, encrypted)

	plaintext, ok := pkcs7Unpad(padded, aes.BlockSize)
	if !ok {
		return nil, cryptoDomain.ErrDecryptionFailed
	}
	return plaintext, nil
}

func (c *AESCBCHMACCipher) tag(aad, iv, encrypted, al []byte) []byte {
	mac := hmac.New(sha512.New, c.macKey)
	mac.Write(aad)
	mac.Write(iv)
	mac.Write(encrypted)
	mac.Write(al)
	return mac.Sum(nil)[:cbcTagSize]
}

func associatedDataLength(aad []byte) []byte {
	al := make([]byte, 8)
	binary.BigEndian.PutUint64(al, uint64(len(aad))*8)
	return al
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data), len(data)+n)
	copy(out, data)
	for i := 0; i < n; i++ {
		out = append(out, byte(n))
	}
	return out
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, false
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, false
		}
	}
	return data[:len(data)-n], true
}
