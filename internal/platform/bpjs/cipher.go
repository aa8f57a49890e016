package bpjs

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"

	lzstring "github.com/daku10/go-lz-string"

	"github.com/bpjs/bridge/internal/config"
)

// DecryptionError wraps any cipher, padding or decompression failure while
// decoding a remote payload. The payload is never partially returned.
type DecryptionError struct {
	Service Service
	Err     error
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("bpjs: decrypt response from %s: %v", e.Service, e.Err)
}

func (e *DecryptionError) Unwrap() error { return e.Err }

// DeriveKeyIV derives the AES key and IV for one call. The key material is
// SHA-256 over "{consID}{secretKey}{timestamp}"; the key is the full 32-byte
// digest and the IV is the FIRST 16 bytes of the same digest. The IV is not
// independently random -- that is the remote authority's protocol, and it has
// to be reproduced bit-for-bit, not fixed.
func DeriveKeyIV(consID, secretKey, timestamp string) (key, iv []byte) {
	digest := sha256.Sum256([]byte(consID + secretKey + timestamp))
	return digest[:32], digest[:16]
}

// DecryptResponse decodes an encrypted remote payload: base64 decode,
// AES-256-CBC decrypt with the derived key/IV, PKCS#7 unpad, then reverse the
// authority's LZ-string URI-component compression to recover JSON text. The
// result is the parsed JSON value, or the raw decompressed string when the
// text is not valid JSON (some endpoints return plain messages).
func DecryptResponse(encrypted, timestamp string, creds config.ServiceCredentials) (interface{}, error) {
	key, iv := DeriveKeyIV(creds.ConsID, creds.SecretKey, timestamp)

	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("base64 decode: %w", err)
	}
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("ciphertext length %d is not a multiple of the AES block size", len(data))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("init cipher: %w", err)
	}

	plain := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, data)

	plain, err = pkcs7Unpad(plain)
	if err != nil {
		return nil, err
	}

	decompressed, err := lzstring.DecompressFromEncodedURIComponent(string(plain))
	if err != nil {
		return nil, fmt.Errorf("lz-string decompress: %w", err)
	}

	var v interface{}
	if err := json.Unmarshal([]byte(decompressed), &v); err != nil {
		return decompressed, nil
	}
	return v, nil
}

func pkcs7Unpad(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty plaintext")
	}
	pad := int(data[len(data)-1])
	if pad == 0 || pad > aes.BlockSize || pad > len(data) {
		return nil, fmt.Errorf("invalid padding byte %d", pad)
	}
	for _, b := range data[len(data)-pad:] {
		if int(b) != pad {
			return nil, fmt.Errorf("inconsistent padding")
		}
	}
	return data[:len(data)-pad], nil
}
