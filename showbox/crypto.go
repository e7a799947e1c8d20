package showbox

import (
	"bytes"
	"crypto/cipher"
	"crypto/des"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
)

const (
	appKey    = "moviebox"
	cipherKey = "123d6cedf626dy54233aa1w6"
	cipherIV  = "wEiphTn!"
)

// Encrypt is TripleDES-CBC with PKCS#7 padding, base64 encoded.
func Encrypt(plain []byte) string {
	block, err := des.NewTripleDESCipher([]byte(cipherKey))
	if err != nil {
		// the key is a 24 byte constant
		panic(err)
	}

	padding := block.BlockSize() - len(plain)%block.BlockSize()
	padded := append(bytes.Clone(plain), bytes.Repeat([]byte{byte(padding)}, padding)...)

	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, []byte(cipherIV)).CryptBlocks(out, padded)
	return base64.StdEncoding.EncodeToString(out)
}

// Decrypt reverses Encrypt. It is used by tests and by the debug logging of rejected requests.
func Decrypt(encoded string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	block, err := des.NewTripleDESCipher([]byte(cipherKey))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || len(data)%block.BlockSize() != 0 {
		return nil, errInvalidCiphertext
	}

	out := make([]byte, len(data))
	cipher.NewCBCDecrypter(block, []byte(cipherIV)).CryptBlocks(out, data)

	padding := int(out[len(out)-1])
	if padding == 0 || padding > block.BlockSize() {
		return nil, errInvalidCiphertext
	}
	return out[:len(out)-padding], nil
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Verify signs an encrypted payload: md5(md5(appKey) + key + payload).
func Verify(encrypted string) string {
	return md5Hex(md5Hex(appKey) + cipherKey + encrypted)
}
