// services/cipher.go - Challenge payload generation per cipher family
package services

import (
	"crypto/aes"
	"crypto/cipher"
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

// Supported cipher families.
const (
	CipherCaesar   = "caesar"
	CipherXOR      = "xor"
	CipherVigenere = "vigenere"
	CipherAES      = "aes"
	CipherRSA      = "rsa"
)

const keyAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// rsaPrimes is a small prime pool for textbook RSA challenges. The point is
// a factorable modulus the player can break by hand, not real security.
var rsaPrimes = []int64{101, 103, 107, 109, 113, 127, 131, 137, 139, 149, 151, 157, 163, 167, 173}

// CipherPayload is a generated challenge secret: the layered encrypted
// message and the flag that decrypting it recovers.
type CipherPayload struct {
	EncryptedMessage string // LAYER_TYPE:KEY:CIPHERTEXT
	Flag             string
	Key              string
}

// GeneratePayload builds the layered payload for a cipher family. The
// plaintext is the flag itself, so recovering the key and decrypting yields
// the submission directly.
func GeneratePayload(cipherType string) (*CipherPayload, error) {
	flag := fmt.Sprintf("FLAG{%s_%s}", cipherType, randomToken(8))

	var key, ciphertext string
	var err error

	switch cipherType {
	case CipherCaesar:
		shift := rand.Intn(25) + 1
		key = strconv.Itoa(shift)
		ciphertext = caesarEncrypt(flag, shift)
	case CipherXOR:
		key = randomToken(8)
		ciphertext = xorEncrypt(flag, key)
	case CipherVigenere:
		key = randomLetters(8)
		ciphertext = vigenereEncrypt(flag, key)
	case CipherAES:
		key = randomToken(16)
		ciphertext, err = aesEncrypt(flag, key)
		if err != nil {
			return nil, err
		}
	case CipherRSA:
		key, ciphertext = rsaEncrypt(flag)
	default:
		return nil, fmt.Errorf("unknown cipher type: %s", cipherType)
	}

	return &CipherPayload{
		EncryptedMessage: strings.ToUpper(cipherType) + ":" + key + ":" + ciphertext,
		Flag:             flag,
		Key:              key,
	}, nil
}

func randomToken(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = keyAlphabet[rand.Intn(len(keyAlphabet))]
	}
	return string(b)
}

func randomLetters(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte('A' + rand.Intn(26))
	}
	return string(b)
}

func caesarEncrypt(plaintext string, shift int) string {
	var b strings.Builder
	for _, ch := range plaintext {
		switch {
		case ch >= 'A' && ch <= 'Z':
			b.WriteRune('A' + (ch-'A'+rune(shift))%26)
		case ch >= 'a' && ch <= 'z':
			b.WriteRune('a' + (ch-'a'+rune(shift))%26)
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

func xorEncrypt(plaintext, key string) string {
	data := []byte(plaintext)
	for i := range data {
		data[i] ^= key[i%len(key)]
	}
	return hex.EncodeToString(data)
}

func vigenereEncrypt(plaintext, key string) string {
	var b strings.Builder
	j := 0
	for _, ch := range plaintext {
		switch {
		case ch >= 'A' && ch <= 'Z':
			shift := rune(key[j%len(key)] - 'A')
			b.WriteRune('A' + (ch-'A'+shift)%26)
			j++
		case ch >= 'a' && ch <= 'z':
			shift := rune(key[j%len(key)] - 'A')
			b.WriteRune('a' + (ch-'a'+shift)%26)
			j++
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}

// aesEncrypt seals the plaintext with AES-GCM under the literal key string
// and returns hex(nonce || ciphertext).
func aesEncrypt(plaintext, key string) (string, error) {
	block, err := aes.NewCipher([]byte(key))
	if err != nil {
		return "", err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := crand.Read(nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return hex.EncodeToString(sealed), nil
}

// rsaEncrypt does textbook RSA over individual bytes with a small modulus.
// The key field carries the private exponent and modulus; colons are avoided
// so the layered format stays parseable.
func rsaEncrypt(plaintext string) (key, ciphertext string) {
	pi := rand.Intn(len(rsaPrimes))
	qi := rand.Intn(len(rsaPrimes))
	for qi == pi {
		qi = rand.Intn(len(rsaPrimes))
	}
	p, q := rsaPrimes[pi], rsaPrimes[qi]
	n := p * q
	phi := (p - 1) * (q - 1)

	var e int64 = 17
	for gcd(e, phi) != 1 {
		e += 2
	}
	d := modInverse(e, phi)

	blocks := make([]string, len(plaintext))
	for i := 0; i < len(plaintext); i++ {
		blocks[i] = strconv.FormatInt(modPow(int64(plaintext[i]), e, n), 10)
	}

	key = fmt.Sprintf("d=%d;n=%d", d, n)
	return key, strings.Join(blocks, " ")
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func modInverse(a, m int64) int64 {
	// extended Euclid
	g, x := int64(m), int64(0)
	b, x1 := a%m, int64(1)
	for b != 0 {
		quot := g / b
		g, b = b, g-quot*b
		x, x1 = x1, x-quot*x1
	}
	return ((x % m) + m) % m
}

func modPow(base, exp, mod int64) int64 {
	result := int64(1)
	base %= mod
	for exp > 0 {
		if exp&1 == 1 {
			result = result * base % mod
		}
		base = base * base % mod
		exp >>= 1
	}
	return result
}
