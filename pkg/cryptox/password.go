package cryptox

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/blowfish"
)

// Configuration for the bcrypt stage of password hashing.
const (
	SaltSize    = 16 // Raw salt length in bytes
	HashCost    = 10 // bcrypt cost factor
	hashVersion = "2b"

	encodedSaltSize = 22 // SaltSize in bcrypt base64
	cipherBlockSize = 8
	hashedBytes     = 23 // bcrypt only encodes 23 of the 24 cipher bytes
)

// ErrHashing wraps failures from the hashing primitives, usually a corrupt
// stored hash.
var ErrHashing = errors.New("cryptox: hashing failed")

// magicCipherData is the bcrypt IV "OrpheanBeholderScryDoubt".
var magicCipherData = []byte{
	0x4f, 0x72, 0x70, 0x68,
	0x65, 0x61, 0x6e, 0x42,
	0x65, 0x68, 0x6f, 0x6c,
	0x64, 0x65, 0x72, 0x53,
	0x63, 0x72, 0x79, 0x44,
	0x6f, 0x75, 0x62, 0x74,
}

var bcryptEncoding = base64.NewEncoding(
	"./ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789",
).WithPadding(base64.NoPadding)

// NewSalt returns SaltSize random bytes suitable for Derive.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// Derive hashes password with the given salt and server pepper and returns a
// modular-crypt bcrypt string ($2b$10$...).
//
// The password and pepper are first reduced with SHA-512/256 and base64
// encoded, which keeps the bcrypt input well below its 72 byte limit no
// matter how long either value is.
//
// Derive panics if salt is not exactly SaltSize bytes. Salts must come from
// NewSalt.
func Derive(password string, salt []byte, pepper string) (string, error) {
	if len(salt) != SaltSize {
		panic(fmt.Sprintf("cryptox: salt must be %d bytes, got %d", SaltSize, len(salt)))
	}

	key := prehash(password, pepper)

	// 1. EksBlowfish setup with the caller's salt
	ckey := append(key, 0)
	c, err := blowfish.NewSaltedCipher(ckey, salt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashing, err)
	}
	rounds := 1 << HashCost
	for range rounds {
		blowfish.ExpandKey(ckey, c)
		blowfish.ExpandKey(salt, c)
	}

	// 2. Encrypt the magic value 64 times per block
	cipherData := make([]byte, len(magicCipherData))
	copy(cipherData, magicCipherData)
	for i := 0; i < len(cipherData); i += cipherBlockSize {
		for range 64 {
			c.Encrypt(cipherData[i:i+cipherBlockSize], cipherData[i:i+cipherBlockSize])
		}
	}

	// 3. Encode as $2b$<cost>$<salt><hash>
	return fmt.Sprintf("$%s$%02d$%s%s",
		hashVersion,
		HashCost,
		bcryptEncoding.EncodeToString(salt),
		bcryptEncoding.EncodeToString(cipherData[:hashedBytes]),
	), nil
}

// Verify reports whether password (with pepper) matches a hash produced by
// Derive. A mismatch is (false, nil); a malformed stored hash is an error
// wrapping ErrHashing.
func Verify(stored, password, pepper string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(stored), prehash(password, pepper))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", ErrHashing, err)
	}
}

// prehash returns base64(SHA-512/256(password || pepper)).
func prehash(password, pepper string) []byte {
	sum := sha512.Sum512_256([]byte(password + pepper))
	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])
	return out
}
