package security

import "golang.org/x/crypto/bcrypt"

// bcrypt work factor. Each increment doubles the hashing cost; 12 keeps a
// single verification in the tens of milliseconds on current hardware.
const hashCost = 12

// HashPassword hashes a plain text password with bcrypt. The salt and cost
// are embedded in the digest, so verification needs nothing else.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored bcrypt digest.
// A mismatch or a malformed digest both come back as false, never an error
// the caller could use to tell the two apart.
func CheckPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
