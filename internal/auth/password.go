package auth

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	if len(password) == 0 {
		return "", errors.New("password is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword compares a plaintext password with a stored hash.
func VerifyPassword(hash, password string) error {
	if hash == "" {
		return errors.New("password hash is empty")
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

var (
	lowerRe   = regexp.MustCompile(`[a-z]`)
	upperRe   = regexp.MustCompile(`[A-Z]`)
	digitRe   = regexp.MustCompile(`\d`)
	specialRe = regexp.MustCompile(`[!@#$%^&*()_+\-=\[\]{};':"\\|,.<>\/?]`)
)

// hasRepeatedRun reports whether s contains the same character (other than
// newline) three or more times in a row. Go's regexp has no backreferences,
// so this stands in for the PCRE pattern `(.)\1{2,}`.
func hasRepeatedRun(s string) bool {
	var prev rune
	count := 0
	for _, r := range s {
		if r == prev {
			count++
		} else {
			prev, count = r, 1
		}
		if count >= 3 && r != '\n' {
			return true
		}
	}
	return false
}

var weakSequences = []string{"123456", "654321", "abcdef", "qwerty", "password"}

// ValidatePasswordStrength reports every rule the candidate password violates.
// An empty slice means the password is acceptable.
func ValidatePasswordStrength(password string) []string {
	var problems []string
	if len(password) < 8 {
		problems = append(problems, "password must be at least 8 characters long")
	}
	if len(password) > 128 {
		problems = append(problems, "password must be less than 128 characters long")
	}
	if !lowerRe.MatchString(password) {
		problems = append(problems, "password must contain at least one lowercase letter")
	}
	if !upperRe.MatchString(password) {
		problems = append(problems, "password must contain at least one uppercase letter")
	}
	if !digitRe.MatchString(password) {
		problems = append(problems, "password must contain at least one number")
	}
	if !specialRe.MatchString(password) {
		problems = append(problems, "password must contain at least one special character")
	}
	lowered := strings.ToLower(password)
	if hasRepeatedRun(password) || containsAny(lowered, weakSequences) {
		problems = append(problems, "password contains common patterns and is too weak")
	}
	return problems
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
