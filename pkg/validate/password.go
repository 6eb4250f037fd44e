package validate

import "unicode/utf8"

// Strength buckets used by UIs to colour a strength meter.
const (
	StrengthWeak   = "weak"
	StrengthMedium = "medium"
	StrengthStrong = "strong"
)

// PasswordStrength scores a password from 0 to 100.
func PasswordStrength(password string) int {
	if password == "" {
		return 0
	}
	c := classify(password)
	score := 10
	if utf8.RuneCountInString(password) >= 8 {
		score += 20
	}
	if c.upper > 0 {
		score += 20
	}
	if c.lower > 0 {
		score += 20
	}
	if c.digit > 0 {
		score += 15
	}
	if c.special > 0 {
		score += 15
	}
	return score
}

// StrengthLevel buckets a score.
func StrengthLevel(score int) string {
	switch {
	case score < 40:
		return StrengthWeak
	case score < 80:
		return StrengthMedium
	default:
		return StrengthStrong
	}
}

// PasswordPolicy lists minimum character counts. Zero disables a rule.
type PasswordPolicy struct {
	MinLength  int `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MinUpper   int `json:"minUpper,omitempty" yaml:"minUpper,omitempty"`
	MinDigit   int `json:"minDigit,omitempty" yaml:"minDigit,omitempty"`
	MinSpecial int `json:"minSpecial,omitempty" yaml:"minSpecial,omitempty"`
}

// PolicyReport carries the per-rule result. Only enabled rules are present.
type PolicyReport map[string]bool

// Passed reports whether every enabled rule passed.
func (r PolicyReport) Passed() bool {
	for _, ok := range r {
		if !ok {
			return false
		}
	}
	return true
}

// Check evaluates the policy against password.
func (p PasswordPolicy) Check(password string) PolicyReport {
	c := classify(password)
	report := PolicyReport{}
	if p.MinLength > 0 {
		report["min"] = utf8.RuneCountInString(password) >= p.MinLength
	}
	if p.MinUpper > 0 {
		report["upper"] = c.upper >= p.MinUpper
	}
	if p.MinDigit > 0 {
		report["digit"] = c.digit >= p.MinDigit
	}
	if p.MinSpecial > 0 {
		report["special"] = c.special >= p.MinSpecial
	}
	return report
}

type charCounts struct {
	upper, lower, digit, special int
}

// classify counts ASCII classes per rune; anything that is not an ASCII
// letter or digit is special.
func classify(s string) charCounts {
	var c charCounts
	for _, b := range s {
		switch {
		case b >= 'A' && b <= 'Z':
			c.upper++
		case b >= 'a' && b <= 'z':
			c.lower++
		case b >= '0' && b <= '9':
			c.digit++
		default:
			c.special++
		}
	}
	return c
}
