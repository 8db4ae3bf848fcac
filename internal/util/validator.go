package util

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// maxAmount fits numeric(15,2).
var maxAmount = decimal.New(1, 13)

var (
	currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)
	colorRe    = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)
)

// ValidateAmount checks a strictly positive amount with at most two decimals.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("amount must be positive, got %s", amount)
	}
	return ValidateScale(amount)
}

// ValidateNonNegative checks an amount that may be zero.
func ValidateNonNegative(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return fmt.Errorf("amount must not be negative, got %s", amount)
	}
	return ValidateScale(amount)
}

// ValidateScale checks the numeric(15,2) bounds of any amount, sign aside.
func ValidateScale(amount decimal.Decimal) error {
	if amount.Abs().GreaterThanOrEqual(maxAmount) {
		return fmt.Errorf("amount too large, got %s", amount)
	}
	if !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("amount has more than two decimal places, got %s", amount)
	}
	return nil
}

// ValidateName checks a required display name.
func ValidateName(name string, max int) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name is empty")
	}
	if len([]rune(name)) > max {
		return fmt.Errorf("name too long, max %d characters", max)
	}
	return nil
}

// ValidateCurrency checks a 3-letter upper-case ISO code.
func ValidateCurrency(code string) error {
	if !currencyRe.MatchString(code) {
		return fmt.Errorf("currency must be a 3-letter code, got %q", code)
	}
	return nil
}

// ValidateColor checks a #RRGGBB color.
func ValidateColor(color string) error {
	if !colorRe.MatchString(color) {
		return fmt.Errorf("color must look like #RRGGBB, got %q", color)
	}
	return nil
}

// ValidateEmail checks a bare address (no display name).
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("invalid email %q", email)
	}
	return nil
}

// ValidatePriority checks the 1-10 goal priority range.
func ValidatePriority(p int) error {
	if p < 1 || p > 10 {
		return fmt.Errorf("priority must be between 1 and 10, got %d", p)
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(pwd string) error {
	if len(pwd) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	if len(pwd) > 72 {
		// bcrypt ignores anything past 72 bytes
		return fmt.Errorf("password must be at most 72 bytes")
	}
	return nil
}
