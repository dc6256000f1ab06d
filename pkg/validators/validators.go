// Package validators holds document and contact field checks shared by the
// record handlers. Brazilian CPF and CNPJ numbers are verified with their
// check digit algorithms so obviously bogus documents never reach the
// duplicate scorers.
package validators

import (
	"github.com/go-playground/validator/v10"

	"github.com/Ramsey-B/clover/pkg/normalizers"
)

var validate = validator.New()

// Register adds the custom document rules to an echo-bound validator
// instance.
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("cpf", func(fl validator.FieldLevel) bool {
		return IsCPF(fl.Field().String())
	}); err != nil {
		return err
	}
	if err := v.RegisterValidation("cnpj", func(fl validator.FieldLevel) bool {
		return IsCNPJ(fl.Field().String())
	}); err != nil {
		return err
	}
	return v.RegisterValidation("brphone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
}

// IsEmail reports whether the value looks like an email address.
func IsEmail(value string) bool {
	return validate.Var(value, "email") == nil
}

// IsPhone accepts 10 or 11 digit phone numbers, punctuation ignored.
func IsPhone(value string) bool {
	digits := normalizers.DigitsOnly(value)
	return len(digits) == 10 || len(digits) == 11
}

// IsDocument accepts either a valid CPF or a valid CNPJ.
func IsDocument(value string) bool {
	return IsCPF(value) || IsCNPJ(value)
}

// IsCPF verifies an 11 digit CPF, including both check digits.
func IsCPF(value string) bool {
	digits := normalizers.DigitsOnly(value)
	if len(digits) != 11 || allSame(digits) {
		return false
	}

	if checkDigit(digits[:9], 10) != int(digits[9]-'0') {
		return false
	}
	return checkDigit(digits[:10], 11) == int(digits[10]-'0')
}

// IsCNPJ verifies a 14 digit CNPJ, including both check digits.
func IsCNPJ(value string) bool {
	digits := normalizers.DigitsOnly(value)
	if len(digits) != 14 || allSame(digits) {
		return false
	}

	firstWeights := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	secondWeights := []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}

	if weightedDigit(digits[:12], firstWeights) != int(digits[12]-'0') {
		return false
	}
	return weightedDigit(digits[:13], secondWeights) == int(digits[13]-'0')
}

// checkDigit computes a CPF check digit: digits are weighted from
// startWeight downward, and the remainder of sum*10 mod 11 folds 10 to 0.
func checkDigit(digits string, startWeight int) int {
	sum := 0
	for i, r := range digits {
		sum += int(r-'0') * (startWeight - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}

func weightedDigit(digits string, weights []int) int {
	sum := 0
	for i, r := range digits {
		sum += int(r-'0') * weights[i]
	}
	rest := sum % 11
	if rest < 2 {
		return 0
	}
	return 11 - rest
}

func allSame(digits string) bool {
	for i := 1; i < len(digits); i++ {
		if digits[i] != digits[0] {
			return false
		}
	}
	return true
}
