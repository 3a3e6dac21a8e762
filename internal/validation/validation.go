package validation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// Константы валидации
const (
	MinJobTitleLength           = 3
	MaxJobTitleLength           = 200
	MinJobDescriptionLength     = 10
	MaxJobDescriptionLength     = 5000
	MaxLocationLength           = 200
	MaxResponseMessageLength    = 2000
	MaxReviewLength             = 3000
	MaxCancellationReasonLength = 1000
	MaxNotesLength              = 2000
)

var (
	// MinBudget и MaxBudget ограничивают любую денежную величину заявки.
	MinBudget = decimal.Zero
	MaxBudget = decimal.NewFromInt(100000000) // 100 миллионов

	// MinScore и MaxScore — допустимый диапазон баллов оценки.
	MinScore = decimal.NewFromInt(1)
	MaxScore = decimal.NewFromInt(5)
)

// ValidateLength проверяет длину строки в рунах.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateAmount проверяет, что денежная величина положительна и в пределах лимита.
func ValidateAmount(fieldName string, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(MinBudget) {
		return fmt.Errorf("%s должен быть больше нуля", fieldName)
	}
	if amount.GreaterThan(MaxBudget) {
		return fmt.Errorf("%s превышает допустимый максимум", fieldName)
	}
	return nil
}

// ValidateScore проверяет, что балл лежит в диапазоне [1, 5].
func ValidateScore(fieldName string, score decimal.Decimal) error {
	if score.LessThan(MinScore) || score.GreaterThan(MaxScore) {
		return fmt.Errorf("%s должен быть от 1 до 5", fieldName)
	}
	return nil
}

// ValidateEnum проверяет, что значение входит в закрытый список.
func ValidateEnum(fieldName, value string, allowed map[string]struct{}) error {
	if _, ok := allowed[value]; !ok {
		return fmt.Errorf("%s имеет недопустимое значение %q", fieldName, value)
	}
	return nil
}
