package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPhoneValidator(t *testing.T) {
	validator := NewPhoneValidator()
	assert.NotNil(t, validator)
}

func TestValidate_ValidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"0912345678", "0912345678", "Standard format"},
		{"091 234 5678", "0912345678", "With spaces"},
		{"091-234-5678", "0912345678", "With dashes"},
		{"091.234.5678", "0912345678", "With dots"},
		{"(091) 234 5678", "0912345678", "With parentheses"},
		{"+84912345678", "0912345678", "With country code"},
		{"84912345678", "0912345678", "Country code without plus"},
		{"0329876543", "0329876543", "Viettel 032"},
		{"0789876543", "0789876543", "Mobifone 078"},
		{"0889876543", "0889876543", "Vinaphone 088"},
		{"0929876543", "0929876543", "Vietnamobile 092"},
		{"0999876543", "0999876543", "Gmobile 099"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidate_InvalidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	invalidNumbers := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPhone, "Empty string"},
		{"091", ErrInvalidLength, "Too short"},
		{"09123456789", ErrInvalidLength, "Too long"},
		{"0112345678", ErrInvalidPrefix, "Landline prefix"},
		{"0012345678", ErrInvalidPrefix, "Invalid prefix 001"},
		{"091234567a", ErrInvalidFormat, "Contains letters"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			assert.ErrorIs(t, err, tc.expectedErr)
		})
	}
}

func TestFormat(t *testing.T) {
	validator := NewPhoneValidator()

	formatted, err := validator.Format("0912345678")
	require.NoError(t, err)
	assert.Equal(t, "091 234 5678", formatted)

	_, err = validator.Format("123")
	assert.Error(t, err)
}

func TestGetOperator(t *testing.T) {
	validator := NewPhoneValidator()

	cases := []struct {
		input    string
		expected string
	}{
		{"0961234567", "Viettel"},
		{"0901234567", "Mobifone"},
		{"0911234567", "Vinaphone"},
		{"0921234567", "Vietnamobile"},
		{"0991234567", "Gmobile"},
	}

	for _, tc := range cases {
		operator, err := validator.GetOperator(tc.input)
		require.NoError(t, err)
		assert.Equal(t, tc.expected, operator)
	}
}

func TestIsValid(t *testing.T) {
	validator := NewPhoneValidator()

	assert.True(t, validator.IsValid("0912345678"))
	assert.False(t, validator.IsValid("12345"))
}
