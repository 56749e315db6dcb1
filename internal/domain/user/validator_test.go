package user

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialsValidator_ValidateLogin(t *testing.T) {
	validator := NewCredentialsValidator()

	tests := []struct {
		name        string
		login       string
		wantErr     bool
		expectedErr string
	}{
		{name: "valid login", login: "maria.t"},
		{name: "valid with underscore", login: "enum_07"},
		{name: "unicode letters", login: "Sēmisi"},
		{
			name:        "too short",
			login:       "ab",
			wantErr:     true,
			expectedErr: "login must be at least 3 characters",
		},
		{
			name:        "too long",
			login:       strings.Repeat("a", 65),
			wantErr:     true,
			expectedErr: "login must be at most 64 characters",
		},
		{
			name:        "reserved",
			login:       "Anonymous",
			wantErr:     true,
			expectedErr: "is reserved",
		},
		{
			name:        "invalid space",
			login:       "maria t",
			wantErr:     true,
			expectedErr: "login can only contain letters, digits, '_', '-', '.'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateLogin(tt.login)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCredentialsValidator_ValidatePassword(t *testing.T) {
	validator := NewCredentialsValidator()

	tests := []struct {
		name        string
		password    string
		wantErr     bool
		expectedErr string
	}{
		{name: "letters and digits", password: "tonga2024"},
		{name: "with special chars", password: "P@ssw0rd!"},
		{
			name:        "too short",
			password:    "abc123",
			wantErr:     true,
			expectedErr: "password must be at least 8 characters",
		},
		{
			name:        "no digit",
			password:    "abcdefgh",
			wantErr:     true,
			expectedErr: "password must contain at least one digit",
		},
		{
			name:        "no letter",
			password:    "12345678",
			wantErr:     true,
			expectedErr: "password must contain at least one letter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidatePassword(tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestCredentialsValidator_RequireSpecial(t *testing.T) {
	v := NewCredentialsValidator()
	v.requireSpecial = true

	err := v.ValidatePassword("tonga2024")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "special character")

	assert.NoError(t, v.ValidatePassword("tonga-2024"))
}

func TestCredentialsValidator_ValidateRegister(t *testing.T) {
	validator := NewCredentialsValidator()

	tests := []struct {
		name           string
		login          string
		password       string
		wantErr        bool
		expectedErrMsg string
	}{
		{name: "valid registration", login: "maria", password: "vavau2024"},
		{
			name:           "invalid login",
			login:          "ab",
			password:       "vavau2024",
			wantErr:        true,
			expectedErrMsg: "login validation failed",
		},
		{
			name:           "invalid password",
			login:          "maria",
			password:       "abc",
			wantErr:        true,
			expectedErrMsg: "password validation failed",
		},
		{
			name:           "password equals login",
			login:          "maria2024",
			password:       "MARIA2024",
			wantErr:        true,
			expectedErrMsg: "must differ from login",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.ValidateRegister(tt.login, tt.password)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedErrMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
