package models

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want string
	}{
		{"typical key", "abcdefwxyz", "****wxyz"},
		{"exactly four chars", "abcd", "****abcd"},
		{"shorter than four", "abc", "****abc"},
		{"empty", "", "****"},
		{"multibyte key keeps last four runes", "ключ-пароль", "****роль"},
		{"multibyte shorter than four", "日本", "****日本"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			masked := MaskAPIKey(tt.key)
			assert.Equal(t, tt.want, masked)
			assert.True(t, utf8.ValidString(masked), "masked form must stay valid UTF-8")
		})
	}
}
