package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckAccess(t *testing.T) {
	testCases := []struct {
		name     string
		class    ScreenClass
		token    string
		expected Access
	}{
		{
			name:     "protected without session redirects to login",
			class:    Protected,
			token:    "",
			expected: RedirectToLogin,
		},
		{
			name:     "protected with session is allowed",
			class:    Protected,
			token:    "user-1",
			expected: Allow,
		},
		{
			name:     "public-only with session redirects to main",
			class:    PublicOnly,
			token:    "user-1",
			expected: RedirectToMain,
		},
		{
			name:     "public-only without session is allowed",
			class:    PublicOnly,
			token:    "",
			expected: Allow,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, CheckAccess(tc.class, tc.token))
		})
	}
}
