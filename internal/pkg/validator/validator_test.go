package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=50,username"`
	Password string `form:"password" validate:"required"`
}

func TestValidator_Struct(t *testing.T) {
	v := New()

	tests := []struct {
		name   string
		in     signup
		fields []string
	}{
		{"valid", signup{"a@example.com", "alice_1", "x"}, nil},
		{"missing everything", signup{}, []string{"email", "username", "password"}},
		{"bad email", signup{"nope", "alice", "x"}, []string{"email"}},
		{"username starts with digit", signup{"a@example.com", "1alice", "x"}, []string{"username"}},
		{"username with dash", signup{"a@example.com", "al-ice", "x"}, []string{"username"}},
		{"username too short", signup{"a@example.com", "al", "x"}, []string{"username"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.in)
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}

			var verrs Errors
			require.True(t, errors.As(err, &verrs))

			got := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				got = append(got, fe.Field)
				assert.NotEmpty(t, fe.Message)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}
