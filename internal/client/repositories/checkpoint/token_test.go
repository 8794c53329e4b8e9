package checkpoint

import (
	"testing"
	"time"

	"github.com/annagav/garderobe/internal/client/models"
	"github.com/annagav/garderobe/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bearerToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user@example.com",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		cp   *models.Checkpoint
		want bool
	}{
		{
			name: "live token",
			cp: &models.Checkpoint{
				Credential: bearerToken(t, now.Add(time.Hour)),
				Kind:       common.CredentialKindBearer,
			},
			want: false,
		},
		{
			name: "expired token",
			cp: &models.Checkpoint{
				Credential: bearerToken(t, now.Add(-time.Hour)),
				Kind:       common.CredentialKindBearer,
			},
			want: true,
		},
		{
			name: "opaque non-jwt credential is not locally decidable",
			cp: &models.Checkpoint{
				Credential: "opaque-session-id",
				Kind:       common.CredentialKindBearer,
			},
			want: false,
		},
		{
			name: "non-bearer kind skipped",
			cp: &models.Checkpoint{
				Credential: bearerToken(t, now.Add(-time.Hour)),
				Kind:       "apikey",
			},
			want: false,
		},
		{
			name: "no credential",
			cp:   &models.Checkpoint{},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expired(tt.cp, now))
		})
	}
}
