package checkpoint

import (
	"time"

	"github.com/annagav/garderobe/internal/client/models"
	"github.com/annagav/garderobe/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Expired reports whether a stored bearer credential is already past its
// expiry, letting session restore skip a profile call that is certain to be
// rejected. The claims are read without signature verification; the server
// remains the authority on token validity. Non-bearer or non-JWT credentials
// are not locally decidable and are reported as live.
func Expired(cp *models.Checkpoint, now time.Time) bool {
	if cp == nil || cp.Kind != common.CredentialKindBearer || cp.Credential == "" {
		return false
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(cp.Credential, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
