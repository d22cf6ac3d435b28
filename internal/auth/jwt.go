// Package auth implements credential verification and signed session tokens.
package auth

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	// Load env file into environments.
	_ "github.com/joho/godotenv/autoload"
)

// SECRET_KEY signs every issued token.
var SECRET_KEY = os.Getenv("SECRET_KEY")

// JwtIssuer identifies tokens issued by this server.
const JwtIssuer = "UniTrack"

// AccessTokenDuration is the fixed session token lifetime.
const AccessTokenDuration = 30 * 24 * time.Hour

// AccessClaims binds the stored role into the signed token alongside the
// registered claim set.
type AccessClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func generateToken(userID uuid.UUID, role string) (string, error) {
	return GenerateTokenWithDuration(userID, role, AccessTokenDuration, JwtIssuer)
}

// GenerateTokenWithDuration signs an access token with an explicit lifetime
// and issuer. Tests use it to mint expired or foreign tokens.
func GenerateTokenWithDuration(userID uuid.UUID, role string, duration time.Duration, issuer string) (string, error) {

	generatedAccessToken := jwt.NewWithClaims(jwt.SigningMethodHS256, AccessClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(duration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	})

	signedToken, err := generatedAccessToken.SignedString([]byte(SECRET_KEY))
	if err != nil {
		return "", fmt.Errorf("Failed to sign token: %s", err)
	}

	return signedToken, nil
}

// ValidatedToken parses and verifies a signed access token.
func ValidatedToken(encodeToken string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(encodeToken, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, isvalid := token.Method.(*jwt.SigningMethodHMAC); !isvalid {
			return nil, fmt.Errorf("Invalid token")
		}
		return []byte(SECRET_KEY), nil
	})
}
