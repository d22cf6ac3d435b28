package auth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"

	"UniTrack-backend/internal/database"
	"UniTrack-backend/internal/model"
	"UniTrack-backend/internal/utilities"
)

var testDB *database.DBinstanceStruct
var testTeardown func(context.Context, ...testcontainers.TerminateOption) error

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	testTeardown, testDB, err = database.GetTestDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start test db: %v\n", err)
		os.Exit(1)
	}

	m.Run()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := testTeardown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "teardown error: %v\n", err)
	}
}

// Helper: validate access token in response and return claims.
func assertValidAccessToken(t *testing.T, resp map[string]interface{}) *AccessClaims {
	t.Helper()
	tokenStr, ok := resp["access_token"].(string)
	assert.True(t, ok, "access_token not a string")
	token, err := ValidatedToken(tokenStr)
	assert.NoError(t, err)
	assert.True(t, token.Valid)
	claims, ok := token.Claims.(*AccessClaims)
	assert.True(t, ok, "claims type mismatch")
	assert.NotEmpty(t, claims.Subject, "token subject empty")
	return claims
}

func TestSignupStudent(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	payload := map[string]string{
		"name":     "Signup Student",
		"email":    "signup_student@example.com",
		"password": "password123",
	}
	rec, resp, err := utilities.SimulateAPICall(handler.SignupHandler, "/signup", http.MethodPost, payload)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code, "unexpected status, body: %s", rec.Body.String())

	claims := assertValidAccessToken(t, resp)
	// Role defaults to student when the signup body omits it
	assert.Equal(t, model.RoleStudent, claims.Role)

	if uVal, has := resp["user"]; has {
		uMap, ok := uVal.(map[string]interface{})
		assert.True(t, ok)
		assert.Equal(t, "student", uMap["role"])
		assert.Equal(t, uMap["id"], claims.Subject)
		// the password hash must never be serialized
		_, leaked := uMap["password"]
		assert.False(t, leaked)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	payload := map[string]string{
		"name":     "Duplicate",
		"email":    database.TestUserStudent1.Email,
		"password": "password123",
	}
	rec, resp, err := utilities.SimulateAPICall(handler.SignupHandler, "/signup", http.MethodPost, payload)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "User already exists", resp["error"])
}

func TestSignupShortPassword(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	payload := map[string]string{
		"name":     "Short",
		"email":    "short_password@example.com",
		"password": "short",
	}
	rec, _, err := utilities.SimulateAPICall(handler.SignupHandler, "/signup", http.MethodPost, payload)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRoundTrip(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	// Every seeded account logs back in and the token carries the stored role
	cases := []struct {
		email string
		role  string
	}{
		{database.TestUserStudent1.Email, model.RoleStudent},
		{database.TestUserAgent1.Email, model.RoleAgent},
		{database.TestAdminUser.Email, model.RoleAdmin},
	}

	for _, tc := range cases {
		rec, resp, err := utilities.SimulateAPICall(handler.LoginHandler, "/login", http.MethodPost, map[string]string{
			"email":    tc.email,
			"password": database.TestSeedPassword,
		})
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		claims := assertValidAccessToken(t, resp)
		assert.Equal(t, tc.role, claims.Role, tc.email)
	}
}

func TestLoginIgnoresRequestedRole(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	// A student asking for an admin token still gets a student token
	rec, resp, err := utilities.SimulateAPICall(handler.LoginHandler, "/login", http.MethodPost, map[string]string{
		"email":    database.TestUserStudent1.Email,
		"password": database.TestSeedPassword,
		"role":     model.RoleAdmin,
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	claims := assertValidAccessToken(t, resp)
	assert.Equal(t, model.RoleStudent, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	rec, resp, err := utilities.SimulateAPICall(handler.LoginHandler, "/login", http.MethodPost, map[string]string{
		"email":    database.TestUserStudent1.Email,
		"password": "definitely-wrong",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", resp["error"])
}

func TestLoginUnknownEmail(t *testing.T) {
	handler := NewLocalAuthHandler(testDB)

	rec, resp, err := utilities.SimulateAPICall(handler.LoginHandler, "/login", http.MethodPost, map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", resp["error"])
}
