package auth

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"UniTrack-backend/internal/database"
	"UniTrack-backend/internal/model"
	"UniTrack-backend/internal/utilities"
)

// LocalAuthHandler holds DB reference for handler methods.
type LocalAuthHandler struct {
	DB *database.DBinstanceStruct
}

// NewLocalAuthHandler creates a new instance of LocalAuthHandler with the provided database connection.
func NewLocalAuthHandler(db *database.DBinstanceStruct) *LocalAuthHandler {
	return &LocalAuthHandler{
		DB: db,
	}
}

type signupInfo struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"omitempty,oneof=student agent admin"`
}

type loginInfo struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	// Role is accepted from the caller but the issued token always binds
	// the stored role.
	Role string `json:"role"`
}

type authResponse struct {
	User        model.User `json:"user"`
	AccessToken string     `json:"access_token"`
}

// SignupHandler registers a new account from name, email and password.
// The role defaults to student when absent. The plaintext password is
// bcrypt-hashed before storage.
// @Summary Register a new portal account
// @Description Email must not already exist and password must be at least 8 characters long
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body signupInfo true "role can be 'student', 'agent' or 'admin'; defaults to student"
// @Success 201 {object} authResponse "Newly created account with access token"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body or email already registered"
// @Failure 500 {object} utilities.ErrorResponse "Database or password hashing error"
// @Router /auth/signup [post]
func (lh *LocalAuthHandler) SignupHandler(c *gin.Context) {
	var info signupInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Name, a valid email and password must be provided",
		})
		return
	}

	if len(info.Password) < 8 {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Password should longer or equal to 8 characters",
		})
		return
	}

	hashedPassword, err := utilities.HashPassword(info.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed hash password: %s", err.Error()),
		})
		return
	}

	role := info.Role
	if role == "" {
		role = model.RoleStudent
	}

	user := model.User{
		Name:     info.Name,
		Email:    info.Email,
		Password: hashedPassword,
		Role:     role,
	}

	if err := lh.DB.Create(&user).Error; err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique constraint on email
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: "User already exists",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to create user: %s", err.Error()),
		})
		return
	}

	accessToken, err := generateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusCreated, authResponse{
		User:        user,
		AccessToken: accessToken,
	})
}

// LoginHandler verifies email and password and issues a session token.
// The token encodes the stored role regardless of the role field in the
// request body.
// @Summary Log in with email and password
// @Tags Auth
// @Accept json
// @Produce json
// @Param Info body loginInfo true "Credentials"
// @Success 200 {object} authResponse "Account with fresh access token"
// @Failure 400 {object} utilities.ErrorResponse "Invalid body"
// @Failure 401 {object} utilities.ErrorResponse "Password mismatch"
// @Failure 404 {object} utilities.ErrorResponse "No account with that email"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/login [post]
func (lh *LocalAuthHandler) LoginHandler(c *gin.Context) {
	var info loginInfo

	if err := c.ShouldBindJSON(&info); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: "Email or password is not provided",
		})
		return
	}

	var user model.User
	err := lh.DB.Where("email = ?", info.Email).First(&user).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, utilities.ErrorResponse{
			Error: "User not found",
		})
		return

	case err == nil:
		// Do nothing

	default:
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Database error: %s", err.Error()),
		})
		return
	}

	if !utilities.VerifyPassword(info.Password, user.Password) {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{
			Error: "Invalid credentials",
		})
		return
	}

	accessToken, err := generateToken(user.ID, user.Role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, authResponse{
		User:        user,
		AccessToken: accessToken,
	})
}
