package services

import (
	"fmt"
	"log"
	"time"

	"droptrack/internal/models"
	"droptrack/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles registration, login and session-token resolution.
// Registration is gated by a server-side invite-code allow-list.
type AuthService struct {
	userRepo      repositories.UserRepository
	sessionSecret []byte
	inviteCodes   map[string]struct{}
	tokenDurat    time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, sessionSecret string, inviteCodes []string) *AuthService {
	codes := make(map[string]struct{}, len(inviteCodes))
	for _, c := range inviteCodes {
		if c != "" {
			codes[c] = struct{}{}
		}
	}
	return &AuthService{
		userRepo:      userRepo,
		sessionSecret: []byte(sessionSecret),
		inviteCodes:   codes,
		tokenDurat:    24 * time.Hour,
	}
}

// RegisterUser validates the invite code and password confirmation, hashes
// the password and creates the user. New users always get the "user" role.
func (s *AuthService) RegisterUser(username, password, confirmPassword, inviteCode string) (*models.User, error) {
	if password != confirmPassword {
		return nil, fmt.Errorf("passwords do not match: %w", models.ErrValidation)
	}
	if _, ok := s.inviteCodes[inviteCode]; !ok {
		return nil, fmt.Errorf("invalid invite code: %w", models.ErrValidation)
	}
	if existing, err := s.userRepo.GetByUsername(username); err == nil && existing != nil {
		return nil, fmt.Errorf("username '%s': %w", username, models.ErrConflict)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:       username,
		Password:       string(hashedPassword),
		Role:           models.RoleUser,
		UsedInviteCode: inviteCode,
		RegisteredAt:   time.Now().UTC(),
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

// LoginUser authenticates a user and returns a signed session token. The
// same error is returned for an unknown username and a wrong password.
func (s *AuthService) LoginUser(username, password string) (string, *models.User, error) {
	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		return "", nil, fmt.Errorf("invalid username or password: %w", models.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("invalid username or password: %w", models.ErrUnauthorized)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(s.tokenDurat).Unix(),
		"iat":      time.Now().Unix(),
	})

	tokenString, err := token.SignedString(s.sessionSecret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	return tokenString, user, nil
}

// ValidateToken parses and validates a session token, returning its claims.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.sessionSecret, nil
	})
	if err != nil {
		log.Printf("Session token validation error: %v", err)
		return nil, fmt.Errorf("invalid session token: %w", models.ErrUnauthorized)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid session token: %w", models.ErrUnauthorized)
}

// UserFromToken resolves a session token to its user, rejecting tokens whose
// user no longer exists. This is the once-per-request identity lookup used
// by the auth middleware.
func (s *AuthService) UserFromToken(tokenString string) (*models.User, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("session token has no user id: %w", models.ErrUnauthorized)
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("session user not found: %w", models.ErrUnauthorized)
	}
	return user, nil
}
