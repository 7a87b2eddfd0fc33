package auth

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/synergysphere/realtime/internal/ierr"
	"github.com/synergysphere/realtime/internal/store"
)

// Identity is the minimal view of a user bound to a connection.
type Identity struct {
	Id    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Claims struct {
	jwt.RegisteredClaims
	UserId string `json:"userId,omitempty"`
}

type UserFinder interface {
	FindUser(ctx context.Context, id string) (store.User, error)
}

// Verifier resolves a bearer token presented during the websocket
// handshake to an Identity. Tokens are issued by the main application;
// this service only validates them.
type Verifier struct {
	secret    []byte
	users     UserFinder
	jwtParser *jwt.Parser
}

func NewVerifier(secret string, users UserFinder) *Verifier {
	jwtParser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(30*time.Second),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
	)

	return &Verifier{
		secret:    []byte(secret),
		users:     users,
		jwtParser: jwtParser,
	}
}

func (v *Verifier) keyFunc(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, ierr.NewAuth(ierr.AuthReasonInvalid, errors.New("unexpected signing method"))
	}
	return v.secret, nil
}

func (v *Verifier) Verify(ctx context.Context, tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, ierr.NewAuth(ierr.AuthReasonMissing, errors.New("no token provided"))
	}

	claims := Claims{}

	_, err := v.jwtParser.ParseWithClaims(tokenString, &claims, v.keyFunc)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Identity{}, ierr.NewAuth(ierr.AuthReasonExpired, err)
		}
		return Identity{}, ierr.NewAuth(ierr.AuthReasonInvalid, err)
	}

	userId := claims.UserId
	if userId == "" {
		userId = claims.Subject
	}
	if userId == "" {
		return Identity{}, ierr.NewAuth(ierr.AuthReasonInvalid, errors.New("token carries no user id"))
	}

	user, err := v.users.FindUser(ctx, userId)
	if errors.Is(err, store.ErrNotFound) {
		return Identity{}, ierr.NewAuth(ierr.AuthReasonInvalid, errors.New("user not found"))
	}
	if err != nil {
		return Identity{}, ierr.New(ierr.ErrorCodeInternal, err)
	}

	return Identity{
		Id:    user.Id,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}
