package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// authMiddleware validates a Bearer JWT on every request when
// authentication is enabled. Tokens are HS256-signed with the shared
// secret; issuer and audience are checked when configured.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	if !s.config.AuthEnabled {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := s.validateBearer(r.Header.Get("Authorization"))
		if err != nil {
			s.logger.Debug().Err(err).Msg("rejected request")
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Error: errorBody{Kind: "Unauthorized", Message: err.Error()},
			})
			return
		}

		if subject, err := token.Claims.GetSubject(); err == nil && subject != "" {
			s.logger.Debug().Str("subject", subject).Msg("authenticated request")
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) validateBearer(header string) (*jwt.Token, error) {
	tokenString, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || tokenString == "" {
		return nil, fmt.Errorf("missing bearer token")
	}

	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if s.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(s.config.Issuer))
	}
	if s.config.Audience != "" {
		options = append(options, jwt.WithAudience(s.config.Audience))
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	}, options...)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return token, nil
}
