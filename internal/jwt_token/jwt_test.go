package jwttoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	dErrors "personaforge/pkg/domain-errors"
)

type JWTSuite struct {
	suite.Suite
	service   *Service
	userID    uuid.UUID
	sessionID uuid.UUID
}

func TestJWTSuite(t *testing.T) {
	suite.Run(t, new(JWTSuite))
}

func (s *JWTSuite) SetupTest() {
	s.service = New("test-signing-key", "personaforge", "personaforge-api")
	s.userID = uuid.New()
	s.sessionID = uuid.New()
}

func (s *JWTSuite) TestIssueAndValidate() {
	token, err := s.service.IssueToken(s.userID, s.sessionID, "cli", time.Hour)
	s.Require().NoError(err)
	s.Require().NotEmpty(token)

	claims, err := s.service.ValidateToken(token)
	s.Require().NoError(err)
	s.Equal(s.userID.String(), claims.UserID)
	s.Equal(s.sessionID.String(), claims.SessionID)
	s.Equal("cli", claims.ClientID)
	s.WithinDuration(time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func (s *JWTSuite) TestValidateToken() {
	s.Run("garbage is rejected", func() {
		_, err := s.service.ValidateToken("not-a-token")
		s.ErrorIs(err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
	})

	s.Run("expired tokens are rejected", func() {
		token, err := s.service.IssueToken(s.userID, s.sessionID, "cli", -time.Hour)
		s.Require().NoError(err)

		_, err = s.service.ValidateToken(token)
		s.ErrorIs(err, dErrors.New(dErrors.CodeUnauthorized, "token has expired"))
	})

	s.Run("tokens signed with another key are rejected", func() {
		other := New("other-key", "personaforge", "personaforge-api")
		token, err := other.IssueToken(s.userID, s.sessionID, "cli", time.Hour)
		s.Require().NoError(err)

		_, err = s.service.ValidateToken(token)
		s.ErrorIs(err, dErrors.New(dErrors.CodeUnauthorized, "invalid token"))
	})

	s.Run("foreign issuer and audience are rejected", func() {
		other := New("test-signing-key", "someone-else", "their-api")
		token, err := other.IssueToken(s.userID, s.sessionID, "cli", time.Hour)
		s.Require().NoError(err)

		_, err = s.service.ValidateToken(token)
		s.Error(err)
	})
}

func (s *JWTSuite) TestAdapter() {
	adapter := NewAdapter(s.service)
	token, err := s.service.IssueToken(s.userID, s.sessionID, "cli", time.Hour)
	s.Require().NoError(err)

	claims, err := adapter.ValidateToken(token)
	s.Require().NoError(err)
	s.Equal(s.userID.String(), claims.UserID)
	s.Equal(s.sessionID.String(), claims.SessionID)
	s.Equal("cli", claims.ClientID)
}
