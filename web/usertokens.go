package main

import (
	"context"
	"errors"

	"go.uber.org/zap"

	saras "trackai.dev/trackai/saras/v1"
	"trackai.dev/trackai/trackai/store"
	"trackai.dev/trackai/web/middlewares"
)

// userTokenSource resolves the per-user Saras credential from the
// authenticated request context. It backs the user token mode; the token
// itself is written by the login handler.
type userTokenSource struct {
	users store.UserStore
}

func (s *userTokenSource) SarasToken(ctx context.Context) (saras.TokenRecord, error) {
	uid := middlewares.UserIDFromContext(ctx)
	if uid == 0 {
		return saras.TokenRecord{}, errors.New("no authenticated user in context")
	}

	user, err := s.users.Find(ctx, uid)
	if err != nil {
		return saras.TokenRecord{}, err
	}

	var record saras.TokenRecord
	if user.SarasAccessToken != nil {
		record.AccessToken = *user.SarasAccessToken
	}
	if user.SarasTokenExpiresAt != nil {
		record.ExpiresAt = *user.SarasTokenExpiresAt
	}
	return record, nil
}

func (s *userTokenSource) ClearSarasToken(ctx context.Context) error {
	uid := middlewares.UserIDFromContext(ctx)
	if uid == 0 {
		return nil
	}

	user, err := s.users.Find(ctx, uid)
	if err != nil {
		return err
	}
	user.SarasAccessToken = nil
	user.SarasTokenExpiresAt = nil
	return s.users.Save(ctx, user)
}

// newTokenManager is the composition point for the two credential modes.
func newTokenManager(cfg saras.Config, users store.UserStore, log *zap.Logger) saras.TokenManager {
	if cfg.TokenMode == saras.TokenModeUser {
		return saras.NewUserTokenManager(&userTokenSource{users: users})
	}
	return saras.NewCachedTokenManager(cfg, saras.NewMemoryCache(), log)
}
