package session

import (
	"context"

	"github.com/dmitrijs2005/gophchat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/gophchat/internal/common"
)

// TokenStore is the durable home of the session token.
type TokenStore interface {
	// Load returns ok=false when no token is stored.
	Load(ctx context.Context) (token string, ok bool, err error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

type metadataTokenStore struct {
	repo metadata.Repository
}

// NewTokenStore keeps the token in the metadata repository under a fixed key.
func NewTokenStore(repo metadata.Repository) TokenStore {
	return &metadataTokenStore{repo: repo}
}

func (s *metadataTokenStore) Load(ctx context.Context) (string, bool, error) {
	v, err := s.repo.Get(ctx, common.TokenMetadataKey)
	if err != nil {
		return "", false, err
	}
	if len(v) == 0 {
		return "", false, nil
	}
	return string(v), true, nil
}

func (s *metadataTokenStore) Save(ctx context.Context, token string) error {
	return s.repo.Set(ctx, common.TokenMetadataKey, []byte(token))
}

func (s *metadataTokenStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, common.TokenMetadataKey)
}
