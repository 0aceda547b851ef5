package session

import (
	"context"
	"time"

	"github.com/dmitrijs2005/qaforum/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/qaforum/internal/common"
)

// MetadataCredentials keeps the credential in the metadata repository under
// common.CredentialKey.
type MetadataCredentials struct {
	repo metadata.Repository
	key  string
}

func NewMetadataCredentials(repo metadata.Repository) *MetadataCredentials {
	return &MetadataCredentials{repo: repo, key: common.CredentialKey}
}

// Load returns "" when nothing is persisted.
func (m *MetadataCredentials) Load(ctx context.Context) (string, error) {
	e, _, err := m.repo.Get(ctx, m.key)
	return e.Value, err
}

func (m *MetadataCredentials) Save(ctx context.Context, token string) error {
	return m.repo.Put(ctx, m.key, token)
}

func (m *MetadataCredentials) Clear(ctx context.Context) error {
	return m.repo.Delete(ctx, m.key)
}

// SavedAt reports when the current credential was written.
func (m *MetadataCredentials) SavedAt(ctx context.Context) (time.Time, bool, error) {
	e, ok, err := m.repo.Get(ctx, m.key)
	return e.UpdatedAt, ok, err
}
