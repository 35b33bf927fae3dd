package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-lis/internal/identity"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// APIKeyHeader carries the key of API clients.
const APIKeyHeader = "Api-Key"

// APIKey grants a client application read access to the public API. Only
// the SHA-256 of the key is stored.
type APIKey struct {
	bun.BaseModel `bun:"table:api_keys,alias:ak"`

	ID        uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Name      string    `bun:"name,notnull,unique" json:"name"`
	KeyHash   string    `bun:"key_hash,notnull,unique" json:"-"`
	Requests  int64     `bun:"requests,notnull" json:"requests"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

// APIKeyRepository stores keys and counts their requests.
type APIKeyRepository interface {
	Create(ctx context.Context, key *APIKey) error
	GetByHash(ctx context.Context, hash string) (*APIKey, error)
	IncrementRequests(ctx context.Context, id uuid.UUID) error
}

// HashAPIKey returns the stored form of a raw key.
func HashAPIKey(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

// APIKeys issues and checks API keys.
type APIKeys struct {
	repo APIKeyRepository
	now  func() time.Time
}

func NewAPIKeys(repo APIKeyRepository) *APIKeys {
	return &APIKeys{repo: repo, now: time.Now}
}

// Issue creates a key named name and returns the raw key once.
func (k *APIKeys) Issue(ctx context.Context, name string) (string, *APIKey, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return "", nil, fmt.Errorf("auth: API key name must be 1 to 50 characters")
	}
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", nil, fmt.Errorf("auth: generate API key: %w", err)
	}
	raw := hex.EncodeToString(buf)
	hash := HashAPIKey(raw)
	key := &APIKey{
		ID:        identity.APIKeyUUID(hash),
		Name:      name,
		KeyHash:   hash,
		CreatedAt: k.now().UTC(),
	}
	if err := k.repo.Create(ctx, key); err != nil {
		return "", nil, err
	}
	return raw, key, nil
}

// Check resolves a raw key and counts the request against it.
func (k *APIKeys) Check(ctx context.Context, raw string) (*APIKey, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrAPIKeyInvalid
	}
	key, err := k.repo.GetByHash(ctx, HashAPIKey(raw))
	if err != nil {
		return nil, err
	}
	if key == nil {
		return nil, ErrAPIKeyInvalid
	}
	if err := k.repo.IncrementRequests(ctx, key.ID); err != nil {
		return nil, err
	}
	key.Requests++
	return key, nil
}

type BunAPIKeyRepository struct {
	db *bun.DB
}

func NewBunAPIKeyRepository(db *bun.DB) *BunAPIKeyRepository {
	return &BunAPIKeyRepository{db: db}
}

func (r *BunAPIKeyRepository) Create(ctx context.Context, key *APIKey) error {
	exists, err := r.db.NewSelect().Model((*APIKey)(nil)).Where("?TableAlias.name = ?", key.Name).Exists(ctx)
	if err != nil {
		return fmt.Errorf("auth: lookup API key: %w", err)
	}
	if exists {
		return ErrAPIKeyNameExists
	}
	if _, err := r.db.NewInsert().Model(key).Exec(ctx); err != nil {
		return fmt.Errorf("auth: create API key: %w", err)
	}
	return nil
}

func (r *BunAPIKeyRepository) GetByHash(ctx context.Context, hash string) (*APIKey, error) {
	key := new(APIKey)
	err := r.db.NewSelect().Model(key).Where("?TableAlias.key_hash = ?", hash).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("auth: get API key: %w", err)
	}
	return key, nil
}

func (r *BunAPIKeyRepository) IncrementRequests(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*APIKey)(nil)).
		Set("requests = requests + 1").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("auth: count API key request: %w", err)
	}
	return nil
}

type MemoryAPIKeyRepository struct {
	mu   sync.Mutex
	keys map[uuid.UUID]*APIKey
}

func NewMemoryAPIKeyRepository() *MemoryAPIKeyRepository {
	return &MemoryAPIKeyRepository{keys: map[uuid.UUID]*APIKey{}}
}

func (m *MemoryAPIKeyRepository) Create(_ context.Context, key *APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.keys {
		if existing.Name == key.Name {
			return ErrAPIKeyNameExists
		}
	}
	stored := *key
	m.keys[key.ID] = &stored
	return nil
}

func (m *MemoryAPIKeyRepository) GetByHash(_ context.Context, hash string) (*APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range m.keys {
		if key.KeyHash == hash {
			out := *key
			return &out, nil
		}
	}
	return nil, nil
}

func (m *MemoryAPIKeyRepository) IncrementRequests(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key, ok := m.keys[id]; ok {
		key.Requests++
	}
	return nil
}
