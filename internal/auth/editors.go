package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-lis/internal/identity"
	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/internal/permissions"
	"github.com/goliatone/go-lis/pkg/interfaces"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"golang.org/x/crypto/bcrypt"
)

// Editor is a CMS account allowed to sign in to the admin.
type Editor struct {
	bun.BaseModel `bun:"table:editors,alias:ed"`

	ID           uuid.UUID `bun:",pk,type:uuid" json:"id"`
	Username     string    `bun:"username,notnull,unique" json:"username"`
	PasswordHash string    `bun:"password_hash,notnull" json:"-"`
	Groups       []string  `bun:"groups,type:jsonb" json:"groups"`
	Active       bool      `bun:"active,notnull" json:"active"`
	CreatedAt    time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}

type EditorRepository interface {
	Create(ctx context.Context, editor *Editor) error
	GetByUsername(ctx context.Context, username string) (*Editor, error)
}

type BunEditorRepository struct {
	db *bun.DB
}

func NewBunEditorRepository(db *bun.DB) *BunEditorRepository {
	return &BunEditorRepository{db: db}
}

func (r *BunEditorRepository) Create(ctx context.Context, editor *Editor) error {
	exists, err := r.db.NewSelect().Model((*Editor)(nil)).Where("?TableAlias.username = ?", editor.Username).Exists(ctx)
	if err != nil {
		return fmt.Errorf("auth: lookup editor: %w", err)
	}
	if exists {
		return ErrEditorExists
	}
	if _, err := r.db.NewInsert().Model(editor).Exec(ctx); err != nil {
		return fmt.Errorf("auth: create editor: %w", err)
	}
	return nil
}

func (r *BunEditorRepository) GetByUsername(ctx context.Context, username string) (*Editor, error) {
	editor := new(Editor)
	err := r.db.NewSelect().Model(editor).Where("?TableAlias.username = ?", username).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("auth: get editor: %w", err)
	}
	return editor, nil
}

type MemoryEditorRepository struct {
	mu      sync.RWMutex
	editors map[string]*Editor
}

func NewMemoryEditorRepository() *MemoryEditorRepository {
	return &MemoryEditorRepository{editors: map[string]*Editor{}}
}

func (m *MemoryEditorRepository) Create(_ context.Context, editor *Editor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.editors[editor.Username]; ok {
		return ErrEditorExists
	}
	stored := *editor
	stored.Groups = slices.Clone(editor.Groups)
	m.editors[editor.Username] = &stored
	return nil
}

func (m *MemoryEditorRepository) GetByUsername(_ context.Context, username string) (*Editor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	editor, ok := m.editors[username]
	if !ok {
		return nil, nil
	}
	out := *editor
	out.Groups = slices.Clone(editor.Groups)
	return &out, nil
}

// Editors manages editor accounts and password checks.
type Editors struct {
	repo   EditorRepository
	logger interfaces.Logger
	now    func() time.Time
}

func NewEditors(repo EditorRepository, logger interfaces.Logger) *Editors {
	return &Editors{repo: repo, logger: logging.Ensure(logger), now: time.Now}
}

// Create registers an editor. Unknown groups are rejected; no groups means
// a plain editor.
func (e *Editors) Create(ctx context.Context, username, password string, groups ...string) (*Editor, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(password) < 8 {
		return nil, ErrPasswordTooShort
	}
	normalized := make([]string, 0, len(groups))
	for _, group := range groups {
		group = strings.ToUpper(strings.TrimSpace(group))
		switch group {
		case permissions.GroupAdmin, permissions.GroupEditor, permissions.GroupReadOnly:
			normalized = append(normalized, group)
		default:
			return nil, fmt.Errorf("auth: unknown group %q", group)
		}
	}
	if len(normalized) == 0 {
		normalized = []string{permissions.GroupEditor}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	editor := &Editor{
		ID:           identity.EditorUUID(username),
		Username:     username,
		PasswordHash: string(hash),
		Groups:       normalized,
		Active:       true,
		CreatedAt:    e.now().UTC(),
	}
	if err := e.repo.Create(ctx, editor); err != nil {
		return nil, err
	}
	e.logger.Info("auth.editor.created", "editor_id", editor.ID, "username", username, "groups", normalized)
	return editor, nil
}

// Authenticate checks the password of an active editor.
func (e *Editors) Authenticate(ctx context.Context, username, password string) (*Editor, error) {
	editor, err := e.repo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, err
	}
	if editor == nil || !editor.Active {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(editor.PasswordHash), []byte(password)); err != nil {
		e.logger.Warn("auth.login.failed", "username", editor.Username)
		return nil, ErrInvalidCredentials
	}
	return editor, nil
}
