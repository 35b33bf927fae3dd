package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// RootPageUUID identifies the tree root.
func RootPageUUID() uuid.UUID {
	return UUID("go-lis:page:root")
}

// IndexPageUUID identifies the index page of a content kind ("authors", "memorials").
func IndexPageUUID(kind string) uuid.UUID {
	return UUID("go-lis:page:index:" + strings.ToLower(strings.TrimSpace(kind)))
}

// EditorUUID derives the id of an editor account from its username.
func EditorUUID(username string) uuid.UUID {
	return UUID("go-lis:editor:" + strings.ToLower(strings.TrimSpace(username)))
}

// APIKeyUUID derives the id of an API key from its hash.
func APIKeyUUID(hash string) uuid.UUID {
	return UUID("go-lis:api_key:" + strings.TrimSpace(hash))
}
