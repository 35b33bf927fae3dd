package i18n

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"sync"
)

//go:embed testdata/messages.json
var messagesData embed.FS

// Catalog maps message keys to per language strings.
type Catalog struct {
	messages map[Language]map[string]string
}

var (
	defaultCatalog     *Catalog
	defaultCatalogErr  error
	defaultCatalogOnce sync.Once
)

// DefaultCatalog returns the embedded message catalog.
func DefaultCatalog() *Catalog {
	defaultCatalogOnce.Do(func() {
		data, err := messagesData.ReadFile("testdata/messages.json")
		if err != nil {
			defaultCatalogErr = fmt.Errorf("i18n: read embedded catalog: %w", err)
			return
		}
		defaultCatalog, defaultCatalogErr = DecodeCatalog(bytes.NewReader(data))
	})
	if defaultCatalogErr != nil {
		// the catalog is compiled in, failing here is a build defect
		panic(defaultCatalogErr)
	}
	return defaultCatalog
}

// DecodeCatalog reads a {"lang": {"key": "message"}} JSON document.
// Unsupported language sections are rejected.
func DecodeCatalog(r io.Reader) (*Catalog, error) {
	raw := map[string]map[string]string{}
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("i18n: decode catalog: %w", err)
	}
	catalog := &Catalog{messages: make(map[Language]map[string]string, len(raw))}
	for code, entries := range raw {
		lang, err := ParseLanguage(code)
		if err != nil {
			return nil, err
		}
		catalog.messages[lang] = entries
	}
	return catalog, nil
}

// Translate returns the message for key in lang, falling back to the base
// language and finally to the key itself.
func (c *Catalog) Translate(lang Language, key string) string {
	if c == nil {
		return key
	}
	if msg, ok := c.messages[lang][key]; ok {
		return msg
	}
	if msg, ok := c.messages[Base][key]; ok {
		return msg
	}
	return key
}
