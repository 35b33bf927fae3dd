package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-lis/pkg/interfaces"
)

const (
	rootModule      = "lis"
	pagesModule     = "lis.pages"
	authorsModule   = "lis.authors"
	memorialsModule = "lis.memorials"
	tagsModule      = "lis.tags"
	mediaModule     = "lis.media"
	httpModule      = "lis.http"
)

const (
	fieldPageID   = "page_id"
	fieldPageKind = "page_kind"
	fieldActorID  = "actor_id"
)

// ModuleLogger returns the logger registered for module, tagged with a
// module field. Without a provider every entry is dropped.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// PagesLogger is the logger for the page tree and revision lifecycle.
func PagesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, pagesModule)
}

func AuthorsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, authorsModule)
}

func MemorialsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, memorialsModule)
}

func TagsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, tagsModule)
}

// MediaLogger is used by image serving and rendition pruning.
func MediaLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, mediaModule)
}

// HTTPLogger is used by request middleware and handlers.
func HTTPLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, httpModule)
}

// WithPageContext attaches the page identifier, kind and acting editor.
// Blank values are skipped.
func WithPageContext(logger interfaces.Logger, pageID, kind, actorID string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(pageID); trimmed != "" {
		fields[fieldPageID] = trimmed
	}
	if trimmed := strings.TrimSpace(kind); trimmed != "" {
		fields[fieldPageKind] = trimmed
	}
	if trimmed := strings.TrimSpace(actorID); trimmed != "" {
		fields[fieldActorID] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that discards everything.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
