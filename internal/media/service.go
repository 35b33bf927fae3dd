package media

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/goliatone/go-lis/internal/logging"
	"github.com/goliatone/go-lis/pkg/interfaces"
)

var filterSpecPattern = regexp.MustCompile(`^[A-Za-z0-9.\-|]+$`)

// ValidFilterSpec reports whether spec looks like "fill-100x100|jpegquality-40".
func ValidFilterSpec(spec string) bool {
	return filterSpecPattern.MatchString(spec)
}

// Service signs image URLs, resolves signed requests to rendition files
// and prunes renditions.
type Service interface {
	URL(ctx context.Context, imageID int64, filterSpec string) (string, error)
	Resolve(ctx context.Context, signature string, imageID int64, filterSpec string) (string, error)
	PruneRenditions(ctx context.Context, opts PruneOptions) (*PruneResult, error)
}

// PruneOptions selects what PruneRenditions removes. By default only rows
// of deleted images and files without a row go; All removes every rendition.
type PruneOptions struct {
	All    bool
	DryRun bool
}

// PruneResult lists what was, or with DryRun would be, removed.
type PruneResult struct {
	Renditions []*Rendition
	Files      []string
	DryRun     bool
}

type ServiceOption func(*service)

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		s.logger = logging.Ensure(logger)
	}
}

// WithRenditionsDir sets the directory, relative to the media root, that
// holds rendition files.
func WithRenditionsDir(dir string) ServiceOption {
	return func(s *service) {
		if dir = strings.Trim(strings.TrimSpace(dir), "/"); dir != "" {
			s.renditionsDir = dir
		}
	}
}

type service struct {
	repo          Repository
	files         FileStore
	key           []byte
	renditionsDir string
	logger        interfaces.Logger
}

func NewService(repo Repository, files FileStore, key []byte, opts ...ServiceOption) Service {
	s := &service{repo: repo, files: files, key: key, renditionsDir: RenditionsDir, logger: logging.NoOp()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) URL(ctx context.Context, imageID int64, filterSpec string) (string, error) {
	if !ValidFilterSpec(filterSpec) {
		return "", fmt.Errorf("%w: %q", ErrFilterSpec, filterSpec)
	}
	image, err := s.repo.GetImage(ctx, imageID)
	if err != nil {
		return "", err
	}
	return RenditionURL(image, filterSpec, s.key), nil
}

// Resolve verifies a signed request and returns the URL of the stored
// rendition file.
func (s *service) Resolve(ctx context.Context, signature string, imageID int64, filterSpec string) (string, error) {
	if !VerifySignature(signature, imageID, filterSpec, s.key) {
		s.logger.Warn("media.signature.rejected", "image_id", imageID, "filter_spec", filterSpec)
		return "", ErrInvalidSignature
	}
	image, err := s.repo.GetImage(ctx, imageID)
	if err != nil {
		return "", err
	}
	rendition, err := s.repo.FindRendition(ctx, image.ID, filterSpec, image.FocalPointKey())
	if err != nil {
		if IsNotFound(err) {
			return "", fmt.Errorf("%w: image %d %s", ErrRenditionMissing, imageID, filterSpec)
		}
		return "", err
	}
	return s.files.URL(rendition.File), nil
}

func (s *service) PruneRenditions(ctx context.Context, opts PruneOptions) (*PruneResult, error) {
	renditions, err := s.repo.ListRenditions(ctx)
	if err != nil {
		return nil, err
	}
	imageIDs := make([]int64, 0, len(renditions))
	for _, rendition := range renditions {
		imageIDs = append(imageIDs, rendition.ImageID)
	}
	existing, err := s.repo.ImageIDs(ctx, imageIDs)
	if err != nil {
		return nil, err
	}

	result := &PruneResult{DryRun: opts.DryRun}
	referenced := make(map[string]bool, len(renditions))
	for _, rendition := range renditions {
		if opts.All || !existing[rendition.ImageID] {
			result.Renditions = append(result.Renditions, rendition)
			continue
		}
		referenced[rendition.File] = true
	}
	files, err := s.files.List(ctx, s.renditionsDir)
	if err != nil {
		return nil, fmt.Errorf("media: list renditions: %w", err)
	}
	for _, name := range files {
		if !referenced[name] {
			result.Files = append(result.Files, name)
		}
	}

	for _, rendition := range result.Renditions {
		s.logger.Info("media.rendition.pruned", "rendition_id", rendition.ID, "image_id", rendition.ImageID, "filter_spec", rendition.FilterSpec, "dry_run", opts.DryRun)
	}
	if !opts.DryRun {
		ids := make([]int64, 0, len(result.Renditions))
		for _, rendition := range result.Renditions {
			ids = append(ids, rendition.ID)
		}
		if err := s.repo.DeleteRenditions(ctx, ids); err != nil {
			return nil, err
		}
		for _, name := range result.Files {
			if err := s.files.Remove(ctx, name); err != nil {
				return nil, fmt.Errorf("media: remove %s: %w", name, err)
			}
		}
	}
	s.logger.Info("media.renditions.pruned", "renditions", len(result.Renditions), "files", len(result.Files), "dry_run", opts.DryRun)
	return result, nil
}
