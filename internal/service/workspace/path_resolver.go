package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"

	"cirrus/internal/domain"
	wsSvc "cirrus/internal/domain/services/workspace"
)

// PathResolver maps (parent, name segments) to a folder id, creating missing
// folders. One resolver serves one ingestion batch: its cache never outlives
// the batch, and concurrent lookups of the same (parent, name) key share a
// single in-flight call.
type PathResolver struct {
	source wsSvc.FolderSource
	logger *slog.Logger
	group  singleflight.Group

	mu      sync.Mutex
	cache   map[string]string // key -> folder id
	failed  map[string]error  // key -> error, never retried within the batch
	created int
}

// NewPathResolver creates a resolver for one batch
func NewPathResolver(source wsSvc.FolderSource, logger *slog.Logger) *PathResolver {
	return &PathResolver{
		source: source,
		logger: logger,
		cache:  make(map[string]string),
		failed: make(map[string]error),
	}
}

func resolverKey(parentID *string, name string) string {
	parent := ""
	if parentID != nil {
		parent = *parentID
	}
	return parent + "\x00" + name
}

// Resolve walks segments left to right from basis and returns the leaf folder
// id. Empty segments return basis unchanged.
func (r *PathResolver) Resolve(ctx context.Context, basis *string, segments []string) (*string, error) {
	current := basis
	for _, name := range segments {
		id, err := r.resolveSegment(ctx, current, name)
		if err != nil {
			return nil, err
		}
		current = &id
	}
	return current, nil
}

// Created returns how many folders this resolver created
func (r *PathResolver) Created() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.created
}

// lookup reports a cached outcome for key, if any
func (r *PathResolver) lookup(key string) (id string, found bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err, ok := r.failed[key]; ok {
		return "", true, err
	}
	if id, ok := r.cache[key]; ok {
		return id, true, nil
	}
	return "", false, nil
}

func (r *PathResolver) resolveSegment(ctx context.Context, parentID *string, name string) (string, error) {
	key := resolverKey(parentID, name)
	if id, ok, err := r.lookup(key); ok {
		return id, err
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		// A previous flight may have finished between lookup and Do
		if id, ok, err := r.lookup(key); ok {
			return id, err
		}

		id, err := r.findOrCreate(ctx, parentID, name)

		r.mu.Lock()
		defer r.mu.Unlock()
		if err != nil {
			r.failed[key] = err
			return "", err
		}
		r.cache[key] = id
		return id, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// findOrCreate reuses a live sibling or creates the folder. A collision on
// create means someone else created it first; the lookup is retried once.
func (r *PathResolver) findOrCreate(ctx context.Context, parentID *string, name string) (string, error) {
	existing, err := r.source.FindChildFolderByName(ctx, parentID, name)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}

	folder, err := r.source.CreateFolder(ctx, parentID, name)
	if err == nil {
		r.mu.Lock()
		r.created++
		r.mu.Unlock()
		return folder.ID, nil
	}
	if !errors.Is(err, domain.ErrNameCollision) {
		return "", err
	}

	r.logger.Debug("folder created concurrently, retrying lookup", "parent_id", parentID, "name", name)

	existing, err = r.source.FindChildFolderByName(ctx, parentID, name)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.ID, nil
	}

	parent := RootID
	if parentID != nil {
		parent = *parentID
	}
	raceErr := domain.NewOperationError(domain.ErrFolderCreationRace, "create", domain.ResourceFolder, parent)
	raceErr.Message = fmt.Sprintf("folder %q under %s collided on create but could not be found", name, parent)
	return "", raceErr
}
