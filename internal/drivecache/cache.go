// Package drivecache owns the mirrored drive folder tree and the bounded
// cache of exported document content.
package drivecache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/studyshelf/studyshelf/internal/drive"
	"github.com/studyshelf/studyshelf/internal/hierarchy"
	"github.com/studyshelf/studyshelf/internal/logging"
	"github.com/studyshelf/studyshelf/internal/metrics"
)

// ErrCacheUnavailable is returned for reads that require a populated tree
// before any successful build has happened.
var ErrCacheUnavailable = errors.New("drivecache: structure not available yet")

// Cache mirrors the remote drive tree in memory and refreshes it when the
// configured interval has elapsed.
type Cache struct {
	client          drive.Client
	rootFolderID    string
	refreshInterval time.Duration
	content         *ContentCache
	now             func() time.Time

	mu        sync.RWMutex
	tree      []*hierarchy.Node
	fetchedAt time.Time

	rebuildGroup singleflight.Group
}

// New creates a structure cache over the given drive client. The tree
// starts empty; the first Structure call populates it.
func New(client drive.Client, rootFolderID string, refreshInterval time.Duration, content *ContentCache) *Cache {
	return &Cache{
		client:          client,
		rootFolderID:    rootFolderID,
		refreshInterval: refreshInterval,
		content:         content,
		now:             time.Now,
	}
}

// Content returns the document content cache.
func (c *Cache) Content() *ContentCache {
	return c.content
}

// Structure returns the cached tree, rebuilding it from a full remote
// listing when absent or older than the refresh interval. Concurrent
// rebuild triggers are collapsed into one listing. The returned tree is
// a snapshot: later folder patches swap in a new tree and never mutate
// nodes already handed out, so callers may traverse without locking.
func (c *Cache) Structure(ctx context.Context) ([]*hierarchy.Node, error) {
	c.mu.RLock()
	tree, fetchedAt := c.tree, c.fetchedAt
	c.mu.RUnlock()

	if tree != nil && c.now().Sub(fetchedAt) < c.refreshInterval {
		metrics.RecordStructureCacheHit()
		return tree, nil
	}

	metrics.RecordStructureCacheMiss()
	result, err, _ := c.rebuildGroup.Do("rebuild", func() (any, error) {
		return c.rebuild(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*hierarchy.Node), nil
}

// CachedStructure returns the current tree without triggering any fetch.
// It is nil until the first successful build.
func (c *Cache) CachedStructure() []*hierarchy.Node {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tree
}

// FolderContents returns one level of a folder's children. A cached
// folder with children is served as shallow copies with grandchildren
// stripped. Otherwise the folder's immediate children are fetched from
// the remote and, when the folder exists in the tree, patched into a
// copy of the tree that replaces the cached one; trees already handed to
// readers are never mutated. An empty child list is indistinguishable
// from a never-expanded folder, so empty folders take the remote path on
// every read.
func (c *Cache) FolderContents(ctx context.Context, folderID string) ([]*hierarchy.Node, error) {
	c.mu.RLock()
	folder := hierarchy.FindByID(c.tree, folderID)
	if folder != nil && len(folder.Children) > 0 {
		contents := shallowCopy(folder.Children)
		c.mu.RUnlock()
		logging.Debug("folder contents served from cache", zap.String("folder_id", folderID))
		return contents, nil
	}
	c.mu.RUnlock()

	logging.Debug("fetching folder contents from drive", zap.String("folder_id", folderID))
	files, err := c.client.ListChildren(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folderID, err)
	}
	contents := hierarchy.Flat(files)

	c.mu.Lock()
	if patched := hierarchy.ReplaceChildren(c.tree, folderID, contents); patched != nil {
		c.tree = patched
	}
	c.mu.Unlock()

	return shallowCopy(contents), nil
}

// Refresh unconditionally rebuilds the full tree and clears the content
// cache. A failed listing leaves both caches untouched.
func (c *Cache) Refresh(ctx context.Context) error {
	logging.Info("refreshing entire drive cache")
	files, err := c.client.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("refresh cache: %w", err)
	}
	tree := hierarchy.Build(files, c.rootFolderID)

	c.mu.Lock()
	c.tree = tree
	c.fetchedAt = c.now()
	c.mu.Unlock()

	c.content.Clear()
	metrics.SetStructureTreeSize(int64(hierarchy.CountNodes(tree)))
	logging.Info("drive cache refreshed", zap.Int("nodes", hierarchy.CountNodes(tree)))
	return nil
}

// Invalidate clears the structure cache. The content cache is untouched;
// the next Structure call performs a full rebuild.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.tree = nil
	c.fetchedAt = time.Time{}
	c.mu.Unlock()
	logging.Info("drive structure cache invalidated")
}

// Search finds files by name in the cached tree. It never fetches: an
// unpopulated cache is ErrCacheUnavailable, distinct from a populated
// tree with no matches.
func (c *Cache) Search(query string) ([]hierarchy.SearchResult, error) {
	tree := c.CachedStructure()
	if tree == nil {
		return nil, ErrCacheUnavailable
	}
	return hierarchy.Search(tree, query), nil
}

// DocumentHTML returns a document's exported HTML, serving from the
// content cache when possible.
func (c *Cache) DocumentHTML(ctx context.Context, fileID string) (string, error) {
	if content, ok := c.content.Get(fileID); ok {
		logging.Debug("serving document from cache", zap.String("file_id", fileID))
		return content, nil
	}

	content, err := c.client.ExportHTML(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("export document %s: %w", fileID, err)
	}
	c.content.Put(fileID, content)
	return content, nil
}

// rebuild lists the whole remote tree and swaps in the rebuilt structure.
// The swap of tree and fetchedAt happens together under the lock; failure
// leaves the previous state intact.
func (c *Cache) rebuild(ctx context.Context) ([]*hierarchy.Node, error) {
	start := time.Now()
	logging.Info("rebuilding drive structure cache")

	files, err := c.client.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch drive listing: %w", err)
	}
	tree := hierarchy.Build(files, c.rootFolderID)

	c.mu.Lock()
	c.tree = tree
	c.fetchedAt = c.now()
	c.mu.Unlock()

	metrics.RecordStructureRebuild(time.Since(start))
	metrics.SetStructureTreeSize(int64(hierarchy.CountNodes(tree)))
	logging.Info("drive structure cache rebuilt",
		zap.Int("files", len(files)),
		zap.Int("nodes", hierarchy.CountNodes(tree)),
		zap.Duration("duration", time.Since(start)))
	return tree, nil
}

// shallowCopy copies nodes one level deep, stripping grandchildren.
func shallowCopy(nodes []*hierarchy.Node) []*hierarchy.Node {
	contents := make([]*hierarchy.Node, 0, len(nodes))
	for _, node := range nodes {
		copied := *node
		copied.Children = []*hierarchy.Node{}
		contents = append(contents, &copied)
	}
	return contents
}
