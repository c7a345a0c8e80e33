package http

import (
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/siphonelee/walavie/internal/api/middleware"
	"github.com/siphonelee/walavie/internal/events"
	"github.com/siphonelee/walavie/internal/fstree"
	"github.com/siphonelee/walavie/internal/infrastructure/monitoring"
	"github.com/siphonelee/walavie/internal/store"
	"github.com/siphonelee/walavie/internal/wire"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	store   *store.Store
	hub     *events.Hub
	metrics *monitoring.Metrics
	log     *zap.Logger

	mu    sync.Mutex
	roots map[string]*fstree.Root
}

// NewHandlers creates a new handler set.
func NewHandlers(st *store.Store, hub *events.Hub, metrics *monitoring.Metrics, log *zap.Logger) *Handlers {
	return &Handlers{
		store:   st,
		hub:     hub,
		metrics: metrics,
		log:     log,
		roots:   make(map[string]*fstree.Root),
	}
}

// sink builds the event sink installed on every root: log line plus hub
// broadcast.
func (h *Handlers) sink() fstree.Sink {
	broadcast := h.hub.Sink()
	return func(e fstree.Event) {
		h.log.Info("fs event",
			zap.String("type", string(e.Kind)),
			zap.String("path", e.Path))
		broadcast(e)
	}
}

// root resolves the caller's root, loading it from the store on first
// touch. A missing root means the identity does not own one.
func (h *Handlers) root(c *gin.Context) (*fstree.Root, bool) {
	authority := middleware.CallerAuthority(c)

	h.mu.Lock()
	defer h.mu.Unlock()
	if root, ok := h.roots[authority]; ok {
		return root, true
	}

	root, err := h.store.Load(authority)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no root for this identity"})
		return nil, false
	}
	if err != nil {
		h.log.Error("load root failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load root"})
		return nil, false
	}
	root.SetSink(h.sink())
	h.roots[authority] = root
	return root, true
}

// run executes one state machine operation with metrics around it.
func (h *Handlers) run(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	h.metrics.RecordOp(op, fstree.Tag(err), time.Since(start))
	return err
}

// commit persists the root after a successful mutation and refreshes the
// arena gauges.
func (h *Handlers) commit(c *gin.Context, root *fstree.Root) bool {
	if err := h.store.Save(root); err != nil {
		h.log.Error("persist root failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist root"})
		return false
	}
	files, dirs := root.ObjectCount()
	h.metrics.SetObjectCounts(files, dirs)
	return true
}

func (h *Handlers) fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error(), "code": fstree.Tag(err)})
}

func statusFor(err error) int {
	switch fstree.Tag(err) {
	case "path_error", "string_too_long", "too_many_tags",
		"rename_path_mismatch", "invalid_path_operation_on_root":
		return http.StatusBadRequest
	case "unauthorized":
		return http.StatusUnauthorized
	case "path_not_found":
		return http.StatusNotFound
	case "file_already_exists", "directory_already_exists":
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Root handles the service banner.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "walavie filesystem service",
	})
}

// Health handles the health check.
func (h *Handlers) Health(c *gin.Context) {
	h.mu.Lock()
	loaded := len(h.roots)
	h.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{
		"status":       "healthy",
		"loaded_roots": loaded,
	})
}

// Initialize creates a fresh root bound to the caller's identity.
func (h *Handlers) Initialize(c *gin.Context) {
	authority := middleware.CallerAuthority(c)

	exists, err := h.store.Exists(authority)
	if err != nil {
		h.log.Error("store lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "store lookup failed"})
		return
	}
	if exists {
		c.JSON(http.StatusConflict, gin.H{"error": "root already initialized for this identity"})
		return
	}

	root := fstree.Initialize(authority)
	root.SetSink(h.sink())
	if !h.commit(c, root) {
		return
	}

	h.mu.Lock()
	h.roots[authority] = root
	h.mu.Unlock()

	h.log.Info("root initialized", zap.String("authority", authority))
	c.JSON(http.StatusCreated, gin.H{"epoch": 0, "counter": root.Counter()})
}

type updateEpochRequest struct {
	Epoch uint64 `json:"epoch"`
}

// UpdateEpoch advances the root's current epoch.
func (h *Handlers) UpdateEpoch(c *gin.Context) {
	var req updateEpochRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	root, ok := h.root(c)
	if !ok {
		return
	}

	err := h.run("update_epoch", func() error {
		return root.UpdateEpoch(middleware.CallerAuthority(c), req.Epoch)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.commit(c, root) {
		return
	}
	h.metrics.SetEpoch(req.Epoch)
	c.JSON(http.StatusOK, gin.H{"epoch": req.Epoch})
}

type addFileRequest struct {
	Path      string   `json:"path" binding:"required"`
	Tags      []string `json:"tags"`
	Size      uint64   `json:"size"`
	BlobID    string   `json:"blob_id"`
	EndEpoch  uint64   `json:"end_epoch"`
	Overwrite bool     `json:"overwrite"`
	NowMS     uint64   `json:"now_ms" binding:"required"`
}

// AddFile creates (or with overwrite, replaces) a file.
func (h *Handlers) AddFile(c *gin.Context) {
	var req addFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	root, ok := h.root(c)
	if !ok {
		return
	}

	meta := fstree.FileMeta{
		Tags:     req.Tags,
		Size:     req.Size,
		BlobID:   req.BlobID,
		EndEpoch: req.EndEpoch,
	}
	err := h.run("add_file", func() error {
		return root.AddFile(req.Path, meta, req.Overwrite, req.NowMS)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.commit(c, root) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"path": req.Path, "counter": root.Counter()})
}

type addDirRequest struct {
	Path  string   `json:"path" binding:"required"`
	Tags  []string `json:"tags"`
	NowMS uint64   `json:"now_ms" binding:"required"`
}

// AddDir creates an empty directory.
func (h *Handlers) AddDir(c *gin.Context) {
	var req addDirRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	root, ok := h.root(c)
	if !ok {
		return
	}

	err := h.run("add_dir", func() error {
		return root.AddDir(req.Path, req.Tags, req.NowMS)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.commit(c, root) {
		return
	}
	c.JSON(http.StatusCreated, gin.H{"path": req.Path, "counter": root.Counter()})
}

type renameRequest struct {
	From string `json:"from" binding:"required"`
	To   string `json:"to" binding:"required"`
}

// RenameFile moves a file's name within its parent.
func (h *Handlers) RenameFile(c *gin.Context) {
	h.rename(c, "rename_file", func(root *fstree.Root, from, to string) error {
		return root.RenameFile(from, to)
	})
}

// RenameDir moves a directory's name within its parent.
func (h *Handlers) RenameDir(c *gin.Context) {
	h.rename(c, "rename_dir", func(root *fstree.Root, from, to string) error {
		return root.RenameDir(from, to)
	})
}

func (h *Handlers) rename(c *gin.Context, op string, fn func(*fstree.Root, string, string) error) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	root, ok := h.root(c)
	if !ok {
		return
	}

	err := h.run(op, func() error {
		return fn(root, req.From, req.To)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.commit(c, root) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"from": req.From, "to": req.To})
}

type deleteRequest struct {
	Path string `json:"path" binding:"required"`
}

// DeleteFile removes a single file.
func (h *Handlers) DeleteFile(c *gin.Context) {
	h.delete(c, "delete_file", func(root *fstree.Root, path string) error {
		return root.DeleteFile(path)
	})
}

// DeleteDir removes a directory and all of its descendants.
func (h *Handlers) DeleteDir(c *gin.Context) {
	h.delete(c, "delete_dir", func(root *fstree.Root, path string) error {
		return root.DeleteDir(path)
	})
}

func (h *Handlers) delete(c *gin.Context, op string, fn func(*fstree.Root, string) error) {
	var req deleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	root, ok := h.root(c)
	if !ok {
		return
	}

	err := h.run(op, func() error {
		return fn(root, req.Path)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if !h.commit(c, root) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": req.Path})
}

// ListDir lists the immediate children of a directory.
func (h *Handlers) ListDir(c *gin.Context) {
	root, ok := h.root(c)
	if !ok {
		return
	}
	path := c.DefaultQuery("path", "/")

	var entries []fstree.ListEntry
	err := h.run("list_dir", func() error {
		var opErr error
		entries, opErr = root.ListDir(path)
		return opErr
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	if wantsBCS(c) {
		data, err := wire.EncodeEntries(entries)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"path": path, "bcs": base64.StdEncoding.EncodeToString(data)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "entries": entries, "count": len(entries)})
}

// Stat describes one file or directory.
func (h *Handlers) Stat(c *gin.Context) {
	root, ok := h.root(c)
	if !ok {
		return
	}
	path := c.Query("path")

	var entry fstree.ListEntry
	err := h.run("stat", func() error {
		var opErr error
		entry, opErr = root.Stat(path)
		return opErr
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	if wantsBCS(c) {
		data, err := wire.EncodeEntry(entry)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"path": path, "bcs": base64.StdEncoding.EncodeToString(data)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "entry": entry})
}

// Tree returns the recursive snapshot rooted at a directory.
func (h *Handlers) Tree(c *gin.Context) {
	root, ok := h.root(c)
	if !ok {
		return
	}
	path := c.Query("path")

	var snap fstree.RecursiveSnapshot
	err := h.run("get_dir_all", func() error {
		var opErr error
		snap, opErr = root.GetDirAll(path)
		return opErr
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	if wantsBCS(c) {
		data, err := wire.EncodeSnapshot(snap)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"path": path, "bcs": base64.StdEncoding.EncodeToString(data)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path, "snapshot": snap})
}

func wantsBCS(c *gin.Context) bool {
	return c.Query("encoding") == "bcs"
}
