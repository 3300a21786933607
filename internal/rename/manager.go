package rename

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/handiism/metarenamer/internal/audio"
	"github.com/handiism/metarenamer/internal/config"
	ioutils "github.com/handiism/metarenamer/internal/io"
	"github.com/handiism/metarenamer/internal/journal"
	"github.com/handiism/metarenamer/internal/logging"
	"github.com/handiism/metarenamer/internal/metadata"
	"github.com/handiism/metarenamer/internal/model"
	"github.com/handiism/metarenamer/internal/naming"
	"golang.org/x/sync/errgroup"
)

// LockFileName is the name of the lock file kept at the library root.
const LockFileName = ".metarenamer.lock"

var (
	// ErrLocked is returned when another run holds the library lock.
	ErrLocked = errors.New("library is locked by another run")

	// ErrOutsideLibrary is returned when a rendered path escapes the library.
	ErrOutsideLibrary = errors.New("destination outside library")

	// ErrEmptyPath is returned when a record renders to an empty path.
	ErrEmptyPath = errors.New("pattern rendered an empty path")

	// ErrNotInitialized is returned by Start before a successful Initialize.
	ErrNotInitialized = errors.New("manager not initialized")
)

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

// String returns a lowercase name for the level.
func (l ProgressLevel) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// ProgressEvent represents a rename progress update.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
}

// Summary counts the outcomes of a run.
type Summary struct {
	RunID   string
	Done    int
	Skipped int
	Failed  int
	Pending int // planned items of a dry run
	Bytes   int64
}

// Manager coordinates a rename run: it discovers the media files of a
// source folder, plans their destinations and relocates them.
type Manager struct {
	settings     *config.Settings
	logger       *slog.Logger
	reader       *audio.Reader
	normalizer   *metadata.Normalizer
	pattern      naming.Pattern
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService

	sourceDir  string
	libraryDir string
	runID      string
	items      []*model.Item

	totalBytes     int64
	processedBytes int64
	totalFiles     int32
	processedFiles int32

	onProgress func(ProgressEvent)
	mu         sync.RWMutex
}

// NewManager creates a new rename Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent)) *Manager {
	return &Manager{
		settings:     settings,
		logger:       logging.Nop(),
		reader:       audio.NewReader(),
		normalizer:   metadata.NewNormalizer(settings.ToNormalizerOptions()),
		pattern:      settings.ToPattern(),
		tagger:       audio.NewTagger(audio.DefaultTagConfig()),
		playlist:     settings.ToPlaylistCreator(),
		imageService: ioutils.NewImageService(),
		onProgress:   onProgress,
	}
}

// SetLogger replaces the manager's logger. A nil logger discards output.
func (m *Manager) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = logging.Nop()
	}
	m.logger = logger
}

// Initialize discovers the media files below sourceDir and plans where each
// one goes inside the library. Files that cannot be read are reported and
// left out of the plan.
func (m *Manager) Initialize(ctx context.Context, sourceDir string) error {
	source, err := filepath.Abs(sourceDir)
	if err != nil {
		return err
	}
	if info, err := os.Stat(source); err != nil {
		return err
	} else if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", source)
	}
	library, err := filepath.Abs(m.settings.LibraryPath)
	if err != nil {
		return err
	}

	paths, err := discover(ctx, source)
	if err != nil {
		return fmt.Errorf("scan %s: %w", source, err)
	}
	m.progress(ProgressEvent{Message: fmt.Sprintf("Found %d media file(s) in %s", len(paths), source), Level: LevelInfo})

	for _, field := range m.pattern.UnknownFields() {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Pattern token %q is not a known field and renders literally", field), Level: LevelWarning})
	}

	resolver := naming.NewCollisionResolver(m.taken)

	var items []*model.Item
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}

		item, err := m.plan(path, library, resolver)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Skipping %s: %v", path, err), Level: LevelWarning})
			continue
		}
		items = append(items, item)
	}

	m.mu.Lock()
	m.sourceDir = source
	m.libraryDir = library
	m.items = items
	m.totalFiles = 0
	m.totalBytes = 0
	for _, item := range items {
		if item.Status == model.StatusPending {
			m.totalFiles++
			m.totalBytes += item.Size
		}
	}
	atomic.StoreInt32(&m.processedFiles, 0)
	atomic.StoreInt64(&m.processedBytes, 0)
	m.mu.Unlock()

	m.logger.Info("rename planned", "source", source, "library", library, "items", len(items))
	return nil
}

// discover lists the supported media files below root in lexical order.
func discover(ctx context.Context, root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Type().IsRegular() && audio.IsSupported(path) {
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// plan reads, normalizes and renders one file.
func (m *Manager) plan(path, library string, resolver *naming.CollisionResolver) (*model.Item, error) {
	raw, err := m.reader.Read(path)
	if err != nil {
		return nil, err
	}

	item := model.NewItem(path, raw)
	if info, err := os.Stat(path); err == nil {
		item.Size = info.Size()
	}

	item.Record, item.Diagnostics = m.normalizer.Normalize(raw)
	for _, d := range item.Diagnostics {
		m.progress(ProgressEvent{Message: fmt.Sprintf("%s: %s", filepath.Base(path), d), Level: LevelWarning})
	}

	item.RelPath = m.pattern.Render(item.Record, item.Extension)
	dest, err := Destination(library, item.RelPath)
	if err != nil {
		return nil, err
	}

	item.Destination = resolver.Resolve(path, dest)
	if !item.Moved() {
		item.Status = model.StatusSkipped
	}
	return item, nil
}

// Destination joins a rendered relative path onto the library root and
// checks that the result stays inside it.
func Destination(library, relPath string) (string, error) {
	if strings.Trim(relPath, "/") == "" {
		return "", ErrEmptyPath
	}
	dest := filepath.Join(library, filepath.FromSlash(relPath))
	rel, err := filepath.Rel(library, dest)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", relPath, ErrOutsideLibrary)
	}
	return dest, nil
}

// taken reports whether a destination is already occupied on disk.
func (m *Manager) taken(path string) bool {
	if m.settings.Overwrite {
		return false
	}
	_, err := os.Lstat(path)
	return err == nil
}

// Start relocates the planned items.
//
// Items are processed concurrently, up to MaxConcurrentItems at a time. A
// failing item is reported and the others continue; the returned error is
// only set for failures that stop the whole run (lock, backup, journal,
// cancellation).
func (m *Manager) Start(ctx context.Context) (Summary, error) {
	m.mu.RLock()
	items := m.items
	source, library := m.sourceDir, m.libraryDir
	m.mu.RUnlock()

	if source == "" {
		return Summary{}, ErrNotInitialized
	}

	dryRun := m.settings.DryRun()
	m.runID = uuid.NewString()
	logger := m.logger.With("run", m.runID)

	if dryRun {
		for _, item := range items {
			if item.Status == model.StatusPending {
				m.progress(ProgressEvent{Message: fmt.Sprintf("Would %s %s -> %s", verb(m.settings.Mode), item.SourcePath, item.Destination), Level: LevelInfo})
			}
		}
		return m.summarize(items), nil
	}

	if err := ioutils.EnsureDir(library); err != nil {
		return Summary{}, err
	}

	if m.settings.LockLibrary {
		lock := flock.New(filepath.Join(library, LockFileName))
		ok, err := lock.TryLock()
		if err != nil {
			return Summary{}, fmt.Errorf("acquire lock: %w", err)
		}
		if !ok {
			return Summary{}, ErrLocked
		}
		defer func() {
			if err := lock.Unlock(); err != nil {
				logger.Warn("failed to release library lock", "error", err)
			}
		}()
	}

	if m.settings.BackupPath != "" && m.settings.Mode == config.ModeMove {
		backup := filepath.Join(m.settings.BackupPath, m.runID)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Backing up %s to %s", source, backup), Level: LevelInfo})
		if err := ioutils.CopyTree(ctx, source, backup); err != nil {
			return Summary{}, fmt.Errorf("backup: %w", err)
		}
	}

	var jrnl *journal.Journal
	if m.settings.JournalPath != "" {
		var err error
		jrnl, err = journal.Open(m.settings.JournalPath)
		if err != nil {
			return Summary{}, fmt.Errorf("open journal: %w", err)
		}
		defer jrnl.Close()

		run := journal.Run{ID: m.runID, Source: source, Library: library, Mode: m.settings.Mode}
		if err := jrnl.BeginRun(ctx, run); err != nil {
			return Summary{}, err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.settings.MaxConcurrentItems)

	for _, item := range items {
		if item.Status != model.StatusPending {
			continue
		}
		g.Go(func() error {
			if err := m.relocate(gctx, item, jrnl); err != nil {
				item.Status = model.StatusFailed
				item.Err = err
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error relocating %s: %v", filepath.Base(item.SourcePath), err), Level: LevelError})
				logger.Error("relocate failed", "source", item.SourcePath, "error", err)
				return nil // Continue with other items
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return m.summarize(items), err
	}
	if err := ctx.Err(); err != nil {
		return m.summarize(items), err
	}

	folders := groupByFolder(items)
	if m.settings.CarryCoverArt {
		m.carryCoverArt(ctx, folders, jrnl)
	}
	if m.settings.CreatePlaylist {
		m.writePlaylists(folders)
	}

	if m.settings.Mode == config.ModeMove && m.settings.PruneEmptySource {
		removed, err := ioutils.PruneEmptyDirs(source)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error pruning %s: %v", source, err), Level: LevelWarning})
		}
		for _, dir := range removed {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Removed empty folder %s", dir), Level: LevelVerbose})
		}
	}

	summary := m.summarize(items)
	logger.Info("rename finished", "done", summary.Done, "skipped", summary.Skipped, "failed", summary.Failed)
	if summary.Failed == 0 {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Relocated %d file(s)", summary.Done), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Relocated %d file(s), %d failed", summary.Done, summary.Failed), Level: LevelWarning})
	}
	return summary, nil
}

// relocate moves or copies one item and records it in the journal.
func (m *Manager) relocate(ctx context.Context, item *model.Item, jrnl *journal.Journal) error {
	var err error
	if m.settings.Mode == config.ModeCopy {
		err = ioutils.Copy(ctx, item.SourcePath, item.Destination, m.settings.Overwrite)
	} else {
		err = ioutils.Move(ctx, item.SourcePath, item.Destination, m.settings.Overwrite)
	}
	if err != nil {
		return err
	}

	item.Status = model.StatusDone
	atomic.AddInt32(&m.processedFiles, 1)
	atomic.AddInt64(&m.processedBytes, item.Size)

	m.record(ctx, jrnl, item.SourcePath, item.Destination, m.settings.Mode)

	if m.settings.WriteTags && m.tagger.CanTag(item.Destination) {
		if err := m.tagger.SaveTags(item.Destination, item.Record); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error tagging %s: %v", filepath.Base(item.Destination), err), Level: LevelWarning})
		}
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("%s: %s", pastTense(m.settings.Mode), item.RelPath), Level: LevelVerbose})
	return nil
}

// groupByFolder maps each destination folder to the items relocated into it.
func groupByFolder(items []*model.Item) map[string][]*model.Item {
	folders := make(map[string][]*model.Item)
	for _, item := range items {
		if item.Status != model.StatusDone {
			continue
		}
		dir := filepath.Dir(item.Destination)
		folders[dir] = append(folders[dir], item)
	}
	return folders
}

// record journals one relocation. A nil journal records nothing.
func (m *Manager) record(ctx context.Context, jrnl *journal.Journal, src, dst, mode string) {
	if jrnl == nil {
		return
	}
	entry := journal.Entry{RunID: m.runID, Source: src, Destination: dst, Mode: mode}
	if err := jrnl.Record(ctx, entry); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error journaling %s: %v", filepath.Base(src), err), Level: LevelWarning})
	}
}

// coverPlan is one cover image to place in a destination folder.
type coverPlan struct {
	src     string
	dst     string
	data    []byte // nil when the image is relocated as is
	derived bool
}

// carryCoverArt places the cover image of each item's source folder in its
// destination folder, unless the destination already has one.
//
// Resized or converted images are written as new files and the source image
// is kept. In move mode an untouched image is moved to the first folder that
// needs it and copied to any other. Every placement is journaled so an undo
// restores the source folder.
func (m *Manager) carryCoverArt(ctx context.Context, folders map[string][]*model.Item, jrnl *journal.Journal) {
	var plans []*coverPlan
	for _, dir := range slices.Sorted(maps.Keys(folders)) {
		if _, ok := ioutils.FindCoverArt(dir); ok {
			continue
		}
		src, ok := ioutils.FindCoverArt(filepath.Dir(folders[dir][0].SourcePath))
		if !ok {
			continue
		}
		if plan := m.planCover(ctx, src, dir); plan != nil {
			plans = append(plans, plan)
		}
	}

	movers := make(map[string]*coverPlan)
	if m.settings.Mode == config.ModeMove {
		for _, plan := range plans {
			if _, ok := movers[plan.src]; !ok && !plan.derived {
				movers[plan.src] = plan
			}
		}
	}

	// Copies first, so a moved source is still there to copy from.
	for _, plan := range plans {
		if movers[plan.src] == plan {
			continue
		}
		if err := os.WriteFile(plan.dst, plan.data, 0644); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error saving cover art: %v", err), Level: LevelWarning})
			continue
		}
		m.record(ctx, jrnl, plan.src, plan.dst, config.ModeCopy)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Carried cover art to %s", filepath.Dir(plan.dst)), Level: LevelVerbose})
	}

	for _, src := range slices.Sorted(maps.Keys(movers)) {
		plan := movers[src]
		if err := ioutils.Move(ctx, plan.src, plan.dst, false); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error moving cover art %s: %v", plan.src, err), Level: LevelWarning})
			continue
		}
		m.record(ctx, jrnl, plan.src, plan.dst, config.ModeMove)
		m.progress(ProgressEvent{Message: fmt.Sprintf("Carried cover art to %s", filepath.Dir(plan.dst)), Level: LevelVerbose})
	}
}

// planCover reads src and applies the configured resize or JPEG conversion.
// It returns nil when src cannot be read.
func (m *Manager) planCover(ctx context.Context, src, dir string) *coverPlan {
	data, err := os.ReadFile(src)
	if err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error reading cover art %s: %v", src, err), Level: LevelWarning})
		return nil
	}

	plan := &coverPlan{src: src, data: data}
	switch {
	case m.settings.CoverArtResize:
		if resized, err := m.imageService.ResizeImage(ctx, data, m.settings.CoverArtMaxSize, m.settings.CoverArtMaxSize); err == nil {
			plan.data, plan.derived = resized, true
		}
	case m.settings.ConvertCoverArtToJPG:
		if converted, err := m.imageService.ConvertToJPEG(ctx, data); err == nil {
			plan.data, plan.derived = converted, true
		}
	}

	name := filepath.Base(src)
	if plan.derived {
		name = strings.TrimSuffix(name, filepath.Ext(name)) + ".jpg"
	}
	plan.dst = filepath.Join(dir, name)
	return plan
}

// writePlaylists writes one playlist per destination folder.
func (m *Manager) writePlaylists(folders map[string][]*model.Item) {
	for dir, items := range folders {
		title := items[0].Record.Get(model.KeyAlbum)
		if title == "" {
			title = filepath.Base(dir)
		}
		path := filepath.Join(dir, naming.Escape(title)+m.playlist.Format().Extension())

		content := m.playlist.CreatePlaylist(title, items)
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
			continue
		}
		m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist for %s", title), Level: LevelSuccess})
	}
}

func (m *Manager) summarize(items []*model.Item) Summary {
	s := Summary{RunID: m.runID}
	for _, item := range items {
		switch item.Status {
		case model.StatusDone:
			s.Done++
			s.Bytes += item.Size
		case model.StatusSkipped:
			s.Skipped++
		case model.StatusFailed:
			s.Failed++
		default:
			s.Pending++
		}
	}
	return s
}

func verb(mode string) string {
	if mode == config.ModeCopy {
		return "copy"
	}
	return "move"
}

func pastTense(mode string) string {
	if mode == config.ModeCopy {
		return "Copied"
	}
	return "Moved"
}

// GetProgress returns current relocation progress.
func (m *Manager) GetProgress() (processed, total int64, filesProcessed, filesTotal int32) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return atomic.LoadInt64(&m.processedBytes), m.totalBytes,
		atomic.LoadInt32(&m.processedFiles), m.totalFiles
}

// Items returns the planned items.
func (m *Manager) Items() []*model.Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.items
}

// RunID returns the id of the last started run.
func (m *Manager) RunID() string {
	return m.runID
}

// GetAlbumNames returns "albumArtist - album" for each planned album.
func (m *Manager) GetAlbumNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]bool)
	var names []string
	for _, item := range m.items {
		name := fmt.Sprintf("%s - %s", item.Record.Get(model.KeyAlbumArtist), item.Record.Get(model.KeyAlbum))
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	return names
}

func (m *Manager) progress(event ProgressEvent) {
	if m.onProgress != nil {
		m.onProgress(event)
	}
}
