package filestore

import (
	"cmp"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
	"unicode/utf8"
)

// LanguageFunc picks the highlight language for a path.
type LanguageFunc func(path string) string

// FileStore manages open documents. It is safe for concurrent use.
type FileStore struct {
	mu        sync.RWMutex
	documents map[string]*Document
	order     []string
	active    string

	// Configuration
	maxFileSize int64 // Maximum file size to open (0 = unlimited)
	language    LanguageFunc
	logger      *slog.Logger

	// Event handlers
	onOpen []func(doc Document)
	onSave []func(doc Document)
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithMaxFileSize sets the maximum file size.
func WithMaxFileSize(size int64) Option {
	return func(s *FileStore) {
		s.maxFileSize = size
	}
}

// WithLanguageFunc sets how documents get their language.
func WithLanguageFunc(fn LanguageFunc) Option {
	return func(s *FileStore) {
		s.language = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *FileStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates an empty FileStore.
func New(opts ...Option) *FileStore {
	s := &FileStore{
		documents:   make(map[string]*Document),
		maxFileSize: 10 * 1024 * 1024, // 10MB default
		language:    func(string) string { return "" },
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open reads a file into the store. A file that is already open keeps its
// in-memory content. When active is true the document becomes active.
func (s *FileStore) Open(path string, active bool) (Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, &PathError{Op: "open", Path: path, Err: err}
	}

	s.mu.RLock()
	doc, ok := s.documents[abs]
	s.mu.RUnlock()

	if !ok {
		doc, err = s.read(abs)
		if err != nil {
			return Document{}, &PathError{Op: "open", Path: path, Err: err}
		}
	}

	s.mu.Lock()
	if existing, ok := s.documents[abs]; ok {
		doc = existing
	} else {
		s.documents[abs] = doc
		s.order = append(s.order, abs)
	}
	if active {
		s.active = abs
	}
	snapshot := *doc
	handlers := slices.Clone(s.onOpen)
	s.mu.Unlock()

	if !ok {
		s.logger.Debug("document opened", slog.String("path", abs), slog.String("language", doc.Language))
		for _, h := range handlers {
			h(snapshot)
		}
	}
	return snapshot, nil
}

func (s *FileStore) read(abs string) (*Document, error) {
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, ErrIsDirectory
	}
	if s.maxFileSize > 0 && info.Size() > s.maxFileSize {
		return nil, ErrFileTooLarge
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	content := lossyString(data)
	return &Document{
		Path:       abs,
		Name:       filepath.Base(abs),
		Content:    content,
		Language:   s.language(abs),
		Version:    1,
		ModifiedAt: info.ModTime(),
		Repaired:   !utf8.Valid(data),
		saved:      content,
	}, nil
}

// Get returns an open document.
func (s *FileStore) Get(path string) (Document, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[abs]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// SetActive makes an open document active.
func (s *FileStore) SetActive(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &PathError{Op: "activate", Path: path, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[abs]; !ok {
		return &PathError{Op: "activate", Path: path, Err: ErrDocumentNotOpen}
	}
	s.active = abs
	return nil
}

// Active returns the active document.
func (s *FileStore) Active() (Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[s.active]
	if !ok {
		return Document{}, false
	}
	return *doc, true
}

// ActiveComponents returns the breadcrumbs of the active document.
func (s *FileStore) ActiveComponents() []Component {
	doc, ok := s.Active()
	if !ok {
		return nil
	}
	return Components(doc.Path)
}

// Update replaces a document's content.
func (s *FileStore) Update(path, content string) (Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, &PathError{Op: "update", Path: path, Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[abs]
	if !ok {
		return Document{}, &PathError{Op: "update", Path: path, Err: ErrDocumentNotOpen}
	}
	if doc.Content != content {
		doc.Content = content
		doc.Version++
		doc.ModifiedAt = time.Now()
	}
	return *doc, nil
}

// Save writes a document to disk, preserving the file's permissions.
func (s *FileStore) Save(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &PathError{Op: "save", Path: path, Err: err}
	}

	s.mu.RLock()
	doc, ok := s.documents[abs]
	var content string
	if ok {
		content = doc.Content
	}
	s.mu.RUnlock()
	if !ok {
		return &PathError{Op: "save", Path: path, Err: ErrDocumentNotOpen}
	}

	perm := fs.FileMode(0o644)
	if info, err := os.Stat(abs); err == nil {
		perm = info.Mode().Perm()
	}
	if err := os.WriteFile(abs, []byte(content), perm); err != nil {
		return &PathError{Op: "save", Path: path, Err: err}
	}

	s.mu.Lock()
	doc.saved = content
	snapshot := *doc
	handlers := slices.Clone(s.onSave)
	s.mu.Unlock()

	s.logger.Debug("document saved", slog.String("path", abs), slog.Int("bytes", len(content)))
	for _, h := range handlers {
		h(snapshot)
	}
	return nil
}

// SaveActive saves the active document.
func (s *FileStore) SaveActive() error {
	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()
	if active == "" {
		return ErrNoActiveDocument
	}
	return s.Save(active)
}

// Reload re-reads a document from disk, discarding unsaved changes.
func (s *FileStore) Reload(path string) (Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, &PathError{Op: "reload", Path: path, Err: err}
	}
	fresh, err := s.read(abs)
	if err != nil {
		return Document{}, &PathError{Op: "reload", Path: path, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.documents[abs]
	if !ok {
		return Document{}, &PathError{Op: "reload", Path: path, Err: ErrDocumentNotOpen}
	}
	if doc.Content != fresh.Content {
		doc.Version++
	}
	doc.Content = fresh.Content
	doc.saved = fresh.saved
	doc.ModifiedAt = fresh.ModifiedAt
	doc.Repaired = fresh.Repaired
	return *doc, nil
}

// Close removes a document. Closing the active document activates the
// previous document in open order, if any.
func (s *FileStore) Close(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &PathError{Op: "close", Path: path, Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[abs]; !ok {
		return &PathError{Op: "close", Path: path, Err: ErrDocumentNotOpen}
	}
	delete(s.documents, abs)

	i := slices.Index(s.order, abs)
	s.order = slices.Delete(s.order, i, i+1)
	if s.active == abs {
		s.active = ""
		if len(s.order) > 0 {
			s.active = s.order[max(i-1, 0)]
		}
	}
	return nil
}

// Documents returns the open documents in open order.
func (s *FileStore) Documents() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Document, 0, len(s.order))
	for _, p := range s.order {
		out = append(out, *s.documents[p])
	}
	return out
}

// Count returns the number of open documents.
func (s *FileStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}

// OnOpen registers a handler called after a file is first opened.
func (s *FileStore) OnOpen(handler func(doc Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onOpen = append(s.onOpen, handler)
}

// OnSave registers a handler called after a document is saved.
func (s *FileStore) OnSave(handler func(doc Document)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSave = append(s.onSave, handler)
}

// Entry is one directory listing entry.
type Entry struct {
	Name  string
	Path  string
	IsDir bool
	Size  int64
}

// ListDir lists a directory: directories first, then files, each by name.
func ListDir(dir string) ([]Entry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, &PathError{Op: "list", Path: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &PathError{Op: "list", Path: dir, Err: ErrNotDirectory}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &PathError{Op: "list", Path: dir, Err: err}
	}

	out := make([]Entry, 0, len(entries))
	var errs []error
	for _, e := range entries {
		entry := Entry{Name: e.Name(), Path: filepath.Join(dir, e.Name()), IsDir: e.IsDir()}
		if !e.IsDir() {
			fi, err := e.Info()
			if err != nil {
				errs = append(errs, err)
				continue
			}
			entry.Size = fi.Size()
		}
		out = append(out, entry)
	}

	slices.SortFunc(out, func(a, b Entry) int {
		if a.IsDir != b.IsDir {
			if a.IsDir {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out, errors.Join(errs...)
}
