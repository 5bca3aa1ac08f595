package templates

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

//go:embed assets/**/*.tmpl
var embeddedFS embed.FS

// layoutDir holds the shared layout and partials parsed into every page
const layoutDir = "layout"

// Template is a parsed page.
type Template struct {
	ID      string
	Path    string
	Content string

	parsed *template.Template
}

// Execute writes the page to w.
func (t *Template) Execute(w io.Writer, data any) error {
	if err := t.parsed.ExecuteTemplate(w, t.ID, data); err != nil {
		return fmt.Errorf("render template %s: %w", t.ID, err)
	}
	return nil
}

// Render executes the template with the provided data and returns the result.
func (t *Template) Render(data any) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

// Registry holds parsed pages and resolves them by ID. Every page is parsed on
// top of a clone of the layout templates, so pages can each define "content".
type Registry struct {
	basePath  string
	fs        fs.FS
	base      *template.Template
	templates map[string]*Template
	mu        sync.RWMutex
}

// NewRegistry loads all templates from the provided base path.
func NewRegistry(basePath string) (*Registry, error) {
	absBase, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve template base path: %w", err)
	}

	return NewRegistryFromFS(os.DirFS(absBase), absBase)
}

// NewRegistryFromFS constructs a registry from an arbitrary filesystem.
// rootPath is used for deriving template IDs when walking the filesystem.
func NewRegistryFromFS(filesystem fs.FS, rootPath string) (*Registry, error) {
	r := &Registry{
		basePath:  rootPath,
		fs:        filesystem,
		templates: map[string]*Template{},
	}

	if err := r.loadLayout(); err != nil {
		return nil, err
	}
	if err := r.loadAll(); err != nil {
		return nil, err
	}

	return r, nil
}

// Get returns a lazily initialized default registry rooted at embedded assets.
func Get() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = newEmbeddedRegistry()
	})

	if defaultErr != nil {
		panic(defaultErr)
	}

	return defaultRegistry
}

// GetTemplate retrieves a template by its ID.
func (r *Registry) GetTemplate(id string) (*Template, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[id]
	r.mu.RUnlock()

	if ok {
		return tmpl, nil
	}

	// Attempt lazy load in case the template was added after initialization.
	p := path.Clean(id) + ".tmpl"
	if _, err := fs.Stat(r.fs, p); err == nil && !r.isLayout(p) {
		if err := r.loadTemplate(p); err != nil {
			return nil, err
		}
		r.mu.RLock()
		tmpl = r.templates[id]
		r.mu.RUnlock()
		if tmpl != nil {
			return tmpl, nil
		}
	}

	return nil, fmt.Errorf("template not found: %s", id)
}

// Execute renders a template by ID into w.
func (r *Registry) Execute(w io.Writer, id string, data any) error {
	tmpl, err := r.GetTemplate(id)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, data)
}

// Render executes a template by ID using the provided data.
func (r *Registry) Render(id string, data any) (string, error) {
	tmpl, err := r.GetTemplate(id)
	if err != nil {
		return "", err
	}

	return tmpl.Render(data)
}

// List returns all known template IDs.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.templates))
	for id := range r.templates {
		ids = append(ids, id)
	}

	return ids
}

func (r *Registry) loadLayout() error {
	base := template.New("").Funcs(Funcs)

	matches, err := fs.Glob(r.fs, layoutDir+"/*.tmpl")
	if err != nil {
		return fmt.Errorf("list layout templates: %w", err)
	}
	for _, p := range matches {
		content, err := fs.ReadFile(r.fs, p)
		if err != nil {
			return fmt.Errorf("read layout %s: %w", p, err)
		}
		if _, err := base.New(r.pathToID(p)).Parse(string(content)); err != nil {
			return fmt.Errorf("parse layout %s: %w", p, err)
		}
	}

	r.base = base
	return nil
}

func (r *Registry) loadAll() error {
	return fs.WalkDir(r.fs, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if path.Ext(p) != ".tmpl" || r.isLayout(p) {
			return nil
		}

		return r.loadTemplate(p)
	})
}

func (r *Registry) loadTemplate(p string) error {
	id := r.pathToID(p)
	content, err := fs.ReadFile(r.fs, p)
	if err != nil {
		return fmt.Errorf("read template %s: %w", id, err)
	}

	clone, err := r.base.Clone()
	if err != nil {
		return fmt.Errorf("clone layout for %s: %w", id, err)
	}
	parsed, err := clone.New(id).Parse(string(content))
	if err != nil {
		return fmt.Errorf("parse template %s: %w", id, err)
	}

	r.mu.Lock()
	r.templates[id] = &Template{
		ID:      id,
		Path:    p,
		Content: string(content),
		parsed:  parsed,
	}
	r.mu.Unlock()

	return nil
}

func (r *Registry) isLayout(p string) bool {
	return strings.HasPrefix(filepath.ToSlash(p), layoutDir+"/")
}

func (r *Registry) pathToID(rel string) string {
	normalized := filepath.ToSlash(rel)
	normalized = strings.TrimPrefix(normalized, "/")
	return strings.TrimSuffix(normalized, path.Ext(normalized))
}

func newEmbeddedRegistry() (*Registry, error) {
	subFS, err := fs.Sub(embeddedFS, "assets")
	if err != nil {
		return nil, fmt.Errorf("prepare embedded templates: %w", err)
	}

	return NewRegistryFromFS(subFS, "assets")
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)
