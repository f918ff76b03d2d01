// Package render writes the static-site markdown documents for releases
// and artists. Output is Hugo content: a front-matter block plus a body
// built from the canonical record. Sections for absent data are omitted
// entirely rather than rendered as placeholders.
package render

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"crate/internal/config"
	"crate/internal/record"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Renderer produces markdown documents under the site content tree.
type Renderer struct {
	postsDir   string
	artistsDir string
	templates  *template.Template
}

// New parses the embedded templates and prepares a renderer writing under
// the configured site directories.
func New(cfg *config.Config) (*Renderer, error) {
	// Hugo shortcodes use {{< >}}, so the templates use [[ ]] actions.
	templates, err := template.New("render").
		Delims("[[", "]]").
		Funcs(template.FuncMap{"yamlList": yamlList}).
		ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{
		postsDir:   cfg.PostsPath(),
		artistsDir: cfg.ArtistsPath(),
		templates:  templates,
	}, nil
}

// ReleaseDir returns the content directory for one release.
func (r *Renderer) ReleaseDir(release *record.Release) string {
	return filepath.Join(r.postsDir, release.Slug)
}

// ReleaseImagePath returns where the release cover image belongs.
func (r *Renderer) ReleaseImagePath(release *record.Release) string {
	return filepath.Join(r.ReleaseDir(release), release.Slug+".jpg")
}

// ArtistDir returns the content directory for one artist.
func (r *Renderer) ArtistDir(artist *record.Artist) string {
	return filepath.Join(r.artistsDir, artist.Slug)
}

// ArtistImagePath returns where the artist image belongs.
func (r *Renderer) ArtistImagePath(artist *record.Artist) string {
	return filepath.Join(r.ArtistDir(artist), artist.Slug+".jpg")
}

// RenderRelease writes the release page and returns its path.
func (r *Renderer) RenderRelease(release *record.Release) (string, error) {
	dir := r.ReleaseDir(release)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create release dir: %w", err)
	}

	path := filepath.Join(dir, "index.md")
	if err := r.execute("release.md.tmpl", path, newReleaseView(release)); err != nil {
		return "", err
	}
	return path, nil
}

// RenderArtist writes the artist page and returns its path.
func (r *Renderer) RenderArtist(artist *record.Artist) (string, error) {
	dir := r.ArtistDir(artist)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create artist dir: %w", err)
	}

	path := filepath.Join(dir, "_index.md")
	if err := r.execute("artist.md.tmpl", path, newArtistView(artist)); err != nil {
		return "", err
	}
	return path, nil
}

// yamlList renders a flow-style YAML list with the brackets included.
// A literal "[" abutting the open delimiter is ambiguous to the parser,
// so the whole list comes out of one action.
func yamlList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	quoted := make([]string, len(values))
	for i, value := range values {
		quoted[i] = `"` + value + `"`
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

func (r *Renderer) execute(name, path string, view any) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer file.Close()

	if err := r.templates.ExecuteTemplate(file, name, view); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
