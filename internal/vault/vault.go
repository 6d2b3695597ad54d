// Package vault loads the content bundle the reader renders: markdown notes
// with YAML front matter, an optional manifest fixing the section order, and
// a wiki-link graph derived from the note bodies. The vault is read once at
// startup and never mutated.
package vault

import (
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	manifestName    = "manifest.yaml"
	frontMatterMark = "---"
)

// Reference is one bibliography entry declared in a note's front matter.
type Reference struct {
	Key      string `yaml:"key" json:"key"`
	Citation string `yaml:"citation" json:"citation"`
}

// FrontMatter is the YAML header of a note.
type FrontMatter struct {
	Title string      `yaml:"title" json:"title"`
	Order int         `yaml:"order" json:"order"`
	Refs  []Reference `yaml:"refs" json:"refs,omitempty"`
}

// Manifest pins the document title and section sequence. Notes absent from
// Sections fall back to front-matter order, then filename.
type Manifest struct {
	Title    string   `yaml:"title" json:"title"`
	Sections []string `yaml:"sections" json:"sections"`
}

// Note is one loaded content file.
type Note struct {
	Slug  string
	Title string
	Order int
	Refs  []Reference
	Body  string
}

// Vault is the loaded, ordered content bundle.
type Vault struct {
	Title  string
	Notes  []Note
	bySlug map[string]int
}

// Load reads every .md note under fsys plus the optional manifest.
func Load(fsys fs.FS) (*Vault, error) {
	v := &Vault{Title: "Untitled", bySlug: map[string]int{}}

	var manifest Manifest
	if data, err := fs.ReadFile(fsys, manifestName); err == nil {
		if err := yaml.Unmarshal(data, &manifest); err != nil {
			return nil, fmt.Errorf("vault: parse %s: %w", manifestName, err)
		}
		if manifest.Title != "" {
			v.Title = manifest.Title
		}
	}

	entries, err := fs.Glob(fsys, "*.md")
	if err != nil {
		return nil, fmt.Errorf("vault: glob notes: %w", err)
	}
	sort.Strings(entries)

	for _, name := range entries {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("vault: read %s: %w", name, err)
		}
		note, err := parseNote(strings.TrimSuffix(path.Base(name), ".md"), string(data))
		if err != nil {
			return nil, fmt.Errorf("vault: %s: %w", name, err)
		}
		v.Notes = append(v.Notes, note)
	}

	orderNotes(v.Notes, manifest.Sections)
	for i, n := range v.Notes {
		v.bySlug[n.Slug] = i
	}
	return v, nil
}

// Note returns the note with the given slug.
func (v *Vault) Note(slug string) (Note, bool) {
	i, ok := v.bySlug[slug]
	if !ok {
		return Note{}, false
	}
	return v.Notes[i], true
}

// parseNote splits an optional front-matter header from the body. A file
// without a header is all body with the slug as title.
func parseNote(slug, raw string) (Note, error) {
	note := Note{Slug: slug, Title: slug, Body: raw}

	rest, ok := strings.CutPrefix(raw, frontMatterMark+"\n")
	if !ok {
		return note, nil
	}
	head, body, ok := strings.Cut(rest, "\n"+frontMatterMark)
	if !ok {
		return Note{}, fmt.Errorf("unterminated front matter")
	}
	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(head), &fm); err != nil {
		return Note{}, fmt.Errorf("front matter: %w", err)
	}
	if fm.Title != "" {
		note.Title = fm.Title
	}
	note.Order = fm.Order
	note.Refs = fm.Refs
	note.Body = strings.TrimPrefix(strings.TrimPrefix(body, "\n"), "\n")
	return note, nil
}

// orderNotes sorts by manifest position, then front-matter order, then slug.
func orderNotes(notes []Note, sections []string) {
	rank := make(map[string]int, len(sections))
	for i, slug := range sections {
		rank[slug] = i
	}
	sort.SliceStable(notes, func(i, j int) bool {
		ri, iOK := rank[notes[i].Slug]
		rj, jOK := rank[notes[j].Slug]
		switch {
		case iOK && jOK:
			return ri < rj
		case iOK:
			return true
		case jOK:
			return false
		}
		if notes[i].Order != notes[j].Order {
			return notes[i].Order < notes[j].Order
		}
		return notes[i].Slug < notes[j].Slug
	})
}
