// Package doc assembles parsed content into renderable blocks and drives the
// section-level navigation of the reader. Assembly is where the error policy
// of the embedding protocol lives: an unknown simulation id becomes a visible
// placeholder block, a faulting unit stays confined to its own mount, and the
// surrounding text always renders.
package doc

import (
	"sort"

	"cogcanvas/internal/host"
	"cogcanvas/internal/marker"
	"cogcanvas/internal/registry"
	"cogcanvas/internal/vault"
)

// Block is one renderable piece of a section, in document order: TextBlock,
// SimBlock, or MissingBlock.
type Block interface {
	isBlock()
}

// TextBlock is prose rendered through the generic markup renderer.
type TextBlock struct {
	Markdown string
}

func (TextBlock) isBlock() {}

// SimBlock hosts one mounted simulation instance.
type SimBlock struct {
	Mount *host.Mount
}

func (SimBlock) isBlock() {}

// MissingBlock is the visible placeholder for a marker whose id resolves to
// nothing in the registry.
type MissingBlock struct {
	ID string
}

func (MissingBlock) isBlock() {}

// Layout carries the container measurements assembly mounts units against.
type Layout struct {
	ContainerW int
	Touch      bool
}

// Assemble resolves a segment sequence against the registry and mounts a
// fresh unit instance per embed. Segment order is preserved; duplicate embeds
// of one id each get their own independent mount. Assemble never panics: unit
// faults are captured inside the mount.
func Assemble(segments []marker.Segment, h *host.Host, reg *registry.Registry, layout Layout) []Block {
	blocks := make([]Block, 0, len(segments))
	for _, seg := range segments {
		switch s := seg.(type) {
		case marker.Text:
			blocks = append(blocks, TextBlock{Markdown: s.Markdown})
		case marker.Embed:
			desc, ok := reg.Lookup(s.ID)
			if !ok {
				blocks = append(blocks, MissingBlock{ID: s.ID})
				continue
			}
			mount := h.Mount(desc, s.Overrides, layout.ContainerW, layout.Touch)
			blocks = append(blocks, SimBlock{Mount: mount})
		}
	}
	return blocks
}

// Section is one assembled note.
type Section struct {
	Slug   string
	Title  string
	Blocks []Block
	Refs   []vault.Reference
}

// Unmount tears down every mount in the section. Safe to call repeatedly.
func (s *Section) Unmount() {
	for _, b := range s.Blocks {
		if sim, ok := b.(SimBlock); ok {
			sim.Mount.Unmount()
		}
	}
}

// Document is the assembled, navigable reader state. Only the current
// section's units are mounted at any time; navigation unmounts the old
// section before assembling the next, which is where the cancel-on-teardown
// invariant earns its keep.
type Document struct {
	title  string
	vault  *vault.Vault
	host   *host.Host
	reg    *registry.Registry
	layout Layout

	current *Section
	index   int
}

// NewDocument prepares a document over the vault; no section is mounted yet.
func NewDocument(v *vault.Vault, h *host.Host, reg *registry.Registry, layout Layout) *Document {
	return &Document{title: v.Title, vault: v, host: h, reg: reg, layout: layout, index: -1}
}

// Title returns the document title from the vault manifest.
func (d *Document) Title() string { return d.title }

// Len reports the number of sections.
func (d *Document) Len() int { return len(d.vault.Notes) }

// Index reports the current section index, -1 before the first Open.
func (d *Document) Index() int { return d.index }

// Current returns the mounted section, nil before the first Open.
func (d *Document) Current() *Section { return d.current }

// Open mounts the section at index i, unmounting the previous one first.
// Out-of-range indices are ignored.
func (d *Document) Open(i int) {
	if i < 0 || i >= len(d.vault.Notes) || i == d.index {
		return
	}
	if d.current != nil {
		d.current.Unmount()
	}
	note := d.vault.Notes[i]
	d.current = &Section{
		Slug:   note.Slug,
		Title:  note.Title,
		Blocks: Assemble(marker.Parse(note.Body), d.host, d.reg, d.layout),
		Refs:   note.Refs,
	}
	d.index = i
}

// Next advances to the following section when there is one.
func (d *Document) Next() { d.Open(d.index + 1) }

// Prev steps back to the preceding section when there is one.
func (d *Document) Prev() { d.Open(d.index - 1) }

// Relayout propagates a new container width to the current section's mounts.
func (d *Document) Relayout(layout Layout) {
	d.layout = layout
	if d.current == nil {
		return
	}
	for _, b := range d.current.Blocks {
		if sim, ok := b.(SimBlock); ok {
			sim.Mount.Relayout(layout.ContainerW)
		}
	}
}

// Close unmounts the current section.
func (d *Document) Close() {
	if d.current != nil {
		d.current.Unmount()
	}
}

// Bibliography merges the refs of every note, de-duplicated by key and
// sorted, for the bibliography page.
func (d *Document) Bibliography() []vault.Reference {
	seen := map[string]struct{}{}
	var refs []vault.Reference
	for _, note := range d.vault.Notes {
		for _, ref := range note.Refs {
			if _, dup := seen[ref.Key]; dup {
				continue
			}
			seen[ref.Key] = struct{}{}
			refs = append(refs, ref)
		}
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Key < refs[j].Key })
	return refs
}

// Graph exposes the vault's knowledge graph for the graph page.
func (d *Document) Graph() vault.Graph { return d.vault.Graph() }
