package view

import (
	"sort"

	"tourdesk/internal/filecat"
	"tourdesk/internal/model"
)

// FileSource tags where a file came from when two owners' files are
// merged into one display list.
type FileSource string

const (
	SourceSupplier FileSource = "supplier"
	SourceTour     FileSource = "tour"
)

// TaggedFile is a file attachment with its merge source made explicit,
// so consumers handle both origins instead of relying on a string
// convention.
type TaggedFile struct {
	Source FileSource `json:"source"`
	model.FileAttachment
}

// RenderMode selects how a file group is displayed.
type RenderMode string

const (
	RenderGallery RenderMode = "gallery"
	RenderList    RenderMode = "list"
)

// FileGroup is one display bucket of merged files.
type FileGroup struct {
	Source   FileSource   `json:"source"`
	Category string       `json:"category"`
	Mode     RenderMode   `json:"mode"`
	Files    []TaggedFile `json:"files"`
}

// TagFiles marks every file in the list with the given source.
func TagFiles(source FileSource, files []model.FileAttachment) []TaggedFile {
	out := make([]TaggedFile, 0, len(files))
	for _, f := range files {
		out = append(out, TaggedFile{Source: source, FileAttachment: f})
	}
	return out
}

// MergeOwnedFiles combines a tour's own files with its supplier's
// shared files into one tagged list, supplier files first.
func MergeOwnedFiles(tourFiles, supplierFiles []model.FileAttachment) []TaggedFile {
	merged := TagFiles(SourceSupplier, supplierFiles)
	return append(merged, TagFiles(SourceTour, tourFiles)...)
}

// categoryPriority is the fixed head of the per-source category order.
var categoryPriority = []string{
	filecat.CategoryBrochure,
	filecat.CategoryGeneral,
	filecat.CategoryGallery,
}

// GroupFiles buckets a tagged file list by (source, category) and
// orders the buckets: supplier groups before tour groups, categories
// by the fixed priority sequence, then remaining registry categories
// in registry order, unknowns last in first-appearance order. Pure.
func GroupFiles(files []TaggedFile) []FileGroup {
	type groupKey struct {
		source   FileSource
		category string
	}

	groups := make(map[groupKey]*FileGroup)
	var order []groupKey
	for _, f := range files {
		key := groupKey{source: f.Source, category: f.FileCategory}
		g, ok := groups[key]
		if !ok {
			g = &FileGroup{Source: f.Source, Category: f.FileCategory}
			groups[key] = g
			order = append(order, key)
		}
		g.Files = append(g.Files, f)
	}

	// First-appearance index keeps unknown categories stable.
	appearance := make(map[groupKey]int, len(order))
	for i, key := range order {
		appearance[key] = i
	}

	out := make([]FileGroup, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.Mode = renderModeFor(g)
		out = append(out, *g)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if ra, rb := sourceRank(a.Source), sourceRank(b.Source); ra != rb {
			return ra < rb
		}
		if ra, rb := categoryRank(a.Source, a.Category), categoryRank(b.Source, b.Category); ra != rb {
			return ra < rb
		}
		ka := groupKey{source: a.Source, category: a.Category}
		kb := groupKey{source: b.Source, category: b.Category}
		return appearance[ka] < appearance[kb]
	})

	return out
}

func sourceRank(s FileSource) int {
	if s == SourceSupplier {
		return 0
	}
	return 1
}

func categoryRank(source FileSource, category string) int {
	for i, c := range categoryPriority {
		if c == category {
			return i
		}
	}
	// Remaining categories follow in their registry's default order.
	kind := filecat.OwnerTour
	if source == SourceSupplier {
		kind = filecat.OwnerSupplier
	}
	for i, ci := range filecat.Categories(kind) {
		if ci.ID == category {
			return len(categoryPriority) + i
		}
	}
	// Unknown categories trail everything.
	return len(categoryPriority) + 100
}

func renderModeFor(g *FileGroup) RenderMode {
	if g.Category == filecat.CategoryGallery {
		return RenderGallery
	}
	for _, f := range g.Files {
		if f.FileType == string(filecat.ClassImage) {
			return RenderGallery
		}
	}
	return RenderList
}
