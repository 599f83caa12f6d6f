package models

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Locale selects one of the archive's two content languages.
type Locale string

const (
	LocaleEN Locale = "en"
	LocaleAR Locale = "ar"
)

// Valid reports whether l is a supported locale.
func (l Locale) Valid() bool {
	return l == LocaleEN || l == LocaleAR
}

// LocalizedText holds per-locale text. English is the required side for
// titles; everything else may be blank.
type LocalizedText struct {
	EN string `json:"en,omitempty"`
	AR string `json:"ar,omitempty"`
}

// Get returns the text for the given locale.
func (t LocalizedText) Get(locale Locale) string {
	if locale == LocaleAR {
		return t.AR
	}
	return t.EN
}

// ItemMetadata carries free-form curation fields. No validation beyond type.
type ItemMetadata struct {
	Date      string `json:"date,omitempty"`
	Author    string `json:"author,omitempty"`
	Source    string `json:"source,omitempty"`
	Location  string `json:"location,omitempty"`
	Copyright string `json:"copyright,omitempty"`
}

// AIInsights holds generated per-locale insight text. Absent until a
// generation has run.
type AIInsights struct {
	EN          string     `json:"en,omitempty"`
	AR          string     `json:"ar,omitempty"`
	GeneratedAt *time.Time `json:"generatedAt,omitempty"`
}

// ArchiveItem is the canonical record, owned by the canonical store. ID,
// CreatedAt and UpdatedAt are assigned by the store on creation.
type ArchiveItem struct {
	ID          string         `json:"_id"`
	CreatedAt   time.Time      `json:"_createdAt"`
	UpdatedAt   time.Time      `json:"_updatedAt"`
	Title       LocalizedText  `json:"title"`
	Slug        string         `json:"slug"`
	Description LocalizedText  `json:"description"`
	Tags        []string       `json:"tags,omitempty"`
	Metadata    *ItemMetadata  `json:"metadata,omitempty"`
	AIInsights  *AIInsights    `json:"aiInsights,omitempty"`
	BinaryURL   string         `json:"binaryUrl,omitempty"`
	AssetRef    string         `json:"assetRef,omitempty"`
	Featured    bool           `json:"featured"`
	Order       int            `json:"order"`
}

// RenderRef returns a resolvable reference for rendering the item's
// binary: the public object-store URL when present, otherwise the
// canonical store's own asset reference.
func (a *ArchiveItem) RenderRef() (string, bool) {
	if a.BinaryURL != "" {
		return a.BinaryURL, true
	}
	if a.AssetRef != "" {
		return a.AssetRef, true
	}
	return "", false
}

var whitespace = regexp.MustCompile(`\s+`)

// TitleFromFilename derives a default title from an uploaded filename by
// stripping the extension.
func TitleFromFilename(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// SlugFromFilename derives a URL-safe slug: extension stripped,
// lowercased, runs of whitespace collapsed to single hyphens.
func SlugFromFilename(filename string) string {
	s := strings.ToLower(TitleFromFilename(filename))
	return whitespace.ReplaceAllString(s, "-")
}
