package content

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// EmbeddedPrefix marks a photo reference that carries its own image payload.
const EmbeddedPrefix = "data:"

// Bundle is the full set of user-facing text, lists and media references.
type Bundle struct {
	RecipientName      string   `json:"recipientName"`
	LandingSubtitle    string   `json:"landingSubtitle"`
	LetterIntro        string   `json:"letterIntro"`
	LetterLines        []string `json:"letterLines"`
	Reasons            []string `json:"reasons"`
	Photos             []string `json:"photos"`
	PhotoCaptions      []string `json:"photoCaptions"`
	SuccessMainMessage string   `json:"successMainMessage"`
	ValentineMessage   string   `json:"valentineMessage"`
	FooterSignOff      string   `json:"footerSignOff"`
	SongPath           string   `json:"songPath"`
}

// Partial is a bundle where every key may be absent. A nil pointer means the
// key was not supplied; a non-nil pointer to an empty slice replaces the list
// with an empty one.
type Partial struct {
	RecipientName      *string   `json:"recipientName,omitempty"`
	LandingSubtitle    *string   `json:"landingSubtitle,omitempty"`
	LetterIntro        *string   `json:"letterIntro,omitempty"`
	LetterLines        *[]string `json:"letterLines,omitempty"`
	Reasons            *[]string `json:"reasons,omitempty"`
	Photos             *[]string `json:"photos,omitempty"`
	PhotoCaptions      *[]string `json:"photoCaptions,omitempty"`
	SuccessMainMessage *string   `json:"successMainMessage,omitempty"`
	ValentineMessage   *string   `json:"valentineMessage,omitempty"`
	FooterSignOff      *string   `json:"footerSignOff,omitempty"`
	SongPath           *string   `json:"songPath,omitempty"`
}

var ErrInvalidBundle = errors.New("invalid content bundle")

// ValidationError pins a validation failure to a field and, for lists, an index.
type ValidationError struct {
	Field string
	Index int
}

func (e *ValidationError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s[%d] must not be empty", e.Field, e.Index)
	}
	return fmt.Sprintf("%s is invalid", e.Field)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidBundle }

// Validate checks the invariants a bundle must hold before it is persisted.
// Empty lists are valid.
func (b Bundle) Validate() error {
	for i, line := range b.LetterLines {
		if strings.TrimSpace(line) == "" {
			return &ValidationError{Field: "letterLines", Index: i}
		}
	}
	return nil
}

// Clone returns a deep copy so callers never share list backing arrays.
func (b Bundle) Clone() Bundle {
	out := b
	out.LetterLines = cloneList(b.LetterLines)
	out.Reasons = cloneList(b.Reasons)
	out.Photos = cloneList(b.Photos)
	out.PhotoCaptions = cloneList(b.PhotoCaptions)
	return out
}

// Full turns a bundle into a partial with every key present.
func (b Bundle) Full() Partial {
	c := b.Clone()
	return Partial{
		RecipientName:      &c.RecipientName,
		LandingSubtitle:    &c.LandingSubtitle,
		LetterIntro:        &c.LetterIntro,
		LetterLines:        &c.LetterLines,
		Reasons:            &c.Reasons,
		Photos:             &c.Photos,
		PhotoCaptions:      &c.PhotoCaptions,
		SuccessMainMessage: &c.SuccessMainMessage,
		ValentineMessage:   &c.ValentineMessage,
		FooterSignOff:      &c.FooterSignOff,
		SongPath:           &c.SongPath,
	}
}

// Caption returns the caption paired with photo i, falling back to the first
// caption when the lists are out of step.
func (b Bundle) Caption(i int) string {
	if i >= 0 && i < len(b.PhotoCaptions) {
		return b.PhotoCaptions[i]
	}
	if len(b.PhotoCaptions) > 0 {
		return b.PhotoCaptions[0]
	}
	return ""
}

// IsEmbedded reports whether ref carries its own image payload.
func IsEmbedded(ref string) bool {
	return strings.HasPrefix(ref, EmbeddedPrefix)
}

// ResolvePhoto returns the URL a photo reference is served from. Embedded
// references are returned unchanged.
func ResolvePhoto(base, ref string) string {
	if IsEmbedded(ref) {
		return ref
	}
	return strings.TrimRight(base, "/") + "/photos/" + url.PathEscape(ref)
}

// ResolveAsset joins an asset path such as songPath onto base.
func ResolveAsset(base, path string) string {
	if path == "" {
		return ""
	}
	if strings.Contains(path, "://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

func cloneList(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
