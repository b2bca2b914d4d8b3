// Package editor implements the settings panel: a draft copy of the content
// bundle that is edited in place and committed to the config store on save.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"valentine/configstore"
	"valentine/content"
	"valentine/imageingest"
)

const (
	NoticeStorageFull  = "Storage full. Try fewer photos or use smaller images."
	NoticeUploadFailed = "Could not process images. Try smaller files."
)

var (
	ErrNotOpen         = errors.New("settings panel is not open")
	ErrUnknownField    = errors.New("unknown field")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNotConfirmed    = errors.New("reset requires confirmation")
	ErrDraftReplaced   = errors.New("draft was closed or restarted during upload")
)

// Store is the part of the config store the editor commits to.
type Store interface {
	Get() content.Bundle
	Save(p content.Partial) (content.Bundle, error)
	Reset() content.Bundle
}

// Ingester converts a file selection into embedded photos.
type Ingester interface {
	Batch(ctx context.Context, files []imageingest.File) (imageingest.Batch, error)
}

// Session is one visitor's settings panel.
type Session struct {
	mu       sync.Mutex
	store    Store
	ingester Ingester

	open   bool
	draft  content.Bundle
	notice string
	// gen changes whenever the draft is replaced or discarded.
	gen uint64
}

// New returns a closed panel.
func New(store Store, ingester Ingester) *Session {
	return &Session{store: store, ingester: ingester}
}

// Open starts a draft from the live bundle. Opening an open panel restarts
// the draft.
func (s *Session) Open() content.Bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	s.draft = s.store.Get()
	s.notice = ""
	s.gen++
	return s.draft.Clone()
}

// Cancel closes the panel and discards the draft.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	s.draft = content.Bundle{}
	s.notice = ""
	s.gen++
}

func (s *Session) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Draft returns a copy of the bundle being edited.
func (s *Session) Draft() (content.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return content.Bundle{}, ErrNotOpen
	}
	return s.draft.Clone(), nil
}

// Notice is the last user-facing warning, if any.
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

// SetField sets a text field by its JSON name.
func (s *Session) SetField(name, value string) error {
	return s.edit(func(d *content.Bundle) error {
		f, ok := scalarField(d, name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		*f = value
		return nil
	})
}

// SetItem replaces element i of a list field.
func (s *Session) SetItem(name string, i int, value string) error {
	return s.edit(func(d *content.Bundle) error {
		l, err := listOf(d, name)
		if err != nil {
			return err
		}
		if i < 0 || i >= len(*l) {
			return fmt.Errorf("%s[%d]: %w", name, i, ErrIndexOutOfRange)
		}
		(*l)[i] = value
		return nil
	})
}

// AppendItem adds value to the end of a list field. Appending to photos
// behaves like AppendPhoto.
func (s *Session) AppendItem(name, value string) error {
	return s.edit(func(d *content.Bundle) error {
		if name == "photos" {
			appendPhoto(d, value, "")
			return nil
		}
		l, err := listOf(d, name)
		if err != nil {
			return err
		}
		*l = append(*l, value)
		return nil
	})
}

// RemoveItem deletes element i of a list field; later elements shift down.
// Removing from photos behaves like RemovePhoto.
func (s *Session) RemoveItem(name string, i int) error {
	return s.edit(func(d *content.Bundle) error {
		if name == "photos" {
			return removePhoto(d, i)
		}
		l, err := listOf(d, name)
		if err != nil {
			return err
		}
		if i < 0 || i >= len(*l) {
			return fmt.Errorf("%s[%d]: %w", name, i, ErrIndexOutOfRange)
		}
		*l = without(*l, i)
		return nil
	})
}

// AppendPhoto adds a photo reference with an empty caption.
func (s *Session) AppendPhoto(ref string) error {
	return s.edit(func(d *content.Bundle) error {
		appendPhoto(d, ref, "")
		return nil
	})
}

// RemovePhoto deletes photo i together with its caption so later photos
// keep theirs.
func (s *Session) RemovePhoto(i int) error {
	return s.edit(func(d *content.Bundle) error {
		return removePhoto(d, i)
	})
}

// appendPhoto keeps photos and captions index-aligned. When captions are
// shorter than photos the new photo is left to the caption fallback.
func appendPhoto(d *content.Bundle, ref, caption string) {
	n := len(d.Photos)
	d.Photos = append(d.Photos, ref)
	switch {
	case len(d.PhotoCaptions) == n:
		d.PhotoCaptions = append(d.PhotoCaptions, caption)
	case len(d.PhotoCaptions) > n:
		d.PhotoCaptions[n] = caption
	}
}

func removePhoto(d *content.Bundle, i int) error {
	if i < 0 || i >= len(d.Photos) {
		return fmt.Errorf("photos[%d]: %w", i, ErrIndexOutOfRange)
	}
	d.Photos = without(d.Photos, i)
	if i < len(d.PhotoCaptions) {
		d.PhotoCaptions = without(d.PhotoCaptions, i)
	}
	return nil
}

func without(l []string, i int) []string {
	out := make([]string, 0, len(l)-1)
	out = append(out, l[:i]...)
	return append(out, l[i+1:]...)
}

func (s *Session) edit(fn func(d *content.Bundle) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrNotOpen
	}
	return fn(&s.draft)
}

// AddPhotos ingests the image files in a selection and appends them, each
// with an empty caption, to the draft. Non-images are skipped. If no image
// could be processed the draft is unchanged and a notice is set. If the
// draft is discarded or restarted while files are ingested, the result is
// dropped and ErrDraftReplaced returned.
func (s *Session) AddPhotos(ctx context.Context, files []imageingest.File) (imageingest.Batch, error) {
	s.mu.Lock()
	if !s.open {
		s.mu.Unlock()
		return imageingest.Batch{}, ErrNotOpen
	}
	gen := s.gen
	s.mu.Unlock()

	batch, err := s.ingester.Batch(ctx, files)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open || s.gen != gen {
		return batch, ErrDraftReplaced
	}
	if err != nil {
		s.notice = NoticeUploadFailed
		return batch, err
	}
	for i, ref := range batch.Photos {
		appendPhoto(&s.draft, ref, batch.Captions[i])
	}
	s.notice = ""
	if n := len(batch.Failed); n > 0 {
		s.notice = fmt.Sprintf("%d image(s) could not be processed and were skipped.", n)
	}
	return batch, nil
}

// Save commits the draft. On ErrStorageFull the panel stays open with the
// draft intact and the notice explains why; on success the panel closes.
func (s *Session) Save() (content.Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return content.Bundle{}, ErrNotOpen
	}

	saved, err := s.store.Save(s.draft.Full())
	switch {
	case errors.Is(err, configstore.ErrStorageFull):
		s.notice = NoticeStorageFull
		return saved, err
	case err != nil:
		s.notice = err.Error()
		return saved, err
	}

	s.open = false
	s.draft = content.Bundle{}
	s.notice = ""
	s.gen++
	return saved, nil
}

// Reset clears every customization once confirmed and restarts the draft
// from the defaults. The panel stays open.
func (s *Session) Reset(confirmed bool) (content.Bundle, error) {
	if !confirmed {
		return content.Bundle{}, ErrNotConfirmed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	live := s.store.Reset()
	if s.open {
		s.draft = content.Default()
		s.notice = ""
		s.gen++
	}
	return live, nil
}

// PhotoEntry is one row of the photo editor.
type PhotoEntry struct {
	Index    int    `json:"index"`
	Ref      string `json:"ref"`
	Caption  string `json:"caption"`
	Embedded bool   `json:"embedded"`
}

// PhotoEntries lists the draft's photos with their captions. Embedded
// photos get a read-only preview; filename photos get a text field.
func (s *Session) PhotoEntries() ([]PhotoEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil, ErrNotOpen
	}
	out := make([]PhotoEntry, len(s.draft.Photos))
	for i, ref := range s.draft.Photos {
		caption := ""
		if i < len(s.draft.PhotoCaptions) {
			caption = s.draft.PhotoCaptions[i]
		}
		out[i] = PhotoEntry{Index: i, Ref: ref, Caption: caption, Embedded: content.IsEmbedded(ref)}
	}
	return out, nil
}

func scalarField(b *content.Bundle, name string) (*string, bool) {
	switch name {
	case "recipientName":
		return &b.RecipientName, true
	case "landingSubtitle":
		return &b.LandingSubtitle, true
	case "letterIntro":
		return &b.LetterIntro, true
	case "successMainMessage":
		return &b.SuccessMainMessage, true
	case "valentineMessage":
		return &b.ValentineMessage, true
	case "footerSignOff":
		return &b.FooterSignOff, true
	case "songPath":
		return &b.SongPath, true
	}
	return nil, false
}

func listOf(b *content.Bundle, name string) (*[]string, error) {
	switch name {
	case "letterLines":
		return &b.LetterLines, nil
	case "reasons":
		return &b.Reasons, nil
	case "photos":
		return &b.Photos, nil
	case "photoCaptions":
		return &b.PhotoCaptions, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
}
