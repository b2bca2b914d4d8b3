package editor_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"valentine/configstore"
	"valentine/content"
	"valentine/editor"
	"valentine/imageingest"
	"valentine/kvstore"
)

type fakeIngester struct {
	batch imageingest.Batch
	err   error
	// during runs while the batch is being ingested.
	during func()
}

func (f *fakeIngester) Batch(context.Context, []imageingest.File) (imageingest.Batch, error) {
	if f.during != nil {
		f.during()
	}
	return f.batch, f.err
}

func newEditor(t *testing.T) (*editor.Session, *configstore.Manager, *kvstore.Memory, *fakeIngester) {
	t.Helper()
	kv := kvstore.NewMemory(0)
	store := configstore.NewManager(kv)
	ing := &fakeIngester{}
	return editor.New(store, ing), store, kv, ing
}

func TestEditsRequireOpenPanel(t *testing.T) {
	ed, _, _, _ := newEditor(t)
	if err := ed.SetField("recipientName", "x"); !errors.Is(err, editor.ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen, got %v", err)
	}
	if _, err := ed.Save(); !errors.Is(err, editor.ErrNotOpen) {
		t.Fatalf("expected ErrNotOpen on save, got %v", err)
	}
}

func TestDraftIsACopyUntilSave(t *testing.T) {
	ed, store, _, _ := newEditor(t)
	ed.Open()
	if err := ed.SetField("recipientName", "Jordan"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if store.Get().RecipientName == "Jordan" {
		t.Fatal("live bundle changed before save")
	}

	saved, err := ed.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if saved.RecipientName != "Jordan" || store.Get().RecipientName != "Jordan" {
		t.Fatalf("save did not commit, got %q", store.Get().RecipientName)
	}
	if ed.IsOpen() {
		t.Fatal("panel should close after a successful save")
	}
}

func TestCancelDiscardsDraft(t *testing.T) {
	ed, store, _, _ := newEditor(t)
	ed.Open()
	ed.SetField("letterIntro", "changed")
	ed.Cancel()
	if store.Get().LetterIntro == "changed" || ed.IsOpen() {
		t.Fatal("cancel should discard the draft and close")
	}
}

func TestArrayEditing(t *testing.T) {
	ed, _, _, _ := newEditor(t)
	ed.Open()
	ed.RemoveItem("reasons", 0)
	ed.RemoveItem("reasons", 0)
	ed.RemoveItem("reasons", 0)
	ed.AppendItem("reasons", "")
	ed.SetItem("reasons", 2, "new one")

	d, _ := ed.Draft()
	want := []string{"You never raise your voice at me.", "You support me in whatever I do.", "new one"}
	if !reflect.DeepEqual(d.Reasons, want) {
		t.Fatalf("expected %v, got %v", want, d.Reasons)
	}
}

func TestRemoveItemPreservesOrder(t *testing.T) {
	ed, _, _, _ := newEditor(t)
	ed.Open()
	ed.RemoveItem("letterLines", 1)
	d, _ := ed.Draft()
	def := content.Default().LetterLines
	want := []string{def[0], def[2], def[3]}
	if !reflect.DeepEqual(d.LetterLines, want) {
		t.Fatalf("expected %v, got %v", want, d.LetterLines)
	}
}

func TestEditErrors(t *testing.T) {
	ed, _, _, _ := newEditor(t)
	ed.Open()
	if err := ed.SetField("nope", "x"); !errors.Is(err, editor.ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := ed.AppendItem("recipientName", "x"); !errors.Is(err, editor.ErrUnknownField) {
		t.Fatalf("scalar as list: expected ErrUnknownField, got %v", err)
	}
	if err := ed.SetItem("reasons", 99, "x"); !errors.Is(err, editor.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
	if err := ed.RemoveItem("photos", -1); !errors.Is(err, editor.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestSaveStorageFullKeepsDraftForRetry(t *testing.T) {
	ed, store, kv, _ := newEditor(t)
	ed.Open()
	ed.SetField("recipientName", "Casey")

	kv.FailSet = func(string, string) error { return kvstore.ErrQuotaExceeded }
	_, err := ed.Save()
	if !errors.Is(err, configstore.ErrStorageFull) {
		t.Fatalf("expected ErrStorageFull, got %v", err)
	}
	if !ed.IsOpen() || ed.Notice() != editor.NoticeStorageFull {
		t.Fatalf("panel should stay open with notice, open=%v notice=%q", ed.IsOpen(), ed.Notice())
	}
	if store.Get().RecipientName == "Casey" {
		t.Fatal("live bundle must not change on storage full")
	}
	d, _ := ed.Draft()
	if d.RecipientName != "Casey" {
		t.Fatalf("draft lost on storage full, got %q", d.RecipientName)
	}

	kv.FailSet = nil
	if _, err := ed.Save(); err != nil {
		t.Fatalf("retry should succeed, got %v", err)
	}
	if store.Get().RecipientName != "Casey" {
		t.Fatal("retry did not commit")
	}
}

func TestSaveValidationErrorKeepsPanelOpen(t *testing.T) {
	ed, _, _, _ := newEditor(t)
	ed.Open()
	ed.AppendItem("letterLines", "")
	if _, err := ed.Save(); !errors.Is(err, content.ErrInvalidBundle) {
		t.Fatalf("expected ErrInvalidBundle, got %v", err)
	}
	if !ed.IsOpen() || ed.Notice() == "" {
		t.Fatal("validation failure should keep panel open with a notice")
	}
}

func TestResetNeedsConfirmation(t *testing.T) {
	ed, store, _, _ := newEditor(t)
	ed.Open()
	ed.SetField("recipientName", "Ash")
	ed.Save()
	ed.Open()
	ed.SetField("recipientName", "Draft")

	if _, err := ed.Reset(false); !errors.Is(err, editor.ErrNotConfirmed) {
		t.Fatalf("expected ErrNotConfirmed, got %v", err)
	}
	if store.Get().RecipientName != "Ash" {
		t.Fatal("unconfirmed reset must not change anything")
	}

	live, err := ed.Reset(true)
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if !reflect.DeepEqual(live, content.Default()) {
		t.Fatal("reset should return defaults")
	}
	d, _ := ed.Draft()
	if !reflect.DeepEqual(d, content.Default()) {
		t.Fatalf("draft should restart from defaults, got %q", d.RecipientName)
	}
}

func TestAddPhotosAppendsInOrder(t *testing.T) {
	ed, _, _, ing := newEditor(t)
	ing.batch = imageingest.Batch{
		Photos:   []string{"data:image/jpeg;base64,AA", "data:image/jpeg;base64,BB"},
		Captions: []string{"", ""},
	}
	ed.Open()
	before, _ := ed.Draft()

	if _, err := ed.AddPhotos(context.Background(), nil); err != nil {
		t.Fatalf("AddPhotos: %v", err)
	}
	d, _ := ed.Draft()
	if len(d.Photos) != len(before.Photos)+2 || len(d.PhotoCaptions) != len(before.PhotoCaptions)+2 {
		t.Fatalf("expected two appended photos, got %d", len(d.Photos))
	}
	if d.Photos[len(d.Photos)-2] != "data:image/jpeg;base64,AA" || d.Photos[len(d.Photos)-1] != "data:image/jpeg;base64,BB" {
		t.Fatal("photos appended out of order")
	}

	entries, _ := ed.PhotoEntries()
	last := entries[len(entries)-1]
	if !last.Embedded || entries[0].Embedded {
		t.Fatalf("embedded flags wrong: first=%+v last=%+v", entries[0], last)
	}
}

func TestAddPhotosCatastrophicFailureLeavesDraft(t *testing.T) {
	ed, _, _, ing := newEditor(t)
	ing.err = imageingest.ErrNothingIngested
	ed.Open()
	before, _ := ed.Draft()

	if _, err := ed.AddPhotos(context.Background(), nil); !errors.Is(err, imageingest.ErrNothingIngested) {
		t.Fatalf("expected ErrNothingIngested, got %v", err)
	}
	after, _ := ed.Draft()
	if !reflect.DeepEqual(before, after) {
		t.Fatal("failed upload changed the draft")
	}
	if ed.Notice() != editor.NoticeUploadFailed {
		t.Fatalf("expected upload notice, got %q", ed.Notice())
	}
}

func TestRemovePhotoKeepsCaptionsAligned(t *testing.T) {
	ed, _, _, _ := newEditor(t)
	ed.Open()
	def := content.Default()

	if err := ed.RemovePhoto(0); err != nil {
		t.Fatalf("RemovePhoto: %v", err)
	}
	entries, _ := ed.PhotoEntries()
	if entries[0].Ref != def.Photos[1] || entries[0].Caption != def.PhotoCaptions[1] {
		t.Fatalf("entry 0 = %q/%q, want %q/%q", entries[0].Ref, entries[0].Caption, def.Photos[1], def.PhotoCaptions[1])
	}

	// The generic list op on photos keeps the pairing too.
	if err := ed.RemoveItem("photos", 0); err != nil {
		t.Fatalf("RemoveItem: %v", err)
	}
	d, _ := ed.Draft()
	if len(d.Photos) != len(d.PhotoCaptions) {
		t.Fatalf("photos %d, captions %d", len(d.Photos), len(d.PhotoCaptions))
	}
	if d.PhotoCaptions[0] != def.PhotoCaptions[2] {
		t.Fatalf("caption 0 = %q, want %q", d.PhotoCaptions[0], def.PhotoCaptions[2])
	}
}

func TestRemovePhotoWithFewerCaptions(t *testing.T) {
	ed, store, _, _ := newEditor(t)
	photos := []string{"a.jpg", "b.jpg", "c.jpg"}
	captions := []string{"only"}
	if _, err := store.Save(content.Partial{Photos: &photos, PhotoCaptions: &captions}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ed.Open()

	if err := ed.RemovePhoto(2); err != nil {
		t.Fatalf("RemovePhoto: %v", err)
	}
	d, _ := ed.Draft()
	if !reflect.DeepEqual(d.Photos, []string{"a.jpg", "b.jpg"}) || !reflect.DeepEqual(d.PhotoCaptions, captions) {
		t.Fatalf("got photos %v captions %v", d.Photos, d.PhotoCaptions)
	}
	if err := ed.RemovePhoto(2); !errors.Is(err, editor.ErrIndexOutOfRange) {
		t.Fatalf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestAppendPhotoAddsEmptyCaption(t *testing.T) {
	ed, _, _, _ := newEditor(t)
	ed.Open()
	if err := ed.AppendPhoto("beach.jpeg"); err != nil {
		t.Fatalf("AppendPhoto: %v", err)
	}
	if err := ed.AppendItem("photos", "park.jpeg"); err != nil {
		t.Fatalf("AppendItem: %v", err)
	}
	d, _ := ed.Draft()
	if len(d.Photos) != len(d.PhotoCaptions) {
		t.Fatalf("photos %d, captions %d", len(d.Photos), len(d.PhotoCaptions))
	}
	if got := d.PhotoCaptions[len(d.PhotoCaptions)-1]; got != "" {
		t.Fatalf("new caption = %q, want empty", got)
	}
}

func TestAddPhotosDroppedWhenDraftRestarted(t *testing.T) {
	ed, _, _, ing := newEditor(t)
	ing.batch = imageingest.Batch{Photos: []string{"data:image/jpeg;base64,AA"}, Captions: []string{""}}
	ed.Open()
	ing.during = func() {
		ed.Cancel()
		ed.Open()
	}

	if _, err := ed.AddPhotos(context.Background(), nil); !errors.Is(err, editor.ErrDraftReplaced) {
		t.Fatalf("expected ErrDraftReplaced, got %v", err)
	}
	d, _ := ed.Draft()
	if len(d.Photos) != len(content.Default().Photos) {
		t.Fatalf("restarted draft gained photos: %d", len(d.Photos))
	}
}
