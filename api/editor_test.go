package api_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"valentine/api"
)

type editorResp struct {
	Open   bool   `json:"open"`
	Notice string `json:"notice"`
	Draft  *struct {
		RecipientName string   `json:"recipientName"`
		Photos        []string `json:"photos"`
		PhotoCaptions []string `json:"photoCaptions"`
	} `json:"draft"`
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

func decodeEditor(t *testing.T, resp *http.Response) editorResp {
	t.Helper()
	defer resp.Body.Close()
	var e editorResp
	if err := json.NewDecoder(resp.Body).Decode(&e); err != nil {
		t.Fatalf("decode editor: %v", err)
	}
	return e
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return buf.Bytes()
}

type upload struct {
	name, contentType string
	data              []byte
}

func postFiles(t *testing.T, url string, files []upload) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="files"; filename="`+f.name+`"`)
		hdr.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		part.Write(f.data)
	}
	mw.Close()

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestEditorRequiresOpen(t *testing.T) {
	env := newTestServer(t)
	v := env.create(t)

	resp := doJSON(t, http.MethodPatch, env.srv.URL+"/api/sessions/"+v.ID+"/editor", `{"op":"set","field":"recipientName","value":"Kai"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 while closed, got %d", resp.StatusCode)
	}
}

func TestEditorEditAndSave(t *testing.T) {
	env := newTestServer(t)
	v := env.create(t)
	base := env.srv.URL + "/api/sessions/" + v.ID + "/editor"

	e := decodeEditor(t, doJSON(t, http.MethodPost, base, ""))
	if !e.Open || e.Draft == nil {
		t.Fatalf("expected open panel with draft, got %+v", e)
	}

	e = decodeEditor(t, doJSON(t, http.MethodPatch, base, `{"op":"set","field":"recipientName","value":"Kai"}`))
	if e.Draft.RecipientName != "Kai" {
		t.Fatalf("draft recipient = %q", e.Draft.RecipientName)
	}

	// The live bundle is untouched until save.
	b := decodeBundle(t, doJSON(t, http.MethodGet, env.srv.URL+"/api/config", ""))
	if b.RecipientName == "Kai" {
		t.Fatal("draft edits must not leak into the live bundle")
	}

	resp := doJSON(t, http.MethodPatch, base, `{"op":"set","field":"nope","value":"x"}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", resp.StatusCode)
	}

	b = decodeBundle(t, doJSON(t, http.MethodPost, base+"/save", ""))
	if b.RecipientName != "Kai" {
		t.Fatalf("saved recipient = %q", b.RecipientName)
	}

	got := decodeView(t, doJSON(t, http.MethodGet, env.srv.URL+"/api/sessions/"+v.ID, ""))
	if got.Editor.Open {
		t.Fatal("panel should close after save")
	}
	if got.Content.RecipientName != "Kai" {
		t.Fatalf("session content = %q", got.Content.RecipientName)
	}
}

func TestEditorCancelDiscardsDraft(t *testing.T) {
	env := newTestServer(t)
	v := env.create(t)
	base := env.srv.URL + "/api/sessions/" + v.ID + "/editor"

	decodeEditor(t, doJSON(t, http.MethodPost, base, ""))
	decodeEditor(t, doJSON(t, http.MethodPatch, base, `{"op":"set","field":"recipientName","value":"Kai"}`))

	resp := doJSON(t, http.MethodPost, base+"/cancel", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	e := decodeEditor(t, doJSON(t, http.MethodPost, base, ""))
	if e.Draft.RecipientName == "Kai" {
		t.Fatal("reopening should start from the live bundle")
	}
}

func TestEditorSaveStorageFull(t *testing.T) {
	env := newTestEnv(t, 256)
	v := env.create(t)
	base := env.srv.URL + "/api/sessions/" + v.ID + "/editor"

	decodeEditor(t, doJSON(t, http.MethodPost, base, ""))
	resp := doJSON(t, http.MethodPost, base+"/save", "")
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}

	e := decodeEditor(t, doJSON(t, http.MethodGet, base, ""))
	if !e.Open {
		t.Fatal("panel must stay open after a storage failure")
	}
	if !strings.Contains(e.Notice, "Storage full") {
		t.Fatalf("notice = %q", e.Notice)
	}
}

func TestEditorResetNeedsConfirmation(t *testing.T) {
	env := newTestServer(t)
	v := env.create(t)
	base := env.srv.URL + "/api/sessions/" + v.ID + "/editor"

	resp := doJSON(t, http.MethodPost, base+"/reset", `{}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusPreconditionRequired {
		t.Fatalf("expected 428, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, base+"/reset", `{"confirm":true}`)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestEditorUploadPhotos(t *testing.T) {
	env := newTestServer(t)
	v := env.create(t)
	base := env.srv.URL + "/api/sessions/" + v.ID + "/editor"

	e := decodeEditor(t, doJSON(t, http.MethodPost, base, ""))
	before := len(e.Draft.Photos)

	e = decodeEditor(t, postFiles(t, base+"/photos", []upload{
		{name: "wide.png", contentType: "image/png", data: pngBytes(t, 1600, 400)},
		{name: "notes.txt", contentType: "text/plain", data: []byte("hello")},
	}))
	if e.Added != 1 || e.Skipped != 1 {
		t.Fatalf("added=%d skipped=%d", e.Added, e.Skipped)
	}
	if got := len(e.Draft.Photos); got != before+1 {
		t.Fatalf("photos = %d, want %d", got, before+1)
	}
	last := e.Draft.Photos[len(e.Draft.Photos)-1]
	if !strings.HasPrefix(last, "data:image/jpeg;base64,") {
		t.Fatalf("expected embedded jpeg, got %.30q", last)
	}
	if len(e.Draft.PhotoCaptions) != len(e.Draft.Photos) {
		t.Fatalf("captions %d, photos %d", len(e.Draft.PhotoCaptions), len(e.Draft.Photos))
	}
}

func TestEditorUploadAllBroken(t *testing.T) {
	env := newTestServer(t)
	v := env.create(t)
	base := env.srv.URL + "/api/sessions/" + v.ID + "/editor"

	decodeEditor(t, doJSON(t, http.MethodPost, base, ""))
	resp := postFiles(t, base+"/photos", []upload{
		{name: "broken.png", contentType: "image/png", data: []byte("not a png")},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
}

func TestEditorRemovePhotoKeepsCaptions(t *testing.T) {
	env := newTestServer(t)
	v := env.create(t)
	base := env.srv.URL + "/api/sessions/" + v.ID + "/editor"

	e := decodeEditor(t, doJSON(t, http.MethodPost, base, ""))
	second := e.Draft.PhotoCaptions[1]

	e = decodeEditor(t, doJSON(t, http.MethodPatch, base, `{"op":"removePhoto","index":0}`))
	if len(e.Draft.Photos) != len(e.Draft.PhotoCaptions) {
		t.Fatalf("photos %d, captions %d", len(e.Draft.Photos), len(e.Draft.PhotoCaptions))
	}
	if e.Draft.PhotoCaptions[0] != second {
		t.Fatalf("caption 0 = %q, want %q", e.Draft.PhotoCaptions[0], second)
	}

	e = decodeEditor(t, doJSON(t, http.MethodPatch, base, `{"op":"appendPhoto","value":"beach.jpeg"}`))
	if got := e.Draft.Photos[len(e.Draft.Photos)-1]; got != "beach.jpeg" {
		t.Fatalf("last photo = %q", got)
	}
	if len(e.Draft.Photos) != len(e.Draft.PhotoCaptions) {
		t.Fatalf("photos %d, captions %d after append", len(e.Draft.Photos), len(e.Draft.PhotoCaptions))
	}
}

func TestEditorUploadTooLarge(t *testing.T) {
	defer api.SetMaxUploadBytes(1024)()
	env := newTestServer(t)
	v := env.create(t)
	base := env.srv.URL + "/api/sessions/" + v.ID + "/editor"

	decodeEditor(t, doJSON(t, http.MethodPost, base, ""))
	resp := postFiles(t, base+"/photos", []upload{
		{name: "big.png", contentType: "image/png", data: bytes.Repeat([]byte{0}, 4096)},
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
}
