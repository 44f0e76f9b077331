package tags

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"go.senan.xyz/taglib"

	"github.com/desertthunder/ytbeets/internal/shared"
)

// createMinimalMP3 writes a single MPEG1 Layer3 frame (128kbps, 44100Hz, stereo).
func createMinimalMP3(t *testing.T, path string) {
	t.Helper()
	frame := make([]byte, 417)
	frame[0] = 0xff
	frame[1] = 0xfb
	frame[2] = 0x90
	frame[3] = 0x00

	if err := os.WriteFile(path, frame, 0o600); err != nil {
		t.Fatalf("failed to create test MP3: %v", err)
	}
}

// createMinimalFLAC writes a FLAC stream with a STREAMINFO block (44100Hz, stereo, 16 bit,
// no frames) followed by a padding block.
func createMinimalFLAC(t *testing.T, path string) {
	t.Helper()
	data := []byte("fLaC")
	data = append(data, 0x00, 0x00, 0x00, 0x22)
	data = append(data,
		0x10, 0x00, 0x10, 0x00, // min/max block size 4096
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // min/max frame size unknown
		0x0a, 0xc4, 0x42, 0xf0, 0x00, 0x00, 0x00, 0x00,
	)
	data = append(data, make([]byte, 16)...) // md5
	data = append(data, 0x81, 0x00, 0x00, 0x10)
	data = append(data, make([]byte, 16)...)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to create test FLAC: %v", err)
	}
}

func TestWriter(t *testing.T) {
	t.Run("keys", func(t *testing.T) {
		w := NewWriter("")
		if w.Field() != "ydl" || w.Key() != "YDL" || w.URLKey() != "YDL_URL" {
			t.Errorf("unexpected keys %s %s %s", w.Field(), w.Key(), w.URLKey())
		}
	})

	t.Run("MP3 round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "dQw4w9WgXcQ.mp3")
		createMinimalMP3(t, path)

		w := NewWriter("ydl")
		if err := w.WriteSource(path, "dQw4w9WgXcQ", "https://music.youtube.com/watch?v=dQw4w9WgXcQ"); err != nil {
			t.Fatalf("WriteSource failed: %v", err)
		}

		got, err := w.ReadSource(path)
		if err != nil {
			t.Fatalf("ReadSource failed: %v", err)
		}
		if got != "dQw4w9WgXcQ" {
			t.Errorf("expected dQw4w9WgXcQ, got %q", got)
		}
	})

	t.Run("MP3 keeps other frames and replaces its own", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.mp3")
		createMinimalMP3(t, path)

		tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		tag.SetTitle("Keep Me")
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{Encoding: id3v2.EncodingUTF8, Description: "OTHER", Value: "x"})
		if err := tag.Save(); err != nil {
			t.Fatalf("save: %v", err)
		}
		tag.Close()

		w := NewWriter("ydl")
		w.WriteSource(path, "first", "")
		if err := w.WriteSource(path, "second", ""); err != nil {
			t.Fatalf("WriteSource failed: %v", err)
		}

		tag, err = id3v2.Open(path, id3v2.Options{Parse: true})
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		defer tag.Close()

		if tag.Title() != "Keep Me" {
			t.Errorf("title frame was lost, got %q", tag.Title())
		}

		values := map[string]string{}
		for _, f := range tag.GetFrames("TXXX") {
			txxx := f.(id3v2.UserDefinedTextFrame)
			if _, dup := values[txxx.Description]; dup {
				t.Errorf("duplicate TXXX frame %s", txxx.Description)
			}
			values[txxx.Description] = txxx.Value
		}
		if values["YDL"] != "second" || values["OTHER"] != "x" {
			t.Errorf("unexpected TXXX frames %v", values)
		}
	})

	t.Run("ReadSource on untagged MP3", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.mp3")
		createMinimalMP3(t, path)

		got, err := NewWriter("ydl").ReadSource(path)
		if err != nil || got != "" {
			t.Errorf("expected empty source, got %q (%v)", got, err)
		}
	})

	t.Run("unsupported format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.webm")
		os.WriteFile(path, []byte("x"), 0o600)

		w := NewWriter("ydl")
		if err := w.WriteSource(path, "id", ""); !errors.Is(err, shared.ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
		if _, err := w.ReadSource(path); !errors.Is(err, shared.ErrUnsupportedFormat) {
			t.Errorf("expected ErrUnsupportedFormat, got %v", err)
		}
	})

	t.Run("empty source id", func(t *testing.T) {
		if err := NewWriter("ydl").WriteSource("/x/a.mp3", "", ""); !errors.Is(err, shared.ErrTagFailed) {
			t.Errorf("expected ErrTagFailed, got %v", err)
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.flac")
		os.WriteFile(path, []byte("not a flac"), 0o600)

		if err := NewWriter("ydl").WriteSource(path, "id", ""); !errors.Is(err, shared.ErrTagFailed) {
			t.Errorf("expected ErrTagFailed, got %v", err)
		}
	})

	t.Run("FLAC round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "a.flac")
		createMinimalFLAC(t, path)

		w := NewWriter("ydl")
		if err := w.WriteSource(path, "OLAK5uy_x", "https://music.youtube.com/playlist?list=OLAK5uy_x"); err != nil {
			t.Fatalf("WriteSource failed: %v", err)
		}
		got, err := w.ReadSource(path)
		if err != nil || got != "OLAK5uy_x" {
			t.Errorf("expected OLAK5uy_x, got %q (%v)", got, err)
		}

		tags, err := taglib.ReadTags(path)
		if err != nil {
			t.Fatalf("ReadTags failed: %v", err)
		}
		if v := tags["YDL_URL"]; len(v) != 1 || v[0] != "https://music.youtube.com/playlist?list=OLAK5uy_x" {
			t.Errorf("unexpected URL tag %v", v)
		}
	})

	t.Run("FLAC keeps existing tags", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "b.flac")
		createMinimalFLAC(t, path)
		if err := taglib.WriteTags(path, map[string][]string{"TITLE": {"Keep Me"}}, 0); err != nil {
			t.Fatalf("seed tags: %v", err)
		}

		w := NewWriter("ydl")
		w.WriteSource(path, "first", "")
		if err := w.WriteSource(path, "second", ""); err != nil {
			t.Fatalf("WriteSource failed: %v", err)
		}

		tags, err := taglib.ReadTags(path)
		if err != nil {
			t.Fatalf("ReadTags failed: %v", err)
		}
		if v := tags["TITLE"]; len(v) != 1 || v[0] != "Keep Me" {
			t.Errorf("title was lost, got %v", v)
		}
		if v := tags["YDL"]; len(v) != 1 || v[0] != "second" {
			t.Errorf("expected a single replaced source id, got %v", v)
		}
	})
}
