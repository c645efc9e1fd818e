package provision

import (
	"errors"
	"testing"
)

func TestParseArtifactRef(t *testing.T) {
	t.Run("archive URL", func(t *testing.T) {
		ref, err := ParseArtifactRef("https://alphacephei.com/vosk/models/vosk-model-small-en-us-0.15.zip")
		if err != nil {
			t.Fatalf("ParseArtifactRef() error = %v", err)
		}
		if ref.Kind != SourceArchive {
			t.Errorf("Kind = %q, want %q", ref.Kind, SourceArchive)
		}
		if ref.Name != "vosk-model-small-en-us-0.15" {
			t.Errorf("Name = %q, want %q", ref.Name, "vosk-model-small-en-us-0.15")
		}
	})

	t.Run("archive URL with tar.gz suffix", func(t *testing.T) {
		ref, err := ParseArtifactRef("http://example.com/models/whisper-tiny.tar.gz")
		if err != nil {
			t.Fatalf("ParseArtifactRef() error = %v", err)
		}
		if ref.Kind != SourceArchive {
			t.Errorf("Kind = %q, want %q", ref.Kind, SourceArchive)
		}
		if ref.Name != "whisper-tiny" {
			t.Errorf("Name = %q, want %q", ref.Name, "whisper-tiny")
		}
	})

	t.Run("archive URL without basename is invalid", func(t *testing.T) {
		_, err := ParseArtifactRef("https://example.com/")
		if !errors.Is(err, ErrInvalidRef) {
			t.Errorf("ParseArtifactRef() error = %v, want ErrInvalidRef", err)
		}
	})

	t.Run("model identifier", func(t *testing.T) {
		ref, err := ParseArtifactRef("Helsinki-NLP/opus-mt-en-es")
		if err != nil {
			t.Fatalf("ParseArtifactRef() error = %v", err)
		}
		if ref.Kind != SourceToolchain {
			t.Errorf("Kind = %q, want %q", ref.Kind, SourceToolchain)
		}
		if ref.Name != "Helsinki-NLP--opus-mt-en-es" {
			t.Errorf("Name = %q, want %q", ref.Name, "Helsinki-NLP--opus-mt-en-es")
		}
		if ref.Locator != "Helsinki-NLP/opus-mt-en-es" {
			t.Errorf("Locator = %q, want original identifier", ref.Locator)
		}
	})

	t.Run("empty is invalid", func(t *testing.T) {
		_, err := ParseArtifactRef("")
		if !errors.Is(err, ErrInvalidRef) {
			t.Errorf("ParseArtifactRef() error = %v, want ErrInvalidRef", err)
		}
	})

	t.Run("identifier with spaces is invalid", func(t *testing.T) {
		_, err := ParseArtifactRef("not a model")
		if !errors.Is(err, ErrInvalidRef) {
			t.Errorf("ParseArtifactRef() error = %v, want ErrInvalidRef", err)
		}
	})
}

func TestArchiveName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/vosk/models/vosk-model-small-en-us-0.15.zip", "vosk-model-small-en-us-0.15"},
		{"/models/whisper.tgz", "whisper"},
		{"/models/whisper.tar.gz", "whisper"},
		{"/plain-file", "plain-file"},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := archiveName(tt.path); got != tt.want {
			t.Errorf("archiveName(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestArtifactRefString(t *testing.T) {
	ref := ArtifactRef{Kind: SourceToolchain, Locator: "Helsinki-NLP/opus-mt-en-es", Name: "x"}
	if got := ref.String(); got != "Helsinki-NLP/opus-mt-en-es" {
		t.Errorf("String() = %q, want locator", got)
	}
}
