package speciesref

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestIsGzip(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{
			"gzip content with a .fa extension",
			writeGzip(t, dir, "h.fa", ">h\nACGT\n"),
			true,
		},
		{
			"plain text with a .gz extension",
			writeFile(t, dir, "m.fa.gz", ">m\nACGT\n"),
			false,
		},
		{
			"gzip content with a .gz extension",
			writeGzip(t, dir, "r.gtf.gz", "chr1\tsrc\texon\n"),
			true,
		},
		{
			"empty file",
			writeFile(t, dir, "empty.fa", ""),
			false,
		},
		{
			"one byte of the magic number",
			writeFile(t, dir, "short.fa", "\x1f"),
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsGzip(tt.path)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("IsGzip(%s) = %v, want %v", filepath.Base(tt.path), got, tt.want)
			}
		})
	}

	if _, err := IsGzip(filepath.Join(dir, "missing.fa")); KindOf(err) != KindFilesystem {
		t.Errorf("IsGzip() of a missing file = %v, want a filesystem error", err)
	}
}

func TestToolbox_EnsureUncompressed(t *testing.T) {
	dir := t.TempDir()
	prefix := filepath.Join(dir, "ref")
	ctx := context.Background()

	t.Run("plain input is passed through", func(t *testing.T) {
		r := newFakeRunner()
		tb := newTestToolbox(r, allTools...)
		tr := NewTracker()
		plain := writeFile(t, dir, "m.fa.gz", ">m\nACGT\n")

		got, err := tb.EnsureUncompressed(ctx, tr, plain, prefix, 0, DecompressedFasta)
		if err != nil {
			t.Fatal(err)
		}
		if got != plain {
			t.Errorf("EnsureUncompressed() = %s, want %s", got, plain)
		}
		if len(tr.Artifacts()) != 0 || len(r.calls) != 0 {
			t.Errorf("plain input tracked %+v and ran %+v", tr.Artifacts(), r.calls)
		}
	})

	t.Run("gzipped input is decompressed and tracked", func(t *testing.T) {
		r := newFakeRunner()
		tb := newTestToolbox(r, allTools...)
		tr := NewTracker()
		gz := writeGzip(t, dir, "h.fa.gz", ">h\nACGT\n")

		got, err := tb.EnsureUncompressed(ctx, tr, gz, prefix, 1, DecompressedFasta)
		if err != nil {
			t.Fatal(err)
		}

		want := prefix + ".h.fa"
		if got != want {
			t.Errorf("EnsureUncompressed() = %s, want %s", got, want)
		}
		if b, err := os.ReadFile(got); err != nil || string(b) != ">h\nACGT\n" {
			t.Errorf("decompressed contents = %q, %v", b, err)
		}

		artifacts := tr.Artifacts()
		if len(artifacts) != 1 || artifacts[0] != (Artifact{Path: want, Species: 1, Stage: DecompressedFasta, Temporary: true}) {
			t.Errorf("Artifacts() = %+v", artifacts)
		}
		if c := r.callsTo(gunzip); len(c) != 1 || c[0].args[0] != "-c" || c[0].args[1] != gz {
			t.Errorf("gunzip calls = %+v, want [-c %s]", c, gz)
		}
	})

	t.Run("gzipped input without gunzip", func(t *testing.T) {
		r := newFakeRunner()
		tb := newTestToolbox(r, gffread, fastk, uniqueKmers)
		tr := NewTracker()
		gz := writeGzip(t, dir, "x.fa", ">x\nACGT\n")

		_, err := tb.EnsureUncompressed(ctx, tr, gz, prefix, 0, DecompressedFasta)
		if KindOf(err) != KindToolMissing {
			t.Errorf("EnsureUncompressed() = %v, want a missing tool error", err)
		}
		if len(tr.Artifacts()) != 0 || exists(prefix+".x.fa") {
			t.Error("a temporary was created without gunzip")
		}
	})

	t.Run("gunzip fails", func(t *testing.T) {
		r := newFakeRunner()
		r.fail[gunzip] = func([]string) bool { return true }
		tb := newTestToolbox(r, allTools...)
		tr := NewTracker()
		gz := writeGzip(t, dir, "y.gtf.gz", "chr1\n")

		_, err := tb.EnsureUncompressed(ctx, tr, gz, prefix, 0, DecompressedGTF)
		if KindOf(err) != KindToolFailed {
			t.Errorf("EnsureUncompressed() = %v, want a failed tool error", err)
		}
		if pending := tr.Pending(); len(pending) != 1 || pending[0].Path != prefix+".y.gtf" {
			t.Errorf("Pending() = %+v, want the partial output tracked", pending)
		}
	})
}

func Test_decompressedPath(t *testing.T) {
	tests := []struct {
		path, prefix, want string
	}{
		{"/data/hg38.fa.gz", "out/ref", "out/ref.hg38.fa"},
		{"mm39.gtf", "ref", "ref.mm39.gtf"},
		{"a.gz.fa", "ref", "ref.a.gz.fa"},
	}
	for _, tt := range tests {
		if got := decompressedPath(tt.path, tt.prefix); got != tt.want {
			t.Errorf("decompressedPath(%s, %s) = %s, want %s", tt.path, tt.prefix, got, tt.want)
		}
	}
}
