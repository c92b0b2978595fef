package speciesref

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// gzipMagic is the first two bytes of every gzip stream
var gzipMagic = []byte{0x1f, 0x8b}

// IsGzip returns whether the file at path is gzip compressed. It looks at
// the file's first two bytes, never its name.
func IsGzip(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, fsErr(path, err)
	}
	defer f.Close()

	head := make([]byte, len(gzipMagic))
	if _, err := io.ReadFull(f, head); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return false, nil // too short to be gzip
		}
		return false, fsErr(path, err)
	}

	return bytes.Equal(head, gzipMagic), nil
}

// decompressedPath is where a gzipped input is decompressed to:
// {prefix}.{basename without .gz}
func decompressedPath(path, prefix string) string {
	return fmt.Sprintf("%s.%s", prefix, strings.TrimSuffix(filepath.Base(path), ".gz"))
}

// EnsureUncompressed returns a path to a plain-text version of the file at
// path. If it's gzipped, it's decompressed with gunzip to a temporary that's
// tracked in t for the species and stage. Otherwise path is returned as is:
// inputs are never owned or removed by the pipeline.
func (tb *Toolbox) EnsureUncompressed(ctx context.Context, t *Tracker, path, prefix string, species int, stage Stage) (string, error) {
	compressed, err := IsGzip(path)
	if err != nil || !compressed {
		return path, err
	}

	gz, err := tb.resolve(gunzip)
	if err != nil {
		return "", err
	}

	tmp := decompressedPath(path, prefix)
	if !t.Track(Artifact{Path: tmp, Species: species, Stage: stage, Temporary: true}) {
		return "", fsErr(tmp, errors.Errorf("already in use by another %s", stage))
	}

	tb.log.Printf("%s is gzipped. Unzipping to %s...", path, tmp)
	out, err := os.Create(tmp)
	if err != nil {
		return "", fsErr(tmp, err)
	}

	runErr := tb.runner.Run(ctx, gz, []string{"-c", path}, out)
	if err := out.Close(); err != nil && runErr == nil {
		runErr = fsErr(tmp, err)
	}
	if runErr != nil {
		return "", runErr
	}

	return tmp, nil
}
