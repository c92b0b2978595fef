package speciesref

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Cleanup removes every temporary tracked in t, then sweeps the files FastK
// may have written for each of n species under prefix, tracked or not:
// {prefix}.fastk.{i}.* and their hidden .{prefix}.fastk.{i}.* siblings.
//
// Files that are already gone are skipped, so Cleanup can be called any
// number of times. Every path is attempted before failures are reported.
func Cleanup(t *Tracker, n int, prefix string) error {
	var failed []error
	attempted := make(map[string]bool)

	if t != nil {
		for _, a := range t.Pending() {
			attempted[a.Path] = true
			if err := t.Release(a.Path); err != nil {
				failed = append(failed, err)
			}
		}
	}

	for i := 0; i < n; i++ {
		for _, pattern := range sweepPatterns(prefix, i) {
			matches, err := filepath.Glob(pattern)
			if err != nil {
				failed = append(failed, fsErr(pattern, err))
				continue
			}

			for _, match := range matches {
				if attempted[match] {
					continue
				}
				attempted[match] = true
				if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
					failed = append(failed, fsErr(match, err))
				}
			}
		}
	}

	switch len(failed) {
	case 0:
		return nil
	case 1:
		return failed[0]
	}

	msgs := make([]string, len(failed))
	for i, err := range failed {
		msgs[i] = err.Error()
	}
	return fsErr(prefix, errors.Errorf("failed to remove %d intermediate files: %s", len(failed), strings.Join(msgs, "; ")))
}

// tablePrefix is the -N argument FastK gets for a species.
func tablePrefix(prefix string, species int) string {
	return fmt.Sprintf("%s.fastk.%d", prefix, species)
}

// sweepPatterns are the globs matching FastK output for a species. FastK
// writes the table's data files hidden, in the same directory as the table.
func sweepPatterns(prefix string, species int) []string {
	dir, base := filepath.Split(tablePrefix(prefix, species))
	return []string{
		globEscape(dir) + globEscape(base) + ".*",
		globEscape(dir) + "." + globEscape(base) + ".*",
	}
}

// globEscape quotes the characters filepath.Match treats as special.
func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
