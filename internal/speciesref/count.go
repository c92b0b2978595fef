package speciesref

import (
	"context"
	"fmt"
	"path/filepath"
)

// tablePath is the FastK table of a species, as passed to get_unique_kmers.
func tablePath(prefix string, species int) string {
	return tablePrefix(prefix, species) + ".ktab"
}

// CountKmers counts the k-mers of the i-th species' FASTA with FastK, on a
// single thread, and returns the path to the table.
//
// FastK doesn't document the full set of files it writes beside the table,
// so whatever it left under the table's prefix is tracked afterwards too.
func (tb *Toolbox) CountKmers(ctx context.Context, t *Tracker, fasta, prefix string, k, i int) (string, error) {
	bin, err := tb.resolve(fastk)
	if err != nil {
		return "", err
	}

	table := tablePath(prefix, i)
	t.Track(Artifact{Path: table, Species: i, Stage: KmerTable, Temporary: true})

	tb.log.Printf("Counting k-mers in %s...", fasta)
	args := []string{
		"-N" + tablePrefix(prefix, i),
		fmt.Sprintf("-k%d", k),
		"-t1",
		fasta,
	}
	err = tb.runner.Run(ctx, bin, args, nil)

	// track siblings even when FastK failed part way through
	for _, pattern := range sweepPatterns(prefix, i) {
		matches, gerr := filepath.Glob(pattern)
		if gerr != nil {
			continue
		}
		for _, match := range matches {
			t.Track(Artifact{Path: match, Species: i, Stage: KmerTable, Temporary: true})
		}
	}

	if err != nil {
		return "", err
	}
	return table, nil
}
