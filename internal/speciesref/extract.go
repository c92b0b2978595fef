package speciesref

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// transcriptPath is where gffread writes a species' transcripts.
func transcriptPath(prefix string, species int) string {
	return fmt.Sprintf("%s.tx.%d.fasta", prefix, species)
}

// ExtractTranscripts runs gffread on each species' genome and annotation,
// in order, and returns the transcript FASTAs in the same order. The
// transcript FASTAs are temporaries; they're removed by the final cleanup.
//
// This is the sequential form of the stage. Pipeline.Run calls
// ExtractTranscript per species instead, so the stage can fan out over
// --threads and report progress per species.
func (tb *Toolbox) ExtractTranscripts(ctx context.Context, t *Tracker, species []Species, prefix string) ([]string, error) {
	txs := make([]string, len(species))
	for i, s := range species {
		tx, err := tb.ExtractTranscript(ctx, t, s, i, prefix)
		if err != nil {
			return nil, err
		}
		txs[i] = tx
	}
	return txs, nil
}

// ExtractTranscript writes the transcripts of the i-th species to
// {prefix}.tx.{i}.fasta. gffread can't read gzipped input, so gzipped
// genomes and annotations are decompressed first and removed as soon as
// gffread is done with them.
func (tb *Toolbox) ExtractTranscript(ctx context.Context, t *Tracker, s Species, i int, prefix string) (tx string, err error) {
	bin, err := tb.resolve(gffread)
	if err != nil {
		return "", err
	}

	var temps []string
	defer func() {
		for _, tmp := range temps {
			if rerr := t.Release(tmp); rerr != nil && err == nil {
				err = rerr
			}
		}
	}()

	fasta, err := tb.EnsureUncompressed(ctx, t, s.Fasta, prefix, i, DecompressedFasta)
	if err != nil {
		return "", err
	}
	if fasta != s.Fasta {
		temps = append(temps, fasta)
	}

	gtf, err := tb.EnsureUncompressed(ctx, t, s.GTF, prefix, i, DecompressedGTF)
	if err != nil {
		return "", err
	}
	if gtf != s.GTF {
		temps = append(temps, gtf)
	}

	tx = transcriptPath(prefix, i)
	if !t.Track(Artifact{Path: tx, Species: i, Stage: TranscriptFasta, Temporary: true}) {
		return "", fsErr(tx, errors.Errorf("already in use by another %s", TranscriptFasta))
	}

	tb.log.Printf("Extracting transcripts from %s and %s...", fasta, gtf)
	if err := tb.runner.Run(ctx, bin, []string{"-F", "-w", tx, "-g", fasta, gtf}, nil); err != nil {
		return "", err
	}

	return tx, nil
}
