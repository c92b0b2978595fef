package speciesref

import (
	"context"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/Pollen-lab/cellbouncer/config"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	// stderr is for logging to Stderr (without an annoying timestamp)
	stderr = log.New(os.Stderr, "", 0)
)

// parseCmdFlags gathers the species lists and settings from a cobra cmd
// and returns them validated.
func parseCmdFlags(cmd *cobra.Command) (*config.Config, []Species, error) {
	conf, err := config.New()
	if err != nil {
		return nil, nil, &Error{Kind: KindValidation, Err: err}
	}

	names, err := cmd.Flags().GetStringSlice("names")
	if err != nil {
		return nil, nil, validationErr("failed to parse species names: %v", err)
	}
	fastas, err := cmd.Flags().GetStringSlice("fasta")
	if err != nil {
		return nil, nil, validationErr("failed to parse FASTA paths: %v", err)
	}
	gtfs, err := cmd.Flags().GetStringSlice("gtf")
	if err != nil {
		return nil, nil, validationErr("failed to parse GTF paths: %v", err)
	}

	if sheet, _ := cmd.Flags().GetString("sheet"); sheet != "" {
		if len(names)+len(fastas)+len(gtfs) > 0 {
			return nil, nil, validationErr("--sheet cannot be combined with --names, --fasta or --gtf")
		}
		if names, fastas, gtfs, err = ReadSheet(sheet); err != nil {
			return nil, nil, err
		}
	}

	species, err := Validate(conf, names, fastas, gtfs)
	if err != nil {
		return nil, nil, err
	}
	return conf, species, nil
}

// BuildCmd builds a species reference from the species and settings of the
// species-ref command.
func BuildCmd(cmd *cobra.Command, args []string) error {
	start := time.Now()

	conf, species, err := parseCmdFlags(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	run := uuid.New().String()
	names := make([]string, len(species))
	for i, s := range species {
		names[i] = s.Name
	}
	stderr.Printf("Building a reference for %s under %s (run %s)", strings.Join(names, ", "), conf.Out, run)

	tools := NewToolbox(conf)
	var bars *Bars
	if conf.Progress {
		tools.SetLogger(log.New(io.Discard, "", 0))
		bars = NewBars(os.Stderr, species)
	}

	pipeline := NewPipeline(conf, species, tools)
	if bars != nil {
		pipeline.SetProgress(bars)
	}

	ref, err := pipeline.Run(ctx, NewTracker())
	if bars != nil {
		bars.Wait()
	}
	if err != nil {
		return err
	}

	manifest, err := writeJSON(run, start, conf, species, ref)
	if err != nil {
		return err
	}

	stderr.Printf("Wrote unique k-mers for %d species to %s.*.kmers (names in %s, manifest in %s)",
		len(ref.KmerFiles), ref.Prefix, ref.NamesFile, manifest)
	return nil
}

// CleanCmd removes the intermediates a build under --out would leave behind
// if it was killed before it could clean up after itself.
func CleanCmd(cmd *cobra.Command, args []string) error {
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		return validationErr("an output base name (--out) is required")
	}
	n, _ := cmd.Flags().GetInt("species")
	if n < 1 {
		return validationErr("number of species must be positive, got %d", n)
	}

	t := NewTracker()
	for i := 0; i < n; i++ {
		t.Track(Artifact{Path: transcriptPath(out, i), Species: i, Stage: TranscriptFasta, Temporary: true})
	}

	stderr.Printf("Removing intermediates of %d species under %s...", n, out)
	return Cleanup(t, n, out)
}
