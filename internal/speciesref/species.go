package speciesref

import (
	"os"
	"strings"

	"github.com/Pollen-lab/cellbouncer/config"
	"github.com/pkg/errors"
)

// Species is one species' input sequence, and optionally its annotation.
type Species struct {
	// Name as written to the .names file and reported by demux_species
	Name string

	// Fasta is a transcriptome, or a genome if GTF is set. May be gzipped
	Fasta string

	// GTF annotates Fasta for transcript extraction. Empty if absent
	GTF string
}

// annotated returns whether every species has an annotation. Annotation is
// all-or-nothing after Validate, so checking the first suffices.
func annotated(species []Species) bool {
	return len(species) > 0 && species[0].GTF != ""
}

// Validate checks the per-species lists and settings of a run and returns
// the species in the order they were named. It doesn't touch the filesystem
// beyond checking that tool overrides exist.
func Validate(conf *config.Config, names, fastas, gtfs []string) ([]Species, error) {
	if len(names) < 2 {
		return nil, validationErr("at least two species must be provided, got %d", len(names))
	}
	if len(names) != len(fastas) {
		return nil, validationErr("you must provide one name and one FASTA per species: %d names, %d FASTAs", len(names), len(fastas))
	}
	if len(gtfs) > 0 && len(gtfs) != len(fastas) {
		return nil, validationErr("if providing GTF files, you must provide one for each FASTA: %d GTFs, %d FASTAs", len(gtfs), len(fastas))
	}

	for _, flag := range []string{"gffread", "fastk", "unique-kmers", "gunzip"} {
		path, ok := conf.Tools.Overrides()[flag]
		if !ok {
			continue
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			return nil, &Error{Kind: KindValidation, Path: path, Err: errors.Wrapf(ErrToolNotFound, "--%s", flag)}
		}
	}

	seen := make(map[string]bool)
	for _, name := range names {
		if name == "" {
			return nil, validationErr("species names cannot be empty")
		}
		if strings.ContainsAny(name, " \t\r\n") {
			return nil, validationErr("species name %q contains whitespace", name)
		}
		if seen[name] {
			return nil, validationErr("species name %q given more than once", name)
		}
		seen[name] = true
	}
	for i, fasta := range fastas {
		if fasta == "" {
			return nil, validationErr("empty FASTA path for %s", names[i])
		}
		if len(gtfs) > 0 && gtfs[i] == "" {
			return nil, validationErr("empty GTF path for %s", names[i])
		}
	}

	if conf.Out == "" {
		return nil, validationErr("an output base name (--out) is required")
	}
	if conf.KmerLength <= 0 {
		return nil, validationErr("k-mer length must be positive, got %d", conf.KmerLength)
	}
	if conf.SampleCount <= 0 && !conf.SamplesAll() {
		return nil, validationErr("number of k-mers to sample must be positive, or %d for all, got %d", config.AllKmers, conf.SampleCount)
	}
	if conf.Threads < 1 {
		return nil, validationErr("threads must be at least 1, got %d", conf.Threads)
	}

	species := make([]Species, len(names))
	for i := range names {
		species[i] = Species{Name: names[i], Fasta: fastas[i]}
		if len(gtfs) > 0 {
			species[i].GTF = gtfs[i]
		}
	}
	return species, nil
}
