package cmd

import (
	"github.com/Pollen-lab/cellbouncer/config"
	"github.com/Pollen-lab/cellbouncer/internal/speciesref"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// refCmd builds the species-specific k-mer reference used by demux_species
var refCmd = &cobra.Command{
	Use:                        "species-ref",
	Short:                      "Build species-specific k-mer lists for demux_species",
	RunE:                       speciesref.BuildCmd,
	Args:                       cobra.NoArgs,
	SuggestionsMinimumDistance: 3,
	Aliases:                    []string{"ref"},
	Long: `
Build reference data for demux_species from the transcriptomes of two or
more species. For each species, the k-mers found in it and in no other
species are written to {out}.{index}.kmers and the species names, in order,
to {out}.names. Pass {out} to demux_species with -k.

If given one GTF per FASTA, transcripts are first extracted from the FASTAs
(genomes) with gffread. Otherwise the FASTAs are taken to be transcriptomes
already. K-mers are counted with FastK and unique k-mers found with
get_unique_kmers. All intermediate files are removed, even on failure.`,
	Example: `  cellbouncer species-ref -o ref -n human,mouse -f hg38.tx.fa,mm39.tx.fa
  cellbouncer species-ref -o ref -n human,mouse -f hg38.fa.gz,mm39.fa.gz -g hg38.gtf.gz,mm39.gtf.gz
  cellbouncer species-ref -o ref --sheet species.toml --threads 2`,
}

// refCleanCmd removes the intermediates of an interrupted build
var refCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove intermediate files left by an interrupted species-ref build",
	RunE:  speciesref.CleanCmd,
	Args:  cobra.NoArgs,
	Long: `
Remove the transcript FASTAs and FastK tables that a species-ref build
under the same output base name would have created for each species.`,
	Example: "  cellbouncer species-ref clean -o ref -s 3",
}

// set flags
func init() {
	flags := refCmd.Flags()
	flags.StringP("out", "o", "", "base name for output files. Pass to demux_species as -k")
	flags.StringSliceP("names", "n", nil, "names of the species, comma separated or repeated, in the same order as --fasta")
	flags.StringSliceP("fasta", "f", nil, "two or more FASTA files, one per species: transcriptomes, or genomes if --gtf is given")
	flags.StringSliceP("gtf", "g", nil, "one GTF per FASTA, in the same order, to extract transcripts from genomes")
	flags.String("sheet", "", "TOML file listing species (name, fasta, gtf) instead of --names, --fasta and --gtf")
	flags.IntP("k", "k", config.DefaultKmerLength, "length of k-mers")
	flags.IntP("num", "N", config.AllKmers, "number of k-mers to sample per species, -1 for all. Sampling 10-20 million saves memory and time")
	flags.Int("threads", 1, "number of species to process at once")
	flags.Duration("timeout", 0, "maximum run time of each external tool, ex: 2h (0 for none)")
	flags.Bool("progress", false, "draw progress bars instead of logging each step")
	flags.StringP("fastk", "F", "", "path to FastK, if not in $PATH")
	flags.StringP("gffread", "G", "", "path to gffread, if not in $PATH")
	flags.String("unique-kmers", "", "path to get_unique_kmers, if not beside this binary or in $PATH")
	flags.String("gunzip", "", "path to gunzip, if not in $PATH")

	// Bind the parameters to viper
	for key, flag := range map[string]string{
		"out":                "out",
		"k":                  "k",
		"num":                "num",
		"threads":            "threads",
		"timeout":            "timeout",
		"progress":           "progress",
		"tools.fastk":        "fastk",
		"tools.gffread":      "gffread",
		"tools.unique-kmers": "unique-kmers",
		"tools.gunzip":       "gunzip",
	} {
		viper.BindPFlag(key, flags.Lookup(flag))
	}

	refCleanCmd.Flags().StringP("out", "o", "", "base name of the build's output files")
	refCleanCmd.Flags().IntP("species", "s", 0, "number of species in the build")
	refCleanCmd.MarkFlagRequired("out")
	refCleanCmd.MarkFlagRequired("species")

	refCmd.AddCommand(refCleanCmd)
	RootCmd.AddCommand(refCmd)
}
