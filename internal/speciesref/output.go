package speciesref

import (
	"encoding/json"
	"os"
	"time"

	"github.com/Pollen-lab/cellbouncer/config"
)

// SpeciesOutput is a single species of a built reference.
type SpeciesOutput struct {
	// Name of the species
	Name string `json:"name"`

	// Fasta it was built from
	Fasta string `json:"fasta"`

	// GTF annotating Fasta, if transcripts were extracted
	GTF string `json:"gtf,omitempty"`

	// Kmers is the file of k-mers unique to the species
	Kmers string `json:"kmers"`
}

// Output is a record of a reference build, written beside the reference.
type Output struct {
	// Run is a unique id for the build
	Run string `json:"run"`

	// Time, ex: "2018-01-01 20:41:00"
	Time string `json:"time"`

	// Execution is the number of seconds it took to build the reference
	Execution float64 `json:"execution"`

	// K is the k-mer length
	K int `json:"k"`

	// Sampled is the number of k-mers kept per species, -1 for all
	Sampled int `json:"num"`

	// Prefix for demux_species -k
	Prefix string `json:"prefix"`

	// Names is the species names file
	Names string `json:"names"`

	// Species in reference order
	Species []SpeciesOutput `json:"species"`
}

// manifestPath is where the record of a build is written.
func manifestPath(prefix string) string {
	return prefix + ".manifest.json"
}

// writeJSON records a build of ref from species to {prefix}.manifest.json
// and returns the path written.
func writeJSON(run string, start time.Time, conf *config.Config, species []Species, ref *Reference) (string, error) {
	out := Output{
		Run:       run,
		Time:      start.Format("2006-01-02 15:04:05"),
		Execution: time.Since(start).Seconds(),
		K:         conf.KmerLength,
		Sampled:   conf.SampleCount,
		Prefix:    ref.Prefix,
		Names:     ref.NamesFile,
	}

	for i, s := range species {
		out.Species = append(out.Species, SpeciesOutput{
			Name:  s.Name,
			Fasta: s.Fasta,
			GTF:   s.GTF,
			Kmers: ref.KmerFiles[i],
		})
	}

	filename := manifestPath(ref.Prefix)
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filename, b, 0644); err != nil {
		return "", fsErr(filename, err)
	}

	return filename, nil
}
