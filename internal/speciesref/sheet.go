package speciesref

import (
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// sheet is a TOML file listing the species of a reference, ex:
//
//	[[species]]
//	name = "human"
//	fasta = "GRCh38.fa.gz"
//	gtf = "GRCh38.gtf.gz"
type sheet struct {
	Species []sheetEntry `toml:"species"`
}

type sheetEntry struct {
	Name  string `toml:"name"`
	Fasta string `toml:"fasta"`
	GTF   string `toml:"gtf"`
}

// ReadSheet returns the names, FASTAs and GTFs listed in a species sheet,
// in the order the species appear. Relative paths are relative to the
// sheet. Species without a GTF are left out of gtfs, so a partially
// annotated sheet fails Validate like partial --gtf lists do.
func ReadSheet(filename string) (names, fastas, gtfs []string, err error) {
	var s sheet
	md, err := toml.DecodeFile(filename, &s)
	if err != nil {
		return nil, nil, nil, &Error{Kind: KindValidation, Path: filename, Err: errors.Wrap(err, "failed to read species sheet")}
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, nil, nil, &Error{Kind: KindValidation, Path: filename, Err: errors.Errorf("unknown field %q", undecoded[0].String())}
	}

	dir := filepath.Dir(filename)
	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(dir, path)
	}

	for _, entry := range s.Species {
		names = append(names, entry.Name)
		fastas = append(fastas, resolve(entry.Fasta))
		if entry.GTF != "" {
			gtfs = append(gtfs, resolve(entry.GTF))
		}
	}

	return names, fastas, gtfs, nil
}
