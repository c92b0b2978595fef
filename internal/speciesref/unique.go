package speciesref

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// Reference is the set of files demux_species reads with -k {Prefix}.
type Reference struct {
	// Prefix shared by every file
	Prefix string

	// Names of the species, in order
	Names []string

	// NamesFile lists Names, one per line
	NamesFile string

	// KmerFiles holds each species' unique k-mers, ordered as Names
	KmerFiles []string
}

// kmersPath is where get_unique_kmers writes the i-th species' k-mers.
func kmersPath(prefix string, species int) string {
	return fmt.Sprintf("%s.%d.kmers", prefix, species)
}

// namesPath lists the species of a reference.
func namesPath(prefix string) string {
	return prefix + ".names"
}

// ComputeUniqueKmers runs get_unique_kmers once over all of the species'
// FastK tables. names[i] must be the species counted into tables[i]: the
// position in each list is the only thing that pairs them up.
//
// num is passed through as is, config.AllKmers included. The names file
// and k-mer files of the reference are owned by the run: any left under
// prefix by an earlier run are removed before the tool starts, and the
// names file is always written in species order.
func (tb *Toolbox) ComputeUniqueKmers(ctx context.Context, names, tables []string, prefix string, num int) (*Reference, error) {
	if len(names) != len(tables) {
		return nil, validationErr("%d species names for %d k-mer tables", len(names), len(tables))
	}

	bin, err := tb.resolveBeside(uniqueKmers)
	if err != nil {
		return nil, err
	}

	args := []string{"-N", strconv.Itoa(num), "-o", prefix}
	for i := range names {
		args = append(args, "-n", names[i], "-k", tables[i])
	}

	// only files written by this call may end up in the reference
	stale := []string{namesPath(prefix)}
	for i := range names {
		stale = append(stale, kmersPath(prefix, i))
	}
	for _, path := range stale {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fsErr(path, err)
		}
	}

	tb.log.Printf("Getting unique k-mers...")
	if err := tb.runner.Run(ctx, bin, args, nil); err != nil {
		return nil, err
	}

	ref := &Reference{
		Prefix:    prefix,
		Names:     append([]string(nil), names...),
		NamesFile: namesPath(prefix),
	}
	for i := range names {
		kmers := kmersPath(prefix, i)
		if _, err := os.Stat(kmers); err != nil {
			return nil, &Error{Kind: KindToolFailed, Path: bin, Err: errors.Wrapf(err, "no k-mers written for %s", names[i])}
		}
		ref.KmerFiles = append(ref.KmerFiles, kmers)
	}

	if err := writeNames(ref.NamesFile, names); err != nil {
		return nil, err
	}

	return ref, nil
}

// writeNames writes one species name per line.
func writeNames(filename string, names []string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fsErr(filename, err)
	}

	w := bufio.NewWriter(f)
	for _, name := range names {
		fmt.Fprintln(w, name)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fsErr(filename, err)
	}
	if err := f.Close(); err != nil {
		return fsErr(filename, err)
	}
	return nil
}
