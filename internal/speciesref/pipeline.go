package speciesref

import (
	"context"
	"log"

	"github.com/Pollen-lab/cellbouncer/config"
	"golang.org/x/sync/errgroup"
)

// Pipeline builds a species reference: for annotated species it extracts
// transcripts, then it counts the k-mers of every species and finally
// finds the k-mers unique to each.
//
// Steps run stage by stage: every species finishes a stage before the next
// stage starts. Within a stage up to conf.Threads species run at once, and
// with a single thread they run in species order.
type Pipeline struct {
	conf     *config.Config
	species  []Species
	tools    *Toolbox
	progress Progress
	log      *log.Logger
}

// NewPipeline returns a Pipeline over validated species.
func NewPipeline(conf *config.Config, species []Species, tools *Toolbox) *Pipeline {
	return &Pipeline{
		conf:     conf,
		species:  species,
		tools:    tools,
		progress: nopProgress{},
		log:      tools.log,
	}
}

// SetProgress reports finished steps to pr.
func (p *Pipeline) SetProgress(pr Progress) {
	p.progress = pr
}

// Run builds the reference, tracking intermediates in t. Everything
// temporary in t, and every FastK file under the output prefix, is removed
// before Run returns, whether or not it succeeded.
func (p *Pipeline) Run(ctx context.Context, t *Tracker) (ref *Reference, err error) {
	defer func() {
		if cerr := Cleanup(t, len(p.species), p.conf.Out); cerr != nil {
			if err == nil {
				err = cerr
			} else {
				p.log.Printf("failed to clean up: %v", cerr)
			}
		}
	}()

	fastas := make([]string, len(p.species))
	for i, s := range p.species {
		fastas[i] = s.Fasta
	}

	if annotated(p.species) {
		err = p.forEach(ctx, func(ctx context.Context, i int) error {
			tx, err := p.tools.ExtractTranscript(ctx, t, p.species[i], i, p.conf.Out)
			if err != nil {
				return err
			}
			fastas[i] = tx
			p.progress.Advance(stepExtract)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	tables := make([]string, len(p.species))
	err = p.forEach(ctx, func(ctx context.Context, i int) error {
		table, err := p.tools.CountKmers(ctx, t, fastas[i], p.conf.Out, p.conf.KmerLength, i)
		if err != nil {
			return err
		}
		tables[i] = table
		p.progress.Advance(stepCount)
		return nil
	})
	if err != nil {
		return nil, err
	}

	names := make([]string, len(p.species))
	for i, s := range p.species {
		names[i] = s.Name
	}

	if ref, err = p.tools.ComputeUniqueKmers(ctx, names, tables, p.conf.Out, p.conf.SampleCount); err != nil {
		return nil, err
	}
	p.progress.Advance(stepUnique)

	return ref, nil
}

// forEach calls fn for each species index, at most conf.Threads at a time,
// and returns the first error. Species that haven't started when ctx is
// done are skipped.
func (p *Pipeline) forEach(ctx context.Context, fn func(context.Context, int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	if p.conf.Threads > 1 {
		g.SetLimit(p.conf.Threads)
	} else {
		g.SetLimit(1)
	}

	for i := range p.species {
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			return fn(gctx, i)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return &Error{Kind: KindCanceled, Err: err}
	}
	return nil
}
