package speciesref

import (
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// steps of a run that progress is reported on
const (
	stepExtract = "extracting transcripts"
	stepCount   = "counting k-mers"
	stepUnique  = "finding unique k-mers"
)

// Progress is told each time a step finishes for a species, or for all of
// them in the case of stepUnique.
type Progress interface {
	Advance(step string)
}

type nopProgress struct{}

func (nopProgress) Advance(string) {}

// Bars draws one progress bar per step of a run.
type Bars struct {
	p    *mpb.Progress
	bars map[string]*mpb.Bar
}

// NewBars returns bars, written to w, for a run over species.
func NewBars(w io.Writer, species []Species) *Bars {
	b := &Bars{
		p:    mpb.New(mpb.WithOutput(w), mpb.WithWidth(40)),
		bars: make(map[string]*mpb.Bar),
	}

	type step struct {
		name  string
		total int
	}
	steps := []step{{stepCount, len(species)}, {stepUnique, 1}}
	if annotated(species) {
		steps = append([]step{{stepExtract, len(species)}}, steps...)
	}

	for _, s := range steps {
		b.bars[s.name] = b.p.AddBar(int64(s.total),
			mpb.PrependDecorators(decor.Name(s.name, decor.WCSyncSpaceR)),
			mpb.AppendDecorators(decor.CountersNoUnit("%d / %d")),
		)
	}

	return b
}

// Advance moves a step's bar forward by one.
func (b *Bars) Advance(step string) {
	if bar, ok := b.bars[step]; ok {
		bar.Increment()
	}
}

// Wait flushes the bars. Bars of steps that never finished, because the
// run failed, are aborted so Wait doesn't block on them.
func (b *Bars) Wait() {
	for _, bar := range b.bars {
		if !bar.Completed() {
			bar.Abort(false)
		}
	}
	b.p.Wait()
}
