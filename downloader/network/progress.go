package network

import (
	"io"
	"path"
	"time"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

type progress struct {
	p *mpb.Progress
}

func newProgress(w io.Writer) *progress {
	return &progress{
		p: mpb.New(
			mpb.WithOutput(w),
			mpb.WithRefreshRate(200*time.Millisecond),
		),
	}
}

// track wraps r in a bar of the given size. done must be called once; a
// failed transfer aborts the bar so that wait does not block on it.
func (pr *progress) track(r io.Reader, size int64, url string) (io.Reader, func(ok bool)) {
	bar := pr.p.New(size,
		mpb.BarStyle().Rbound("|"),
		mpb.PrependDecorators(
			decor.Name(path.Base(url), decor.WCSyncSpaceR),
			decor.CountersKibiByte("% .2f / % .2f"),
		),
		mpb.AppendDecorators(
			decor.EwmaETA(decor.ET_STYLE_GO, 90),
			decor.Name(" ] "),
			decor.EwmaSpeed(decor.UnitKiB, "% .2f", 60),
		))
	return bar.ProxyReader(r), func(ok bool) {
		if !ok {
			bar.Abort(false)
		}
	}
}

func (pr *progress) wait() {
	pr.p.Wait()
}
