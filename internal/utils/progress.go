package utils

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// Standard progress bar descriptions
const (
	DescCopying     = "Copying"
	DescCompressing = "Compressing"
)

// NewProgressBar creates a consistently styled progress bar.
//
// A negative total renders a spinner. When out is nil the bar is silent,
// which keeps tests and non-interactive runs free of terminal noise.
//
// Example:
//
//	bar := utils.NewProgressBar(len(entries), utils.DescCopying, os.Stderr)
//	defer bar.Finish()
func NewProgressBar(total int, description string, out io.Writer) *progressbar.ProgressBar {
	if out == nil {
		out = io.Discard
	}

	opts := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
	}

	if total < 0 {
		opts = append(opts,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
	} else {
		opts = append(opts,
			progressbar.OptionShowIts(),
		)
	}

	return progressbar.NewOptions(total, opts...)
}
