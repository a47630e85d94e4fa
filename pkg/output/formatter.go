package output

import (
	"io"

	"github.com/superlinear-space/jsnonet-transformer/pkg/transform"
)

// Formatter renders a transform result to a writer.
type Formatter interface {
	Format(w io.Writer, result *transform.Result) error
}
