package output

import (
	"encoding/json"
	"io"

	"github.com/superlinear-space/jsnonet-transformer/pkg/transform"
)

// JSONFormatter renders the transform result as JSON.
type JSONFormatter struct {
	Indent bool
}

func (f *JSONFormatter) Format(w io.Writer, result *transform.Result) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(result)
}
