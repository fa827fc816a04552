package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/derhami/Converterz/pkg/converter"
)

// WriteReport prints the outcome of a conversion in the requested format.
func WriteReport(w io.Writer, res converter.Result, format converter.ReportFormat) error {
	switch format {
	case converter.ReportFormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case converter.ReportFormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(res); err != nil {
			return err
		}
		return enc.Close()
	case converter.ReportFormatTOML:
		return toml.NewEncoder(w).Encode(res)
	case converter.ReportFormatText, "":
		return writeTextReport(w, res)
	}
	return fmt.Errorf("%w: unsupported report format %q", converter.ErrInvalidConfiguration, format)
}

func writeTextReport(w io.Writer, res converter.Result) error {
	if !res.Succeeded() || res.Output == nil {
		_, err := fmt.Fprintf(w, "Error converting image: %s\n", res.Error)
		return err
	}
	out := res.Output
	_, err := fmt.Fprintf(w, "Image converted successfully!\n  source:  %s\n  output:  %s\n  image:   %dx%d %s, %d bytes\n  took:    %dms\n",
		res.Request.SourcePath, out.Path, out.Width, out.Height, out.Format, out.SizeBytes, res.DurationMs)
	return err
}
