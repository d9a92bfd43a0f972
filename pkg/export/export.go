package export

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/scrawl/pkg/errors"
	"github.com/matzehuels/scrawl/pkg/graph"
)

// Format identifies an export artifact format.
type Format string

// Supported export formats.
const (
	FormatSVG     Format = "svg"
	FormatPNG     Format = "png"
	FormatDOT     Format = "dot"
	FormatDrawio  Format = "drawio"
	FormatMermaid Format = "mermaid"
	FormatJSON    Format = "json"
)

var formats = []Format{FormatSVG, FormatPNG, FormatDOT, FormatDrawio, FormatMermaid, FormatJSON}

// Formats returns the supported formats in canonical order.
func Formats() []Format {
	out := make([]Format, len(formats))
	copy(out, formats)
	return out
}

// ParseFormat normalizes a user-supplied format name. Common aliases and a
// leading dot (file extensions) are accepted.
func ParseFormat(s string) (Format, error) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	switch name {
	case "svg":
		return FormatSVG, nil
	case "png":
		return FormatPNG, nil
	case "dot", "gv":
		return FormatDOT, nil
	case "drawio", "xml":
		return FormatDrawio, nil
	case "mermaid", "mmd":
		return FormatMermaid, nil
	case "json":
		return FormatJSON, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "unknown export format %q", s)
}

// FormatForPath picks the format matching a file path's extension.
func FormatForPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", errors.New(errors.ErrCodeInvalidFormat, "path %q has no extension to infer a format from", path)
	}
	return ParseFormat(ext)
}

// Ext returns the conventional file extension for a format, with dot.
func Ext(f Format) string {
	switch f {
	case FormatMermaid:
		return ".mmd"
	default:
		return "." + string(f)
	}
}

// ContentType returns the MIME type an artifact should be served with.
func ContentType(f Format) string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	case FormatJSON:
		return "application/json"
	case FormatDrawio:
		return "application/xml"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Options carries cross-format rendering knobs. Exporters ignore fields
// that do not apply to them.
type Options struct {
	Title      string // document title (SVG <title>, DOT label)
	Background string // background color; "" means transparent
	Detailed   bool   // include node details in labels where the format allows
}

// Render produces the artifact for a graph in the given format.
// The graph should already be positioned; unpositioned graphs render with
// every node at the origin.
func Render(g graph.Graph, f Format, opts Options) ([]byte, error) {
	switch f {
	case FormatSVG:
		return RenderSVG(g, svgOptionsFrom(opts)...), nil
	case FormatPNG:
		return RenderPNG(ToDOT(g, DOTOptions{Detailed: opts.Detailed, Background: opts.Background}))
	case FormatDOT:
		return []byte(ToDOT(g, DOTOptions{Detailed: opts.Detailed, Background: opts.Background})), nil
	case FormatDrawio:
		return ToDrawio(g, opts.Background)
	case FormatMermaid:
		return []byte(ToMermaid(g)), nil
	case FormatJSON:
		return graph.Marshal(g)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown export format %q", f)
}

func svgOptionsFrom(opts Options) []SVGOption {
	var svgOpts []SVGOption
	if opts.Title != "" {
		svgOpts = append(svgOpts, WithTitle(opts.Title))
	}
	if opts.Background != "" {
		svgOpts = append(svgOpts, WithBackground(opts.Background))
	}
	return svgOpts
}
