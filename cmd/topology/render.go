package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"turbine-topology/internal/canvas"
	"turbine-topology/internal/topology"
)

var (
	renderOut    string
	renderFormat string
	renderHover  string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the topology to a PNG or SVG file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup(cmd)
		if err != nil {
			return err
		}
		src, closeSrc, err := openSource(cfg, log)
		if err != nil {
			return err
		}
		defer closeSrc()

		in, err := loadInput(cmd.Context(), src, cfg.Data.Project, time.Now())
		if err != nil {
			return err
		}
		format := renderFormat
		if format == "" {
			format = strings.TrimPrefix(strings.ToLower(filepath.Ext(renderOut)), ".")
		}

		var out io.Writer = cmd.OutOrStdout()
		if renderOut != "" && renderOut != "-" {
			f, err := os.Create(renderOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		} else if f, ok := out.(*os.File); ok && format != "svg" && term.IsTerminal(int(f.Fd())) {
			return fmt.Errorf("refusing to write PNG to a terminal; use -o")
		}

		n, err := render(out, format, cfg.RenderOptions(), in, renderHover)
		if err != nil {
			return err
		}
		log.Info("rendered topology", "project", in.ProjectName, "format", format, "bytes", n)
		return nil
	},
}

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "output", "o", "", "Output file (stdout when empty or -)")
	renderCmd.Flags().StringVar(&renderFormat, "format", "", "png or svg (from the output extension when empty)")
	renderCmd.Flags().StringVar(&renderHover, "hover", "", "Turbine id to show with its hover panel")
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// render draws in onto the surface for format and writes it to w.
func render(w io.Writer, format string, opts topology.Options, in topology.Input, hoverID string) (int64, error) {
	var surface canvas.Surface
	var encode func(io.Writer) error
	switch format {
	case "", "png":
		r := canvas.NewRaster(opts.Layout.Width, opts.Layout.MinHeight)
		surface, encode = r, r.EncodePNG
	case "svg":
		s := canvas.NewSVG(opts.Layout.Width, opts.Layout.MinHeight)
		surface = s
		encode = func(w io.Writer) error {
			_, err := s.WriteTo(w)
			return err
		}
	default:
		return 0, fmt.Errorf("unknown format %q", format)
	}

	session := topology.NewSession(opts, surface, nil)
	sc := session.Update(in)
	if hoverID != "" {
		p, ok := sc.Position(hoverID)
		if !ok {
			return 0, fmt.Errorf("no turbine %q in layout %s", hoverID, sc.Layout.Strategy)
		}
		session.Pointer(topology.PointerSample{X: p.X, Y: p.Y})
	}

	cw := &countingWriter{w: w}
	err := session.WithSurface(func(canvas.Surface) error { return encode(cw) })
	return cw.n, err
}
