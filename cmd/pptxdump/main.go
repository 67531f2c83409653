// Package main provides pptxdump, which prints the object model of a PPTX
// file: shapes with resolved font sizes, tables and chart data.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	slidedotnet "github.com/adamshakhabov/SlideDotNet"
)

var (
	slideNumber int
	showCharts  bool
	verbose     bool
	validate    bool
	unitName    string
	unit        slidedotnet.Unit
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pptxdump [input.pptx]",
		Short: "Print the shape tree of a PowerPoint file",
		Long: `pptxdump prints every slide's shapes with their geometry, resolved
font sizes, table sizes and, with --charts, chart series values.`,
		Args:    cobra.ExactArgs(1),
		Version: slidedotnet.Version,
		RunE:    run,
	}

	rootCmd.Flags().IntVarP(&slideNumber, "slide", "s", 0, "Only print this slide (1-based)")
	rootCmd.Flags().BoolVar(&showCharts, "charts", false, "Resolve and print chart series and categories")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log diagnostics to stderr")
	rootCmd.Flags().BoolVar(&validate, "validate", false, "Run structural validation after printing")
	rootCmd.Flags().StringVarP(&unitName, "units", "u", "emu", "Length unit for geometry: emu, in, pt or cm")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	inputPath := args[0]
	var err error
	if unit, err = slidedotnet.ParseUnit(unitName); err != nil {
		return err
	}
	if _, err := os.Stat(inputPath); os.IsNotExist(err) {
		return fmt.Errorf("file not found: %s", inputPath)
	}

	cfg := slidedotnet.DefaultConfig()
	if verbose {
		cfg.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	pres, err := slidedotnet.OpenWithConfig(inputPath, cfg)
	if err != nil {
		return fmt.Errorf("open failed: %w", err)
	}
	defer pres.Close()

	slides, err := pres.Slides()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d slides, %s x %s\n", inputPath, len(slides), length(pres.SlideWidth()), length(pres.SlideHeight()))
	for _, s := range slides {
		if slideNumber != 0 && s.Number() != slideNumber {
			continue
		}
		if err := dumpSlide(out, s); err != nil {
			return fmt.Errorf("slide %d: %w", s.Number(), err)
		}
	}

	if validate {
		if err := pres.Validate(); err != nil {
			return err
		}
		fmt.Fprintln(out, "valid")
	}
	return nil
}

func dumpSlide(w io.Writer, s *slidedotnet.Slide) error {
	shapes, err := s.Shapes()
	if err != nil {
		return err
	}
	layout := ""
	if l, err := s.Layout(); err == nil {
		layout = l.Name()
	}
	hidden := ""
	if s.Hidden() {
		hidden = " (hidden)"
	}
	fmt.Fprintf(w, "slide %d%s layout=%q\n", s.Number(), hidden, layout)
	dumpShapes(w, shapes, 1)
	return nil
}

func dumpShapes(w io.Writer, shapes *slidedotnet.Shapes, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, sh := range shapes.All() {
		fmt.Fprintf(w, "%s#%d %q %T at (%s,%s) size %s x %s", indent, sh.ID(), sh.Name(), sh,
			length(sh.X()), length(sh.Y()), length(sh.Width()), length(sh.Height()))
		if ph := sh.Placeholder(); ph != nil {
			fmt.Fprintf(w, " placeholder=%s", ph.Type)
		}
		fmt.Fprintln(w)

		switch v := sh.(type) {
		case *slidedotnet.AutoShape:
			if tb := v.TextBox(); tb != nil {
				dumpText(w, tb, indent+"  ")
			}
		case *slidedotnet.Table:
			fmt.Fprintf(w, "%s  table %dx%d\n", indent, v.RowCount(), v.ColumnCount())
		case *slidedotnet.Chart:
			dumpChart(w, v, indent+"  ")
		case *slidedotnet.Group:
			dumpShapes(w, v.Shapes(), depth+1)
		}
	}
}

// length formats an EMU value in the selected unit.
func length(emu int64) string {
	if unit == slidedotnet.UnitEMU {
		return fmt.Sprintf("%d", emu)
	}
	return fmt.Sprintf("%.2f%s", unit.FromEMU(emu), unit)
}

func dumpText(w io.Writer, tb *slidedotnet.TextBox, indent string) {
	for _, p := range tb.Paragraphs() {
		for _, pt := range p.Portions() {
			fmt.Fprintf(w, "%sL%d %.1fpt %q\n", indent, p.Level(), slidedotnet.FontSizeToPoints(pt.Font().Size()), pt.Text())
		}
	}
}

func dumpChart(w io.Writer, c *slidedotnet.Chart, indent string) {
	fmt.Fprintf(w, "%schart %s, %d series\n", indent, c.Type(), len(c.Series()))
	if !showCharts {
		return
	}
	if c.HasCategories() {
		cats, err := c.Categories()
		if err != nil {
			fmt.Fprintf(w, "%scategories: error: %v\n", indent, err)
		} else {
			names := make([]string, 0, len(cats))
			for _, cat := range cats {
				name := cat.Name()
				if p := cat.Parent(); p != nil {
					name = p.Name() + "/" + name
				}
				names = append(names, name)
			}
			fmt.Fprintf(w, "%scategories: %s\n", indent, strings.Join(names, ", "))
		}
	}
	for _, s := range c.Series() {
		name := "(unnamed)"
		if s.HasName() {
			if n, err := s.Name(); err == nil {
				name = n
			}
		}
		values, err := s.PointValues()
		if err != nil {
			fmt.Fprintf(w, "%sseries %q: error: %v\n", indent, name, err)
			continue
		}
		fmt.Fprintf(w, "%sseries %q: %v\n", indent, name, values)
	}
}
