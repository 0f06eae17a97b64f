package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/sitegrid/pkg/catalog"
	"github.com/matzehuels/sitegrid/pkg/errors"
	"github.com/matzehuels/sitegrid/pkg/pipeline"
	"github.com/matzehuels/sitegrid/pkg/plan"
	"github.com/matzehuels/sitegrid/pkg/render"
	"github.com/matzehuels/sitegrid/pkg/session"
)

// Output formats of calc and session get.
const (
	formatTerminal = "terminal"
	formatJSON     = "json"
)

// validFormats is the set of supported output formats.
var validFormats = map[string]bool{
	formatTerminal:   true,
	formatJSON:       true,
	render.FormatSVG: true,
	render.FormatPNG: true,
	render.FormatPDF: true,
}

// calcOpts holds the command-line flags for the calc command.
type calcOpts struct {
	input     string            // JSON file with quantities, "-" for stdin
	format    string            // output format
	output    string            // output file; stdout when empty (text formats)
	colors    map[string]string // display color overrides by device id
	scale     int               // SVG pixels per foot
	noCaption bool              // omit the totals caption from SVG/PNG/PDF
	noCache   bool
}

// calcCommand creates the calc command.
func (c *CLI) calcCommand() *cobra.Command {
	opts := calcOpts{format: formatTerminal}

	cmd := &cobra.Command{
		Use:   "calc [device=count ...]",
		Short: "Calculate a site layout",
		Long: `Calculate transformers, totals and the grid layout for a set of battery quantities.

Quantities are given as device=count pairs and/or read from a JSON object with
--input. Transformer counts are always derived.`,
		Example: `  sitegrid calc megapackXL=3 powerPack=2
  sitegrid calc megapack2=4 -f svg -o site.svg --color megapack2=#FF8800
  echo '{"megapack": 5}' | sitegrid calc -i - -f json`,
		ValidArgsFunction: completeDevices,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormats[opts.format] {
				return fmt.Errorf("invalid format: %s (must be terminal, json, svg, png or pdf)", opts.format)
			}
			return c.runCalc(cmd.Context(), cmd, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.input, "input", "i", "", "read quantities from a JSON file (- for stdin)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: terminal, json, svg, png, pdf")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout; site.<format> for png/pdf)")
	cmd.Flags().StringToStringVar(&opts.colors, "color", nil, "display color per device, e.g. megapackXL=#2F80ED")
	cmd.Flags().IntVar(&opts.scale, "scale", render.DefaultScale, "SVG pixels per foot")
	cmd.Flags().BoolVar(&opts.noCaption, "no-caption", false, "omit the totals caption from svg, png and pdf output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the layout cache")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)

	return cmd
}

// completeDevices offers "id=" for each built-in producer not yet given.
func completeDevices(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	given := make(map[string]bool, len(args))
	for _, a := range args {
		id, _, _ := strings.Cut(a, "=")
		given[id] = true
	}
	var out []string
	for _, id := range catalog.Default().ProducerIDs() {
		if !given[id] {
			out = append(out, id+"=")
		}
	}
	return out, cobra.ShellCompDirectiveNoSpace
}

func completeFormats(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	formats := make([]string, 0, len(validFormats))
	for f := range validFormats {
		formats = append(formats, f)
	}
	sort.Strings(formats)
	return formats, cobra.ShellCompDirectiveNoFileComp
}

func (c *CLI) runCalc(ctx context.Context, cmd *cobra.Command, args []string, opts *calcOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	cfg.Cache = localCache(cfg.Cache, opts.noCache)

	runner, err := c.newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	cat := runner.Engine.Catalog()
	raw, err := readQuantities(opts.input, cmd.InOrStdin(), args, cat)
	if err != nil {
		return err
	}

	res, err := runner.Run(ctx, raw)
	if err != nil {
		return reportInvalid(err)
	}

	doc, err := session.NewDocument(cat, res.Config.Quantities, opts.colors)
	if err != nil {
		return reportInvalid(err)
	}

	return c.writeLayout(ctx, cmd.OutOrStdout(), runner, res, layoutOutput{
		format:    opts.format,
		path:      opts.output,
		colors:    doc.Colors,
		scale:     opts.scale,
		noCaption: opts.noCaption,
	})
}

// layoutOutput selects how writeLayout emits a result.
type layoutOutput struct {
	format    string
	path      string
	colors    map[string]string
	scale     int
	noCaption bool
}

// layoutJSON is the machine-readable form of a calculated layout.
type layoutJSON struct {
	Config    plan.Quantities   `json:"config"`
	Colors    map[string]string `json:"colors,omitempty"`
	Totals    plan.Totals       `json:"totals"`
	Layout    []plan.Item       `json:"layout"`
	RowsCount int               `json:"rowsCount"`
}

// writeLayout emits res in out.format to out.path, or to w when no path is
// set and the format is textual.
func (c *CLI) writeLayout(ctx context.Context, w io.Writer, runner *pipeline.Runner, res *pipeline.Result, out layoutOutput) error {
	cat := runner.Engine.Catalog()

	switch out.format {
	case formatTerminal:
		opts := []render.Option{
			render.WithCatalog(cat),
			render.WithColumns(runner.Engine.Columns()),
			render.WithColors(out.colors),
		}
		fmt.Fprintln(w, summary(res))
		fmt.Fprintln(w)
		fmt.Fprintln(w, render.Terminal(res.Grid, opts...))
		if legend := render.Legend(res.Grid, opts...); legend != "" {
			fmt.Fprintln(w)
			fmt.Fprintln(w, legend)
		}
		return nil

	case formatJSON:
		items := res.Grid.Items
		if items == nil {
			items = []plan.Item{}
		}
		data, err := json.MarshalIndent(layoutJSON{
			Config:    res.Config.Quantities,
			Colors:    out.colors,
			Totals:    res.Totals,
			Layout:    items,
			RowsCount: res.Grid.Rows,
		}, "", "  ")
		if err != nil {
			return err
		}
		return writeOutput(w, out.path, append(data, '\n'))
	}

	svg, err := runner.RenderSVG(ctx, res.Result, pipeline.RenderOptions{
		Colors:    out.colors,
		Scale:     out.scale,
		NoCaption: out.noCaption,
	})
	if err != nil {
		return err
	}
	if out.format == render.FormatSVG {
		return writeOutput(w, out.path, svg)
	}

	path := out.path
	if path == "" {
		path = "site." + out.format
	}
	prog := newProgress(loggerFromContext(ctx))
	spin := newSpinnerWithContext(ctx, "Converting to "+strings.ToUpper(out.format)+"...")
	spin.Start()
	data, err := c.convert(svg, out.format)
	if err != nil {
		spin.StopWithError("Conversion failed")
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		spin.Stop()
		return fmt.Errorf("write %s: %w", path, err)
	}
	spin.StopWithSuccess("Rendered " + path)
	prog.done("Converted " + out.format)
	return nil
}

// writeOutput writes data to path, or to w when path is empty.
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	printFile(path)
	return nil
}

// readQuantities merges the JSON object from input (if any) with
// device=count args. Args win. Values stay unvalidated.
func readQuantities(input string, stdin io.Reader, args []string, cat *catalog.Catalog) (map[string]any, error) {
	raw := map[string]any{}

	if input != "" {
		var (
			data []byte
			err  error
		)
		if input == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(input)
		}
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		if raw, err = decodeQuantities(data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", input, err)
		}
	}

	for _, arg := range args {
		id, value, ok := strings.Cut(arg, "=")
		if !ok || id == "" {
			return nil, fmt.Errorf("invalid argument %q (want device=count)", arg)
		}
		spec, known := cat.Lookup(id)
		if !known {
			return nil, fmt.Errorf("unknown device %q (known: %s)", id, strings.Join(cat.ProducerIDs(), ", "))
		}
		if !spec.IsProducer() {
			printWarning("%s count is derived, ignoring %s", id, arg)
			continue
		}
		raw[id] = value
	}
	return raw, nil
}

// decodeQuantities accepts either a bare quantity object or a saved session
// ({"config": {...}}).
func decodeQuantities(data []byte) (map[string]any, error) {
	var raw map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if inner, ok := raw["config"].(map[string]any); ok {
		return inner, nil
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// reportInvalid prints the field errors of a validation error and returns a
// short summary error. Other errors pass through.
func reportInvalid(err error) error {
	ve, ok := errors.AsValidation(err)
	if !ok {
		return err
	}
	fields := make([]string, 0, len(ve.Fields))
	for f := range ve.Fields {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		printError("%s: %s", f, ve.Fields[f])
	}
	return fmt.Errorf("%s", strings.ToLower(ve.Message))
}
