package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"

	"github.com/rshade/vgrid/internal/cli/pagination"
	"github.com/rshade/vgrid/internal/config"
	"github.com/rshade/vgrid/internal/dataset"
	"github.com/rshade/vgrid/internal/grid"
	"github.com/rshade/vgrid/internal/grid/tree"
	"github.com/rshade/vgrid/internal/tui"
)

// tabPadding is the minimum column padding for tabwriter output.
const tabPadding = 2

// LayoutFlags are the options of the layout command.
type LayoutFlags struct {
	Width       float64
	Height      float64
	ScrollTop   float64
	ScrollLeft  float64
	Output      string
	Fixed       bool
	FrozenLeft  []string
	FrozenRight []string
	Sort        []string
	ExpandAll   bool
	Sheet       string
	Page        pagination.Params
}

// LayoutReport is the geometry of one render pass.
type LayoutReport struct {
	Mode            string           `json:"mode" yaml:"mode"`
	TableWidth      float64          `json:"table_width" yaml:"table_width"`
	TableHeight     float64          `json:"table_height" yaml:"table_height"`
	HeaderHeight    float64          `json:"header_height" yaml:"header_height"`
	ViewportHeight  float64          `json:"viewport_height" yaml:"viewport_height"`
	RowCount        int              `json:"row_count" yaml:"row_count"`
	TotalRowsHeight float64          `json:"total_rows_height" yaml:"total_rows_height"`
	ScrollTop       float64          `json:"scroll_top" yaml:"scroll_top"`
	ScrollLeft      float64          `json:"scroll_left" yaml:"scroll_left"`
	Scrollbar       ScrollbarReport  `json:"scrollbar" yaml:"scrollbar"`
	Panes           []PaneReport     `json:"panes" yaml:"panes"`
	Columns         []ColumnReport   `json:"columns" yaml:"columns"`
	Pagination      *pagination.Meta `json:"pagination,omitempty" yaml:"pagination,omitempty"`
}

// ScrollbarReport is the scrollbar presence decided for the pass.
type ScrollbarReport struct {
	Size       float64 `json:"size" yaml:"size"`
	Vertical   bool    `json:"vertical" yaml:"vertical"`
	Horizontal bool    `json:"horizontal" yaml:"horizontal"`
}

// PaneReport is one pane's partition and rendered row range.
type PaneReport struct {
	Kind          string   `json:"kind" yaml:"kind"`
	X             float64  `json:"x" yaml:"x"`
	Width         float64  `json:"width" yaml:"width"`
	Columns       []string `json:"columns" yaml:"columns"`
	OverscanStart int      `json:"overscan_start" yaml:"overscan_start"`
	OverscanStop  int      `json:"overscan_stop" yaml:"overscan_stop"`
	VisibleStart  int      `json:"visible_start" yaml:"visible_start"`
	VisibleStop   int      `json:"visible_stop" yaml:"visible_stop"`
}

// ColumnReport is one resolved column.
type ColumnReport struct {
	Key    string  `json:"key" yaml:"key"`
	Frozen string  `json:"frozen" yaml:"frozen"`
	Width  float64 `json:"width" yaml:"width"`
	Offset float64 `json:"offset" yaml:"offset"`
}

// NewLayoutCmd creates the layout command, a non-interactive report of how the
// table would be laid out in a terminal of a given size.
func NewLayoutCmd() *cobra.Command {
	var flags LayoutFlags

	cmd := &cobra.Command{
		Use:   "layout <file>...",
		Short: "Print the table geometry for a terminal size",
		Long: `Loads rows like vgrid view, lays the table out for --width x --height at the given
scroll position, and prints the pane partitions, column widths and offsets, the
rendered row range of every pane and the scrollbar decision.

--limit/--offset or --page/--page-size select which rows are laid out.`,
		Example: `  # Layout for an 80x24 terminal
  vgrid layout rows.json

  # Frozen id column, scrolled down 500 rows, as JSON
  vgrid layout rows.json --frozen-left id --scroll-top 500 --output json

  # Lay out only the second page of 1000 rows
  vgrid layout rows.json --page 2 --page-size 1000`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLayout(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.Float64Var(&flags.Width, "width", 80, "terminal width in cells")
	f.Float64Var(&flags.Height, "height", 24, "terminal height in rows")
	f.Float64Var(&flags.ScrollTop, "scroll-top", 0, "vertical scroll offset")
	f.Float64Var(&flags.ScrollLeft, "scroll-left", 0, "horizontal scroll offset")
	f.StringVarP(&flags.Output, "output", "o", "", "output format: table, json or yaml (default: output.default_format)")
	f.BoolVar(&flags.Fixed, "fixed", false, "use declared column widths instead of fitting the width")
	f.StringSliceVar(&flags.FrozenLeft, "frozen-left", nil, "columns pinned to the left edge (implies --fixed)")
	f.StringSliceVar(&flags.FrozenRight, "frozen-right", nil, "columns pinned to the right edge (implies --fixed)")
	f.StringArrayVar(&flags.Sort, "sort", nil, "sort rows as field[:asc|desc] before layout, repeatable")
	f.BoolVar(&flags.ExpandAll, "expand-all", false, "expand every row with children")
	f.StringVar(&flags.Sheet, "sheet", "", "worksheet of an Excel file (default: the first sheet)")
	f.IntVar(&flags.Page.Limit, "limit", 0, "lay out at most this many rows")
	f.IntVar(&flags.Page.Offset, "offset", 0, "skip this many rows")
	f.IntVar(&flags.Page.Page, "page", 0, "page number, starting at 1 (needs --page-size)")
	f.IntVar(&flags.Page.PageSize, "page-size", 0, "rows per page (needs --page)")

	return cmd
}

func runLayout(cmd *cobra.Command, paths []string, flags LayoutFlags) error {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	output := flags.Output
	if output == "" {
		output = cfg.Output.DefaultFormat
	}
	switch output {
	case config.FormatTable, config.FormatJSON, config.FormatYAML:
	default:
		return fmt.Errorf("unsupported output format: %s", output)
	}
	if err := flags.Page.Validate(); err != nil {
		return err
	}
	if flags.Width <= 0 || flags.Height <= 0 {
		return errors.New("--width and --height must be positive")
	}
	sortBy, err := pagination.ParseSortList(flags.Sort)
	if err != nil {
		return err
	}

	props := cfg.ToProps()
	rows, err := dataset.LoadFiles(ctx, paths, dataset.Options{
		Sheet:         flags.Sheet,
		RowKey:        props.RowKey,
		ChildrenField: props.ChildrenField,
	})
	if err != nil {
		return err
	}
	if len(sortBy) > 0 {
		rows = pagination.NewRowSorter(props.ChildrenField).Sort(rows, sortBy)
	}

	var meta *pagination.Meta
	if flags.Page.IsEnabled() {
		m := pagination.NewMeta(flags.Page, len(rows))
		meta = &m
		rows = pagination.Apply(flags.Page, rows)
	}

	report := BuildLayout(props, rows, flags)
	report.Pagination = meta
	logger.Debug().Ctx(ctx).Int("rows", report.RowCount).Str("mode", report.Mode).Msg("layout computed")

	return writeLayout(cmd.OutOrStdout(), output, report)
}

// BuildLayout renders rows once with props adjusted by flags and reports the result.
func BuildLayout(props grid.Props, rows []tree.Row, flags LayoutFlags) LayoutReport {
	props.Fixed = props.Fixed || flags.Fixed || len(flags.FrozenLeft) > 0 || len(flags.FrozenRight) > 0
	props.Width = flags.Width
	props.Height = flags.Height
	props.Data = rows
	props.Columns = tui.BuildColumns(rows, tui.ColumnSpec{
		RowKey:        props.RowKey,
		ChildrenField: props.ChildrenField,
		Fixed:         props.Fixed,
		FrozenLeft:    flags.FrozenLeft,
		FrozenRight:   flags.FrozenRight,
	})
	if tui.HasChildren(rows, props.ChildrenField) && len(props.Columns) > 0 {
		props.ExpandColumnKey = props.Columns[0].Key
		if flags.ExpandAll {
			props.DefaultExpandedRowKeys = tui.ParentKeys(rows, props.RowKey, props.ChildrenField)
		}
	}

	t := grid.New(props, grid.WithLogger(logger))
	t.Render()
	if flags.ScrollTop != 0 || flags.ScrollLeft != 0 {
		t.ScrollToTop(flags.ScrollTop)
		t.ScrollToLeft(flags.ScrollLeft)
	}
	l := t.Render()

	mode := "flexible"
	if props.Fixed {
		mode = "fixed"
	}
	report := LayoutReport{
		Mode:            mode,
		TableWidth:      l.TableWidth,
		TableHeight:     l.TableHeight,
		HeaderHeight:    l.HeaderHeight,
		ViewportHeight:  l.ViewportHeight,
		RowCount:        l.RowCount,
		TotalRowsHeight: l.TotalRowsHeight,
		ScrollTop:       l.Scroll.Top,
		ScrollLeft:      l.Scroll.Left,
		Scrollbar: ScrollbarReport{
			Size:       l.Scrollbar.ProbedSize,
			Vertical:   l.Scrollbar.VerticalVisible,
			Horizontal: l.Scrollbar.HorizontalVisible,
		},
	}
	for _, p := range l.Panes {
		pr := PaneReport{
			Kind:          p.Kind.String(),
			X:             p.X,
			Width:         p.Width,
			Columns:       []string{},
			OverscanStart: p.Range.OverscanStart,
			OverscanStop:  p.Range.OverscanStop,
			VisibleStart:  p.Range.VisibleStart,
			VisibleStop:   p.Range.VisibleStop,
		}
		for _, c := range p.Columns {
			if !c.Placeholder {
				pr.Columns = append(pr.Columns, c.Key)
			}
		}
		report.Panes = append(report.Panes, pr)
	}
	for _, c := range l.Columns.Columns() {
		report.Columns = append(report.Columns, ColumnReport{
			Key:    c.Key,
			Frozen: c.Frozen.String(),
			Width:  c.Width,
			Offset: l.Columns.OffsetOf(c.Key),
		})
	}
	return report
}

func writeLayout(w io.Writer, output string, report LayoutReport) error {
	switch output {
	case config.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case config.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		return renderLayoutTable(w, report)
	}
}

func renderLayoutTable(w io.Writer, r LayoutReport) error {
	p := message.NewPrinter(language.English)

	p.Fprintf(w, "TABLE (%s)\n", r.Mode)
	p.Fprintf(w, "Size: %v x %v, header %v, viewport %v\n", r.TableWidth, r.TableHeight, r.HeaderHeight, r.ViewportHeight)
	p.Fprintf(w, "Rows: %d, content height %v\n", r.RowCount, r.TotalRowsHeight)
	p.Fprintf(w, "Scroll: top %v, left %v\n", r.ScrollTop, r.ScrollLeft)
	p.Fprintf(w, "Scrollbars: vertical %s, horizontal %s (size %v)\n",
		yesNo(r.Scrollbar.Vertical), yesNo(r.Scrollbar.Horizontal), r.Scrollbar.Size)
	if m := r.Pagination; m != nil {
		p.Fprintf(w, "Page: %d of %d (%d rows per page, %d total)\n",
			m.CurrentPage, m.TotalPages, m.PageSize, m.TotalItems)
	}

	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "PANE\tX\tWIDTH\tVISIBLE\tRENDERED\tCOLUMNS")
	fmt.Fprintln(tw, "----\t-\t-----\t-------\t--------\t-------")
	for _, pr := range r.Panes {
		p.Fprintf(tw, "%s\t%v\t%v\t%s\t%s\t%s\n",
			pr.Kind, pr.X, pr.Width,
			rangeText(pr.VisibleStart, pr.VisibleStop),
			rangeText(pr.OverscanStart, pr.OverscanStop),
			strings.Join(pr.Columns, ","))
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table writer: %w", err)
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, tabPadding, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tFROZEN\tWIDTH\tOFFSET")
	fmt.Fprintln(tw, "------\t------\t-----\t------")
	for _, c := range r.Columns {
		p.Fprintf(tw, "%s\t%s\t%v\t%v\n", c.Key, c.Frozen, c.Width, c.Offset)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flushing table writer: %w", err)
	}
	return nil
}

func rangeText(start, stop int) string {
	if stop < start {
		return "-"
	}
	return fmt.Sprintf("%d-%d", start, stop)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
