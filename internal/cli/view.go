package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/vgrid/internal/cache"
	"github.com/rshade/vgrid/internal/cli/pagination"
	"github.com/rshade/vgrid/internal/config"
	"github.com/rshade/vgrid/internal/dataset"
	"github.com/rshade/vgrid/internal/grid/tree"
	"github.com/rshade/vgrid/internal/logging"
	"github.com/rshade/vgrid/internal/tui"
)

// ErrNotTerminal is returned by view when stdout is not a terminal.
var ErrNotTerminal = errors.New("vgrid view needs an interactive terminal; use vgrid layout for scripted output")

// ViewFlags are the table options of the view command.
type ViewFlags struct {
	Fixed       bool
	FrozenLeft  []string
	FrozenRight []string
	Sort        []string
	MultiSort   bool
	ExpandAll   bool
	PageSize    int
	Watch       bool
	PersistKey  string
	Sheet       string
	Wrap        bool
}

// NewViewCmd creates the view command, the interactive table.
func NewViewCmd() *cobra.Command {
	var flags ViewFlags

	cmd := &cobra.Command{
		Use:   "view <file>...",
		Short: "Browse rows in an interactive table",
		Long: `Loads rows from JSON, YAML or Excel files and shows them in a virtualized table.

Rows are objects; a "children" list (see table.children_field) nests rows under a
parent. Several files are concatenated in argument order.

Keys: arrows/pgup/pgdown/home/end scroll, tab picks a column, s sorts by it,
+ and - resize it, enter expands the top row, ? shows all keys, q quits.`,
		Example: `  # Browse a JSON file
  vgrid view rows.json

  # Keep the id column in place while scrolling sideways
  vgrid view rows.json --fixed --frozen-left id

  # Sort by team, then score descending
  vgrid view rows.json --sort team --sort score:desc --multi-sort

  # Show 200 rows at a time and reload when the file changes
  vgrid view rows.yaml --page-size 200 --watch

  # Remember the scroll position between runs
  vgrid view rows.json --persist-key rows`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, args, flags)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&flags.Fixed, "fixed", false, "use declared column widths with horizontal scrolling instead of fitting the terminal")
	f.StringSliceVar(&flags.FrozenLeft, "frozen-left", nil, "columns pinned to the left edge (implies --fixed)")
	f.StringSliceVar(&flags.FrozenRight, "frozen-right", nil, "columns pinned to the right edge (implies --fixed)")
	f.StringArrayVar(&flags.Sort, "sort", nil, "initial sort as field[:asc|desc], repeatable")
	f.BoolVar(&flags.MultiSort, "multi-sort", false, "keep a sort order per column instead of a single sorted column")
	f.BoolVar(&flags.ExpandAll, "expand-all", false, "expand every row with children")
	f.IntVar(&flags.PageSize, "page-size", 0, "rows added each time the end of the table is reached (0 shows every row)")
	f.BoolVar(&flags.Watch, "watch", false, "reload the rows when an input file changes")
	f.StringVar(&flags.PersistKey, "persist-key", "", "save and restore the scroll position under this name")
	f.StringVar(&flags.Sheet, "sheet", "", "worksheet of an Excel file (default: the first sheet)")
	f.BoolVar(&flags.Wrap, "wrap", false, "wrap long values over several lines")

	return cmd
}

func runView(cmd *cobra.Command, paths []string, flags ViewFlags) error {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	opts, err := buildViewOptions(cfg, paths, flags)
	if err != nil {
		return err
	}
	if !isTerminal(os.Stdout) {
		return ErrNotTerminal
	}

	tuiLogger := viewLogger(cfg)
	opts.Logger = tuiLogger

	if flags.PersistKey != "" {
		scrollStore, storeErr := openScrollStore(cfg, tuiLogger)
		if storeErr != nil {
			logger.Warn().Ctx(ctx).Err(storeErr).Msg("scroll state disabled")
		} else {
			defer func() { _ = scrollStore.Close() }()
			opts.Persister = scrollStore
			opts.RestoreTop, opts.Restore = scrollStore.Restore(flags.PersistKey)
		}
	}

	p := tea.NewProgram(tui.NewTableModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))

	if flags.Watch {
		watcher, watchErr := dataset.NewWatcher(paths, tuiLogger)
		if watchErr != nil {
			return fmt.Errorf("watching input files: %w", watchErr)
		}
		defer func() { _ = watcher.Close() }()
		go forwardChanges(ctx, watcher, p)
	}

	logger.Info().Ctx(ctx).Strs("files", paths).Msg("starting table view")
	if _, err = p.Run(); err != nil {
		return fmt.Errorf("failed to run interactive TUI: %w", err)
	}
	return nil
}

// buildViewOptions checks the flags and the input files and returns the
// model options. It does not touch the terminal.
func buildViewOptions(cfg *config.Config, paths []string, flags ViewFlags) (tui.Options, error) {
	for _, p := range paths {
		if _, err := dataset.DetectFormat(p); err != nil {
			return tui.Options{}, err
		}
		if _, err := os.Stat(p); err != nil {
			return tui.Options{}, fmt.Errorf("input file: %w", err)
		}
	}

	sortBy, err := pagination.ParseSortList(flags.Sort)
	if err != nil {
		return tui.Options{}, err
	}
	if len(sortBy) > 1 && !flags.MultiSort {
		return tui.Options{}, errors.New("more than one --sort needs --multi-sort")
	}

	pageSize := cfg.Table.PageSize
	if flags.PageSize != 0 {
		pageSize = flags.PageSize
	}
	if pageSize < 0 || pageSize > dataset.MaxPageSize {
		return tui.Options{}, fmt.Errorf("%w: got %d", dataset.ErrInvalidPageSize, pageSize)
	}

	props := cfg.ToProps()
	if flags.Fixed || len(flags.FrozenLeft) > 0 || len(flags.FrozenRight) > 0 {
		props.Fixed = true
	}
	wrap := flags.Wrap || cfg.Table.WrapCells
	if wrap && props.EstimatedRowHeight == 0 {
		props.EstimatedRowHeight = props.RowHeight
	}
	if flags.PersistKey != "" {
		props.ScrollPersistKey = flags.PersistKey
	}

	loadOpts := dataset.Options{Sheet: flags.Sheet, RowKey: props.RowKey, ChildrenField: props.ChildrenField}
	return tui.Options{
		Load: func(ctx context.Context) ([]tree.Row, error) {
			return dataset.LoadFiles(ctx, paths, loadOpts)
		},
		Props:       props,
		FrozenLeft:  flags.FrozenLeft,
		FrozenRight: flags.FrozenRight,
		Wrap:        wrap,
		PageSize:    pageSize,
		ExpandAll:   flags.ExpandAll,
		Sort:        sortBy,
		MultiSort:   flags.MultiSort,
		Title:       viewTitle(paths),
		Logger:      zerolog.Nop(),
	}, nil
}

func viewTitle(paths []string) string {
	title := filepath.Base(paths[0])
	if len(paths) > 1 {
		title = fmt.Sprintf("%s +%d", title, len(paths)-1)
	}
	return title
}

// viewLogger keeps log lines off the table: the CLI logger is used only when
// it writes to a file or stderr is redirected.
func viewLogger(cfg *config.Config) zerolog.Logger {
	if cfg.Logging.File != "" || !isTerminal(os.Stderr) {
		return logging.ComponentLogger(config.GetLogger(), "view")
	}
	return zerolog.Nop()
}

func openScrollStore(cfg *config.Config, log zerolog.Logger) (*cache.ScrollStore, error) {
	dir, err := config.GetCacheDir()
	if err != nil {
		return nil, err
	}
	settings := cache.Settings{
		Enabled:    cfg.Cache.Enabled,
		Directory:  dir,
		TTLSeconds: cfg.Cache.TTLSeconds,
	}.WithEnv()

	store, err := cache.NewFileStore(settings, cache.WithLogger(log))
	if err != nil {
		return nil, err
	}
	if store.Enabled() {
		if removed, cleanErr := store.CleanupExpired(); cleanErr != nil {
			log.Debug().Err(cleanErr).Msg("expired scroll state not removed")
		} else if removed > 0 {
			log.Debug().Int("removed", removed).Msg("expired scroll state removed")
		}
	}
	return cache.NewScrollStore(store, log), nil
}

// forwardChanges turns file change notifications into reloads until ctx ends
// or the watcher closes.
func forwardChanges(ctx context.Context, w *dataset.Watcher, p *tea.Program) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-w.Changes():
			if !ok {
				return
			}
			p.Send(tui.DataChangedMsg{})
		}
	}
}
