package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/rshade/vgrid/internal/grid/tree"
)

// Format is a dataset file format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// maxConcurrentLoads bounds LoadFiles.
const maxConcurrentLoads = 4

var (
	// ErrUnsupportedFormat is returned for files whose extension has no loader.
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	// ErrNotRowList is returned when a document is not a list of objects.
	ErrNotRowList = errors.New("dataset must be a list of objects")
)

// Options control loading.
type Options struct {
	// Sheet selects the worksheet of an Excel file. Empty means the first sheet.
	Sheet string
	// RowKey is the key field; rows without one get a generated key.
	RowKey string
	// ChildrenField holds nested rows.
	ChildrenField string
}

func (o Options) withDefaults() Options {
	if o.RowKey == "" {
		o.RowKey = "id"
	}
	if o.ChildrenField == "" {
		o.ChildrenField = "children"
	}
	return o
}

// DetectFormat picks the format from the file extension.
func DetectFormat(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Load reads the rows of one file. Keys are not generated; LoadFiles does that
// once for all files.
func Load(ctx context.Context, path string, opts Options) ([]tree.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	var rows []tree.Row
	switch format {
	case FormatXLSX:
		rows, err = loadXLSX(path, opts.Sheet)
	default:
		rows, err = loadDocument(path, format, opts.ChildrenField)
	}
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadFiles loads paths concurrently and concatenates their rows in argument
// order. Generated keys are unique across all files.
func LoadFiles(ctx context.Context, paths []string, opts Options) ([]tree.Row, error) {
	opts = opts.withDefaults()
	results := make([][]tree.Row, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, path := range paths {
		g.Go(func() error {
			rows, err := Load(gctx, path, opts)
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	all := make([]tree.Row, 0, total)
	for _, r := range results {
		all = append(all, r...)
	}
	EnsureKeys(all, opts.RowKey, opts.ChildrenField)
	return all, nil
}

func loadDocument(path string, format Format, childrenField string) ([]tree.Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc any
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	items, ok := doc.([]any)
	if !ok {
		if doc == nil {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrNotRowList, path)
	}
	rows, err := toRows(items, childrenField)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// toRows converts decoded list items to rows, recursing into children.
func toRows(items []any, childrenField string) ([]tree.Row, error) {
	rows := make([]tree.Row, 0, len(items))
	for i, item := range items {
		row, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: item %d is %T", ErrNotRowList, i, item)
		}
		if raw, has := row[childrenField]; has {
			list, isList := raw.([]any)
			if !isList {
				return nil, fmt.Errorf("%w: %q of item %d", ErrNotRowList, childrenField, i)
			}
			children, err := toRows(list, childrenField)
			if err != nil {
				return nil, err
			}
			row[childrenField] = children
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// EnsureKeys gives every row without a usable key a generated string key
// "row-N", numbering rows in tree order. Existing keys are kept.
func EnsureKeys(rows []tree.Row, keyField, childrenField string) {
	n := 0
	var walk func([]tree.Row)
	walk = func(rs []tree.Row) {
		for _, r := range rs {
			if _, ok := tree.KeyOf(r, keyField); !ok {
				r[keyField] = fmt.Sprintf("row-%d", n)
			}
			n++
			walk(tree.ChildrenOf(r, childrenField))
		}
	}
	walk(rows)
}

// Fields returns the union of top-level field names: keyField first when
// present, the rest sorted. childrenField is skipped.
func Fields(rows []tree.Row, keyField, childrenField string) []string {
	seen := map[string]bool{childrenField: true}
	hasKey := false
	var rest []string
	for _, r := range rows {
		for k := range r {
			if seen[k] {
				continue
			}
			seen[k] = true
			if k == keyField {
				hasKey = true
				continue
			}
			rest = append(rest, k)
		}
	}
	slices.Sort(rest)
	if hasKey {
		return append([]string{keyField}, rest...)
	}
	return rest
}
