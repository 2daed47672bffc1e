// Package hcl loads composition documents and translates them into the
// layer model. The HCL surface stays inside this package and
// internal/schema; everything downstream works on layer.Group values.
package hcl

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/vk/layergraphgo/internal/ctxlog"
	"github.com/vk/layergraphgo/internal/fsutil"
	"github.com/vk/layergraphgo/internal/layer"
	"github.com/vk/layergraphgo/internal/schema"
)

// Extension is the composition document suffix the loader picks up when
// given a directory.
const Extension = ".lg.hcl"

// Loader parses .lg.hcl files into layer groups.
type Loader struct{}

func NewLoader() *Loader {
	return &Loader{}
}

// Load walks the given paths, parses every composition document found
// and returns the translated groups in file order.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]*layer.Group, error) {
	logger := ctxlog.FromContext(ctx)

	var files []string
	for _, p := range paths {
		found, err := fsutil.FindFilesByExtension(p, Extension)
		if err != nil {
			return nil, fmt.Errorf("discovering documents under %s: %w", p, err)
		}
		files = append(files, found...)
	}
	logger.Debug("Document discovery complete.", "count", len(files))

	parser := hclparse.NewParser()
	var groups []*layer.Group

	for _, file := range files {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse %s: %w", file, diags)
		}

		var doc schema.Document
		if diags := gohcl.DecodeBody(hclFile.Body, nil, &doc); diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode %s: %w", file, diags)
		}

		for _, g := range doc.Groups {
			group, err := translateGroup(g)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			groups = append(groups, group)
		}
	}

	logger.Debug("Document loading complete.", "groups", len(groups))
	return groups, nil
}
