package svgfont

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/benoitkugler/oksvgrender/svgdom"
	"golang.org/x/sync/errgroup"
)

// task is a named group of background scans.
type task struct {
	done chan struct{}
	err  error
}

// ResolveAsync starts scanning the font directories for the families
// not yet registered, in a background task group named group.
// It returns immediately; use Wait to block until the scan is done.
// Starting a group which already exists is a no-op.
// Cancelling ctx stops the scan.
func (r *Registry) ResolveAsync(ctx context.Context, group string, families []string) {
	wanted := map[string]bool{}
	for _, f := range families {
		if key := normalize(f); key != "" && !r.Has(key) {
			wanted[key] = true
		}
	}

	r.mu.Lock()
	if _, ok := r.groups[group]; ok {
		r.mu.Unlock()
		return
	}
	t := &task{done: make(chan struct{})}
	r.groups[group] = t
	r.mu.Unlock()

	if len(wanted) == 0 || len(r.dirs) == 0 {
		close(t.done)
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, dir := range r.dirs {
		g.Go(func() error { return r.scan(gctx, dir, wanted) })
	}
	go func() {
		t.err = g.Wait()
		close(t.done)
	}()
}

// Wait blocks until the task group is done, returning its error,
// or until ctx is cancelled. Unknown groups are considered done.
func (r *Registry) Wait(ctx context.Context, group string) error {
	r.mu.RLock()
	t, ok := r.groups[group]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isFontFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf":
		return true
	}
	return false
}

// scan walks dir, registering the faces whose family is wanted.
// Unreadable files are logged and skipped.
func (r *Registry) scan(ctx context.Context, dir string, wanted map[string]bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			r.logger.Warn("skipping font path", "path", path, "err", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !isFontFile(path) {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			r.logger.Warn("reading font file", "path", path, "err", err)
			return nil
		}
		face, err := ParseFace(data)
		if err != nil {
			r.logger.Warn("parsing font file", "path", path, "err", err)
			return nil
		}
		if wanted[normalize(face.Family)] {
			r.logger.Debug("font resolved", "family", face.Family, "path", path)
			r.Add(face)
		}
		return nil
	})
}

// DocumentFamilies returns the font families used by the text
// elements of doc, in document order, without duplicates.
// It returns nil for a nil or empty document.
func DocumentFamilies(doc *svgdom.Document) []string {
	if doc == nil || doc.Root == nil {
		return nil
	}
	seen := map[string]bool{}
	var out []string
	doc.Root.Walk(func(e *svgdom.Element) bool {
		if e.Kind != svgdom.KindText && e.Kind != svgdom.KindTSpan {
			return true
		}
		for _, f := range SplitFamilies(svgdom.NodeOf(e).Property("font-family")) {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
		return true
	})
	return out
}

// ResolveDocument starts the resolution of the families used by doc,
// under the group named by doc.ID.
func (r *Registry) ResolveDocument(ctx context.Context, doc *svgdom.Document) {
	if doc == nil {
		return
	}
	r.ResolveAsync(ctx, doc.ID, DocumentFamilies(doc))
}
