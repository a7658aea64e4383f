// Package render loads email templates from a directory and renders
// them against per-request variables in strict mode: referencing an
// undefined variable fails the whole render instead of substituting
// empty text.
//
// Templates are `.html`/`.hbs` files in the handlebars-style syntax
// described in parse.go, or `.md` files converted to HTML with goldmark
// after variable substitution. Any template can serve as a layout or a
// partial; the invocation syntax decides usage.
//
// The registry is loaded once at boot and immutable afterwards. Reload
// builds a complete replacement snapshot and swaps it in with a single
// atomic store, so concurrent renders never observe partial state.
package render

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Config holds template registry configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type Config struct {
	TemplatesDir string `env:"TEMPLATES_DIR" envDefault:"templates"`
}

// maxPartialDepth bounds partial/layout recursion so a template that
// includes itself fails instead of spinning.
const maxPartialDepth = 16

// Registry holds the immutable template set and renders by name.
type Registry struct {
	dir    string
	snap   atomic.Pointer[snapshot]
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

type snapshot struct {
	templates map[string]*template
}

type template struct {
	name     string
	nodes    []node
	meta     Meta
	markdown bool
}

// Load scans dir (non-recursive) for template files and builds the
// registry. It fails if the directory is missing, a file is not valid
// UTF-8, a template has a syntax error, or no templates are found: the
// process must not start against an empty registry.
func Load(dir string) (*Registry, error) {
	r := &Registry{
		dir:    dir,
		md:     goldmark.New(goldmark.WithExtensions(newButtonExtension())),
		policy: bluemonday.UGCPolicy(),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload rebuilds the template set from disk and atomically replaces
// the current snapshot. In-flight renders keep the snapshot they
// started with.
func (r *Registry) Reload() error {
	snap, err := loadSnapshot(r.dir)
	if err != nil {
		return err
	}
	r.snap.Store(snap)
	return nil
}

// Names returns the registered template names in sorted order.
func (r *Registry) Names() []string {
	snap := r.snap.Load()
	names := make([]string, 0, len(snap.templates))
	for name := range snap.templates {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Meta returns a template's frontmatter metadata.
func (r *Registry) Meta(name string) (Meta, error) {
	t, ok := r.snap.Load().templates[name]
	if !ok {
		return Meta{}, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return t.meta, nil
}

// Render renders the named template against vars and returns raw HTML.
func (r *Registry) Render(name string, vars Vars) (string, error) {
	snap := r.snap.Load()
	t, ok := snap.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	ex := &executor{snap: snap, policy: r.policy}

	var body strings.Builder
	if err := ex.exec(t.nodes, vars, "", &body); err != nil {
		return "", err
	}

	out := body.String()
	if t.markdown {
		var converted strings.Builder
		if err := r.md.Convert([]byte(out), &converted); err != nil {
			return "", fmt.Errorf("%w: markdown conversion: %v", ErrRender, err)
		}
		out = converted.String()
	}

	// Frontmatter-declared layout wraps the rendered body. The scope is
	// the request vars plus the frontmatter params, so layouts stay
	// strict about what they reference.
	if t.meta.Layout != "" {
		layout, ok := snap.templates[t.meta.Layout]
		if !ok {
			return "", fmt.Errorf("%w: layout %s", ErrTemplateNotFound, t.meta.Layout)
		}
		scope := vars.clone()
		for k, v := range t.meta.Params {
			scope[k] = String(v)
		}

		var wrapped strings.Builder
		if err := ex.exec(layout.nodes, scope, out, &wrapped); err != nil {
			return "", err
		}
		out = wrapped.String()
	}

	return out, nil
}

func loadSnapshot(dir string) (*snapshot, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, dir, err)
	}

	templates := make(map[string]*template)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		switch ext {
		case ".html", ".hbs", ".md":
		default:
			continue
		}

		path := filepath.Join(dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
		}
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("%w: %s: not valid UTF-8", ErrLoad, path)
		}

		name := strings.TrimSuffix(entry.Name(), ext)
		if _, exists := templates[name]; exists {
			return nil, fmt.Errorf("%w: %s: duplicate template name %q", ErrLoad, path, name)
		}

		meta, body, err := splitFrontmatter(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
		}

		nodes, err := parse(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
		}

		templates[name] = &template{
			name:     name,
			nodes:    nodes,
			meta:     meta,
			markdown: ext == ".md",
		}
	}

	if len(templates) == 0 {
		return nil, fmt.Errorf("%w: %s: no templates found", ErrLoad, dir)
	}
	return &snapshot{templates: templates}, nil
}

// executor walks a node tree against a variable scope.
type executor struct {
	snap   *snapshot
	policy *bluemonday.Policy
	depth  int
}

func (ex *executor) exec(nodes []node, vars Vars, content string, sb *strings.Builder) error {
	for _, n := range nodes {
		switch n := n.(type) {
		case textNode:
			sb.WriteString(n.text)

		case varNode:
			v, ok := vars.lookup(n.path)
			if !ok {
				return fmt.Errorf("%w: %s", ErrUndefinedVariable, strings.Join(n.path, "."))
			}
			s, scalar := v.text()
			if !scalar {
				return fmt.Errorf("%w: %s is not a scalar value", ErrRender, strings.Join(n.path, "."))
			}
			if n.raw {
				// Raw interpolation still goes through the sanitizer so
				// caller-supplied HTML cannot smuggle script into the email.
				sb.WriteString(ex.policy.Sanitize(s))
			} else {
				sb.WriteString(html.EscapeString(s))
			}

		case ifNode:
			// An absent or falsy guard is not an error, it just skips
			// the block. Strictness applies only inside active branches.
			branch := n.els
			if v, ok := vars.lookup(n.guard); ok && v.Truthy() {
				branch = n.then
			}
			if err := ex.exec(branch, vars, content, sb); err != nil {
				return err
			}

		case contentNode:
			sb.WriteString(content)

		case includeNode:
			t, err := ex.resolve(n.name)
			if err != nil {
				return err
			}
			scope, err := ex.bind(n.params, vars)
			if err != nil {
				return err
			}
			ex.depth++
			err = ex.exec(t.nodes, scope, "", sb)
			ex.depth--
			if err != nil {
				return err
			}

		case wrapNode:
			// The body renders in the caller's scope first, then the
			// layout renders with the result as its content region.
			var body strings.Builder
			if err := ex.exec(n.body, vars, content, &body); err != nil {
				return err
			}

			t, err := ex.resolve(n.name)
			if err != nil {
				return err
			}
			scope, err := ex.bind(n.params, vars)
			if err != nil {
				return err
			}
			ex.depth++
			err = ex.exec(t.nodes, scope, body.String(), sb)
			ex.depth--
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (ex *executor) resolve(name string) (*template, error) {
	if ex.depth >= maxPartialDepth {
		return nil, fmt.Errorf("%w: partial nesting exceeds %d levels", ErrRender, maxPartialDepth)
	}
	t, ok := ex.snap.templates[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	return t, nil
}

// bind builds the partial's scope: the caller's variables overlaid with
// the invocation parameters. Parameter references resolve strictly.
func (ex *executor) bind(params []param, vars Vars) (Vars, error) {
	if len(params) == 0 {
		return vars, nil
	}

	scope := vars.clone()
	for _, p := range params {
		if p.isLit {
			scope[p.name] = String(p.lit)
			continue
		}
		v, ok := vars.lookup(p.ref)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUndefinedVariable, strings.Join(p.ref, "."))
		}
		scope[p.name] = v
	}
	return scope, nil
}
