package render

import (
	"fmt"
	"strings"
)

// The template syntax is a small handlebars-style language:
//
//	{{path.to.var}}                   escaped interpolation
//	{{{path}}}                        raw interpolation (sanitized)
//	{{#if path}}...{{else}}...{{/if}} conditional block
//	{{> name key="lit" other=path}}   inline partial
//	{{#> name key="lit"}}...{{/name}} layout wrapping the enclosed body
//	{{> @content}}                    body injection point inside a layout
//
// Templates are parsed once at load time into a node tree; rendering is
// a walk over that tree with no further string scanning.

type node interface{}

type textNode struct {
	text string
}

type varNode struct {
	path []string
	raw  bool
}

type ifNode struct {
	guard []string
	then  []node
	els   []node
}

// includeNode is an inline partial invocation.
type includeNode struct {
	name   string
	params []param
}

// wrapNode invokes another template as a layout around its body.
type wrapNode struct {
	name   string
	params []param
	body   []node
}

// contentNode marks where a layout injects the wrapped body.
type contentNode struct{}

// param is a named argument to a partial or layout: either a quoted
// literal or a reference into the caller's scope.
type param struct {
	name  string
	lit   string
	ref   []string
	isLit bool
}

// token is an intermediate lexing unit: literal text or a tag body.
type token struct {
	content string
	isTag   bool
	raw     bool
}

func lex(src string) ([]token, error) {
	var tokens []token
	for len(src) > 0 {
		open := strings.Index(src, "{{")
		if open < 0 {
			tokens = append(tokens, token{content: src})
			break
		}
		if open > 0 {
			tokens = append(tokens, token{content: src[:open]})
		}
		src = src[open:]

		if strings.HasPrefix(src, "{{{") {
			end := strings.Index(src, "}}}")
			if end < 0 {
				return nil, fmt.Errorf("%w: unclosed {{{", ErrParse)
			}
			tokens = append(tokens, token{content: strings.TrimSpace(src[3:end]), isTag: true, raw: true})
			src = src[end+3:]
			continue
		}

		end := strings.Index(src, "}}")
		if end < 0 {
			return nil, fmt.Errorf("%w: unclosed {{", ErrParse)
		}
		tokens = append(tokens, token{content: strings.TrimSpace(src[2:end]), isTag: true})
		src = src[end+2:]
	}
	return tokens, nil
}

// parse builds the node tree for a template source.
func parse(src string) ([]node, error) {
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}

	p := &parser{tokens: tokens}
	nodes, err := p.parseNodes("")
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.tokens) {
		return nil, fmt.Errorf("%w: unexpected {{%s}}", ErrParse, p.tokens[p.pos].content)
	}
	return nodes, nil
}

type parser struct {
	tokens []token
	pos    int
}

// parseNodes consumes tokens until the closer tag ("/if" or "/name") or
// an {{else}} at the current nesting level. An empty closer means parse
// to the end of input.
func (p *parser) parseNodes(closer string) ([]node, error) {
	var nodes []node
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		if !tok.isTag {
			p.pos++
			nodes = append(nodes, textNode{text: tok.content})
			continue
		}

		// Closers and else belong to the enclosing construct.
		if tok.content == closer || (closer == "/if" && tok.content == "else") {
			return nodes, nil
		}

		p.pos++
		n, err := p.parseTag(tok)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}

	if closer != "" {
		return nil, fmt.Errorf("%w: missing {{%s}}", ErrParse, closer)
	}
	return nodes, nil
}

func (p *parser) parseTag(tok token) (node, error) {
	content := tok.content

	switch {
	case strings.HasPrefix(content, "#if "):
		guardExpr := strings.TrimSpace(strings.TrimPrefix(content, "#if "))
		guard, err := parsePath(guardExpr)
		if err != nil {
			return nil, err
		}

		then, err := p.parseNodes("/if")
		if err != nil {
			return nil, err
		}

		var els []node
		if p.pos < len(p.tokens) && p.tokens[p.pos].content == "else" {
			p.pos++
			if els, err = p.parseNodes("/if"); err != nil {
				return nil, err
			}
		}

		if p.pos >= len(p.tokens) || p.tokens[p.pos].content != "/if" {
			return nil, fmt.Errorf("%w: missing {{/if}}", ErrParse)
		}
		p.pos++
		return ifNode{guard: guard, then: then, els: els}, nil

	case strings.HasPrefix(content, "#>"):
		name, params, err := parseInvocation(strings.TrimSpace(strings.TrimPrefix(content, "#>")))
		if err != nil {
			return nil, err
		}

		body, err := p.parseNodes("/" + name)
		if err != nil {
			return nil, err
		}
		if p.pos >= len(p.tokens) || p.tokens[p.pos].content != "/"+name {
			return nil, fmt.Errorf("%w: missing {{/%s}}", ErrParse, name)
		}
		p.pos++
		return wrapNode{name: name, params: params, body: body}, nil

	case strings.HasPrefix(content, ">"):
		rest := strings.TrimSpace(strings.TrimPrefix(content, ">"))
		if rest == "@content" {
			return contentNode{}, nil
		}
		name, params, err := parseInvocation(rest)
		if err != nil {
			return nil, err
		}
		return includeNode{name: name, params: params}, nil

	case strings.HasPrefix(content, "/"), content == "else":
		return nil, fmt.Errorf("%w: unexpected {{%s}}", ErrParse, content)

	default:
		path, err := parsePath(content)
		if err != nil {
			return nil, err
		}
		return varNode{path: path, raw: tok.raw}, nil
	}
}

// parsePath validates a dotted variable reference.
func parsePath(expr string) ([]string, error) {
	if expr == "" {
		return nil, fmt.Errorf("%w: empty expression", ErrParse)
	}
	segs := strings.Split(expr, ".")
	for _, seg := range segs {
		if !validIdent(seg) {
			return nil, fmt.Errorf("%w: invalid reference %q", ErrParse, expr)
		}
	}
	return segs, nil
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// parseInvocation splits a partial/layout invocation into its template
// name and named parameters.
func parseInvocation(expr string) (string, []param, error) {
	fields, err := splitFields(expr)
	if err != nil {
		return "", nil, err
	}
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("%w: missing partial name", ErrParse)
	}
	name := fields[0]
	if !validIdent(name) {
		return "", nil, fmt.Errorf("%w: invalid partial name %q", ErrParse, name)
	}

	params := make([]param, 0, len(fields)-1)
	for _, field := range fields[1:] {
		eq := strings.Index(field, "=")
		if eq <= 0 {
			return "", nil, fmt.Errorf("%w: malformed parameter %q", ErrParse, field)
		}
		key, val := field[:eq], field[eq+1:]
		if !validIdent(key) {
			return "", nil, fmt.Errorf("%w: invalid parameter name %q", ErrParse, key)
		}

		if strings.HasPrefix(val, `"`) {
			if len(val) < 2 || !strings.HasSuffix(val, `"`) {
				return "", nil, fmt.Errorf("%w: unterminated literal in %q", ErrParse, field)
			}
			params = append(params, param{name: key, lit: val[1 : len(val)-1], isLit: true})
			continue
		}

		ref, err := parsePath(val)
		if err != nil {
			return "", nil, err
		}
		params = append(params, param{name: key, ref: ref})
	}
	return name, params, nil
}

// splitFields splits on spaces while keeping quoted literals intact.
func splitFields(expr string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inQuote := false

	for _, r := range expr {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case (r == ' ' || r == '\t') && !inQuote:
			if cur.Len() > 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("%w: unterminated quote in %q", ErrParse, expr)
	}
	if cur.Len() > 0 {
		fields = append(fields, cur.String())
	}
	return fields, nil
}
