package render

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmparser "github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Markdown templates support a call-to-action button shorthand on top
// of standard markdown:
//
//	[!button|Confirm your email](https://example.com/confirm)
//
// which renders as an anchor with the "btn" class so email layouts can
// style it as a button.

const buttonMarker = "[!button|"

var kindButton = ast.NewNodeKind("EmailButton")

type buttonNode struct {
	ast.BaseInline
	url   []byte
	label []byte
}

func (n *buttonNode) Kind() ast.NodeKind { return kindButton }

func (n *buttonNode) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, nil, nil)
}

type buttonParser struct{}

func (buttonParser) Trigger() []byte { return []byte{'['} }

func (buttonParser) Parse(parent ast.Node, block text.Reader, pc gmparser.Context) ast.Node {
	line, _ := block.PeekLine()
	if !bytes.HasPrefix(line, []byte(buttonMarker)) {
		return nil
	}

	labelEnd := bytes.IndexByte(line[len(buttonMarker):], ']')
	if labelEnd < 0 {
		return nil
	}
	labelEnd += len(buttonMarker)

	if labelEnd+1 >= len(line) || line[labelEnd+1] != '(' {
		return nil
	}
	urlEnd := bytes.IndexByte(line[labelEnd+2:], ')')
	if urlEnd < 0 {
		return nil
	}
	urlEnd += labelEnd + 2

	n := &buttonNode{
		label: line[len(buttonMarker):labelEnd],
		url:   line[labelEnd+2 : urlEnd],
	}
	block.Advance(urlEnd + 1)
	return n
}

type buttonRenderer struct{}

func (r buttonRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(kindButton, r.render)
}

func (buttonRenderer) render(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*buttonNode)
	_, _ = w.WriteString(`<a href="`)
	_, _ = w.Write(util.EscapeHTML(n.url))
	_, _ = w.WriteString(`" class="btn">`)
	_, _ = w.Write(util.EscapeHTML(n.label))
	_, _ = w.WriteString(`</a>`)
	return ast.WalkContinue, nil
}

type buttonExtension struct{}

func newButtonExtension() goldmark.Extender { return buttonExtension{} }

func (buttonExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(gmparser.WithInlineParsers(
		util.Prioritized(buttonParser{}, 50),
	))
	m.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(buttonRenderer{}, 50),
	))
}
