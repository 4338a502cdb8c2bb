package formatter

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Formatter 把生成的 HTML 重写成公众号安全的内联样式形式。
// 整个变换是树上的确定性重写，不依赖文档内容。
type Formatter struct {
	styles StyleTable
}

func New(styles StyleTable) *Formatter {
	if styles == nil {
		styles = DefaultStyles
	}
	return &Formatter{styles: styles}
}

// Normalize 逐标签套用样式表、拍平 figure 包装、最外层包一个带标记的容器。
// 对自身输出再跑一遍，除 figure→p 是单向变换外样式保持不变。
func (f *Formatter) Normalize(fragment string) (string, error) {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return "", err
	}
	// 已经包过容器的文档先拆包，避免容器层层嵌套。
	if len(nodes) == 1 && isContainer(nodes[0]) {
		nodes = detachChildren(nodes[0])
	}
	for _, n := range nodes {
		f.apply(n)
	}
	for _, n := range nodes {
		flattenFigures(n)
	}
	return renderContainer(nodes)
}

func (f *Formatter) apply(n *html.Node) {
	if n.Type == html.ElementNode {
		if n.Data == "img" {
			// 宽高交给容器控制，图片自带的尺寸属性会顶掉 max-width。
			removeAttr(n, "width")
			removeAttr(n, "height")
		}
		setAttr(n, "style", mergeBoxSizing(f.styles[n.Data]))
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		f.apply(c)
	}
}

// flattenFigures 把 figure/figcaption 改名为 p。公众号会丢掉这两个标签的语义，
// 改名发生在套样式之后，所以包装元素保留的是 figure 自己的容器样式。
func flattenFigures(n *html.Node) {
	if n.Type == html.ElementNode && (n.Data == "figure" || n.Data == "figcaption") {
		n.Data = "p"
		n.DataAtom = atom.P
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		flattenFigures(c)
	}
}

// PlainText 把 HTML 片段投影成纯文本，块级元素后补换行。
func PlainText(fragment string) string {
	nodes, err := parseFragment(fragment)
	if err != nil {
		return ""
	}
	var b strings.Builder
	for _, n := range nodes {
		collectText(n, &b)
	}
	return strings.TrimSpace(b.String())
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
	if n.Type == html.ElementNode {
		switch n.Data {
		case "p", "h1", "h2", "h3", "li", "figure", "br":
			b.WriteString("\n")
		}
	}
}

// --- tree helpers ---

func parseFragment(fragment string) ([]*html.Node, error) {
	ctx := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctx)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
	return nodes, nil
}

func renderContainer(nodes []*html.Node) (string, error) {
	container := &html.Node{
		Type:     html.ElementNode,
		Data:     "section",
		DataAtom: atom.Section,
		Attr: []html.Attribute{
			{Key: "data-tool", Val: Marker},
			{Key: "style", Val: mergeBoxSizing(ContainerStyle)},
		},
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, container); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func isContainer(n *html.Node) bool {
	return n.Type == html.ElementNode && n.Data == "section" && getAttr(n, "data-tool") == Marker
}

func detachChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for n.FirstChild != nil {
		c := n.FirstChild
		n.RemoveChild(c)
		out = append(out, c)
	}
	return out
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	out := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			out = append(out, a)
		}
	}
	n.Attr = out
}
