package formatter

// StyleTable 是标签名到内联样式的静态映射。公众号编辑器会丢掉 class 和
// 外部样式表，只有写死在元素上的 style 能活下来。
type StyleTable map[string]string

// boxSizingReset 追加在每个元素的具体样式之后；追加而不是覆盖，
// 避免吃掉标签自己的规则。
const boxSizingReset = "box-sizing:border-box;"

// ContainerStyle 套在整篇文章外层的基础排版。
const ContainerStyle = "font-size:15px;line-height:1.8;letter-spacing:0.5px;color:#333333;text-align:justify;"

// Marker 标识容器节点，重复排版时据此拆包，保证容器不嵌套。
const Marker = "article-studio"

// DefaultStyles 是公众号适配的默认样式表。表是穷举式的：
// 没列出的标签只拿到 box-sizing 重置。
var DefaultStyles = StyleTable{
	"h1":         "font-size:22px;font-weight:bold;text-align:center;margin:36px 0 18px;",
	"h2":         "font-size:20px;font-weight:bold;text-align:center;margin:32px 0 16px;",
	"h3":         "font-size:17px;font-weight:bold;text-align:center;margin:24px 0 12px;",
	"p":          "margin:16px 0;text-align:justify;",
	"img":        "max-width:100%;height:auto;border-radius:4px;display:block;margin:0 auto;",
	"em":         "color:#e67e22;font-weight:600;font-style:normal;",
	"u":          "text-decoration:underline;text-decoration-color:#2f80ed;",
	"strong":     "color:#2f80ed;",
	"b":          "color:#2f80ed;",
	"ul":         "margin:16px 0;padding-left:24px;",
	"ol":         "margin:16px 0;padding-left:24px;",
	"li":         "margin:8px 0;",
	"figure":     "margin:24px 0;text-align:center;",
	"figcaption": "font-size:13px;color:#888888;text-align:center;margin-top:8px;",
}

// Inline 返回某标签最终落到元素上的样式：具体规则在前，box-sizing 重置在后。
func (t StyleTable) Inline(tag string) string {
	return mergeBoxSizing(t[tag])
}

func mergeBoxSizing(style string) string {
	if style == "" {
		return boxSizingReset
	}
	if style[len(style)-1] != ';' {
		style += ";"
	}
	return style + boxSizingReset
}
