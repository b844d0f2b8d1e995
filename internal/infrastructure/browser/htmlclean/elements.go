package htmlclean

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Element is an interactive element found in page markup.
type Element struct {
	Tag      string `json:"tag"`
	Text     string `json:"text,omitempty"`
	Selector string `json:"selector"`
}

const maxElementText = 60

// InteractiveElements lists buttons, links, inputs and test-hooked elements
// with the most stable selector each one offers, in document order.
func InteractiveElements(rawHTML string, limit int) []Element {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil
	}

	var result []Element
	seen := make(map[string]bool)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if limit > 0 && len(result) >= limit {
			return
		}
		if n.Type == html.ElementNode && isInteractive(n) {
			selector := bestSelector(n)
			if selector != "" && !seen[selector] {
				seen[selector] = true
				result = append(result, Element{
					Tag:      n.Data,
					Text:     shorten(textOf(n), maxElementText),
					Selector: selector,
				})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result
}

// Summary renders elements one per line, the form used as locator context.
func Summary(elements []Element) string {
	var sb strings.Builder
	for _, el := range elements {
		if el.Text != "" {
			fmt.Fprintf(&sb, "%s %s %q\n", el.Tag, el.Selector, el.Text)
		} else {
			fmt.Fprintf(&sb, "%s %s\n", el.Tag, el.Selector)
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

func isInteractive(n *html.Node) bool {
	switch n.Data {
	case "button", "a", "input", "select", "textarea":
		return true
	}
	return attr(n, "data-test") != "" || attr(n, "role") == "button"
}

func bestSelector(n *html.Node) string {
	for _, key := range []string{"data-test", "data-testid", "data-test-id"} {
		if v := attr(n, key); v != "" {
			return fmt.Sprintf("[%s=%q]", key, v)
		}
	}
	if id := attr(n, "id"); id != "" {
		return "#" + id
	}
	if name := attr(n, "name"); name != "" {
		return fmt.Sprintf("%s[name=%q]", n.Data, name)
	}
	if class := strings.Fields(attr(n, "class")); len(class) > 0 {
		return n.Data + "." + class[0]
	}
	return ""
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	if n.Data == "input" {
		if v := attr(n, "value"); v != "" {
			return v
		}
		return attr(n, "placeholder")
	}

	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			sb.WriteByte(' ')
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			collect(cc)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func shorten(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
