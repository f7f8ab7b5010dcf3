package util

import (
	"strings"

	"golang.org/x/net/html"
)

// ParseLinks finds links ending with a specific suffix within an HTML node tree.
// It performs a depth-first search for <a> tags and checks their href attribute.
func ParseLinks(n *html.Node, suffix string) []string {
	var out []string
	var walk func(*html.Node)

	walk = func(nd *html.Node) {
		if nd.Type == html.ElementNode && nd.Data == "a" {
			for _, a := range nd.Attr {
				if a.Key == "href" {
					if strings.HasSuffix(strings.ToLower(a.Val), strings.ToLower(suffix)) && a.Val != "/" {
						out = append(out, a.Val)
					}
					break
				}
			}
		}
		for c := nd.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(n)
	return out
}
