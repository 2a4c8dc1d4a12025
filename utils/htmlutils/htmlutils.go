// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for working with HTML.
package htmlutils

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NodeText appends the trimmed text content of n to sb, one space between
// text nodes.
func NodeText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		tmp := strings.Join(strings.Fields(n.Data), " ")
		if len(tmp) > 0 {
			if sb.Len() != 0 {
				sb.WriteByte(' ')
			}

			sb.WriteString(tmp)
		}

		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		NodeText(child, sb)
	}
}

// FindFirst returns the first element of type a in document order, or nil.
func FindFirst(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := FindFirst(child, a); found != nil {
			return found
		}
	}

	return nil
}

// Attr returns the value of attribute key, or "".
func Attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}

// AsNode parses an io.Reader as an HTML node.
func AsNode(r io.Reader) (*html.Node, error) {
	n, err := html.Parse(r)
	if nil != err {
		return nil, fmt.Errorf("parsing body as HTML: %w", err)
	}

	if err := failIfSignIn(n); err != nil {
		return nil, err
	}

	return n, nil
}

// ErrSignInRequired is returned when a Google sign in page is served instead
// of the document, which is what happens with sheets that are not shared.
var ErrSignInRequired = errors.New("sign in required: the document is not shared publicly")

func failIfSignIn(n *html.Node) error {
	head := FindFirst(n, atom.Head)
	if head == nil {
		return nil
	}

	title := FindFirst(head, atom.Title)
	if title == nil {
		return nil
	}

	sb := strings.Builder{}
	NodeText(title, &sb)

	text := strings.ToLower(sb.String())
	if strings.Contains(text, "google") && (strings.Contains(text, "sign in") || strings.Contains(text, "sign-in")) {
		return ErrSignInRequired
	}

	return nil
}
