// Copyright 2025 The SheetMap Authors
// SPDX-License-Identifier: Apache-2.0

package htmlutils

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func TestNodeText(t *testing.T) {
	tests := []struct {
		expected string
		input    string
	}{
		{"foo bar", "<div><pre>foo</pre><span>bar</span>"},
		{"35.8 N", "<td>  35.8\n N </td>"},
		{"", "<div><span> </span></div>"},
	}

	for _, test := range tests {
		n, err := html.Parse(strings.NewReader(test.input))
		if err != nil {
			t.Fatalf("parsing HTML `%s': %s", test.input, err)
		}

		sb := strings.Builder{}
		NodeText(n, &sb)

		if got := sb.String(); got != test.expected {
			t.Errorf("`%s': expected `%v' but got `%v'", test.input, test.expected, got)
		}
	}
}

func TestFindFirstAndAttr(t *testing.T) {
	n, err := html.Parse(strings.NewReader(`<div><table class="waffle"><tr><td>a</td></tr></table><table class="other"></table></div>`))
	if err != nil {
		t.Fatal(err)
	}

	table := FindFirst(n, atom.Table)
	if table == nil {
		t.Fatal("table not found")
	}

	if got := Attr(table, "class"); got != "waffle" {
		t.Errorf("expected class `waffle' but got `%s'", got)
	}

	if got := Attr(table, "id"); got != "" {
		t.Errorf("expected no id but got `%s'", got)
	}

	if FindFirst(n, atom.Form) != nil {
		t.Error("found a form that does not exist")
	}
}

func TestAsNode_SignIn(t *testing.T) {
	htmlData := `<!DOCTYPE html>
<html lang="en">
  <head>
    <title>Google Sheets - Sign in</title>
  </head>
</html>`

	_, err := AsNode(strings.NewReader(htmlData))
	if err == nil {
		t.Fatal("was expecting an error")
	} else if !errors.Is(err, ErrSignInRequired) {
		t.Errorf("expect %s got %s", ErrSignInRequired, err)
	}
}

func TestAsNode_Published(t *testing.T) {
	htmlData := `<!DOCTYPE html>
<html lang="en">
  <head>
    <title>Stations - Google Drive</title>
  </head>
  <body><table><tr><td>lat</td></tr></table></body>
</html>`

	n, err := AsNode(strings.NewReader(htmlData))
	if err != nil {
		t.Fatalf("wasn't expecting an error: %s", err)
	}

	if FindFirst(n, atom.Table) == nil {
		t.Error("table not found")
	}
}
