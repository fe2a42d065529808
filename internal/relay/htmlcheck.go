package relay

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// voidElements are HTML elements that never take a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true, "!doctype": true,
}

// checkTagBalance reports the first unclosed, unexpected or mismatched tag.
func checkTagBalance(doc string) error {
	var stack []string
	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); !errors.Is(err, io.EOF) {
				return fmt.Errorf("tokenize html: %w", err)
			}
			if len(stack) > 0 {
				return fmt.Errorf("unclosed tags: %v", stack)
			}
			return nil
		case html.StartTagToken:
			tn, _ := z.TagName()
			if name := string(tn); !voidElements[name] {
				stack = append(stack, name)
			}
		case html.EndTagToken:
			tn, _ := z.TagName()
			name := string(tn)
			if voidElements[name] {
				continue
			}
			if len(stack) == 0 {
				return fmt.Errorf("unexpected </%s>", name)
			}
			if last := stack[len(stack)-1]; last != name {
				return fmt.Errorf("expected </%s>, got </%s>", last, name)
			}
			stack = stack[:len(stack)-1]
		}
	}
}
