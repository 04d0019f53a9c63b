package importer

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ParseNetscape reads a Netscape-format bookmarks file (the export
// format of every major browser) and returns one entry per anchor tag,
// taking the href attribute as the URL and the anchor text as the
// title. Folder structure in the file is ignored.
func ParseNetscape(r io.Reader) ([]Entry, error) {
	z := html.NewTokenizer(r)

	var entries []Entry
Loop:
	for {
		tt := z.Next()

		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return nil, err
			}
			break Loop
		case html.StartTagToken:
			token := z.Token()
			if token.DataAtom != atom.A {
				continue
			}

			entry := Entry{}
			for _, attr := range token.Attr {
				if strings.EqualFold(attr.Key, "href") {
					entry.URL = attr.Val
				}
			}
			if z.Next() == html.TextToken {
				entry.Title = strings.TrimSpace(z.Token().Data)
			}
			if entry.URL == "" {
				continue
			}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}
