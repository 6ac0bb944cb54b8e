package fetch

import (
	"bytes"
	"context"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/net/html"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// FetchText downloads a small text file, such as the published source name.
// It returns "" when every candidate fails or only HTML comes back.
func (f *Fetcher) FetchText(ctx context.Context, rawURL string) string {
	if strings.TrimSpace(rawURL) == "" {
		return ""
	}
	for _, candidate := range CandidateURLs(rawURL) {
		body, _, err := f.get(ctx, candidate)
		if err != nil {
			f.logger.Debug("Text download failed", zap.String("url", truncate(candidate, 90)), zap.Error(err))
			continue
		}
		if text := DecodeText(body); text != "" {
			return text
		}
	}
	return ""
}

// DecodeText decodes UTF-8 with or without a byte order mark, falling back to
// Windows-1256 for legacy Arabic files. HTML bodies decode to "".
func DecodeText(raw []byte) string {
	var text string
	if utf8.Valid(bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))) {
		decoded, err := unicode.UTF8BOM.NewDecoder().Bytes(raw)
		if err != nil {
			return ""
		}
		text = string(decoded)
	} else {
		decoded, err := charmap.Windows1256.NewDecoder().Bytes(raw)
		if err != nil {
			return ""
		}
		text = string(decoded)
	}
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "<!") {
		return ""
	}
	return text
}

// pageTitle returns the <title> text of an HTML body, if any.
func pageTitle(body []byte) string {
	z := html.NewTokenizer(bytes.NewReader(body))
	inTitle := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			name, _ := z.TagName()
			inTitle = string(name) == "title"
		case html.TextToken:
			if inTitle {
				return strings.TrimSpace(string(z.Text()))
			}
		case html.EndTagToken:
			inTitle = false
		}
	}
}
