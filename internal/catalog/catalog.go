// Package catalog extracts product listings from saved catalog HTML pages.
package catalog

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jmylchreest/glazecat/internal/compression"
	"golang.org/x/net/html"
)

// Defaults matching the manufacturer's product grid markup.
const (
	DefaultBlockSelector = "div.mayco-product"
	DefaultImageSelector = "img.product-featured-image"
	DefaultConeLabel     = "Cone 06"
	DefaultCodePrefix    = "SC-"
)

// Product is one catalog entry.
type Product struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// Options controls how a page is parsed.
type Options struct {
	// BlockSelector selects one element per product.
	BlockSelector string

	// ImageSelector selects the featured image inside a block.
	ImageSelector string

	// ConeLabel must appear in the block (or ConeSelector) text.
	ConeLabel string

	// ConeSelector narrows the cone check to a sub-element, e.g. "small em".
	// Empty means the whole block.
	ConeSelector string

	// CodePattern matches a code line. Group 1 is the code and the optional
	// group 2 is a name on the same line. Defaults to CodeRegexp(DefaultCodePrefix).
	CodePattern *regexp.Regexp

	// BaseURL resolves relative image URLs.
	BaseURL string
}

// CodeRegexp builds the default code pattern for a product prefix such as "SC-".
func CodeRegexp(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`^(` + regexp.QuoteMeta(prefix) + `\d+[A-Za-z]?)(?:\s+(.*))?$`)
}

func (o Options) withDefaults() Options {
	if o.BlockSelector == "" {
		o.BlockSelector = DefaultBlockSelector
	}
	if o.ImageSelector == "" {
		o.ImageSelector = DefaultImageSelector
	}
	if o.ConeLabel == "" {
		o.ConeLabel = DefaultConeLabel
	}
	if o.CodePattern == nil {
		o.CodePattern = CodeRegexp(DefaultCodePrefix)
	}
	return o
}

// ParseError describes a product block that matched the category but could
// not be turned into a Product.
type ParseError struct {
	Index  int
	Code   string
	Reason string
}

func (e *ParseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("product block %d (%s): %s", e.Index, e.Code, e.Reason)
	}
	return fmt.Sprintf("product block %d: %s", e.Index, e.Reason)
}

// Result holds the products of a page in discovery order.
type Result struct {
	Products []Product
	Skipped  []*ParseError
}

// Parse extracts every product of the configured category from doc.
func Parse(doc *goquery.Document, opts Options) Result {
	opts = opts.withDefaults()
	label := collapseSpace(opts.ConeLabel)

	var base *url.URL
	if opts.BaseURL != "" {
		base, _ = url.Parse(opts.BaseURL)
	}

	var res Result
	doc.Find(opts.BlockSelector).Each(func(i int, block *goquery.Selection) {
		if !matchesCone(block, opts.ConeSelector, label) {
			return
		}

		product, perr := parseBlock(block, opts, label, base)
		if perr != nil {
			perr.Index = i
			res.Skipped = append(res.Skipped, perr)
			return
		}
		res.Products = append(res.Products, product)
	})
	return res
}

// ParseReader parses HTML from r.
func ParseReader(r io.Reader, opts Options) (Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return Result{}, fmt.Errorf("failed to parse html: %w", err)
	}
	return Parse(doc, opts), nil
}

// ParseFile parses a saved page, decompressing .gz, .xz and .bz2 files.
func ParseFile(path string, opts Options) (Result, error) {
	r, err := Open(path)
	if err != nil {
		return Result{}, err
	}
	defer r.Close()

	res, err := ParseReader(r, opts)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Open opens a saved catalog page.
func Open(path string) (io.ReadCloser, error) {
	r, err := compression.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog page: %w", err)
	}
	return r, nil
}

func matchesCone(block *goquery.Selection, selector, label string) bool {
	if selector == "" {
		return strings.Contains(collapseSpace(block.Text()), label)
	}
	found := false
	block.Find(selector).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		found = strings.Contains(collapseSpace(s.Text()), label)
		return !found
	})
	return found
}

func parseBlock(block *goquery.Selection, opts Options, label string, base *url.URL) (Product, *ParseError) {
	lines := textLines(block)

	var p Product
	for i, line := range lines {
		m := opts.CodePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		p.Code = m[1]
		if len(m) > 2 && m[2] != "" && !isAnnotation(m[2], label) {
			p.Name = m[2]
		} else {
			p.Name = nextName(lines[i+1:], label)
		}
		break
	}

	if p.Code == "" {
		return p, &ParseError{Reason: "no product code"}
	}
	p.Name = cleanName(p.Name, p.Code)
	if p.Name == "" {
		return p, &ParseError{Code: p.Code, Reason: "no colour name"}
	}

	img := block.Find(opts.ImageSelector).First()
	src := strings.TrimSpace(img.AttrOr("src", ""))
	if src == "" {
		src = strings.TrimSpace(img.AttrOr("data-src", ""))
	}
	if src == "" {
		return p, &ParseError{Code: p.Code, Reason: "no featured image"}
	}
	p.ImageURL = resolveURL(src, base)

	return p, nil
}

// textLines returns the trimmed, whitespace-collapsed, non-empty lines of
// every text node under the selection, skipping scripts and styles.
func textLines(sel *goquery.Selection) []string {
	var lines []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			for _, line := range strings.Split(n.Data, "\n") {
				if line = collapseSpace(line); line != "" {
					lines = append(lines, line)
				}
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return lines
}

func nextName(lines []string, label string) string {
	for _, line := range lines {
		if isAnnotation(line, label) {
			continue
		}
		return line
	}
	return ""
}

func isAnnotation(line, label string) bool {
	return strings.HasPrefix(line, "(") || strings.Contains(line, label)
}

// cleanName strips a leading copy of the code from a name.
func cleanName(name, code string) string {
	name = collapseSpace(name)
	if rest, ok := strings.CutPrefix(name, code); ok && (rest == "" || rest[0] == ' ') {
		name = strings.TrimSpace(rest)
	}
	return name
}

func resolveURL(src string, base *url.URL) string {
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	if base == nil {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil {
		return src
	}
	return base.ResolveReference(ref).String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
