package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/commhub/backend/internal/domain/communication"
	"go.uber.org/zap"
)

var (
	textRunPattern  = regexp.MustCompile(`<w:t(?:\s[^>]*)?>([^<]*)</w:t>`)
	paragraphEndTag = regexp.MustCompile(`</w:p>`)
)

// Merger renders {{name}} placeholders in document, header and footer parts
type Merger struct {
	keepUnresolved bool
	logger         *zap.Logger
}

// MergerOption configures a Merger
type MergerOption func(*Merger)

// WithKeepUnresolved leaves tokens without a value in place instead of
// rendering them empty
func WithKeepUnresolved() MergerOption {
	return func(m *Merger) {
		m.keepUnresolved = true
	}
}

// WithMergerLogger sets the logger
func WithMergerLogger(logger *zap.Logger) MergerOption {
	return func(m *Merger) {
		m.logger = logger
	}
}

// NewMerger creates a merge engine
func NewMerger(opts ...MergerOption) *Merger {
	m := &Merger{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Merge returns a new package with placeholders substituted from data.
// Keys match exactly first, then case-insensitively.
func (m *Merger) Merge(ctx context.Context, template []byte, data map[string]string) ([]byte, error) {
	out, err := m.merge(ctx, template, newLookup(data))
	if err != nil {
		m.logger.Error("Document merge failed", zap.Error(err), zap.Int("template_size", len(template)))
		return nil, communication.Failure(communication.ErrMergeFailed, err)
	}
	return out, nil
}

func (m *Merger) merge(ctx context.Context, template []byte, lookup lookup) ([]byte, error) {
	zr, err := openPackage(template)
	if err != nil {
		return nil, err
	}
	if findPart(zr, DocumentPart) == nil {
		return nil, fmt.Errorf("%s not found", DocumentPart)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !isTextPart(f.Name) {
			if err := zw.Copy(f); err != nil {
				return nil, fmt.Errorf("copy %s: %w", f.Name, err)
			}
			continue
		}

		part, err := readPart(f)
		if err != nil {
			return nil, err
		}
		rendered := m.renderPart(part, lookup)

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   zip.Deflate,
			Modified: f.Modified,
		})
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", f.Name, err)
		}
		if _, err := w.Write(rendered); err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalize package: %w", err)
	}
	return buf.Bytes(), nil
}

type textRun struct {
	start, end int // span of the whole <w:t> element
	text       string
}

// renderPart substitutes placeholders paragraph by paragraph. Tokens are
// located once in the template text of each paragraph, so substituted values
// are never scanned again. A paragraph whose runs need no change is left
// byte-for-byte intact; a token split across runs is rendered into the run
// where it starts and the rest of it is cut from the following runs.
func (m *Merger) renderPart(part []byte, lookup lookup) []byte {
	type edit struct {
		start, end int
		repl       string
	}
	var edits []edit
	for _, runs := range paragraphRuns(part) {
		rendered, changed := m.renderRuns(runs, lookup)
		if !changed {
			continue
		}
		for i, r := range runs {
			if rendered[i] != r.text {
				edits = append(edits, edit{start: r.start, end: r.end, repl: textElement(rendered[i])})
			}
		}
	}
	if len(edits) == 0 {
		return part
	}

	var out bytes.Buffer
	out.Grow(len(part))
	last := 0
	for _, e := range edits {
		out.Write(part[last:e.start])
		out.WriteString(e.repl)
		last = e.end
	}
	out.Write(part[last:])
	return out.Bytes()
}

// paragraphRuns groups the <w:t> elements of a part by enclosing paragraph
func paragraphRuns(part []byte) [][]textRun {
	matches := textRunPattern.FindAllSubmatchIndex(part, -1)
	if len(matches) == 0 {
		return nil
	}
	paraEnds := paragraphEndTag.FindAllIndex(part, -1)

	var groups [][]textRun
	var current []textRun
	p := 0
	for _, mt := range matches {
		for p < len(paraEnds) && paraEnds[p][0] < mt[0] {
			if len(current) > 0 {
				groups = append(groups, current)
				current = nil
			}
			p++
		}
		current = append(current, textRun{
			start: mt[0],
			end:   mt[1],
			text:  html.UnescapeString(string(part[mt[2]:mt[3]])),
		})
	}
	if len(current) > 0 {
		groups = append(groups, current)
	}
	return groups
}

// renderRuns returns the new text of each run of one paragraph
func (m *Merger) renderRuns(runs []textRun, lookup lookup) ([]string, bool) {
	var joined strings.Builder
	bounds := make([]int, len(runs)+1)
	for i, r := range runs {
		joined.WriteString(r.text)
		bounds[i+1] = joined.Len()
	}
	text := joined.String()
	tokens := tokenPattern.FindAllStringSubmatchIndex(text, -1)
	if len(tokens) == 0 {
		return nil, false
	}

	out := make([]strings.Builder, len(runs))
	// runAt finds the run holding byte offset pos of the joined text
	runAt := func(pos int) int {
		return sort.Search(len(runs), func(i int) bool { return bounds[i+1] > pos })
	}
	copyText := func(from, to int) {
		for from < to {
			i := runAt(from)
			stop := min(to, bounds[i+1])
			out[i].WriteString(text[from:stop])
			from = stop
		}
	}

	cursor := 0
	for _, tok := range tokens {
		copyText(cursor, tok[0])
		name := strings.TrimSpace(text[tok[2]:tok[3]])
		out[runAt(tok[0])].WriteString(m.resolve(text[tok[0]:tok[1]], name, lookup))
		cursor = tok[1]
	}
	copyText(cursor, len(text))

	rendered := make([]string, len(runs))
	changed := false
	for i := range runs {
		rendered[i] = out[i].String()
		if rendered[i] != runs[i].text {
			changed = true
		}
	}
	return rendered, changed
}

func (m *Merger) resolve(token, name string, lookup lookup) string {
	if v, ok := lookup.get(name); ok {
		return v
	}
	if m.keepUnresolved {
		return token
	}
	return ""
}

func textElement(text string) string {
	var b strings.Builder
	b.WriteString(`<w:t xml:space="preserve">`)
	_ = xml.EscapeText(&b, []byte(text))
	b.WriteString(`</w:t>`)
	return b.String()
}

type lookup struct {
	exact  map[string]string
	folded map[string]string
}

func newLookup(data map[string]string) lookup {
	l := lookup{exact: data, folded: make(map[string]string, len(data))}
	for k, v := range data {
		l.folded[strings.ToLower(k)] = v
	}
	return l
}

func (l lookup) get(name string) (string, bool) {
	if v, ok := l.exact[name]; ok {
		return v, true
	}
	v, ok := l.folded[strings.ToLower(name)]
	return v, ok
}

var _ communication.MergeEngine = (*Merger)(nil)
