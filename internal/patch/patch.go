// Package patch converts issues that carry a canonical replacement clause
// into diff-match-patch text, so the offending wording can be corrected
// mechanically in the source document.
package patch

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"corpagent/internal/schema"
)

// clausePatch is the internal processing type for patch generation.
type clausePatch struct {
	docID   string
	section string
	before  string
	after   string
}

// GenerateDiff converts issues with both a matched excerpt and a replacement
// clause into a diff-match-patch string suitable for --patch-out. Issues
// whose matched text cannot be located in their document are skipped with a
// warning written to w (may be nil). Texts are normalized before diffing to
// avoid spurious whitespace diffs.
func GenerateDiff(docs []schema.Document, issues []schema.Issue, w io.Writer) string {
	raws := make(map[string]string, len(docs))
	norms := make(map[string]string, len(docs))
	for _, d := range docs {
		raws[d.DocID] = d.RawText
		norms[d.DocID] = normalize(d.RawText)
	}

	dmp := diffmatchpatch.New()
	var out strings.Builder

	for _, issue := range issues {
		if issue.MatchedText == "" || issue.Replacement == "" {
			continue
		}

		cp, ok := resolve(issue, raws[issue.DocID], norms[issue.DocID])
		if !ok {
			if w != nil {
				fmt.Fprintf(w, "WARN: patch for %s/%s could not be located in document text\n", issue.DocID, issue.Section)
			}
			continue
		}

		diffs := dmp.DiffMain(cp.before, cp.after, false)
		patchList := dmp.PatchMake(cp.before, diffs)
		patchText := dmp.PatchToText(patchList)
		if patchText == "" {
			continue
		}

		out.WriteString(fmt.Sprintf("# patch for %s/%s (%s)\n", cp.docID, cp.section, issue.Category))
		out.WriteString(patchText)
		out.WriteString("\n")
	}

	return out.String()
}

// resolve locates the issue's matched text in its document using exact or
// normalized matching. Returns false when the excerpt cannot be found.
func resolve(issue schema.Issue, raw, norm string) (clausePatch, bool) {
	cp := clausePatch{docID: issue.DocID, section: issue.Section}

	if strings.Contains(raw, issue.MatchedText) {
		cp.before = issue.MatchedText
		cp.after = issue.Replacement
		return cp, true
	}

	normBefore := normalize(issue.MatchedText)
	if strings.Contains(norm, normBefore) {
		cp.before = normBefore
		cp.after = normalize(issue.Replacement)
		return cp, true
	}

	return clausePatch{}, false
}

// normalize trims trailing whitespace from each line and converts CRLF to LF.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
