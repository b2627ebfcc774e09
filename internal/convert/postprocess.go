package convert

import (
	"regexp"
	"strings"
)

func restoreProtected(d *Document) error {
	d.Content = d.vault.Restore(d.Content)
	return nil
}

var doubledCodeRe = regexp.MustCompile("``([^`\n]+)``")

// collapseCodeDelimiters turns ``x`` into `x` when x holds no backtick.
// It runs while code spans are still protected, so it only sees delimiters
// left in plain text. Text that contains no such pair is returned unchanged.
func collapseCodeDelimiters(content string) string {
	if !strings.Contains(content, "``") {
		return content
	}
	return mapLinesOutsideFences(content, func(line string) string {
		return doubledCodeRe.ReplaceAllStringFunc(line, func(m string) string {
			inner := m[2 : len(m)-2]
			if strings.TrimSpace(inner) == "" {
				return m
			}
			return "`" + inner + "`"
		})
	})
}

// finishTableRow turns a row rendered by convertTables into a pipe row.
// Every literal pipe is escaped, including those inside code spans and
// link labels, since GFM splits cells on them.
func finishTableRow(row string) string {
	row = strings.ReplaceAll(row, "|", `\|`)
	return strings.ReplaceAll(row, string(cellSeparator), "|")
}

// finishTables completes table rows with their protected spans restored and
// protects the result, so no later repair touches cell contents.
func finishTables(d *Document) error {
	if !strings.ContainsRune(d.Content, cellSeparator) {
		return nil
	}
	d.Content = mapLines(d.Content, func(line string) string {
		if !strings.ContainsRune(line, cellSeparator) {
			return line
		}
		return d.Protect(finishTableRow(d.vault.Restore(line)))
	})
	return nil
}

func postprocessTransforms() []Transformer {
	return []Transformer{
		&funcTransform{
			name:  "table_cells",
			stage: StagePostprocess,
			deps: TransformDependencies{
				MustRunBefore:        []string{"collapse_code_delimiters", "restore_protected"},
				ProducesPlaceholders: true,
			},
			fn: finishTables,
		},
		&funcTransform{
			name:  "collapse_code_delimiters",
			stage: StagePostprocess,
			deps:  TransformDependencies{MustRunBefore: []string{"restore_protected"}},
			fn:    contentRewrite(collapseCodeDelimiters),
		},
		&funcTransform{
			name:  "restore_protected",
			stage: StagePostprocess,
			fn:    restoreProtected,
		},
	}
}
