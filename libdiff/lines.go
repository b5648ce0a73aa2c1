package libdiff

import (
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"
)

type Op int

const (
	Equal Op = iota
	Delete
	Insert
)

// Line is one line of a line diff, without its newline.
type Line struct {
	Op   Op
	Text string
}

// DiffLines compares from and to line by line.
func DiffLines(from, to string) []Line {
	diffCfg := diffpatch.New()
	a, b, lines := diffCfg.DiffLinesToChars(from, to)
	diffs := diffCfg.DiffCharsToLines(diffCfg.DiffMain(a, b, false), lines)
	var res []Line
	for i := range diffs {
		diff := &diffs[i]
		op := Equal
		switch diff.Type {
		case diffpatch.DiffInsert:
			op = Insert
		case diffpatch.DiffDelete:
			op = Delete
		}
		for _, ln := range strings.SplitAfter(diff.Text, "\n") {
			if ln == "" {
				continue
			}
			res = append(res, Line{Op: op, Text: strings.TrimSuffix(ln, "\n")})
		}
	}
	return res
}

// Hunks renders lines with up to context unchanged lines around each
// change, separating distant changes with "@@". It is empty when nothing
// changed.
func Hunks(lines []Line, context int) string {
	keep := make([]bool, len(lines))
	for i, ln := range lines {
		if ln.Op == Equal {
			continue
		}
		for j := max(0, i-context); j <= min(len(lines)-1, i+context); j++ {
			keep[j] = true
		}
	}
	var sb strings.Builder
	last := -1
	for i, ln := range lines {
		if !keep[i] {
			continue
		}
		if i != last+1 {
			sb.WriteString("@@\n")
		}
		last = i
		switch ln.Op {
		case Insert:
			sb.WriteByte('+')
		case Delete:
			sb.WriteByte('-')
		default:
			sb.WriteByte(' ')
		}
		sb.WriteString(ln.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}
