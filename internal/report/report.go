// Package report renders verification results for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/pedrohavay/namescreen/screen"
)

// Writer prints one result per Write call, as text or JSON lines.
type Writer struct {
	w      io.Writer
	json   bool
	red    *color.Color
	green  *color.Color
	yellow *color.Color
	cyan   *color.Color
}

// NewWriter creates a result writer. noColor disables ANSI colours globally.
func NewWriter(w io.Writer, asJSON, noColor bool) *Writer {
	if noColor {
		color.NoColor = true
	}
	return &Writer{
		w:      w,
		json:   asJSON,
		red:    color.New(color.FgRed, color.Bold),
		green:  color.New(color.FgGreen),
		yellow: color.New(color.FgYellow),
		cyan:   color.New(color.FgCyan),
	}
}

type jsonLine struct {
	Input string `json:"input"`
	screen.MatchResult
	Rules []string `json:"rules,omitempty"`
}

// Write renders the result of screening input.
func (rw *Writer) Write(input string, res screen.MatchResult) error {
	var rules []string
	if res.MetricVector != nil {
		rules = screen.ExplainDecision(*res.MetricVector)
	}
	if rw.json {
		return json.NewEncoder(rw.w).Encode(jsonLine{Input: input, MatchResult: res, Rules: rules})
	}

	if !res.IsSanctioned {
		status := rw.green.Sprint("CLEAR")
		if res.Msg == screen.MsgInvalidName {
			status = rw.yellow.Sprint("INVALID")
		}
		_, err := fmt.Fprintf(rw.w, "%s  %s: %s\n", status, input, res.Msg)
		return err
	}
	mv := res.MetricVector
	_, err := fmt.Fprintf(rw.w, "%s  %s ~ %s (id %s)\n"+
		"  Jaro-Winkler similarity:   %.3f\n"+
		"  Jaccard similarity:        %.3f\n"+
		"  Levenshtein distance norm: %.3f\n"+
		"  Phonetic matches:          %d\n"+
		"  Rules: %s\n",
		rw.red.Sprint("MATCH"), input, rw.cyan.Sprint(res.SanctionedName), res.EntryID,
		mv.Jaro, mv.Jaccard, mv.LevenshteinNorm, mv.PhoneticMatches,
		strings.Join(rules, ", "))
	return err
}
