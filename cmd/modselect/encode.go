package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"

	"github.com/kingrea/modselect/internal/catalog"
	"github.com/kingrea/modselect/internal/resolver"
)

const (
	formatTable = "table"
	formatText  = "text"
	formatYAML  = "yaml"
	formatJSON  = "json"
)

func encodeCandidates(w io.Writer, set resolver.CandidateSet, format string) error {
	types := set.Types()
	switch format {
	case formatYAML:
		return encodeYAML(w, types)
	case formatJSON:
		return encodeJSON(w, types)
	default:
		return encodeCandidateTable(w, types)
	}
}

func encodeCandidateTable(w io.Writer, types []catalog.Type) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Name", "Qualified Name", "Implements", "Parameters", "Description"})
	for _, typ := range types {
		params := make([]string, 0, len(typ.Parameters))
		for _, p := range typ.OrderedParameters() {
			params = append(params, fmt.Sprintf("%s: %s", p.Name, p.Constraints))
		}
		t.AppendRow(table.Row{
			typ.Signature(),
			typ.QualifiedName,
			strings.Join(typ.Implements, ", "),
			strings.Join(params, "; "),
			typ.Description,
		})
	}
	style := table.StyleLight
	style.Options.DrawBorder = false
	t.SetStyle(style)
	t.Render()
	return nil
}

// resultDocument is the yaml/json form of a resolution result.
type resultDocument struct {
	Outcome string          `json:"outcome" yaml:"outcome"`
	Type    *catalog.Closed `json:"type,omitempty" yaml:"type,omitempty"`
	Display string          `json:"display,omitempty" yaml:"display,omitempty"`
	Reason  string          `json:"reason,omitempty" yaml:"reason,omitempty"`
	Path    []string        `json:"path,omitempty" yaml:"path,omitempty"`
}

func encodeResult(w io.Writer, result resolver.Result, format string) error {
	doc := resultDocument{Outcome: result.Outcome.String()}
	if result.Resolved() {
		closed := result.Type
		doc.Type = &closed
		doc.Display = closed.String()
	} else {
		doc.Reason = string(result.Reason)
		doc.Path = result.Path
	}
	switch format {
	case formatYAML:
		return encodeYAML(w, doc)
	case formatJSON:
		return encodeJSON(w, doc)
	}
	if result.Resolved() {
		_, err := fmt.Fprintln(w, result.Type.QualifiedString())
		return err
	}
	_, err := fmt.Fprintf(w, "cancelled (%s)\n", result.Reason)
	return err
}

func encodeYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return err
	}
	return encoder.Close()
}

func encodeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
