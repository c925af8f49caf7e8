package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ElementType filters search results by the kind of element.
type ElementType string

const (
	TypeAny      ElementType = ""
	TypeConcept  ElementType = "Concept"
	TypeRelation ElementType = "Relation"
	TypeInstance ElementType = "Instance"
)

// ElementTypes lists the filterable element types in display order.
var ElementTypes = []ElementType{TypeConcept, TypeRelation, TypeInstance}

// ParseElementType accepts a type name in any case. An empty string means no filter.
func ParseElementType(s string) (ElementType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TypeAny, nil
	}
	for _, t := range ElementTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return TypeAny, fmt.Errorf("unknown element type %q (want Concept, Relation or Instance)", s)
}

// Query is one search request. It is superseded by the next one.
type Query struct {
	Text       string
	OntologyID string
	Type       ElementType
	Page       int
}

// Blank reports whether the query has no searchable text.
func (q Query) Blank() bool {
	return strings.TrimSpace(q.Text) == ""
}

// Normalized returns the query with trimmed text and a page of at least 1.
func (q Query) Normalized() Query {
	q.Text = strings.TrimSpace(q.Text)
	q.OntologyID = strings.TrimSpace(q.OntologyID)
	if q.Page < 1 {
		q.Page = 1
	}
	return q
}

// WithText returns a copy of q searching for text, starting again at page 1.
func (q Query) WithText(text string) Query {
	q.Text = text
	q.Page = 1
	return q
}

// FileMetadata describes where an ontology came from.
type FileMetadata struct {
	SourceFile     string    `json:"source_file"`
	Directory      string    `json:"directory"`
	FileDate       time.Time `json:"file_date"`
	SHA256Hash     string    `json:"sha256_hash"`
	OntologyFile   string    `json:"ontology_file"`
	ContextFile    string    `json:"context_file,omitempty"`
	ProcessingDate time.Time `json:"processing_date"`
}

// Lines returns the metadata as label/value pairs for display.
func (m FileMetadata) Lines() [][2]string {
	lines := [][2]string{
		{"Source file", m.SourceFile},
		{"Directory", m.Directory},
		{"File date", formatTime(m.FileDate)},
		{"SHA-256", m.SHA256Hash},
		{"Ontology file", m.OntologyFile},
	}
	if m.ContextFile != "" {
		lines = append(lines, [2]string{"Context file", m.ContextFile})
	}
	lines = append(lines, [2]string{"Processed", formatTime(m.ProcessingDate)})
	return lines
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

// SearchResult is one hit from the backend, in relevance order.
type SearchResult struct {
	ElementName string        `json:"ElementName"`
	Description string        `json:"Description"`
	ElementType string        `json:"ElementType,omitempty"`
	OntologyID  string        `json:"OntologyID,omitempty"`
	Source      *FileMetadata `json:"Source,omitempty"`
}

// Context is an excerpt around one occurrence of an element in a source document.
type Context struct {
	Before   []string `json:"before"`
	After    []string `json:"after"`
	Element  string   `json:"element"`
	Position int      `json:"position"`
}

// ElementDetail is the full record of one element.
type ElementDetail struct {
	Name        string    `json:"Name"`
	Type        string    `json:"Type"`
	Description string    `json:"Description"`
	Positions   []int     `json:"Positions"`
	Contexts    []Context `json:"Contexts"`
}

// UnmarshalJSON fills absent or null fields with empty values so views never see nil.
func (d *ElementDetail) UnmarshalJSON(data []byte) error {
	type plain ElementDetail
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = ElementDetail(p)
	d.fillDefaults()
	return nil
}

func (d *ElementDetail) fillDefaults() {
	if d.Positions == nil {
		d.Positions = []int{}
	}
	if d.Contexts == nil {
		d.Contexts = []Context{}
	}
	for i := range d.Contexts {
		if d.Contexts[i].Before == nil {
			d.Contexts[i].Before = []string{}
		}
		if d.Contexts[i].After == nil {
			d.Contexts[i].After = []string{}
		}
	}
}

// Relation is a directed, typed edge between two element names.
type Relation struct {
	Source string `json:"Source"`
	Type   string `json:"Type"`
	Target string `json:"Target"`
}

// Ontology is one loaded ontology as listed by the backend.
type Ontology struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Source *FileMetadata `json:"Source,omitempty"`
}

// ElementView is the merged, view-ready record for the focus element.
type ElementView struct {
	Detail    ElementDetail
	Relations []Relation
	Source    *FileMetadata
}
