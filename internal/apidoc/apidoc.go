// Package apidoc loads the embedded OpenAPI document describing the HTTP
// surface and serves it as JSON.
package apidoc

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/leslieo2/hotel-booking-mock/internal/constants"
)

//go:embed openapi.yaml
var embedded []byte

// Operation is one documented method and path
type Operation struct {
	Method  string   `json:"method"`
	Path    string   `json:"path"`
	Summary string   `json:"summary,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

type Document struct {
	doc        *openapi3.T
	json       []byte
	operations []Operation
	summaries  map[string]string
}

// Load parses and validates the embedded document
func Load(ctx context.Context) (*Document, error) {
	return LoadFromData(ctx, embedded)
}

// LoadFromData parses and validates an OpenAPI 3 document
func LoadFromData(ctx context.Context, data []byte) (*Document, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("OpenAPI document validation failed: %w", err)
	}

	buf, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to render OpenAPI document: %w", err)
	}

	d := &Document{doc: doc, json: buf, summaries: make(map[string]string)}
	for path, item := range doc.Paths.Map() {
		for method, op := range item.Operations() {
			method = strings.ToUpper(method)
			d.operations = append(d.operations, Operation{
				Method:  method,
				Path:    path,
				Summary: op.Summary,
				Tags:    op.Tags,
			})
			d.summaries[method+" "+path] = op.Summary
		}
	}
	sort.Slice(d.operations, func(i, j int) bool {
		if d.operations[i].Path != d.operations[j].Path {
			return d.operations[i].Path < d.operations[j].Path
		}
		return d.operations[i].Method < d.operations[j].Method
	})

	return d, nil
}

func (d *Document) Title() string   { return d.doc.Info.Title }
func (d *Document) Version() string { return d.doc.Info.Version }

// Operations returns the documented operations sorted by path, then method
func (d *Document) Operations() []Operation {
	return append([]Operation(nil), d.operations...)
}

// Summary returns the summary documented for a router pattern. The exact
// match suffix "{$}" is ignored.
func (d *Document) Summary(method, path string) string {
	path = strings.TrimSuffix(path, "{$}")
	return d.summaries[method+" "+path]
}

// ServeHTTP writes the document as JSON
func (d *Document) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON+"; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.json)
}
