// Package document converts workflows to and from the portable JSON
// snapshot used for export, import and engine submission.
package document

import (
	stdjson "encoding/json"
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/avi3tal/flowforge/internal/builder"
)

// RawMessage is kept compatible with encoding/json's RawMessage so config
// payloads pass through decoding untouched until the node kind is known.
type RawMessage = stdjson.RawMessage

// Document is the portable snapshot of a workflow. ExportedAt is stamped on
// export only and ignored on import. The execution request sent to the
// engine is the same shape minus ExportedAt.
type Document struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Nodes       []Node       `json:"nodes"`
	Connections []Connection `json:"connections"`
	ExportedAt  *time.Time   `json:"exportedAt,omitempty"`
}

// Node is the wire form of a builder node. Config stays raw until the kind
// dispatches it to the right variant.
type Node struct {
	ID       string           `json:"id"`
	Kind     string           `json:"kind"`
	Label    string           `json:"label"`
	Position builder.Position `json:"position"`
	Config   RawMessage       `json:"config,omitempty"`
	Inputs   []string         `json:"inputs"`
	Outputs  []string         `json:"outputs"`
}

// Connection is the wire form of a builder connection.
type Connection struct {
	ID   string   `json:"id"`
	From Endpoint `json:"from"`
	To   Endpoint `json:"to"`
}

// Endpoint is the wire form of one connection side.
type Endpoint struct {
	NodeID string `json:"nodeId"`
	Port   string `json:"port"`
}

// FormatError reports an import document that could not be parsed. The
// caller's current workflow is left untouched.
type FormatError struct {
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid file format: %v", e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Snapshot projects a workflow into a document without a timestamp. This is
// the exact shape submitted to the execution engine.
func Snapshot(w *builder.Workflow) Document {
	doc := Document{
		Name:        w.Name,
		Description: w.Description,
		Nodes:       make([]Node, 0, w.Len()),
		Connections: make([]Connection, 0, len(w.Connections())),
	}

	for _, n := range w.Nodes() {
		doc.Nodes = append(doc.Nodes, Node{
			ID:       n.ID,
			Kind:     string(n.Kind),
			Label:    n.Label,
			Position: n.Position,
			Config:   marshalConfig(n.Config),
			Inputs:   portNames(n.Inputs),
			Outputs:  portNames(n.Outputs),
		})
	}
	for _, c := range w.Connections() {
		doc.Connections = append(doc.Connections, Connection{
			ID:   c.ID,
			From: Endpoint{NodeID: c.From.NodeID, Port: string(c.From.Port)},
			To:   Endpoint{NodeID: c.To.NodeID, Port: string(c.To.Port)},
		})
	}
	return doc
}

// Export projects a workflow into a document stamped with the export time.
func Export(w *builder.Workflow) Document {
	doc := Snapshot(w)
	now := time.Now().UTC()
	doc.ExportedAt = &now
	return doc
}

// Marshal renders a document as indented JSON, the format written to the
// downloaded file.
func Marshal(doc Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "marshal workflow document")
	}
	return data, nil
}

// Import parses a document and rebuilds the workflow it describes. Missing
// nodes or connections default to empty collections and missing name or
// description to empty strings. Unparseable input yields a *FormatError and
// no workflow; the caller keeps whatever it had.
func Import(data []byte, opts ...builder.Option) (*builder.Workflow, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &FormatError{Err: err}
	}
	return Restore(doc, opts...)
}

// Restore rebuilds a workflow from an already-parsed document.
func Restore(doc Document, opts ...builder.Option) (*builder.Workflow, error) {
	nodes := make([]*builder.Node, 0, len(doc.Nodes))
	for _, dn := range doc.Nodes {
		kind := builder.NodeKind(dn.Kind)
		if !builder.KnownKind(kind) {
			return nil, &FormatError{Err: fmt.Errorf("unknown node kind %q", dn.Kind)}
		}
		cfg, err := unmarshalConfig(kind, dn.Config)
		if err != nil {
			return nil, &FormatError{Err: err}
		}
		nodes = append(nodes, &builder.Node{
			ID:       dn.ID,
			Kind:     kind,
			Label:    dn.Label,
			Position: dn.Position,
			Config:   cfg,
			Inputs:   toPorts(dn.Inputs),
			Outputs:  toPorts(dn.Outputs),
		})
	}

	conns := make([]*builder.Connection, 0, len(doc.Connections))
	for _, dc := range doc.Connections {
		conns = append(conns, &builder.Connection{
			ID:   dc.ID,
			From: builder.Endpoint{NodeID: dc.From.NodeID, Port: builder.Port(dc.From.Port)},
			To:   builder.Endpoint{NodeID: dc.To.NodeID, Port: builder.Port(dc.To.Port)},
		})
	}

	w, err := builder.Restore(doc.Name, doc.Description, nodes, conns, opts...)
	if err != nil {
		return nil, &FormatError{Err: err}
	}
	return w, nil
}

// Filename names the downloaded export file.
func Filename(w *builder.Workflow) string {
	name := w.Name
	if name == "" {
		name = "workflow"
	}
	return name + ".json"
}

func marshalConfig(cfg builder.NodeConfig) RawMessage {
	if cfg == nil {
		return nil
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		// Config variants are plain structs of strings and ints; this
		// cannot fail for values that passed UpdateConfig.
		return nil
	}
	return data
}

func unmarshalConfig(kind builder.NodeKind, raw RawMessage) (builder.NodeConfig, error) {
	if len(raw) == 0 {
		// Seed the kind default so configurable nodes never import bare.
		if t := builder.Type(kind); t.NewConfig != nil {
			return t.NewConfig(), nil
		}
		return nil, nil
	}

	switch kind {
	case builder.KindAction:
		var cfg builder.ActionConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, errors.Wrap(err, "action config")
		}
		return cfg, nil
	case builder.KindCondition:
		var cfg builder.ConditionConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, errors.Wrap(err, "condition config")
		}
		return cfg, nil
	case builder.KindDelay:
		var cfg builder.DelayConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, errors.Wrap(err, "delay config")
		}
		return cfg, nil
	case builder.KindLoop:
		var cfg builder.LoopConfig
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, errors.Wrap(err, "loop config")
		}
		return cfg, nil
	default:
		// start and end carry no config; drop whatever was written.
		return nil, nil
	}
}

func portNames(ports []builder.Port) []string {
	if len(ports) == 0 {
		return nil
	}
	out := make([]string, len(ports))
	for i, p := range ports {
		out[i] = string(p)
	}
	return out
}

func toPorts(names []string) []builder.Port {
	if len(names) == 0 {
		return nil
	}
	out := make([]builder.Port, len(names))
	for i, n := range names {
		out[i] = builder.Port(n)
	}
	return out
}
