// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package trigger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"github.com/tombee/exprmigrate/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a trigger document.
type Format string

const (
	FormatYAML  Format = "yaml"
	FormatJSON  Format = "json"
	FormatJSONC Format = "jsonc"
)

// Layout is the top-level shape of a trigger document.
type Layout int

const (
	// LayoutSingle is one trigger object.
	LayoutSingle Layout = iota
	// LayoutList is a list of trigger objects.
	LayoutList
	// LayoutEnvelope is the API listing shape: {"list": [...]}.
	LayoutEnvelope
)

// Document is a decoded trigger file.
//
// A decoded document keeps the source form of every trigger. Encoding a
// decoded trigger rewrites only its expression, so keys the model does not
// know about, key order and YAML comments survive. Triggers added to
// Triggers after decoding are encoded in full.
type Document struct {
	Path     string
	Format   Format
	Layout   Layout
	Triggers []*Trigger

	sources map[*Trigger]*source
	// yamlRoot is the decoded YAML document node.
	yamlRoot *yaml.Node
	// jsonEnvelope is the decoded top-level object of an envelope document.
	jsonEnvelope *rawObject
}

// FormatFromPath infers the document format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".jsonc":
		return FormatJSONC, nil
	default:
		return "", &errors.ValidationError{
			Field:      "path",
			Message:    fmt.Sprintf("cannot infer trigger document format from %q", path),
			Suggestion: "use a .yaml, .yml, .json or .jsonc extension",
		}
	}
}

// Load reads and decodes a trigger document.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &errors.NotFoundError{Resource: "trigger document", ID: path}
		}
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	doc, err := Decode(data, format)
	if err != nil {
		if docErr, ok := err.(*errors.DocumentError); ok {
			docErr.Path = path
		}
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// Decode parses a trigger document, detecting its layout.
func Decode(data []byte, format Format) (*Document, error) {
	doc := &Document{Format: format}

	var err error
	switch format {
	case FormatYAML:
		err = doc.decodeYAML(data)
	case FormatJSON, FormatJSONC:
		err = doc.decodeJSON(jsonc.ToJSON(data))
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, &errors.DocumentError{Format: string(format), Cause: err}
	}
	return doc, nil
}

func (d *Document) decodeYAML(data []byte) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return err
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return fmt.Errorf("document is empty")
	}
	d.yamlRoot = &root

	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		d.Layout = LayoutList
		return d.addYAMLTriggers(node)
	case yaml.MappingNode:
		if list := yamlValue(node, "list"); list != nil {
			if list.Kind != yaml.SequenceNode {
				return fmt.Errorf("line %d: list must be a sequence of triggers", list.Line)
			}
			d.Layout = LayoutEnvelope
			return d.addYAMLTriggers(list)
		}
		d.Layout = LayoutSingle
		return d.addYAMLTrigger(node)
	default:
		return fmt.Errorf("line %d: expected a trigger mapping or a list of triggers", node.Line)
	}
}

func (d *Document) addYAMLTriggers(seq *yaml.Node) error {
	for _, item := range seq.Content {
		if err := d.addYAMLTrigger(item); err != nil {
			return err
		}
	}
	return nil
}

func (d *Document) addYAMLTrigger(node *yaml.Node) error {
	if node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a trigger mapping", node.Line)
	}
	var t Trigger
	if err := node.Decode(&t); err != nil {
		return err
	}
	d.track(&t, &source{expression: t.Expression, node: node})
	return nil
}

func (d *Document) decodeJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("document is empty")
	}

	switch trimmed[0] {
	case '[':
		d.Layout = LayoutList
		return d.addJSONTriggers(trimmed)
	case '{':
		obj, err := decodeRawObject(trimmed)
		if err != nil {
			return err
		}
		if list, ok := obj.get("list"); ok {
			d.Layout = LayoutEnvelope
			d.jsonEnvelope = obj
			return d.addJSONTriggers(list)
		}
		d.Layout = LayoutSingle
		return d.addJSONTrigger(trimmed, obj)
	default:
		return fmt.Errorf("expected a trigger object or a list of triggers")
	}
}

func (d *Document) addJSONTriggers(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	for i, item := range items {
		obj, err := decodeRawObject(item)
		if err != nil {
			return fmt.Errorf("list item %d: %w", i, err)
		}
		if err := d.addJSONTrigger(item, obj); err != nil {
			return fmt.Errorf("list item %d: %w", i, err)
		}
	}
	return nil
}

func (d *Document) addJSONTrigger(data []byte, obj *rawObject) error {
	var t Trigger
	if err := json.Unmarshal(data, &t); err != nil {
		return err
	}
	d.track(&t, &source{expression: t.Expression, object: obj})
	return nil
}

func (d *Document) track(t *Trigger, src *source) {
	if d.sources == nil {
		d.sources = make(map[*Trigger]*source)
	}
	d.sources[t] = src
	d.Triggers = append(d.Triggers, t)
}

// Encode serializes the document in its format and layout. JSONC documents
// are written as plain JSON; their comments do not survive a round trip.
func (d *Document) Encode() ([]byte, error) {
	if d.Layout == LayoutSingle && len(d.Triggers) != 1 {
		return nil, d.encodeError(fmt.Errorf("single-trigger document holds %d triggers", len(d.Triggers)))
	}

	var (
		out []byte
		err error
	)
	switch d.Format {
	case FormatYAML:
		out, err = d.encodeYAML()
	case FormatJSON, FormatJSONC:
		out, err = d.encodeJSON()
	default:
		err = fmt.Errorf("unsupported format")
	}
	if err != nil {
		return nil, d.encodeError(err)
	}
	return out, nil
}

func (d *Document) encodeError(err error) error {
	return &errors.DocumentError{Path: d.Path, Format: string(d.Format), Cause: err}
}

func (d *Document) encodeYAML() ([]byte, error) {
	nodes := make([]*yaml.Node, 0, len(d.Triggers))
	for _, t := range d.Triggers {
		n, err := d.yamlNode(t)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}

	root := d.yamlRoot
	if root == nil {
		root = &yaml.Node{Kind: yaml.DocumentNode}
	}
	var body *yaml.Node
	if len(root.Content) > 0 {
		body = root.Content[0]
	}

	switch d.Layout {
	case LayoutList:
		if body == nil || body.Kind != yaml.SequenceNode {
			body = &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		}
		body.Content = nodes
	case LayoutEnvelope:
		list := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		if body != nil && body.Kind == yaml.MappingNode {
			if existing := yamlValue(body, "list"); existing != nil && existing.Kind == yaml.SequenceNode {
				list = existing
			} else {
				setYAMLValue(body, "list", list)
			}
		} else {
			body = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			setYAMLValue(body, "list", list)
		}
		list.Content = nodes
	default:
		body = nodes[0]
	}
	root.Content = []*yaml.Node{body}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// yamlNode returns the mapping node for t, with its expression brought up
// to date.
func (d *Document) yamlNode(t *Trigger) (*yaml.Node, error) {
	src := d.sources[t]
	if src == nil || src.node == nil {
		var n yaml.Node
		if err := n.Encode(t); err != nil {
			return nil, err
		}
		return &n, nil
	}
	if t.Expression != src.expression {
		setYAMLString(src.node, "expression", t.Expression)
		src.expression = t.Expression
	}
	return src.node, nil
}

func (d *Document) encodeJSON() ([]byte, error) {
	objects := make([][]byte, 0, len(d.Triggers))
	for _, t := range d.Triggers {
		obj, err := d.jsonObject(t)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}

	var body []byte
	switch d.Layout {
	case LayoutList:
		body = joinJSONArray(objects)
	case LayoutEnvelope:
		env := d.jsonEnvelope
		if env == nil {
			env = &rawObject{}
		}
		env.set("list", joinJSONArray(objects))
		body = env.bytes()
	default:
		body = objects[0]
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// jsonObject returns the encoded object for t, with its expression brought
// up to date.
func (d *Document) jsonObject(t *Trigger) ([]byte, error) {
	src := d.sources[t]
	if src == nil || src.object == nil {
		return marshalJSON(t)
	}
	if t.Expression != src.expression {
		value, err := marshalJSON(t.Expression)
		if err != nil {
			return nil, err
		}
		src.object.set("expression", value)
		src.expression = t.Expression
	}
	return src.object.bytes(), nil
}

// Save encodes the document and replaces the file at d.Path, keeping its
// permissions. The write goes through a temporary file in the same
// directory so readers never see a partial document.
func Save(d *Document) error {
	data, err := d.Encode()
	if err != nil {
		return err
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(d.Path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.Path), "."+filepath.Base(d.Path)+".*")
	if err != nil {
		return errors.Wrapf(err, "saving %s", d.Path)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "saving %s", d.Path)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "saving %s", d.Path)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "saving %s", d.Path)
	}
	if err := os.Rename(tmp.Name(), d.Path); err != nil {
		return errors.Wrapf(err, "saving %s", d.Path)
	}
	return nil
}
