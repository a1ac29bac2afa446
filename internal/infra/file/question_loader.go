// Package file loads question sets from JSON or YAML documents on disk.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"quiz-runner/internal/domain"
)

// QuestionLoader reads one question set per file. With a directory root,
// set "basics" resolves to basics.json, basics.yaml or basics.yml; with a
// file root, that file is returned whatever the requested ID.
type QuestionLoader struct {
	root string
}

func NewQuestionLoader(root string) *QuestionLoader {
	return &QuestionLoader{root: root}
}

func (l *QuestionLoader) LoadQuestionSet(_ context.Context, setID string) (domain.QuestionSet, error) {
	path, err := l.resolve(setID)
	if err != nil {
		return domain.QuestionSet{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.QuestionSet{}, fmt.Errorf("read question set: %w", err)
	}
	set, err := Decode(path, data)
	if err != nil {
		return domain.QuestionSet{}, err
	}
	if set.ID == "" {
		set.ID = setID
	}
	return set, nil
}

func (l *QuestionLoader) resolve(setID string) (string, error) {
	info, err := os.Stat(l.root)
	if err != nil {
		return "", fmt.Errorf("question source %s: %w", l.root, err)
	}
	if !info.IsDir() {
		return l.root, nil
	}
	if setID == "" || strings.ContainsAny(setID, `/\`) {
		return "", fmt.Errorf("%w: %q", domain.ErrQuestionSetNotFound, setID)
	}
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(l.root, setID+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrQuestionSetNotFound, setID)
}

// Decode parses a question set, choosing the format from the file extension.
func Decode(name string, data []byte) (domain.QuestionSet, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".json":
	case ".yaml", ".yml":
		converted, err := yamlToJSON(data)
		if err != nil {
			return domain.QuestionSet{}, fmt.Errorf("parse %s: %w", name, err)
		}
		data = converted
	default:
		return domain.QuestionSet{}, fmt.Errorf("unsupported question file type %q", ext)
	}

	var set domain.QuestionSet
	if err := json.Unmarshal(data, &set); err != nil {
		return domain.QuestionSet{}, fmt.Errorf("decode %s: %w", name, err)
	}
	return set, nil
}

// yamlToJSON walks the node tree instead of decoding into maps so that keyed
// options keep their document order.
func yamlToJSON(data []byte) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writeNode(&buf, &doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeNode(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			buf.WriteString("null")
			return nil
		}
		return writeNode(buf, n.Content[0])
	case yaml.AliasNode:
		return writeNode(buf, n.Alias)
	case yaml.MappingNode:
		buf.WriteByte('{')
		for i := 0; i+1 < len(n.Content); i += 2 {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(n.Content[i].Value)
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if err := writeNode(buf, n.Content[i+1]); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
		return nil
	case yaml.SequenceNode:
		buf.WriteByte('[')
		for i, item := range n.Content {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeNode(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	case yaml.ScalarNode:
		return writeScalar(buf, n)
	default:
		return fmt.Errorf("line %d: unsupported yaml node", n.Line)
	}
}

func writeScalar(buf *bytes.Buffer, n *yaml.Node) error {
	switch n.ShortTag() {
	case "!!null":
		buf.WriteString("null")
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return err
		}
		buf.WriteString(strconv.FormatBool(b))
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return err
		}
		buf.WriteString(strconv.FormatInt(i, 10))
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return err
		}
		out, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("line %d: %w", n.Line, err)
		}
		buf.Write(out)
	default:
		out, err := json.Marshal(n.Value)
		if err != nil {
			return err
		}
		buf.Write(out)
	}
	return nil
}
