package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// OptionKind tells how a question addresses its options.
type OptionKind int

const (
	// IndexedOptions are addressed by their position in an ordered list.
	IndexedOptions OptionKind = iota + 1
	// KeyedOptions are addressed by a short key such as "a" or "b".
	KeyedOptions
)

func (k OptionKind) String() string {
	switch k {
	case IndexedOptions:
		return "indexed"
	case KeyedOptions:
		return "keyed"
	default:
		return "unknown"
	}
}

// KeyedOption is one entry of a key-addressed option list.
type KeyedOption struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// Options is either an indexed list or a keyed list of option texts.
// The zero value has no kind and is rejected by validation.
type Options struct {
	kind    OptionKind
	indexed []string
	keyed   []KeyedOption
}

// Indexed builds options addressed by position.
func Indexed(texts ...string) Options {
	return Options{kind: IndexedOptions, indexed: append([]string(nil), texts...)}
}

// Keyed builds options addressed by key, keeping the given order.
func Keyed(options ...KeyedOption) Options {
	return Options{kind: KeyedOptions, keyed: append([]KeyedOption(nil), options...)}
}

func (o Options) Kind() OptionKind { return o.kind }

func (o Options) Len() int {
	if o.kind == KeyedOptions {
		return len(o.keyed)
	}
	return len(o.indexed)
}

// Choices lists every selectable choice in display order.
func (o Options) Choices() []Choice {
	out := make([]Choice, 0, o.Len())
	switch o.kind {
	case IndexedOptions:
		for i := range o.indexed {
			out = append(out, IndexChoice(i))
		}
	case KeyedOptions:
		for _, opt := range o.keyed {
			out = append(out, KeyChoice(opt.Key))
		}
	}
	return out
}

// Text returns the option text for c. It reports false when c does not
// address an option of this list, including when the kinds differ.
func (o Options) Text(c Choice) (string, bool) {
	if c.kind != o.kind {
		return "", false
	}
	switch o.kind {
	case IndexedOptions:
		if c.index < 0 || c.index >= len(o.indexed) {
			return "", false
		}
		return o.indexed[c.index], true
	case KeyedOptions:
		for _, opt := range o.keyed {
			if opt.Key == c.key {
				return opt.Text, true
			}
		}
	}
	return "", false
}

// Contains reports whether c addresses an option of this list.
func (o Options) Contains(c Choice) bool {
	_, ok := o.Text(c)
	return ok
}

func (o Options) validate() error {
	switch o.kind {
	case IndexedOptions:
	case KeyedOptions:
		seen := make(map[string]struct{}, len(o.keyed))
		for _, opt := range o.keyed {
			if opt.Key == "" {
				return fmt.Errorf("empty option key")
			}
			if _, dup := seen[opt.Key]; dup {
				return fmt.Errorf("duplicate option key %q", opt.Key)
			}
			seen[opt.Key] = struct{}{}
		}
	default:
		return fmt.Errorf("options have no kind")
	}
	if n := o.Len(); n < MinOptions || n > MaxOptions {
		return fmt.Errorf("expected %d-%d options, got %d", MinOptions, MaxOptions, n)
	}
	return nil
}

// MarshalJSON writes indexed options as an array and keyed options as an
// object whose member order follows the option order.
func (o Options) MarshalJSON() ([]byte, error) {
	switch o.kind {
	case IndexedOptions:
		return json.Marshal(o.indexed)
	case KeyedOptions:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, opt := range o.keyed {
			if i > 0 {
				buf.WriteByte(',')
			}
			k, err := json.Marshal(opt.Key)
			if err != nil {
				return nil, err
			}
			v, err := json.Marshal(opt.Text)
			if err != nil {
				return nil, err
			}
			buf.Write(k)
			buf.WriteByte(':')
			buf.Write(v)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts an array of texts or an object of key to text.
func (o *Options) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("options: empty input")
	}
	switch data[0] {
	case '[':
		var texts []string
		if err := json.Unmarshal(data, &texts); err != nil {
			return fmt.Errorf("options: %w", err)
		}
		*o = Indexed(texts...)
		return nil
	case '{':
		dec := json.NewDecoder(bytes.NewReader(data))
		if _, err := dec.Token(); err != nil {
			return fmt.Errorf("options: %w", err)
		}
		var keyed []KeyedOption
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return fmt.Errorf("options: %w", err)
			}
			key, _ := tok.(string)
			var text string
			if err := dec.Decode(&text); err != nil {
				return fmt.Errorf("options: key %q: %w", key, err)
			}
			keyed = append(keyed, KeyedOption{Key: key, Text: text})
		}
		*o = Keyed(keyed...)
		return nil
	default:
		return fmt.Errorf("options: expected array or object")
	}
}

// Choice addresses one option, either by index or by key.
type Choice struct {
	kind  OptionKind
	index int
	key   string
}

func IndexChoice(i int) Choice { return Choice{kind: IndexedOptions, index: i} }

func KeyChoice(k string) Choice { return Choice{kind: KeyedOptions, key: k} }

func (c Choice) Kind() OptionKind { return c.kind }

// Index returns the index and true for an indexed choice.
func (c Choice) Index() (int, bool) { return c.index, c.kind == IndexedOptions }

// Key returns the key and true for a keyed choice.
func (c Choice) Key() (string, bool) { return c.key, c.kind == KeyedOptions }

// Equal is false whenever the kinds differ, so index 0 never equals key "0".
func (c Choice) Equal(other Choice) bool {
	if c.kind != other.kind {
		return false
	}
	switch c.kind {
	case IndexedOptions:
		return c.index == other.index
	case KeyedOptions:
		return c.key == other.key
	}
	return false
}

func (c Choice) String() string {
	switch c.kind {
	case IndexedOptions:
		return strconv.Itoa(c.index)
	case KeyedOptions:
		return strconv.Quote(c.key)
	}
	return "<none>"
}

// MarshalJSON writes an index as a JSON number and a key as a JSON string.
func (c Choice) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case IndexedOptions:
		return json.Marshal(c.index)
	case KeyedOptions:
		return json.Marshal(c.key)
	}
	return []byte("null"), nil
}

func (c *Choice) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("choice: empty input")
	}
	if bytes.Equal(data, []byte("null")) {
		*c = Choice{}
		return nil
	}
	if data[0] == '"' {
		var key string
		if err := json.Unmarshal(data, &key); err != nil {
			return fmt.Errorf("choice: %w", err)
		}
		*c = KeyChoice(key)
		return nil
	}
	var index int
	if err := json.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("choice: expected integer index or string key: %w", err)
	}
	*c = IndexChoice(index)
	return nil
}
