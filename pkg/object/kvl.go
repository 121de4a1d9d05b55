package object

import (
	"bytes"
	"fmt"
	"strings"
)

// MessageKey is the reserved key holding the free text that follows the
// blank line separating fields from the message.
const MessageKey = "message"

// Field is one key/value pair of a KVL. Multi-line values are stored with
// embedded newlines.
type Field struct {
	Key   string
	Value string
}

// KVL is the ordered key-value list shared by commits and tags:
//
//	tree 29ff16c9c14e2652b22f8b78bb08a5a07930c147
//	parent 206941306e8a8af65b66eaaaea388a7ae24d49a0
//	gpgsig -----BEGIN PGP SIGNATURE-----
//	 <continuation lines start with one space>
//
//	message text
//
// Fields keep their on-disk order. A key may appear more than once (merge
// commits carry one parent field per parent); Get returns the first value
// and GetAll returns every value in order.
type KVL struct {
	Fields     []Field
	HasMessage bool
	Message    string
}

// Get returns the first value stored under key.
func (k *KVL) Get(key string) (string, bool) {
	if key == MessageKey {
		return k.Message, k.HasMessage
	}
	for _, f := range k.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return "", false
}

// GetAll returns every value stored under key in order.
func (k *KVL) GetAll(key string) []string {
	if key == MessageKey {
		if k.HasMessage {
			return []string{k.Message}
		}
		return nil
	}
	var out []string
	for _, f := range k.Fields {
		if f.Key == key {
			out = append(out, f.Value)
		}
	}
	return out
}

// Set replaces every value of key with value. The field keeps the position
// of the first existing occurrence, or is appended when key is new.
func (k *KVL) Set(key, value string) {
	if key == MessageKey {
		k.SetMessage(value)
		return
	}
	fields := k.Fields[:0:0]
	replaced := false
	for _, f := range k.Fields {
		if f.Key != key {
			fields = append(fields, f)
			continue
		}
		if !replaced {
			fields = append(fields, Field{Key: key, Value: value})
			replaced = true
		}
	}
	if !replaced {
		fields = append(fields, Field{Key: key, Value: value})
	}
	k.Fields = fields
}

// Add appends another value for key.
func (k *KVL) Add(key, value string) {
	if key == MessageKey {
		k.SetMessage(value)
		return
	}
	k.Fields = append(k.Fields, Field{Key: key, Value: value})
}

// SetMessage sets the message section.
func (k *KVL) SetMessage(msg string) {
	k.HasMessage = true
	k.Message = msg
}

// ParseKVL parses the textual key-value list form. Everything after the
// first blank line is taken verbatim as the message.
func ParseKVL(data []byte) (KVL, error) {
	var kvl KVL
	rest := data
	for len(rest) > 0 {
		line, next, _ := bytes.Cut(rest, []byte{'\n'})
		rest = next

		if len(line) == 0 {
			kvl.SetMessage(string(rest))
			return kvl, nil
		}
		if line[0] == ' ' {
			if len(kvl.Fields) == 0 {
				return KVL{}, fmt.Errorf("%w: continuation line before first key", ErrKeyDelimiterNotFound)
			}
			last := &kvl.Fields[len(kvl.Fields)-1]
			last.Value += "\n" + string(line[1:])
			continue
		}
		key, value, ok := strings.Cut(string(line), " ")
		if !ok {
			return KVL{}, fmt.Errorf("%w: line %q", ErrKeyDelimiterNotFound, line)
		}
		kvl.Fields = append(kvl.Fields, Field{Key: key, Value: value})
	}
	return kvl, nil
}

// Marshal serializes the list. Continuation lines of multi-line values are
// prefixed with one space; the message, when present, follows a blank line
// with no trailing delimiter added.
func (k *KVL) Marshal() []byte {
	var buf bytes.Buffer
	for _, f := range k.Fields {
		lines := strings.Split(f.Value, "\n")
		buf.WriteString(f.Key)
		buf.WriteByte(' ')
		buf.WriteString(lines[0])
		buf.WriteByte('\n')
		for _, line := range lines[1:] {
			buf.WriteByte(' ')
			buf.WriteString(line)
			buf.WriteByte('\n')
		}
	}
	if k.HasMessage {
		buf.WriteByte('\n')
		buf.WriteString(k.Message)
	}
	return buf.Bytes()
}
