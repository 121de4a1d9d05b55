package repo

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the settings grit reads from .git/config. Only the [core]
// section is interpreted; other sections are ignored.
type Config struct {
	Core CoreConfig `toml:"core"`
}

// CoreConfig is the [core] section.
type CoreConfig struct {
	RepositoryFormatVersion int  `toml:"repositoryformatversion"`
	FileMode                bool `toml:"filemode"`
	Bare                    bool `toml:"bare"`
}

// DefaultConfig returns the config written by Init.
func DefaultConfig() *Config {
	return &Config{Core: CoreConfig{RepositoryFormatVersion: 0}}
}

// FormatVersionSupported reports whether the repository format version is
// one grit understands. Only version 0 is.
func (c *Config) FormatVersionSupported() bool {
	return c.Core.RepositoryFormatVersion == 0
}

// Marshal renders the config in git's syntax. The output is also valid TOML.
func (c *Config) Marshal() []byte {
	var buf bytes.Buffer
	buf.WriteString("[core]\n")
	fmt.Fprintf(&buf, "\trepositoryformatversion = %d\n", c.Core.RepositoryFormatVersion)
	fmt.Fprintf(&buf, "\tfilemode = %t\n", c.Core.FileMode)
	fmt.Fprintf(&buf, "\tbare = %t\n", c.Core.Bare)
	return buf.Bytes()
}

// ReadConfig reads and parses the config file at path.
func ReadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig parses git config text. The [core] section is lifted out,
// normalized into TOML and decoded. repositoryformatversion is required.
func ParseConfig(data []byte) (*Config, error) {
	doc, err := coreSectionTOML(data)
	if err != nil {
		return nil, err
	}

	var cfg Config
	md, err := toml.Decode(doc, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if !md.IsDefined("core") {
		return nil, fmt.Errorf("%w: no [core] section", ErrInvalidConfig)
	}
	if !md.IsDefined("core", "repositoryformatversion") {
		return nil, fmt.Errorf("%w: core.repositoryformatversion not set", ErrInvalidConfig)
	}
	return &cfg, nil
}

// coreSectionTOML extracts the key/value pairs of the [core] section and
// renders them as a TOML document. Keys are case-insensitive and the last
// assignment wins, as in git. A bare key means true.
func coreSectionTOML(data []byte) (string, error) {
	values := make(map[string]string)
	inCore := false
	sawCore := false

	sc := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(stripConfigComment(sc.Text()))
		if line == "" {
			continue
		}
		if line[0] == '[' {
			end := strings.IndexByte(line, ']')
			if end < 0 {
				return "", fmt.Errorf("%w: line %d: unterminated section header", ErrInvalidConfig, lineNo)
			}
			name := strings.ToLower(strings.TrimSpace(line[1:end]))
			inCore = name == "core"
			sawCore = sawCore || inCore
			continue
		}
		if !inCore {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			return "", fmt.Errorf("%w: line %d: missing key", ErrInvalidConfig, lineNo)
		}
		if !ok {
			values[key] = "true"
			continue
		}
		values[key] = tomlValue(strings.TrimSpace(value))
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	var doc strings.Builder
	if sawCore {
		doc.WriteString("[core]\n")
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&doc, "%s = %s\n", quoteTOML(k), values[k])
	}
	return doc.String(), nil
}

// stripConfigComment drops a ';' or '#' comment and everything after it,
// ignoring markers inside double quotes or escaped with a backslash.
func stripConfigComment(line string) string {
	inQuote := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '"':
			inQuote = !inQuote
		case ';', '#':
			if !inQuote {
				return line[:i]
			}
		}
	}
	return line
}

// tomlValue maps a git config value to a TOML literal. Booleans and
// integers pass through; anything else becomes a quoted string.
func tomlValue(v string) string {
	switch strings.ToLower(v) {
	case "true", "yes", "on":
		return "true"
	case "false", "no", "off", "":
		return "false"
	}
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	return quoteTOML(v)
}

// quoteTOML renders s as a TOML basic string.
func quoteTOML(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\t':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&b, "\\u%04X", r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
