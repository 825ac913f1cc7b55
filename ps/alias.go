package ps

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"gopkg.in/yaml.v3"
)

// AliasProvider looks up commands and their aliases. ResolveCommand returns the canonical command a
// name refers to, following aliases of aliases. AliasesOf returns every alias bound to a canonical
// command.
type AliasProvider interface {
	ResolveCommand(name string) (string, bool)
	AliasesOf(canonical string) []string
}

// AliasTable is an AliasProvider backed by a static alias to command mapping. Lookups are
// case-insensitive.
type AliasTable struct {
	definitions map[string]string   // lower cased alias => definition
	commands    map[string]string   // lower cased command => command
	aliases     map[string][]string // lower cased command => sorted aliases
}

// NewAliasTable returns a table for the given alias => definition mapping.
func NewAliasTable(aliases map[string]string) *AliasTable {
	t := &AliasTable{
		definitions: make(map[string]string, len(aliases)),
		commands:    map[string]string{},
		aliases:     map[string][]string{},
	}
	for alias, definition := range aliases {
		t.definitions[strings.ToLower(alias)] = definition
	}
	for alias := range aliases {
		if command, ok := t.ResolveCommand(alias); ok {
			key := strings.ToLower(command)
			t.commands[key] = command
			t.aliases[key] = append(t.aliases[key], alias)
		}
	}
	for _, list := range t.aliases {
		sort.Strings(list)
	}
	return t
}

// ResolveCommand returns the canonical command of name. Names that are neither an alias nor the
// target of an alias are unknown.
func (t *AliasTable) ResolveCommand(name string) (string, bool) {
	hops := 0
	for {
		definition, ok := t.definitions[strings.ToLower(name)]
		if !ok {
			break
		} else if hops++; len(t.definitions) < hops {
			return "", false // cycle
		}
		name = definition
	}
	if command, ok := t.commands[strings.ToLower(name)]; ok {
		return command, true
	}
	return name, 0 < hops
}

// AliasesOf returns the aliases of a canonical command in ordinal order.
func (t *AliasTable) AliasesOf(canonical string) []string {
	list := t.aliases[strings.ToLower(canonical)]
	return append([]string(nil), list...)
}

// Len returns the number of aliases.
func (t *AliasTable) Len() int {
	return len(t.definitions)
}

// Aliases returns the alias => definition mapping.
func (t *AliasTable) Aliases() map[string]string {
	m := make(map[string]string, len(t.definitions))
	for alias, definition := range t.definitions {
		m[alias] = definition
	}
	return m
}

////////////////////////////////////////////////////////////////

type aliasEntry struct {
	Name       string `yaml:"Name"`
	Definition string `yaml:"Definition"`
}

// LoadAliasTable reads an alias table from YAML or JSON. Accepted forms are a mapping of alias to
// command, optionally under an "aliases" key, or a list of objects with Name and Definition fields
// as written by Get-Alias | ConvertTo-Json.
func LoadAliasTable(r io.Reader) (*AliasTable, error) {
	var v interface{}
	if err := yaml.NewDecoder(r).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return NewAliasTable(nil), nil
		}
		return nil, fmt.Errorf("alias table: %w", err)
	}

	aliases := map[string]string{}
	if m, ok := v.(map[string]interface{}); ok {
		if inner, ok := m["aliases"]; ok {
			v = inner
		}
	}
	switch v := v.(type) {
	case map[string]interface{}:
		for alias, definition := range v {
			s, ok := definition.(string)
			if !ok {
				return nil, fmt.Errorf("alias table: definition of %s is not a string", alias)
			}
			aliases[alias] = s
		}
	case []interface{}:
		for i, item := range v {
			m, ok := item.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("alias table: entry %d is not an object", i)
			}
			var entry aliasEntry
			for key, value := range m {
				s, _ := value.(string)
				switch strings.ToLower(key) {
				case "name":
					entry.Name = s
				case "definition":
					entry.Definition = s
				}
			}
			if entry.Name == "" || entry.Definition == "" {
				return nil, fmt.Errorf("alias table: entry %d needs Name and Definition", i)
			}
			aliases[entry.Name] = entry.Definition
		}
	case nil:
	default:
		return nil, fmt.Errorf("alias table: unexpected %T", v)
	}
	return NewAliasTable(aliases), nil
}

// AliasProfile returns one of the built-in alias tables: "core" holds the aliases available on every
// PowerShell 7 platform, "windows" adds the aliases only defined on Windows.
func AliasProfile(name string) (*AliasTable, error) {
	switch strings.ToLower(name) {
	case "", "core":
		return coreAliases, nil
	case "windows":
		return windowsAliases, nil
	}
	names := AliasProfiles()
	if ranks := fuzzy.RankFindFold(name, names); 0 < len(ranks) {
		sort.Sort(ranks)
		return nil, fmt.Errorf("unknown alias profile %q, did you mean %q?", name, ranks[0].Target)
	}
	return nil, fmt.Errorf("unknown alias profile %q, expected one of %s", name, strings.Join(names, ", "))
}

// AliasProfiles returns the names of the built-in alias tables.
func AliasProfiles() []string {
	return []string{"core", "windows"}
}

////////////////////////////////////////////////////////////////

// aliasCache memoizes the shortest alias of command names for one minification.
type aliasCache struct {
	provider AliasProvider
	cache    map[string]string
}

func newAliasCache(provider AliasProvider) *aliasCache {
	return &aliasCache{provider: provider}
}

// shortest returns the shortest alias of the command named by name. Ties are broken by ordinal
// order. The name is returned unchanged when it cannot be resolved or no alias is shorter.
func (c *aliasCache) shortest(name string) string {
	if c.provider == nil {
		return name
	}
	key := strings.ToLower(name)
	if short, ok := c.cache[key]; ok {
		return short
	}
	if c.cache == nil {
		c.cache = map[string]string{}
	}

	short := name
	if canonical, ok := c.provider.ResolveCommand(name); ok {
		best := ""
		for _, alias := range c.provider.AliasesOf(canonical) {
			if alias == "" {
				continue
			} else if best == "" || len(alias) < len(best) || len(alias) == len(best) && alias < best {
				best = alias
			}
		}
		if best != "" && len(best) < len(name) {
			short = best
		}
	}
	c.cache[key] = short
	return short
}
