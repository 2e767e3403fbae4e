package gencode

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/backmassage/pal2nal/internal/fetch"
)

// EmbeddedSource names the built-in NCBI tables.
const EmbeddedSource = "embedded"

//go:embed data/ncbi.json
var embeddedTables []byte

// Options controls retrieval of remote table sources.
type Options struct {
	CacheDir string
	Timeout  time.Duration
}

// Load reads the tables named by source: "" or "embedded" for the built-in
// set, a local path, or an http(s)/www URL. Any failure is a *ConfigError.
func Load(ctx context.Context, source string, opts Options) (*Set, error) {
	source = strings.TrimSpace(source)
	if source == "" || source == EmbeddedSource {
		return Parse(EmbeddedSource, embeddedTables)
	}

	path := source
	if fetch.IsRemote(source) {
		p, err := fetch.Resolve(ctx, source, fetch.Options{CacheDir: opts.CacheDir, Timeout: opts.Timeout})
		if err != nil {
			return nil, &ConfigError{Source: source, Message: "fetch failed", Cause: err}
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Source: source, Message: "cannot read", Cause: err}
	}
	return Parse(source, data)
}

// Parse decodes a table document in either accepted encoding: an object
// keyed by table id, or an array of objects carrying "table_id".
func Parse(source string, data []byte) (*Set, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n\ufeff")
	if len(trimmed) == 0 {
		return nil, &ConfigError{Source: source, Message: "empty document"}
	}

	var (
		raw map[string]map[string][]string
		err error
	)
	switch trimmed[0] {
	case '{':
		if err := validateDocument(source, objectSchemaLoader, trimmed); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, &ConfigError{Source: source, Message: "decode", Cause: err}
		}
	case '[':
		if err := validateDocument(source, arraySchemaLoader, trimmed); err != nil {
			return nil, err
		}
		raw, err = decodeArray(source, trimmed)
		if err != nil {
			return nil, err
		}
	default:
		return nil, &ConfigError{Source: source, Message: "document must be a JSON object or array"}
	}

	set := &Set{source: source, tables: make(map[string]*Table, len(raw))}
	for id, syms := range raw {
		t, err := NewTable(id, syms)
		if err != nil {
			return nil, &ConfigError{Source: source, Message: "invalid table", Cause: err}
		}
		set.tables[id] = t
	}
	return set, nil
}

func decodeArray(source string, data []byte) (map[string]map[string][]string, error) {
	var items []map[string]json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, &ConfigError{Source: source, Message: "decode", Cause: err}
	}

	out := make(map[string]map[string][]string, len(items))
	for i, item := range items {
		id, err := tableID(item["table_id"])
		if err != nil {
			return nil, &ConfigError{Source: source, Message: fmt.Sprintf("item %d: table_id", i), Cause: err}
		}
		if _, dup := out[id]; dup {
			return nil, &ConfigError{Source: source, Message: fmt.Sprintf("duplicate table_id %s", id)}
		}
		syms := make(map[string][]string, len(item)-1)
		for k, v := range item {
			if k == "table_id" {
				continue
			}
			var list []string
			if err := json.Unmarshal(v, &list); err != nil {
				return nil, &ConfigError{Source: source, Message: fmt.Sprintf("item %d: symbol %s", i, k), Cause: err}
			}
			syms[k] = list
		}
		out[id] = syms
	}
	return out, nil
}

// tableID accepts a JSON integer or string.
func tableID(raw json.RawMessage) (string, error) {
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", errors.New("empty table_id")
	}
	return s, nil
}
