package graph

import (
	"fmt"
	"sort"

	"github.com/tidwall/gjson"
)

// ParseSuggestion decodes untrusted suggestion JSON. Two shapes are accepted:
// a bare {"task_id": ["dep", ...]} object, or an envelope whose "dependencies"
// key holds that object. An envelope is recognised by an object-valued
// "dependencies" key or by "parallel_groups" holding a list of lists; an
// envelope without "dependencies" is an empty suggestion, not a malformed one.
// A null list is treated as no dependencies. Anything else (non-object roots,
// scalar values, nested objects) is malformed.
func ParseSuggestion(raw []byte) (Suggestion, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("suggestion is not valid JSON")
	}
	root := gjson.ParseBytes(raw)
	if deps := root.Get("dependencies"); deps.IsObject() {
		root = deps
	} else if !deps.Exists() && isEnvelope(root) {
		return Suggestion{}, nil
	}
	if !root.IsObject() {
		return nil, fmt.Errorf("suggestion must be an object of task id to dependency list, got %s", root.Type)
	}

	s := Suggestion{}
	var parseErr error
	root.ForEach(func(key, value gjson.Result) bool {
		id := key.String()
		switch {
		case value.Type == gjson.Null:
			s[id] = []string{}
		case value.IsArray():
			ids := []string{}
			for _, item := range value.Array() {
				if item.Type != gjson.String && item.Type != gjson.Number {
					parseErr = fmt.Errorf("dependencies of %s contain a non-id value %s", id, item.Raw)
					return false
				}
				ids = append(ids, item.String())
			}
			s[id] = ids
		default:
			parseErr = fmt.Errorf("dependencies of %s must be a list, got %s", id, value.Type)
			return false
		}
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return s, nil
}

// isEnvelope reports whether root carries the grouped shape of an LLM reply,
// which a bare mapping never does: its values are flat id lists.
func isEnvelope(root gjson.Result) bool {
	groups := root.Get("parallel_groups")
	if !groups.IsArray() {
		return false
	}
	for _, g := range groups.Array() {
		if g.IsArray() {
			return true
		}
	}
	return false
}

func sortDiagnostics(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Kind != diags[j].Kind {
			return diags[i].Kind < diags[j].Kind
		}
		return diags[i].TaskID < diags[j].TaskID
	})
}
