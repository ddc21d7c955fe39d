package middleware

import (
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

const (
	// maxFormDepth is how many bracket levels are expanded before the rest
	// of a key is kept literally
	maxFormDepth = 5
	// maxFormIndex is the largest numeric index still treated as a list slot
	maxFormIndex = 20
	// DefaultMaxFormParams caps the pairs decoded from one form body
	DefaultMaxFormParams = 1000
)

// ErrTooManyFormParams is returned when a form carries more pairs than allowed
var ErrTooManyFormParams = errors.New("too many form parameters")

// ParseNestedForm decodes an urlencoded body using bracket notation:
//
//	a=1&a=2          {"a": ["1", "2"]}
//	b[]=x&b[]=y      {"b": ["x", "y"]}
//	c[d][e]=z        {"c": {"d": {"e": "z"}}}
//	f[1]=q&f[0]=p    {"f": ["p", "q"]}
//
// Values are always strings.
func ParseNestedForm(raw string, maxParams int) (map[string]interface{}, error) {
	if maxParams <= 0 {
		maxParams = DefaultMaxFormParams
	}

	root := map[string]interface{}{}
	count := 0
	for raw != "" {
		var pair string
		pair, raw, _ = strings.Cut(raw, "&")
		if pair == "" {
			continue
		}
		count++
		if count > maxParams {
			return nil, ErrTooManyFormParams
		}

		rawKey, rawValue, _ := strings.Cut(pair, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, err
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, err
		}
		if key == "" {
			continue
		}
		insert(root, splitKey(key), value)
	}

	for k, v := range root {
		root[k] = finalize(v)
	}
	return root, nil
}

// splitKey turns "a[b][]" into ["a", "b", ""]
func splitKey(key string) []string {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return []string{key}
	}

	segs := []string{key[:open]}
	rest := key[open:]
	for len(segs) <= maxFormDepth && strings.HasPrefix(rest, "[") {
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			break
		}
		segs = append(segs, rest[1:end])
		rest = rest[end+1:]
	}
	if rest != "" {
		segs = append(segs, rest)
	}
	return segs
}

// insert stores value under segs. Lists are built as maps keyed by index
// and converted by finalize.
func insert(node map[string]interface{}, segs []string, value string) {
	seg := segs[0]
	if seg == "" {
		seg = strconv.Itoa(nextIndex(node))
	}

	if len(segs) == 1 {
		switch existing := node[seg].(type) {
		case nil:
			node[seg] = value
		case string:
			node[seg] = map[string]interface{}{"0": existing, "1": value}
		case map[string]interface{}:
			existing[strconv.Itoa(nextIndex(existing))] = value
		}
		return
	}

	child, ok := node[seg].(map[string]interface{})
	if !ok {
		child = map[string]interface{}{}
		if s, isString := node[seg].(string); isString {
			child["0"] = s
		}
		node[seg] = child
	}
	insert(child, segs[1:], value)
}

func nextIndex(node map[string]interface{}) int {
	next := 0
	for k := range node {
		if i, err := strconv.Atoi(k); err == nil && i >= next {
			next = i + 1
		}
	}
	return next
}

// finalize converts index-keyed maps into lists, compacting gaps
func finalize(v interface{}) interface{} {
	m, ok := v.(map[string]interface{})
	if !ok {
		return v
	}

	indices := make([]int, 0, len(m))
	for k, child := range m {
		m[k] = finalize(child)
		if i, err := strconv.Atoi(k); err == nil && i >= 0 && i <= maxFormIndex && strconv.Itoa(i) == k {
			indices = append(indices, i)
		}
	}
	if len(m) == 0 || len(indices) != len(m) {
		return m
	}

	sort.Ints(indices)
	list := make([]interface{}, 0, len(indices))
	for _, i := range indices {
		list = append(list, m[strconv.Itoa(i)])
	}
	return list
}
