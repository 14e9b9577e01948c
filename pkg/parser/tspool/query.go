package tspool

import (
	"fmt"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/specvital/testinglint/pkg/domain"
)

// Capture is one named capture of a query match.
type Capture struct {
	Name string
	Node *sitter.Node
}

type queryCacheKey struct {
	lang     domain.Language
	queryStr string
}

type cachedQuery struct {
	once  sync.Once
	query *sitter.Query
	err   error
}

var queryCache sync.Map

// compiled returns a compiled query shared by all callers. It must NOT be closed.
func compiled(lang domain.Language, queryStr string) (*sitter.Query, error) {
	key := queryCacheKey{lang: lang, queryStr: queryStr}

	val, _ := queryCache.LoadOrStore(key, &cachedQuery{})
	cached, ok := val.(*cachedQuery)
	if !ok {
		return nil, fmt.Errorf("invalid cache entry type")
	}

	cached.once.Do(func() {
		grammar, err := GetLanguage(lang)
		if err != nil {
			cached.err = err
			return
		}
		cached.query, cached.err = sitter.NewQuery([]byte(queryStr), grammar)
	})

	return cached.query, cached.err
}

// Captures runs a query with cached compilation and returns every capture
// in match order. Text predicates such as #eq? are applied against source.
func Captures(root *sitter.Node, source []byte, lang domain.Language, queryStr string) ([]Capture, error) {
	query, err := compiled(lang, queryStr)
	if err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	cursor.Exec(query, root)

	var captures []Capture
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, source)
		for _, c := range match.Captures {
			captures = append(captures, Capture{
				Name: query.CaptureNameForId(c.Index),
				Node: c.Node,
			})
		}
	}

	return captures, nil
}

// ClearQueryCache removes all cached queries. Only for testing.
func ClearQueryCache() {
	var toClose []*sitter.Query

	queryCache.Range(func(key, value any) bool {
		queryCache.Delete(key)
		if cached, ok := value.(*cachedQuery); ok {
			cached.once.Do(func() {})
			if cached.query != nil && cached.err == nil {
				toClose = append(toClose, cached.query)
			}
		}
		return true
	})

	for _, q := range toClose {
		q.Close()
	}
}
