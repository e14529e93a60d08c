package gemini

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/carteira"
	"github.com/etnz/carteira/date"
)

// The model answers with free text that is supposed to contain a single JSON
// document. Decoding is strict: every element must have the expected fields
// and types, otherwise the whole answer is rejected with carteira.ErrParsing.

var fence = regexp.MustCompile("(?s)```(?:json)?\\s*\\n(.*?)\\n\\s*```")

// extractJSON returns the JSON document embedded in 'text': the content of a
// ```json fence or the outermost {...}.
func extractJSON(text string) (string, error) {
	if m := fence.FindStringSubmatch(text); m != nil {
		return m[1], nil
	}
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no JSON object in response", carteira.ErrParsing)
	}
	return text[start : end+1], nil
}

// selectList extracts the JSON document from 'text' and returns the list at 'path'.
func selectList(text, path string) ([]any, error) {
	doc, err := extractJSON(text)
	if err != nil {
		return nil, err
	}
	var v any
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return nil, fmt.Errorf("%w: %v", carteira.ErrParsing, err)
	}
	list, err := jsonpath.Get(path, v)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", carteira.ErrParsing, path, err)
	}
	items, ok := list.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a list", carteira.ErrParsing, path)
	}
	return items, nil
}

// object is a JSON object with typed accessors that fail with ErrParsing.
type object struct {
	path string
	m    map[string]any
}

func asObject(path string, v any) (object, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return object{}, fmt.Errorf("%w: %s is not an object", carteira.ErrParsing, path)
	}
	return object{path: path, m: m}, nil
}

func (o object) has(key string) bool {
	v, ok := o.m[key]
	return ok && v != nil
}

func (o object) text(key string) (string, error) {
	s, ok := o.m[key].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: %s.%s must be a non empty string", carteira.ErrParsing, o.path, key)
	}
	return strings.TrimSpace(s), nil
}

func (o object) number(key string) (float64, error) {
	f, ok := o.m[key].(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s.%s must be a number", carteira.ErrParsing, o.path, key)
	}
	return f, nil
}

func (o object) day(key string) (date.Date, error) {
	s, err := o.text(key)
	if err != nil {
		return date.Date{}, err
	}
	on, err := date.Parse(s)
	if err != nil {
		return date.Date{}, fmt.Errorf("%w: %s.%s: %v", carteira.ErrParsing, o.path, key, err)
	}
	return on, nil
}

func (o object) list(key string) ([]any, error) {
	if !o.has(key) {
		return nil, nil
	}
	l, ok := o.m[key].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s must be a list", carteira.ErrParsing, o.path, key)
	}
	return l, nil
}

// decodeQuotes reads {"fiis":[{"ticker","name","history":[{"date","value"}]}]}.
//
// The history is sorted by date and the current price is its last value, 0
// without history. A missing name gets carteira.PlaceholderName.
func decodeQuotes(text string) (map[string]carteira.Quote, error) {
	items, err := selectList(text, "$.fiis")
	if err != nil {
		return nil, err
	}
	quotes := make(map[string]carteira.Quote, len(items))
	for i, item := range items {
		o, err := asObject(fmt.Sprintf("fiis[%d]", i), item)
		if err != nil {
			return nil, err
		}
		ticker, err := o.text("ticker")
		if err != nil {
			return nil, err
		}
		q := carteira.Quote{Ticker: carteira.NormalizeTicker(ticker), Name: carteira.PlaceholderName}
		if o.has("name") {
			name, ok := o.m["name"].(string)
			if !ok {
				return nil, fmt.Errorf("%w: %s.name must be a string", carteira.ErrParsing, o.path)
			}
			if name = strings.TrimSpace(name); name != "" {
				q.Name = name
			}
		}
		points, err := o.list("history")
		if err != nil {
			return nil, err
		}
		var history date.History[float64]
		for j, p := range points {
			po, err := asObject(fmt.Sprintf("%s.history[%d]", o.path, j), p)
			if err != nil {
				return nil, err
			}
			on, err := po.day("date")
			if err != nil {
				return nil, err
			}
			v, err := po.number("value")
			if err != nil {
				return nil, err
			}
			history.Append(on, v)
		}
		for on, v := range history.Values() {
			q.History = append(q.History, carteira.Point{Date: on, Value: v})
		}
		_, q.CurrentPrice = history.Latest()
		quotes[q.Ticker] = q
	}
	return quotes, nil
}

// decodeArticles reads {"articles":[{"title","summary","date"}]}.
func decodeArticles(text string) ([]Article, error) {
	items, err := selectList(text, "$.articles")
	if err != nil {
		return nil, err
	}
	articles := make([]Article, 0, len(items))
	for i, item := range items {
		o, err := asObject(fmt.Sprintf("articles[%d]", i), item)
		if err != nil {
			return nil, err
		}
		var a Article
		if a.Title, err = o.text("title"); err != nil {
			return nil, err
		}
		if a.Summary, err = o.text("summary"); err != nil {
			return nil, err
		}
		if a.Date, err = o.text("date"); err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	return articles, nil
}

// decodeEvents reads {"events":[{"ticker","type","date"}]}.
func decodeEvents(text string) ([]DividendEvent, error) {
	items, err := selectList(text, "$.events")
	if err != nil {
		return nil, err
	}
	events := make([]DividendEvent, 0, len(items))
	for i, item := range items {
		o, err := asObject(fmt.Sprintf("events[%d]", i), item)
		if err != nil {
			return nil, err
		}
		var e DividendEvent
		ticker, err := o.text("ticker")
		if err != nil {
			return nil, err
		}
		e.Ticker = carteira.NormalizeTicker(ticker)
		if e.Type, err = o.text("type"); err != nil {
			return nil, err
		}
		if e.Date, err = o.day("date"); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, nil
}
