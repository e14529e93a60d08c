package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/cache"
	"github.com/etnz/carteira/store"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func quotesAnswer(tickers ...string) answer {
	var items []string
	for _, t := range tickers {
		items = append(items, fmt.Sprintf(`{"ticker":%q,"name":"Fundo %s","history":[{"date":"2025-01-02","value":10}]}`, t, t))
	}
	return answer{text: `{"fiis":[` + strings.Join(items, ",") + `]}`}
}

func TestFetchMarketHistory_Chunks(t *testing.T) {
	f := &fake{answers: []answer{
		quotesAnswer("A11", "B11", "C11", "D11", "E11"),
		quotesAnswer("F11", "G11", "H11", "I11", "J11"),
		quotesAnswer("K11"),
	}}
	c := newClient(f, WithChunks(5, 0))

	tickers := []string{"A11", "B11", "C11", "D11", "E11", "F11", "G11", "H11", "I11", "J11", "K11"}
	got, err := c.FetchMarketHistory(context.Background(), tickers, 30)
	require.NoError(t, err)
	assert.Len(t, got, 11)
	assert.Equal(t, 3, f.calls())
	assert.Contains(t, f.prompts[2], "K11")
	assert.Contains(t, f.prompts[0], "30 dias")
	assert.Equal(t, DefaultModel, f.models[0])
	assert.Equal(t, 10.0, got["K11"].CurrentPrice)
}

func TestFetchMarketHistory_Cache(t *testing.T) {
	ctx := context.Background()
	f := &fake{answers: []answer{quotesAnswer("HGLG11", "MXRF11")}}
	cc := cache.NewStore(store.NewMemory(), zerolog.Nop())
	c := newClient(f, WithCache(cc), WithModel("gemini-test"))

	first, err := c.FetchMarketHistory(ctx, []string{"MXRF11", "HGLG11"}, 90)
	require.NoError(t, err)
	second, err := c.FetchMarketHistory(ctx, []string{"HGLG11", "MXRF11"}, 90)
	require.NoError(t, err)

	assert.Equal(t, 1, f.calls(), "second call is served from the cache")
	assert.Equal(t, first, second)
	assert.Equal(t, "gemini-test", f.models[0])

	// another period is another request, that fails
	_, err = c.FetchMarketHistory(ctx, []string{"HGLG11", "MXRF11"}, 30)
	assert.ErrorIs(t, err, carteira.ErrService)

	stale, ok := c.LastKnownMarketHistory(ctx, []string{"MXRF11", "HGLG11"}, 90)
	assert.True(t, ok)
	assert.Equal(t, first, stale)
}

func TestFetchMarketHistory_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		answer answer
		want   error
	}{
		{"unauthorized", answer{err: genai.APIError{Code: 403, Message: "permission denied"}}, carteira.ErrAuth},
		{"invalid key", answer{err: &genai.APIError{Code: 400, Message: "API key not valid. Please pass a valid API key."}}, carteira.ErrAuth},
		{"overloaded", answer{err: genai.APIError{Code: 503, Message: "model overloaded"}}, carteira.ErrService},
		{"network", answer{err: errors.New("connection reset by peer")}, carteira.ErrService},
		{"garbage", answer{text: "Não consegui encontrar os dados."}, carteira.ErrParsing},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(&fake{answers: []answer{tc.answer}})
			got, err := c.FetchMarketHistory(context.Background(), []string{"HGLG11"}, 30)
			assert.ErrorIs(t, err, tc.want)
			assert.Nil(t, got)
		})
	}
	assert.True(t, carteira.Retriable(classify(genai.APIError{Code: 500})))
}

func TestNew_MissingKey(t *testing.T) {
	_, err := New(context.Background(), " ")
	assert.ErrorIs(t, err, carteira.ErrConfiguration)
}

func TestFetchNews(t *testing.T) {
	f := &fake{answers: []answer{{
		text: "```json\n" + `{"articles":[{"title":"IFIX renova máxima","summary":"Resumo.","date":"2025-07-15"}]}` + "\n```",
		sources: []Source{
			{URI: "https://a.example/1", Title: "A"},
			{URI: "https://b.example/2", Title: "B"},
			{URI: "https://a.example/1", Title: "A again"},
			{URI: "", Title: "no uri"},
		},
	}}}
	c := newClient(f)
	got, err := c.FetchNews(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Article{{Title: "IFIX renova máxima", Summary: "Resumo.", Date: "2025-07-15"}}, got.Articles)
	assert.Equal(t, []Source{{URI: "https://a.example/1", Title: "A again"}, {URI: "https://b.example/2", Title: "B"}}, got.Sources)
}

func TestFetchNews_UnreadableArticles(t *testing.T) {
	f := &fake{answers: []answer{{
		text:    "As notícias de hoje são...",
		sources: []Source{{URI: "https://a.example/1", Title: "A"}},
	}}}
	got, err := newClient(f).FetchNews(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Articles)
	assert.Len(t, got.Sources, 1)
}

func TestFetchDividendCalendar(t *testing.T) {
	f := &fake{answers: []answer{{text: `{"events":[{"ticker":"HGLG11","type":"Pagamento","date":"2025-02-14"}]}`}}}
	c := newClient(f)
	got, err := c.FetchDividendCalendar(context.Background(), []string{"HGLG11"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Pagamento", got[0].Type)
	assert.Contains(t, f.prompts[0], "HGLG11")

	none, err := c.FetchDividendCalendar(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.Equal(t, 1, f.calls())
}
