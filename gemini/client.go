// Package gemini fetches market data, news and the dividend calendar of
// Brazilian real-estate funds from Gemini, grounded with Google Search.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/cache"
	"github.com/etnz/carteira/date"
	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// DefaultModel is the model used unless configured otherwise.
const DefaultModel = "gemini-2.5-flash"

// Time-to-live of the cached answers.
const (
	MarketTTL   = 60 * time.Minute
	NewsTTL     = 30 * time.Minute
	CalendarTTL = 12 * time.Hour
	// lastKnownTTL keeps the latest market answer around to display stale quotes.
	lastKnownTTL = 7 * 24 * time.Hour
)

// generator is the part of genai.Models used by the client.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client queries Gemini. Answers are cached when a cache is configured.
type Client struct {
	gen       generator
	model     string
	cache     cache.Cache
	chunkSize int
	delay     time.Duration
	log       zerolog.Logger
}

var _ carteira.MarketProvider = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithCache sets the cache of answers.
func WithCache(cc cache.Cache) Option { return func(c *Client) { c.cache = cc } }

// WithLogger sets the logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log.With().Str("component", "gemini").Logger() }
}

// WithChunks sets how many tickers are asked at once, and the pause between two requests.
func WithChunks(size int, delay time.Duration) Option {
	return func(c *Client) {
		if size > 0 {
			c.chunkSize = size
		}
		c.delay = delay
	}
}

// New returns a client authenticated with apiKey.
//
// An empty key is an ErrConfiguration.
func New(ctx context.Context, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("%w: missing Gemini API key", carteira.ErrConfiguration)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("%w: cannot create Gemini client: %v", carteira.ErrConfiguration, err)
	}
	return newClient(client.Models, opts...), nil
}

func newClient(gen generator, opts ...Option) *Client {
	c := &Client{
		gen:       gen,
		model:     DefaultModel,
		chunkSize: 5,
		delay:     time.Second,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ask sends the prompt with Google Search grounding enabled.
func (c *Client) ask(ctx context.Context, prompt string) (*genai.GenerateContentResponse, error) {
	config := &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	}
	start := time.Now()
	resp, err := c.gen.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		c.log.Debug().Err(err).Dur("elapsed", time.Since(start)).Msg("generate content failed")
		return nil, classify(err)
	}
	c.log.Debug().Dur("elapsed", time.Since(start)).Msg("generate content")
	return resp, nil
}

// classify wraps a genai error with the matching carteira error.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	code, msg := apiError(err)
	switch {
	case code == 401 || code == 403:
		return fmt.Errorf("%w: %v", carteira.ErrAuth, err)
	case code == 400 && strings.Contains(msg, "API key"):
		// an invalid key is reported as a bad request
		return fmt.Errorf("%w: %v", carteira.ErrAuth, err)
	}
	return fmt.Errorf("%w: %v", carteira.ErrService, err)
}

// apiError returns the status code and message of a genai.APIError, returned
// by value or by pointer.
func apiError(err error) (int, string) {
	var v genai.APIError
	if errors.As(err, &v) {
		return v.Code, v.Message
	}
	var p *genai.APIError
	if errors.As(err, &p) && p != nil {
		return p.Code, p.Message
	}
	return 0, ""
}

// FetchMarketHistory returns the name, current price and daily closing prices
// of the last lookbackDays days of each ticker.
//
// Tickers are asked by chunks, with a pause between two requests to stay under
// the rate limit. A ticker unknown to the model is absent from the result.
func (c *Client) FetchMarketHistory(ctx context.Context, tickers []string, lookbackDays int) (map[string]carteira.Quote, error) {
	if len(tickers) == 0 {
		return map[string]carteira.Quote{}, nil
	}
	key := marketKey(tickers, lookbackDays)
	quotes := make(map[string]carteira.Quote)
	if c.cache != nil && cache.Lookup(ctx, c.cache, key, &quotes) {
		c.log.Debug().Str("key", key).Msg("market data from cache")
		return quotes, nil
	}

	for i, chunk := range chunks(tickers, c.chunkSize) {
		if i > 0 && c.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delay):
			}
		}
		resp, err := c.ask(ctx, marketPrompt(chunk, lookbackDays))
		if err != nil {
			return nil, fmt.Errorf("cannot fetch market data for %s: %w", strings.Join(chunk, ", "), err)
		}
		got, err := decodeQuotes(resp.Text())
		if err != nil {
			c.log.Warn().Err(err).Str("response", resp.Text()).Msg("unexpected market data format")
			return nil, fmt.Errorf("cannot read market data for %s: %w", strings.Join(chunk, ", "), err)
		}
		for t, q := range got {
			quotes[t] = q
		}
	}
	if c.cache != nil {
		c.cache.Set(ctx, key, quotes, MarketTTL)
		c.cache.Set(ctx, "last-"+key, quotes, lastKnownTTL)
	}
	return quotes, nil
}

// LastKnownMarketHistory returns the latest answer of FetchMarketHistory for
// the same arguments, even if it is too old to be served from the cache.
func (c *Client) LastKnownMarketHistory(ctx context.Context, tickers []string, lookbackDays int) (map[string]carteira.Quote, bool) {
	if c.cache == nil {
		return nil, false
	}
	var quotes map[string]carteira.Quote
	ok := cache.Lookup(ctx, c.cache, "last-"+marketKey(tickers, lookbackDays), &quotes)
	return quotes, ok
}

func marketKey(tickers []string, days int) string {
	sorted := slices.Sorted(slices.Values(tickers))
	return "market:" + strings.Join(slices.Compact(sorted), ",") + ":" + strconv.Itoa(days)
}

// chunks splits tickers into slices of at most size elements.
func chunks(tickers []string, size int) [][]string {
	var res [][]string
	for chunk := range slices.Chunk(tickers, size) {
		res = append(res, chunk)
	}
	return res
}

func marketPrompt(tickers []string, days int) string {
	return fmt.Sprintf(`Para cada um dos tickers de FIIs brasileiros a seguir: %s, use a busca para encontrar o nome completo do fundo e seu histórico de preços de fechamento diários dos últimos %d dias. O preço mais recente deve ser o do último dia de negociação disponível. Formate a resposta como um único bloco de código JSON com a seguinte estrutura: {"fiis": [{"ticker": "...", "name": "...", "history": [{"date": "YYYY-MM-DD", "value": 123.45}]}]}. Não inclua nenhum texto ou formatação além do JSON.`,
		strings.Join(tickers, ", "), days)
}

// Article is a news summary.
type Article struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Date    string `json:"date"` // as written by the model
}

// Source is a web page the answer was grounded on.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// News is the latest news about the FII market, and the pages it comes from.
type News struct {
	Articles []Article `json:"articles"`
	Sources  []Source  `json:"sources"`
}

const newsPrompt = `Usando a busca, encontre e resuma as 5 notícias mais importantes e recentes sobre o mercado de Fundos de Investimento Imobiliário (FIIs) no Brasil. Para cada notícia, forneça um título, um resumo e a data. A resposta DEVE ser um único bloco de código JSON, sem nenhum texto ou explicação adicional, apenas o JSON. O formato do JSON deve ser: { "articles": [ { "title": "...", "summary": "...", "date": "..." } ] }`

// FetchNews returns the five most important recent news about FIIs.
//
// An answer whose articles cannot be read still returns its sources, with no
// articles.
func (c *Client) FetchNews(ctx context.Context) (News, error) {
	const key = "news"
	var news News
	if c.cache != nil && cache.Lookup(ctx, c.cache, key, &news) {
		return news, nil
	}
	resp, err := c.ask(ctx, newsPrompt)
	if err != nil {
		return News{}, fmt.Errorf("cannot fetch news: %w", err)
	}
	news.Articles, err = decodeArticles(resp.Text())
	if err != nil {
		c.log.Warn().Err(err).Str("response", resp.Text()).Msg("unexpected news format")
		news.Articles = []Article{}
	}
	news.Sources = sources(resp)
	if c.cache != nil {
		c.cache.Set(ctx, key, news, NewsTTL)
	}
	return news, nil
}

// sources returns the web sources of the grounding metadata, without duplicate URI.
func sources(resp *genai.GenerateContentResponse) []Source {
	res := []Source{}
	if len(resp.Candidates) == 0 || resp.Candidates[0].GroundingMetadata == nil {
		return res
	}
	seen := make(map[string]int)
	for _, chunk := range resp.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk == nil || chunk.Web == nil || chunk.Web.URI == "" || chunk.Web.Title == "" {
			continue
		}
		if i, ok := seen[chunk.Web.URI]; ok {
			res[i].Title = chunk.Web.Title
			continue
		}
		seen[chunk.Web.URI] = len(res)
		res = append(res, Source{URI: chunk.Web.URI, Title: chunk.Web.Title})
	}
	return res
}

// DividendEvent is an upcoming date of the dividend calendar of a fund.
type DividendEvent struct {
	Ticker string    `json:"ticker"`
	Type   string    `json:"type"` // "Data Com" or "Pagamento"
	Date   date.Date `json:"date"`
}

func calendarPrompt(tickers []string) string {
	return fmt.Sprintf(`Usando a busca, encontre as próximas datas de "Data Com" e de "Pagamento" de rendimentos dos seguintes FIIs brasileiros: %s. Inclua apenas datas anunciadas a partir de hoje. A resposta DEVE ser um único bloco de código JSON, sem nenhum texto adicional, no formato: { "events": [ { "ticker": "...", "type": "Data Com" ou "Pagamento", "date": "YYYY-MM-DD" } ] }`,
		strings.Join(tickers, ", "))
}

// FetchDividendCalendar returns the announced "data com" and payment dates of tickers.
func (c *Client) FetchDividendCalendar(ctx context.Context, tickers []string) ([]DividendEvent, error) {
	if len(tickers) == 0 {
		return nil, nil
	}
	key := "calendar:" + strings.Join(slices.Compact(slices.Sorted(slices.Values(tickers))), ",")
	var events []DividendEvent
	if c.cache != nil && cache.Lookup(ctx, c.cache, key, &events) {
		return events, nil
	}
	resp, err := c.ask(ctx, calendarPrompt(tickers))
	if err != nil {
		return nil, fmt.Errorf("cannot fetch dividend calendar: %w", err)
	}
	events, err = decodeEvents(resp.Text())
	if err != nil {
		c.log.Warn().Err(err).Str("response", resp.Text()).Msg("unexpected dividend calendar format")
		return nil, fmt.Errorf("cannot read dividend calendar: %w", err)
	}
	if c.cache != nil {
		c.cache.Set(ctx, key, events, CalendarTTL)
	}
	return events, nil
}
