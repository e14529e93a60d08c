// Package renderer turns reports into markdown, and markdown into terminal
// or HTML output.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/carteira"
	"github.com/etnz/carteira/date"
)

//go:embed templates/*.md
var templates embed.FS

var funcs = template.FuncMap{
	"money":         func(v float64) string { return carteira.Money(v).String() },
	"signedMoney":   func(v float64) string { return carteira.Money(v).SignedString() },
	"percent":       func(v float64) string { return carteira.Percent(v).String() },
	"signedPercent": func(v float64) string { return carteira.Percent(v).SignedString() },
	"quantity":      formatQuantity,
	"day":           func(d date.Date) string { return d.Format("02/01/2006") },
}

// formatQuantity prints whole quantities without decimals.
func formatQuantity(q float64) string {
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", q), "0"), ".")
	return strings.Replace(s, ".", ",", 1)
}

// RenderPortfolio renders the portfolio report to markdown.
func RenderPortfolio(r *Portfolio) string {
	partials := map[string]string{
		"portfolio_summary":    "portfolio_summary.md",
		"portfolio_allocation": "portfolio_allocation.md",
		"portfolio_dividends":  "portfolio_dividends.md",
		"portfolio_positions":  "portfolio_positions.md",
		"portfolio_chart":      "portfolio_chart.md",
	}
	if r.Stale {
		partials["portfolio_stale"] = "portfolio_stale.md"
	} else {
		partials["portfolio_stale"] = "" // empty template
	}
	return renderTemplate("portfolio", "portfolio.md", partials, r)
}

// RenderTransactions renders the transaction list to markdown.
func RenderTransactions(r *Transactions) string {
	return renderTemplate("transactions", "transactions.md", nil, r)
}

// RenderNews renders the news to markdown.
func RenderNews(r *News) string {
	return renderTemplate("news", "news.md", nil, r)
}

// RenderNotifications renders the notifications to markdown.
func RenderNotifications(r *Notifications) string {
	return renderTemplate("notifications", "notifications.md", nil, r)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, "templates/"+file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
