package carteira

import "testing"

func TestJoin(t *testing.T) {
	holdings := []Position{
		{Ticker: "HGLG11", Quantity: 10, AverageCost: 150},
		{Ticker: "UNKN11", Quantity: 5, AverageCost: 10},   // no quote
		{Ticker: "MXRF11", Quantity: 100, AverageCost: 10}, // no name
		{Ticker: "XPML11", Quantity: 2, AverageCost: 100},  // zero price
	}
	quotes := map[string]Quote{
		"HGLG11": {Ticker: "HGLG11", Name: "CSHG Logística", CurrentPrice: 162.5},
		"MXRF11": {Ticker: "MXRF11", CurrentPrice: 10.4},
		"XPML11": {Ticker: "XPML11", Name: "XP Malls", CurrentPrice: 0},
	}

	got := Join(holdings, quotes)
	want := []DisplayPosition{
		{Position: holdings[0], Name: "CSHG Logística", CurrentPrice: 162.5},
		{Position: holdings[2], Name: PlaceholderName, CurrentPrice: 10.4},
	}
	if d := diff(want, got); d != "" {
		t.Errorf("Join mismatch (-want +got):\n%s", d)
	}
}

func TestJoin_PlaceholderKeptWhenPriced(t *testing.T) {
	holdings := []Position{{Ticker: "BTLG11", Quantity: 1, AverageCost: 100}}
	got := Join(holdings, map[string]Quote{"BTLG11": {CurrentPrice: 101}})
	if len(got) != 1 || got[0].Name != PlaceholderName {
		t.Errorf("Join() = %+v, want a single row named %q", got, PlaceholderName)
	}
	if got := got[0].MarketValue(); got != 101 {
		t.Errorf("MarketValue() = %v, want 101", got)
	}
}
