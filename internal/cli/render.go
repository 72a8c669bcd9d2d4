package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"quotewatch/internal/domain/quote"
	"quotewatch/internal/domain/watchlist"
)

// renderWatchlist prints one watchlist as an aligned table. current marks
// the selected list.
func renderWatchlist(w io.Writer, wl watchlist.Watchlist, current bool) {
	marker := " "
	if current {
		marker = "*"
	}
	fmt.Fprintf(w, "%s %s\n", marker, wl.Name)

	if len(wl.Quotes) == 0 {
		fmt.Fprintln(w, "    (empty)")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "\tSymbol\tBid\tAsk\tLast\t")
	for _, q := range wl.Quotes {
		fmt.Fprintf(tw, "\t%s\t%s\t%s\t%s\t\n", q.Symbol, q.BidPrice, q.AskPrice, display(q.LastPrice))
	}
	_ = tw.Flush()
}

func display(price string) string {
	if formatted := quote.FormatPrice(price); formatted != "" {
		return formatted
	}
	return price
}
