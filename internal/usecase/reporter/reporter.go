package reporter

import (
	"fmt"
	"io"
	"text/tabwriter"

	snapshotv1 "github.com/lomash27/Auro/internal/domain/snapshot/v1"
)

// Reporter renders a snapshot of all books for humans: per instrument, both
// sides with price levels in matching priority order and resting orders with
// their remaining quantity.
type Reporter struct {
	w io.Writer
}

// New creates a reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Report writes the snapshot as a table per book.
func (r *Reporter) Report(snap *snapshotv1.Snapshot) error {
	for _, book := range snap.Books {
		if _, err := fmt.Fprintf(r.w, "%s\n", book.Instrument); err != nil {
			return err
		}

		tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "SIDE\tPRICE\tQTY\tORDER")
		writeSide(tw, "BUY", book.Bids)
		writeSide(tw, "SELL", book.Asks)
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

func writeSide(w io.Writer, side string, levels []snapshotv1.LevelSnapshot) {
	for _, level := range levels {
		for _, order := range level.Orders {
			fmt.Fprintf(w, "%s\t%g\t%g\t%s\n", side, level.Price, order.Quantity, order.OrderID)
		}
	}
}
