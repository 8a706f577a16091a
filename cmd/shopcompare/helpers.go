package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/windoze95/shopcompare-api/internal/models"
)

// printJSON writes v as indented JSON.
func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// printProducts writes one product per row, cheapest first.
func printProducts(out io.Writer, products []models.Product) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PRICE\tPLATFORM\tNAME\tURL")
	for _, p := range products {
		fmt.Fprintf(w, "NT$%d\t%s\t%s\t%s\n", p.Price, p.Platform, p.Name, p.URL)
	}
	return w.Flush()
}
