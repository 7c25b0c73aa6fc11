package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guardpost/console/internal/domain/invoice"
	"github.com/guardpost/console/internal/domain/payment"
	ierr "github.com/guardpost/console/internal/errors"
	"github.com/guardpost/console/internal/logger"
	"github.com/guardpost/console/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

func main() {
	app := &cli.App{
		Name:  "invoicectl",
		Usage: "price invoice files and check payment balances offline",
		Commands: []*cli.Command{
			{
				Name:  "totals",
				Usage: "print line amounts and document totals for an invoice file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "invoice YAML file",
						Required: true,
					},
				},
				Action: totalsAction,
			},
			{
				Name:  "balance",
				Usage: "print the remaining balance of an invoice total after payments",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "total", Usage: "invoice grand total", Required: true},
					&cli.Float64SliceFlag{Name: "paid", Usage: "amount already paid, repeatable"},
					&cli.Float64Flag{Name: "amount", Usage: "check whether a new payment of this amount would be accepted"},
				},
				Action: balanceAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.L.Errorw("invoicectl failed",
			"error", err,
			"code", ierr.CodeFromErr(err),
		)
		os.Exit(1)
	}
}

// invoiceFile is the YAML shape read by the totals command
type invoiceFile struct {
	Number   string         `yaml:"number"`
	Items    []lineItemFile `yaml:"items"`
	Payments []float64      `yaml:"payments"`
}

type lineItemFile struct {
	Name           string  `yaml:"name"`
	Quantity       float64 `yaml:"quantity"`
	Rate           float64 `yaml:"rate"`
	TaxRatePercent float64 `yaml:"tax_rate_percent"`
}

func (f lineItemFile) toLineItem() (*invoice.LineItem, error) {
	quantity, err := types.ParseDecimalFloat("quantity", f.Quantity)
	if err != nil {
		return nil, err
	}
	rate, err := types.ParseDecimalFloat("rate", f.Rate)
	if err != nil {
		return nil, err
	}
	taxRate, err := types.ParseDecimalFloat("tax_rate_percent", f.TaxRatePercent)
	if err != nil {
		return nil, err
	}

	item := invoice.NewLineItem(f.Name, quantity, rate, taxRate)
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return item, nil
}

func readInvoiceFile(path string) (*invoiceFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHintf("Could not read %s", path).
			Mark(ierr.ErrValidation)
	}

	var f invoiceFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, ierr.WithError(err).
			WithHintf("%s is not a valid invoice file", path).
			Mark(ierr.ErrValidation)
	}
	if len(f.Items) == 0 {
		return nil, ierr.NewError("invoice file has no items").
			WithHint("An invoice needs at least one line item").
			Mark(ierr.ErrValidation)
	}
	return &f, nil
}

func totalsAction(c *cli.Context) error {
	f, err := readInvoiceFile(c.String("file"))
	if err != nil {
		return err
	}

	items := make([]*invoice.LineItem, 0, len(f.Items))
	for _, fi := range f.Items {
		item, err := fi.toLineItem()
		if err != nil {
			return err
		}
		items = append(items, item)
	}

	lines := lo.Map(items, func(li *invoice.LineItem, _ int) invoice.LineAmounts {
		return li.Amounts()
	})
	totals := invoice.Aggregate(lines)

	w := tabwriter.NewWriter(c.App.Writer, 0, 0, 2, ' ', tabwriter.AlignRight)
	if f.Number != "" {
		fmt.Fprintf(w, "Invoice %s\n", f.Number)
	}
	fmt.Fprintln(w, "Name\tQty\tRate\tTax %\tAmount\tTax\tTotal\t")
	for i, li := range items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			li.Name,
			li.Quantity.String(),
			li.Rate.String(),
			li.TaxRatePercent.String(),
			types.FormatAmount(lines[i].LineAmount),
			types.FormatAmount(lines[i].TaxAmount),
			types.FormatAmount(lines[i].LineTotal),
		)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Subtotal\t%s\t\n", types.FormatAmount(totals.Subtotal))
	fmt.Fprintf(w, "Tax\t%s\t\n", types.FormatAmount(totals.TaxTotal))
	fmt.Fprintf(w, "Total\t%s\t\n", types.FormatAmount(totals.GrandTotal))
	if err := w.Flush(); err != nil {
		return err
	}

	if len(f.Payments) == 0 {
		return nil
	}

	payments, err := toPayments(f.Payments)
	if err != nil {
		return err
	}
	return printBalance(c.App.Writer, totals.GrandTotal, payments)
}

func balanceAction(c *cli.Context) error {
	total, err := types.ParseAmountFloat("total", c.Float64("total"))
	if err != nil {
		return err
	}

	payments, err := toPayments(c.Float64Slice("paid"))
	if err != nil {
		return err
	}

	if err := printBalance(c.App.Writer, total, payments); err != nil {
		return err
	}

	if !c.IsSet("amount") {
		return nil
	}

	amount, err := types.ParseAmountFloat("amount", c.Float64("amount"))
	if err != nil {
		return err
	}
	if err := payment.ValidateNewPayment(amount, total, payments); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "A payment of %s would be accepted\n", types.FormatAmount(amount))
	return nil
}

func toPayments(amounts []float64) ([]*payment.Payment, error) {
	payments := make([]*payment.Payment, 0, len(amounts))
	for _, a := range amounts {
		amount, err := types.ParseAmountFloat("paid", a)
		if err != nil {
			return nil, err
		}
		payments = append(payments, &payment.Payment{Amount: amount})
	}
	return payments, nil
}

func printBalance(out io.Writer, total decimal.Decimal, payments []*payment.Payment) error {
	status := types.InvoiceDisplayStatusPending
	if payment.IsFullyPaid(total, payments) {
		status = types.InvoiceDisplayStatusPaid
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "Total\t%s\t\n", types.FormatAmount(total))
	fmt.Fprintf(w, "Paid\t%s\t\n", types.FormatAmount(payment.Paid(payments)))
	fmt.Fprintf(w, "Remaining\t%s\t\n", types.FormatAmount(payment.RemainingBalance(total, payments)))
	fmt.Fprintf(w, "Status\t%s\t\n", status)
	return w.Flush()
}
