// Package repository persists prepared shipment data into Postgres. The
// schema is clients -> orders -> invoices -> invoice_items; one extraction
// lands as one invoice per container inside a single transaction.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Column limits from the table definitions. Values are cut, not rejected:
// the upstream documents routinely overflow them with trailing junk.
const (
	maxContainerLen   = 20
	maxOrderNumberLen = 50
	maxInvoiceNumLen  = 50
	maxCodeLen        = 20
	maxPackageType    = 10
	maxCurrencyLen    = 10
)

// invoiceDateLayouts are the date spellings accepted from source documents.
var invoiceDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"02.01.2006",
	"02/01/2006",
}

// SaveResult reports what a save run wrote.
type SaveResult struct {
	ContainersSaved int
	ItemsSaved      int
}

// Store writes prepared records.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewStore(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{pool: pool, logger: logger}
}

// SaveExtraction persists all container records under the client and order,
// creating both on first use. Everything happens in one transaction; a
// failure anywhere leaves the store untouched.
func (s *Store) SaveExtraction(ctx context.Context, clientName, orderNumber string, records []ContainerRecord) (SaveResult, error) {
	var out SaveResult
	if len(records) == 0 {
		return out, errors.New("nothing to save: no container records")
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return out, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	clientID, err := upsertClient(ctx, tx, clientName)
	if err != nil {
		return out, fmt.Errorf("client %q: %w", clientName, err)
	}
	orderID, err := upsertOrder(ctx, tx, clientID, truncate(orderNumber, maxOrderNumberLen))
	if err != nil {
		return out, fmt.Errorf("order %q: %w", orderNumber, err)
	}

	var itemRows [][]any
	for _, rec := range records {
		var invoiceID int64
		err = tx.QueryRow(ctx,
			`INSERT INTO invoices
			   (order_id, container, consignor, consignee, sender_address, recipient_address, invoice_number, invoice_date)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			 RETURNING id`,
			orderID,
			truncate(rec.Container, maxContainerLen),
			rec.Consignor,
			rec.Consignee,
			rec.SenderAddress,
			rec.RecipientAddress,
			truncate(rec.InvoiceNumber, maxInvoiceNumLen),
			parseInvoiceDate(rec.InvoiceDate),
		).Scan(&invoiceID)
		if err != nil {
			return out, fmt.Errorf("insert invoice for container %q: %w", rec.Container, err)
		}
		out.ContainersSaved++

		for _, item := range rec.Items {
			itemRows = append(itemRows, []any{
				invoiceID,
				truncate(item.Code, maxCodeLen),
				item.GoodsName,
				item.RestrictionFlag,
				item.PackageInfo,
				item.Places,
				item.PackageInfoType,
				truncate(item.PackageType, maxPackageType),
				item.PackageCount,
				item.Weight,
				truncate(item.Currency, maxCurrencyLen),
				item.ValueAmount,
			})
		}
	}

	if len(itemRows) > 0 {
		n, err := tx.CopyFrom(ctx,
			pgx.Identifier{"invoice_items"},
			[]string{
				"invoice_id", "code", "goods_name", "restriction_flag", "package_info",
				"places", "package_info_type", "package_type", "package_count",
				"weight", "currency", "value_amount",
			},
			pgx.CopyFromRows(itemRows),
		)
		if err != nil {
			return out, fmt.Errorf("copy invoice items: %w", err)
		}
		out.ItemsSaved = int(n)
	}

	if err := tx.Commit(ctx); err != nil {
		return out, fmt.Errorf("commit: %w", err)
	}

	s.logger.Info("repository.save.done",
		"client", clientName,
		"order", orderNumber,
		"containers", out.ContainersSaved,
		"items", out.ItemsSaved)
	return out, nil
}

func upsertClient(ctx context.Context, tx pgx.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `SELECT id FROM clients WHERE name = $1`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	err = tx.QueryRow(ctx, `INSERT INTO clients (name) VALUES ($1) RETURNING id`, name).Scan(&id)
	return id, err
}

func upsertOrder(ctx context.Context, tx pgx.Tx, clientID int64, orderNumber string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx,
		`SELECT id FROM orders WHERE client_id = $1 AND order_number = $2`,
		clientID, orderNumber).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO orders (client_id, order_number) VALUES ($1, $2) RETURNING id`,
		clientID, orderNumber).Scan(&id)
	return id, err
}

// parseInvoiceDate returns nil when the value matches none of the accepted
// layouts, leaving the column NULL.
func parseInvoiceDate(s string) *time.Time {
	for _, layout := range invoiceDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
