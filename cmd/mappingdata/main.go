// Command mappingdata normalizes a supplier invoice workbook, optionally
// reconciles it against a transit-declaration XML, and writes the result as
// JSON for the declaration software, an XLSX review sheet, or rows in the
// shipment store.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/Wooodyy/mappingdata/internal/common"
	"github.com/Wooodyy/mappingdata/internal/declaration"
	"github.com/Wooodyy/mappingdata/internal/entity"
	"github.com/Wooodyy/mappingdata/internal/export"
	"github.com/Wooodyy/mappingdata/internal/extract"
	"github.com/Wooodyy/mappingdata/internal/llm/gemini"
	"github.com/Wooodyy/mappingdata/internal/reconcile"
	"github.com/Wooodyy/mappingdata/internal/repository"
)

type compareOutput struct {
	Success     bool                       `json:"success"`
	Invoice     *entity.ExtractionResult   `json:"invoice_data,omitempty"`
	Declaration *entity.ExtractionResult   `json:"xml_data,omitempty"`
	Documents   []entity.DocumentRecord    `json:"xml_documents,omitempty"`
	Details     *entity.DeclarationDetails `json:"declaration_details,omitempty"`
	Aligned     bool                       `json:"aligned"`
	Note        string                     `json:"note,omitempty"`
}

func main() {
	var (
		supplier = flag.String("supplier", "", "sender name the extraction profile is registered under")
		file     = flag.String("file", "", "path to the invoice workbook (xlsx)")
		declPath = flag.String("declaration", "", "path to the transit declaration (xml), enables reconciliation")
		client   = flag.String("client", "", "client name for -save")
		order    = flag.String("order", "", "order number for -save")
		save     = flag.Bool("save", false, "persist prepared records to the database")
		outPath  = flag.String("out", "", "write JSON output here instead of stdout")
		xlsxPath = flag.String("xlsx", "", "also write an XLSX review workbook here")
		noLLM    = flag.Bool("no-llm", false, "skip the model for classification and alignment")
	)
	flag.Parse()

	_ = godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(*supplier, *file, *declPath, *client, *order, *save, *outPath, *xlsxPath, *noLLM, logger); err != nil {
		logger.Error("run.failed", "error", err)
		os.Exit(1)
	}
}

func run(supplier, file, declPath, client, order string, save bool, outPath, xlsxPath string, noLLM bool, logger *slog.Logger) error {
	v := common.NewValidator()
	v.Field("supplier", supplier, common.Required)
	v.Field("file", file, common.Required)
	if save {
		v.Field("client", client, common.Required)
		v.Field("order", order, common.Required)
	}
	if err := v.Error(); err != nil {
		return err
	}
	if _, ok := extract.Lookup(supplier); !ok {
		return fmt.Errorf("unknown supplier %q, registered: %s",
			supplier, strings.Join(extract.Suppliers(), "; "))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = common.WithRequestID(ctx, uuid.New().String())

	cfg := common.LoadConfig()

	var model *gemini.Client
	if !noLLM && cfg.Gemini.APIKey != "" {
		model = gemini.NewClient(gemini.Config{
			APIKey:  cfg.Gemini.APIKey,
			BaseURL: cfg.Gemini.BaseURL,
			Model:   cfg.Gemini.Model,
			Timeout: cfg.Gemini.Timeout,
		}, logger)
	}

	workbook, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read workbook: %w", err)
	}

	deps := extract.Deps{Logger: logger}
	if model != nil {
		deps.Classifier = model
	}

	opts := extract.Options{}
	var declBytes []byte
	if declPath != "" {
		declBytes, err = os.ReadFile(declPath)
		if err != nil {
			return fmt.Errorf("read declaration: %w", err)
		}
		// narrow multi-shipment invoices down to the declared container
		if p, _ := extract.Lookup(supplier); p.SkipNoContainer {
			preview := declaration.Parse(declBytes, declaration.Options{})
			opts.ContainerFilter = reconcile.FirstContainer(preview)
		}
	}

	invoice, err := extract.Extract(ctx, supplier, workbook, opts, deps)
	if err != nil {
		return fmt.Errorf("extract %q: %w", supplier, err)
	}
	logger.Info("extract.done",
		"supplier", supplier,
		"containers", invoice.Containers.Len(),
		"items", invoice.Containers.TotalItems())

	var output []byte
	if declBytes != nil {
		decl := declaration.Parse(declBytes, declaration.Options{Invoice: invoice})

		engine := reconcile.NewEngine(nil, logger)
		if model != nil {
			engine = reconcile.NewEngine(model, logger)
		}
		rec := engine.Reconcile(ctx, invoice, decl)

		out := compareOutput{
			Success:     true,
			Invoice:     rec.Invoice,
			Declaration: decl.Data,
			Documents:   decl.Documents,
			Details:     &decl.Details,
			Aligned:     rec.Aligned,
			Note:        rec.Note,
		}
		output, err = marshalIndent(out)
		if err != nil {
			return err
		}
	} else {
		output, err = export.MarshalJSON(invoice)
		if err != nil {
			return err
		}
	}

	if err := writeOutput(outPath, output); err != nil {
		return err
	}

	if xlsxPath != "" {
		wb, err := export.WriteXLSX(invoice)
		if err != nil {
			return err
		}
		if err := os.WriteFile(xlsxPath, wb, 0o644); err != nil {
			return fmt.Errorf("write xlsx: %w", err)
		}
	}

	if save {
		if err := cfg.ValidateForSave(); err != nil {
			return err
		}
		pool, err := repository.Open(ctx, repository.Config(cfg.Database), logger)
		if err != nil {
			return err
		}
		defer repository.Close(pool, logger)

		store := repository.NewStore(pool, logger)
		records := repository.PrepareRecords(invoice)
		res, err := store.SaveExtraction(ctx, client, order, records)
		if err != nil {
			return fmt.Errorf("save extraction: %w", err)
		}
		logger.Info("save.done", "containers", res.ContainersSaved, "items", res.ItemsSaved)
	}

	return nil
}

func marshalIndent(v any) ([]byte, error) {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	return []byte(b.String()), nil
}

func writeOutput(path string, data []byte) error {
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
