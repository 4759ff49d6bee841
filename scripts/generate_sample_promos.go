//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
)

// promoLine is one JSON line of a promo file.
type promoLine struct {
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Discount        *decimal.Decimal `json:"discount,omitempty"`
	DiscountPercent *int             `json:"discountPercent,omitempty"`
	FreeDelivery    bool             `json:"freeDelivery"`
	DateStart       time.Time        `json:"dateStart"`
	DateEnd         time.Time        `json:"dateEnd"`
	IsActive        bool             `json:"isActive"`
}

// Writes sample promo files for `promoimport`.
// File 1: WELCOME10, SILVER500, FREESHIP
// File 2: WELCOME10 (15%, overrides file 1), WINTER, EXPIRED
// One line in file 2 is invalid and is skipped on import.
func main() {
	dataDir := "data/promos"

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	now := time.Now().UTC().Truncate(24 * time.Hour)
	month := now.AddDate(0, 1, 0)
	percent := func(p int) *int { return &p }
	amount := func(v int64) *decimal.Decimal { d := decimal.NewFromInt(v); return &d }

	files := map[string][]promoLine{
		"promos1.jsonl.gz": {
			{Name: "WELCOME10", Description: "10% off the first order", DiscountPercent: percent(10), DateStart: now, DateEnd: month, IsActive: true},
			{Name: "SILVER500", Description: "500 off any silver piece", Discount: amount(500), DateStart: now, DateEnd: month, IsActive: true},
			{Name: "FREESHIP", Description: "Free delivery", FreeDelivery: true, DateStart: now, IsActive: true},
		},
		"promos2.jsonl.gz": {
			{Name: "WELCOME10", Description: "15% off the first order", DiscountPercent: percent(15), DateStart: now, DateEnd: month, IsActive: true},
			{Name: "WINTER", Description: "Winter sale", DiscountPercent: percent(20), DateStart: month, DateEnd: month.AddDate(0, 2, 0), IsActive: true},
			{Name: "EXPIRED", Description: "Last year's sale", DiscountPercent: percent(5), DateStart: now.AddDate(-1, 0, 0), DateEnd: now.AddDate(-1, 1, 0), IsActive: true},
			{Name: "BROKEN", Description: "Two discounts at once", Discount: amount(100), DiscountPercent: percent(5), DateStart: now, IsActive: true},
		},
	}

	for filename, promos := range files {
		filePath := filepath.Join(dataDir, filename)

		if err := writePromoFile(filePath, promos); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d promo codes\n", filePath, len(promos))
	}

	fmt.Println("\nImport with: go run ./cmd/promoimport data/promos/promos1.jsonl.gz data/promos/promos2.jsonl.gz")
}

func writePromoFile(filePath string, promos []promoLine) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	encoder := json.NewEncoder(gzipWriter)
	for _, p := range promos {
		if err := encoder.Encode(p); err != nil {
			return fmt.Errorf("failed to write promo %s: %w", p.Name, err)
		}
	}

	return nil
}
