package seeder

import (
	"context"

	"github.com/google/uuid"

	"github.com/simaogato/riskparity-backend/internal/domain"
)

// CatalogEntry defines one instrument the system guarantees to exist
type CatalogEntry struct {
	Ticker    string
	Name      string
	Type      domain.InstrumentType
	QuoteKind domain.QuoteKind
	Benchmark bool
}

// defaultCatalog is the instrument set the ingestion job tracks out of
// the box: the B3 ETFs the risk parity baskets are built from, the
// dollar, the reference rates and the main crypto pairs.
var defaultCatalog = []CatalogEntry{
	{Ticker: "BOVA11.SA", Name: "BOVA11 (Ibovespa)", Type: domain.InstrumentTypeETF, QuoteKind: domain.QuoteKindPrice},
	{Ticker: "XFIX11.SA", Name: "XFIX11 (IFIX)", Type: domain.InstrumentTypeETF, QuoteKind: domain.QuoteKindPrice},
	{Ticker: "IB5M11.SA", Name: "IB5M11 (IMAB5+)", Type: domain.InstrumentTypeETF, QuoteKind: domain.QuoteKindPrice},
	{Ticker: "B5P211.SA", Name: "B5P211 (IMAB5)", Type: domain.InstrumentTypeETF, QuoteKind: domain.QuoteKindPrice},
	{Ticker: "FIXA11.SA", Name: "FIXA11 (Pre)", Type: domain.InstrumentTypeETF, QuoteKind: domain.QuoteKindPrice},
	{Ticker: "USDBRL=X", Name: "USD/BRL (Dolar)", Type: domain.InstrumentTypeCurrency, QuoteKind: domain.QuoteKindPrice},
	{Ticker: "CDI", Name: "CDI", Type: domain.InstrumentTypeIndex, QuoteKind: domain.QuoteKindRate, Benchmark: true},
	{Ticker: "IPCA", Name: "IPCA (Inflacao)", Type: domain.InstrumentTypeIndex, QuoteKind: domain.QuoteKindRate, Benchmark: true},
	{Ticker: "BTC-USD", Name: "Bitcoin", Type: domain.InstrumentTypeCrypto, QuoteKind: domain.QuoteKindPrice},
	{Ticker: "ETH-USD", Name: "Ethereum", Type: domain.InstrumentTypeCrypto, QuoteKind: domain.QuoteKindPrice},
	{Ticker: "BNB-USD", Name: "Binance Coin", Type: domain.InstrumentTypeCrypto, QuoteKind: domain.QuoteKindPrice},
}

// CatalogSeeder ensures the default instrument catalog exists
type CatalogSeeder struct {
	repo domain.InstrumentRepository
}

// NewCatalogSeeder creates a new CatalogSeeder instance
func NewCatalogSeeder(repo domain.InstrumentRepository) *CatalogSeeder {
	return &CatalogSeeder{
		repo: repo,
	}
}

// Seed ensures every default instrument exists in the database
// If an instrument doesn't exist, it creates it
func (s *CatalogSeeder) Seed(ctx context.Context) error {
	for _, entry := range defaultCatalog {
		// Try to get the instrument by ticker
		_, err := s.repo.GetByTicker(ctx, entry.Ticker)
		if err == nil {
			// Instrument exists, no action needed
			continue
		}

		instrument := &domain.Instrument{
			ID:        uuid.New(),
			Ticker:    entry.Ticker,
			Name:      entry.Name,
			Type:      entry.Type,
			QuoteKind: entry.QuoteKind,
			Benchmark: entry.Benchmark,
		}

		// Validate before creating
		if err := instrument.Validate(); err != nil {
			return err
		}

		if err := s.repo.Create(ctx, instrument); err != nil {
			return err
		}
	}

	return nil
}
