package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		wantErr bool
		errMsg  string
	}{
		{
			name: "Valid BUY should pass",
			tx: Transaction{
				ID:            uuid.New(),
				UserID:        uuid.New(),
				InstrumentID:  uuid.New(),
				Type:          TransactionTypeBuy,
				Shares:        decimal.NewFromInt(10),
				PricePerShare: decimal.NewFromInt(100),
				Date:          time.Now(),
			},
			wantErr: false,
		},
		{
			name: "Valid SELL should pass",
			tx: Transaction{
				ID:            uuid.New(),
				UserID:        uuid.New(),
				InstrumentID:  uuid.New(),
				Type:          TransactionTypeSell,
				Shares:        decimal.NewFromFloat(0.00000001),
				PricePerShare: decimal.NewFromInt(50000),
				Date:          time.Now(),
			},
			wantErr: false,
		},
		{
			name: "Unknown type should fail",
			tx: Transaction{
				Type:          TransactionType("TRANSFER"),
				Shares:        decimal.NewFromInt(1),
				PricePerShare: decimal.NewFromInt(1),
			},
			wantErr: true,
			errMsg:  "transaction type must be BUY or SELL",
		},
		{
			name: "Zero shares should fail",
			tx: Transaction{
				Type:          TransactionTypeBuy,
				Shares:        decimal.Zero,
				PricePerShare: decimal.NewFromInt(100),
			},
			wantErr: true,
			errMsg:  "transaction shares must be positive",
		},
		{
			name: "Negative price should fail",
			tx: Transaction{
				Type:          TransactionTypeSell,
				Shares:        decimal.NewFromInt(5),
				PricePerShare: decimal.NewFromInt(-1),
			},
			wantErr: true,
			errMsg:  "transaction price per share must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransaction_CashImpact(t *testing.T) {
	buy := Transaction{
		Type:          TransactionTypeBuy,
		Shares:        decimal.NewFromInt(10),
		PricePerShare: decimal.NewFromInt(100),
	}
	sell := Transaction{
		Type:          TransactionTypeSell,
		Shares:        decimal.NewFromInt(5),
		PricePerShare: decimal.NewFromInt(120),
	}

	assert.True(t, buy.CashImpact().Equal(decimal.NewFromInt(-1000)))
	assert.True(t, sell.CashImpact().Equal(decimal.NewFromInt(600)))
}

func TestInstrument_DecimalPlaces(t *testing.T) {
	crypto := Instrument{Ticker: "BTC-USD", Type: InstrumentTypeCrypto, QuoteKind: QuoteKindPrice}
	etf := Instrument{Ticker: "BOVA11.SA", Type: InstrumentTypeETF, QuoteKind: QuoteKindPrice}

	assert.Equal(t, int32(8), crypto.DecimalPlaces())
	assert.Equal(t, int32(2), etf.DecimalPlaces())
}
