package backend

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"budget/internal/config"
	"budget/internal/core"
	"budget/internal/report"
)

func TestBackendTypeIsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("sheets").IsValid() {
		t.Error("sheets is not a storage backend")
	}
	if got := GetBackendTypeStrings(); len(got) != 2 || got[0] != "json" || got[1] != "sqlite" {
		t.Errorf("unexpected backend strings: %v", got)
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Fatal("expected error for nil config")
	}

	app := &config.Config{DataBackend: "mongo"}
	if _, err := FromAppConfig(app); err == nil {
		t.Fatal("expected error for unknown backend")
	}

	app = &config.Config{
		DataBackend:    "sqlite",
		SQLiteDBPath:   "x.db",
		AMQPURL:        "amqp://localhost",
		AMQPExchange:   "budget",
		AMQPQueue:      "changes",
		ReportCacheTTL: time.Minute,
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || cfg.AMQPQueue != "changes" || cfg.ReportCacheTTL != time.Minute {
		t.Errorf("unexpected backend config: %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"json ok", Config{Type: JSONBackend, DataFile: "data.json"}, false},
		{"json without file", Config{Type: JSONBackend}, true},
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown type", Config{Type: "csv"}, true},
		{"amqp incomplete", Config{Type: JSONBackend, DataFile: "d", AMQPURL: "amqp://x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackendAndReader(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, cfg := range []Config{
		{Type: JSONBackend, DataFile: filepath.Join(dir, "data.json")},
		{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "budget.db")},
	} {
		t.Run(cfg.Type.String(), func(t *testing.T) {
			f := NewFactory(nil)

			res, err := f.CreateBackend(ctx, cfg)
			if err != nil {
				t.Fatalf("CreateBackend: %v", err)
			}
			if _, err := res.Service.CreateTransaction(ctx, core.Transaction{
				Amount: core.AmountFromInt(12), Date: "2024-05-01", Description: "pizza", Type: core.Expense,
			}); err != nil {
				t.Fatalf("CreateTransaction: %v", err)
			}
			got, err := res.Service.ListTransactions(ctx, report.TransactionFilter{Category: "Food"})
			if err != nil || len(got) != 1 {
				t.Fatalf("expected one Food transaction, got %v err=%v", got, err)
			}

			reader, err := f.CreateReader(ctx, cfg)
			if err != nil {
				t.Fatalf("CreateReader: %v", err)
			}
			ts, err := reader.Source.ListTransactions(ctx)
			if err != nil || len(ts) != 1 {
				t.Fatalf("reader should see the write, got %v err=%v", ts, err)
			}

			if err := reader.Cleanup(); err != nil {
				t.Errorf("reader cleanup: %v", err)
			}
			if err := res.Cleanup(); err != nil {
				t.Errorf("backend cleanup: %v", err)
			}
		})
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	f := NewFactory(nil)
	if _, err := f.CreateBackend(context.Background(), Config{Type: SQLiteBackend}); err == nil {
		t.Fatal("expected validation error")
	}
	_, err := f.CreateReader(context.Background(), Config{Type: "nope"})
	if err == nil || errors.Is(err, context.Canceled) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
