package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"airdrop-ledger/internal/core/domain"
	"airdrop-ledger/internal/core/port"
)

const defaultUploadBatch = 200

var uploadFlags struct {
	file  string
	batch int
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload allocations from a CSV file",
	Long: `Upload allocations from a CSV file as the configured owner.

Each row is "participant,amount,campaignId". A header row naming
"participant" in its first column is skipped. Rows are sent in batches;
every batch is applied completely or not at all, and the command stops at
the first rejected batch.`,
	Args: cobra.NoArgs,
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadFlags.file, "file", "f", "", "CSV file with participant,amount,campaignId rows")
	uploadCmd.Flags().IntVar(&uploadFlags.batch, "batch", defaultUploadBatch, "entries per upload call")
	_ = uploadCmd.MarkFlagRequired("file")
}

func runUpload(cmd *cobra.Command, _ []string) error {
	if cfg.Ledger.UseMemory() {
		return errNeedsPostgres
	}
	f, err := os.Open(uploadFlags.file)
	if err != nil {
		return err
	}
	defer f.Close()

	entries, err := readAllocations(f)
	if err != nil {
		return fmt.Errorf("%s: %w", uploadFlags.file, err)
	}

	svc, cleanup, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	return uploadBatches(cmd.Context(), svc, domain.NewAddress(cfg.Ledger.Owner), entries, uploadFlags.batch)
}

// readAllocations parses participant,amount,campaignId rows.
func readAllocations(r io.Reader) ([]domain.AllocationEntry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 3
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	var entries []domain.AllocationEntry
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		if len(entries) == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "participant") {
			continue
		}
		participant := domain.NewAddress(rec[0])
		if participant.IsZero() {
			return nil, fmt.Errorf("line %d: %w", line, domain.ErrEmptyAddress)
		}
		amount, err := strconv.ParseUint(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: amount: %w", line, err)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rec[2]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: campaign id: %w", line, err)
		}
		entries = append(entries, domain.AllocationEntry{Participant: participant, Amount: amount, CampaignID: id})
	}
	if len(entries) == 0 {
		return nil, domain.ErrEmptyBatch
	}
	return entries, nil
}

// uploadBatches sends entries in chunks of size. Earlier batches stay
// applied when a later one fails.
func uploadBatches(ctx context.Context, svc port.LedgerUseCase, owner domain.Address, entries []domain.AllocationEntry, size int) error {
	if size <= 0 {
		size = defaultUploadBatch
	}
	for start := 0; start < len(entries); start += size {
		end := min(start+size, len(entries))
		if err := svc.UploadAllocations(ctx, owner, entries[start:end]); err != nil {
			return fmt.Errorf("batch at entry %d: %w", start, err)
		}
		logger.Info("allocations uploaded", slog.Int("from", start), slog.Int("to", end))
	}
	return nil
}
