package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"airdrop-ledger/internal/core/domain"
	"airdrop-ledger/internal/core/port"
)

// EventsChannel is the LISTEN/NOTIFY channel ledger events are published on.
const EventsChannel = "ledger_events"

// LedgerRepository implements port.LedgerRepository using pgxpool for
// PostgreSQL. Every transaction runs at serializable isolation; a
// serialization failure surfaces as port.ErrConflict.
type LedgerRepository struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository returns a new repository instance.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepository {
	return &LedgerRepository{pool: pool}
}

// Bootstrap creates the single state row with owner unless it exists.
func (r *LedgerRepository) Bootstrap(ctx context.Context, owner domain.Address) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO ledger_state (id, owner, next_campaign_id) VALUES (1, $1, 1) ON CONFLICT (id) DO NOTHING`, owner.String())
	return err
}

// InTx runs fn in a serializable transaction, committing only if fn
// succeeds.
func (r *LedgerRepository) InTx(ctx context.Context, fn func(tx port.LedgerTx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			err = translate(err)
			return
		}
		err = translate(tx.Commit(ctx))
	}()
	return fn(&ledgerTx{tx: tx})
}

// Events returns journaled events with seq greater than after.
func (r *LedgerRepository) Events(ctx context.Context, after int64, limit int) ([]domain.Event, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := r.pool.Query(ctx, `SELECT seq, payload FROM ledger_events WHERE seq > $1 ORDER BY seq LIMIT $2`, after, lim)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Event, error) {
		var (
			seq     int64
			payload []byte
			e       domain.Event
		)
		if err := row.Scan(&seq, &payload); err != nil {
			return e, err
		}
		if err := json.Unmarshal(payload, &e); err != nil {
			return e, fmt.Errorf("decode event %d: %w", seq, err)
		}
		e.Seq = seq
		return e, nil
	})
}

type ledgerTx struct {
	tx pgx.Tx
}

func (t *ledgerTx) Owner(ctx context.Context) (domain.Address, error) {
	var owner string
	err := t.tx.QueryRow(ctx, `SELECT owner FROM ledger_state WHERE id = 1`).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	return domain.Address(owner), err
}

func (t *ledgerTx) SetOwner(ctx context.Context, owner domain.Address) error {
	_, err := t.tx.Exec(ctx, `UPDATE ledger_state SET owner = $1, updated_at = now() WHERE id = 1`, owner.String())
	return err
}

func (t *ledgerTx) NextCampaignID(ctx context.Context) (int64, error) {
	var id int64
	err := t.tx.QueryRow(ctx, `SELECT next_campaign_id FROM ledger_state WHERE id = 1`).Scan(&id)
	return id, err
}

func (t *ledgerTx) ReserveCampaignID(ctx context.Context) (int64, error) {
	var next int64
	err := t.tx.QueryRow(ctx, `UPDATE ledger_state SET next_campaign_id = next_campaign_id + 1, updated_at = now() WHERE id = 1 RETURNING next_campaign_id`).Scan(&next)
	if err != nil {
		return 0, err
	}
	return next - 1, nil
}

func (t *ledgerTx) GetCampaign(ctx context.Context, id int64) (*domain.Campaign, error) {
	var (
		c                  domain.Campaign
		asset              string
		allocated, distrib string
	)
	err := t.tx.QueryRow(ctx, `SELECT id, asset, vesting_start, vesting_end, total_allocated::text, total_distributed::text, finalized FROM campaigns WHERE id = $1`, id).
		Scan(&c.ID, &asset, &c.VestingStart, &c.VestingEnd, &allocated, &distrib, &c.Finalized)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.Asset = domain.Address(asset)
	c.VestingStart = c.VestingStart.UTC()
	c.VestingEnd = c.VestingEnd.UTC()
	if c.TotalAllocated, err = parseAmount(allocated); err != nil {
		return nil, err
	}
	if c.TotalDistributed, err = parseAmount(distrib); err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *ledgerTx) InsertCampaign(ctx context.Context, c domain.Campaign) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO campaigns (id, asset, vesting_start, vesting_end, total_allocated, total_distributed, finalized) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		c.ID, c.Asset.String(), c.VestingStart, c.VestingEnd, numeric(c.TotalAllocated), numeric(c.TotalDistributed), c.Finalized)
	return err
}

func (t *ledgerTx) UpdateCampaign(ctx context.Context, c domain.Campaign) error {
	tag, err := t.tx.Exec(ctx, `UPDATE campaigns SET total_distributed = $1, finalized = $2, updated_at = now() WHERE id = $3`,
		numeric(c.TotalDistributed), c.Finalized, c.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("update campaign %d: %w", c.ID, domain.ErrCampaignNotFound)
	}
	return nil
}

func (t *ledgerTx) GetAllocation(ctx context.Context, campaignID int64, participant domain.Address) (uint64, error) {
	var remaining string
	err := t.tx.QueryRow(ctx, `SELECT remaining::text FROM allocations WHERE campaign_id = $1 AND participant = $2`, campaignID, participant.String()).Scan(&remaining)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return parseAmount(remaining)
}

func (t *ledgerTx) SetAllocation(ctx context.Context, campaignID int64, participant domain.Address, amount uint64) error {
	_, err := t.tx.Exec(ctx, `INSERT INTO allocations (campaign_id, participant, remaining) VALUES ($1,$2,$3)
ON CONFLICT (campaign_id, participant) DO UPDATE SET remaining = EXCLUDED.remaining, updated_at = now()`,
		campaignID, participant.String(), numeric(amount))
	return err
}

func (t *ledgerTx) SumAllocations(ctx context.Context, campaignID int64) (uint64, error) {
	var total string
	err := t.tx.QueryRow(ctx, `SELECT COALESCE(sum(remaining), 0)::text FROM allocations WHERE campaign_id = $1`, campaignID).Scan(&total)
	if err != nil {
		return 0, err
	}
	sum, err := parseAmount(total)
	if errors.Is(err, strconv.ErrRange) {
		return math.MaxUint64, nil
	}
	return sum, err
}

// AppendEvent journals e and queues a notification that Postgres delivers
// only if the transaction commits.
func (t *ledgerTx) AppendEvent(ctx context.Context, e domain.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return err
	}
	var campaignID *int64
	if e.CampaignID != 0 {
		campaignID = &e.CampaignID
	}
	err = t.tx.QueryRow(ctx, `INSERT INTO ledger_events (id, kind, campaign_id, payload, created_at) VALUES ($1,$2,$3,$4,$5) RETURNING seq`,
		e.ID, string(e.Kind), campaignID, payload, e.CreatedAt).Scan(&e.Seq)
	if err != nil {
		return err
	}
	if payload, err = json.Marshal(e); err != nil {
		return err
	}
	_, err = t.tx.Exec(ctx, `SELECT pg_notify($1, $2)`, EventsChannel, string(payload))
	return err
}

func numeric(v uint64) pgtype.Numeric {
	return pgtype.Numeric{Int: new(big.Int).SetUint64(v), Valid: true}
}

func parseAmount(s string) (uint64, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return v, nil
}

// translate maps serialization failures to port.ErrConflict and leaves
// every other error untouched.
func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01") {
		return fmt.Errorf("%w: %s", port.ErrConflict, pgErr.Message)
	}
	return err
}
