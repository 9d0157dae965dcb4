// Package storage persists the latest remote snapshot in SQLite so the
// app can show data immediately on startup, before the first remote
// refresh completes.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fino/internal/core"
	"fino/internal/log"
	"fino/internal/store"

	_ "modernc.org/sqlite"
)

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(dbPath string) (*SnapshotRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SnapshotRepository{db: db}, nil
}

func (r *SnapshotRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Save replaces the cached snapshot wholesale inside one transaction, so
// a reader never observes a half-written cache.
func (r *SnapshotRepository) Save(ctx context.Context, snap store.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot save: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"transactions", "budgets", "goals", "strategy_items", "contributions", "snapshot_meta"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, t := range snap.Transactions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO transactions (id, type, category, description, amount_cents, date, budget_id)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, string(t.Type), t.Category, t.Description, t.Amount.Cents, t.Date.String(), t.BudgetID)
		if err != nil {
			return fmt.Errorf("insert transaction %d: %w", t.ID, err)
		}
	}

	for _, b := range snap.Budgets {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (id, category, amount_cents) VALUES (?, ?, ?)`,
			b.ID, b.Category, b.Amount.Cents)
		if err != nil {
			return fmt.Errorf("insert budget %d: %w", b.ID, err)
		}
	}

	for _, g := range snap.Goals {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO goals (id, title, description, target_cents, monthly_target_cents, classification, start_date, end_date, total_saved_cents)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			g.ID, g.Title, g.Description, g.TargetAmount.Cents, g.MonthlyTarget.Cents,
			string(g.Classification), g.StartDate.String(), g.EndDate.String(), g.TotalSaved.Cents)
		if err != nil {
			return fmt.Errorf("insert goal %d: %w", g.ID, err)
		}
		for _, item := range g.StrategyItems {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO strategy_items (id, goal_id, method, monthly_cents, item_order)
				 VALUES (?, ?, ?, ?, ?)`,
				item.ID, g.ID, item.Method, item.MonthlyContribution.Cents, item.Order)
			if err != nil {
				return fmt.Errorf("insert strategy item %d: %w", item.ID, err)
			}
		}
		for _, c := range g.Contributions {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO contributions (id, goal_id, amount_cents, date, note)
				 VALUES (?, ?, ?, ?, ?)`,
				c.ID, g.ID, c.Amount.Cents, c.Date.String(), c.Note)
			if err != nil {
				return fmt.Errorf("insert contribution %d: %w", c.ID, err)
			}
		}
	}

	fetchedAt := snap.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshot_meta (id, fetched_at) VALUES (1, ?)`,
		fetchedAt.UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("insert snapshot meta: %w", err)
	}

	return tx.Commit()
}

// Load reads the cached snapshot back. ok is false when the cache is
// empty.
func (r *SnapshotRepository) Load(ctx context.Context) (store.Snapshot, bool, error) {
	var snap store.Snapshot

	var fetchedAt string
	err := r.db.QueryRowContext(ctx, `SELECT fetched_at FROM snapshot_meta WHERE id = 1`).Scan(&fetchedAt)
	if err == sql.ErrNoRows {
		return snap, false, nil
	}
	if err != nil {
		return snap, false, fmt.Errorf("read snapshot meta: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, fetchedAt); err == nil {
		snap.FetchedAt = t
	}

	snap.Transactions, err = r.loadTransactions(ctx)
	if err != nil {
		return snap, false, err
	}
	snap.Budgets, err = r.loadBudgets(ctx)
	if err != nil {
		return snap, false, err
	}
	snap.Goals, err = r.loadGoals(ctx)
	if err != nil {
		return snap, false, err
	}

	return snap, true, nil
}

func (r *SnapshotRepository) loadTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, type, category, description, amount_cents, date, budget_id FROM transactions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var typ, date string
		var cents int64
		if err := rows.Scan(&t.ID, &typ, &t.Category, &t.Description, &cents, &date, &t.BudgetID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = core.TransactionType(typ)
		t.Amount = core.Money{Cents: cents}
		t.Date = core.ParseDate(date)
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SnapshotRepository) loadBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, category, amount_cents FROM budgets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var cents int64
		if err := rows.Scan(&b.ID, &b.Category, &cents); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.Amount = core.Money{Cents: cents}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SnapshotRepository) loadGoals(ctx context.Context) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, description, target_cents, monthly_target_cents, classification, start_date, end_date, total_saved_cents
		 FROM goals ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var goals []core.Goal
	for rows.Next() {
		var g core.Goal
		var target, monthly, saved int64
		var classification, start, end string
		if err := rows.Scan(&g.ID, &g.Title, &g.Description, &target, &monthly, &classification, &start, &end, &saved); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.TargetAmount = core.Money{Cents: target}
		g.MonthlyTarget = core.Money{Cents: monthly}
		g.TotalSaved = core.Money{Cents: saved}
		g.Classification = core.Classification(classification)
		g.StartDate = core.ParseDate(start)
		g.EndDate = core.ParseDate(end)
		goals = append(goals, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range goals {
		items, err := r.loadStrategyItems(ctx, goals[i].ID)
		if err != nil {
			return nil, err
		}
		goals[i].StrategyItems = items

		contributions, err := r.loadContributions(ctx, goals[i].ID)
		if err != nil {
			return nil, err
		}
		goals[i].Contributions = contributions
	}
	return goals, nil
}

func (r *SnapshotRepository) loadStrategyItems(ctx context.Context, goalID int64) ([]core.StrategyItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, goal_id, method, monthly_cents, item_order FROM strategy_items WHERE goal_id = ? ORDER BY item_order, id`, goalID)
	if err != nil {
		return nil, fmt.Errorf("query strategy items: %w", err)
	}
	defer rows.Close()

	var out []core.StrategyItem
	for rows.Next() {
		var item core.StrategyItem
		var cents int64
		if err := rows.Scan(&item.ID, &item.GoalID, &item.Method, &cents, &item.Order); err != nil {
			return nil, fmt.Errorf("scan strategy item: %w", err)
		}
		item.MonthlyContribution = core.Money{Cents: cents}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SnapshotRepository) loadContributions(ctx context.Context, goalID int64) ([]core.Contribution, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, goal_id, amount_cents, date, note FROM contributions WHERE goal_id = ? ORDER BY id`, goalID)
	if err != nil {
		return nil, fmt.Errorf("query contributions: %w", err)
	}
	defer rows.Close()

	var out []core.Contribution
	for rows.Next() {
		var c core.Contribution
		var cents int64
		var date string
		if err := rows.Scan(&c.ID, &c.GoalID, &cents, &date, &c.Note); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		c.Amount = core.Money{Cents: cents}
		c.Date = core.ParseDate(date)
		out = append(out, c)
	}
	return out, rows.Err()
}

// SnapshotSource is the slice of the store the persister reads from.
type SnapshotSource interface {
	Current() (store.Snapshot, bool)
}

// RunPersist saves the current snapshot whenever its generation advances,
// checking on the given interval, until the context ends. A failed save is
// retried on the next tick since the cache is only a startup optimization.
func (r *SnapshotRepository) RunPersist(ctx context.Context, src SnapshotSource, interval time.Duration, logger *log.Logger) {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentStorage)

	var lastSaved uint64
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap, ok := src.Current()
			if !ok || snap.Generation == lastSaved {
				continue
			}
			if err := r.Save(ctx, snap); err != nil {
				logger.WarnContext(ctx, "snapshot save failed", log.FieldError, err.Error())
				continue
			}
			lastSaved = snap.Generation
			logger.DebugContext(ctx, "snapshot persisted", log.FieldGeneration, snap.Generation)
		}
	}
}
