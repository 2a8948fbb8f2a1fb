package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var generationColumns = []string{
	"id", "sequence", "created_at", "question_type",
	"language", "total_marks", "topic", "model",
}

// generationRepo implements GenerationRepo.
type generationRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *generationRepo) Save(ctx context.Context, g *Generation) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	if g.Sequence == 0 {
		seq, err := r.seq.Next(ctx)
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}
		g.Sequence = seq
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query, args := builder.Insert(tableGenerations).
		Columns(generationColumns...).
		Values(g.ID, g.Sequence, formatTime(g.CreatedAt), g.Type, g.Language, g.TotalMarks, g.Topic, g.Model).
		Query()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save generation: %w", err)
	}

	if len(g.Tiers) > 0 {
		ins := builder.Insert(tableTiers).Columns("generation_id", "position", "tier", "raw_text")
		for i, t := range g.Tiers {
			ins.Values(g.ID, i, t.Tier, t.Raw)
		}
		query, args = ins.Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save generation tiers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit generation: %w", err)
	}
	return nil
}

func (r *generationRepo) Get(ctx context.Context, id string) (*Generation, error) {
	gens, err := r.query(ctx, entsql.EQ("id", id), 1)
	if err != nil {
		return nil, err
	}
	if len(gens) == 0 {
		return nil, fmt.Errorf("generation %s: %w", id, ErrNotFound)
	}
	return &gens[0], nil
}

func (r *generationRepo) Latest(ctx context.Context) (*Generation, error) {
	gens, err := r.query(ctx, nil, 1)
	if err != nil {
		return nil, err
	}
	if len(gens) == 0 {
		return nil, fmt.Errorf("latest generation: %w", ErrNotFound)
	}
	return &gens[0], nil
}

func (r *generationRepo) List(ctx context.Context, limit int) ([]Generation, error) {
	return r.query(ctx, nil, limit)
}

func (r *generationRepo) Prune(ctx context.Context, keep int) error {
	// Find the sequence of the first generation past the keep window.
	query, args := builder.Select("sequence").
		From(entsql.Table(tableGenerations)).
		OrderBy(entsql.Desc("sequence")).
		Offset(keep).
		Limit(1).
		Query()

	var threshold int64
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return nil // fewer than keep generations exist
	}
	if err != nil {
		return fmt.Errorf("query generations for prune: %w", err)
	}

	query, args = builder.Delete(tableGenerations).
		Where(entsql.LTE("sequence", threshold)).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("prune generations: %w", err)
	}
	return nil
}

// query loads generations newest first, then their tiers in one pass.
func (r *generationRepo) query(ctx context.Context, where *entsql.Predicate, limit int) ([]Generation, error) {
	sel := builder.Select(generationColumns...).
		From(entsql.Table(tableGenerations)).
		OrderBy(entsql.Desc("sequence"))
	if where != nil {
		sel.Where(where)
	}
	if limit > 0 {
		sel.Limit(limit)
	}

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}

	var gens []Generation
	for rows.Next() {
		var (
			g  Generation
			ts string
		)
		if err := rows.Scan(&g.ID, &g.Sequence, &ts, &g.Type, &g.Language, &g.TotalMarks, &g.Topic, &g.Model); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		if g.CreatedAt, err = parseTime(ts); err != nil {
			rows.Close()
			return nil, err
		}
		gens = append(gens, g)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(gens) == 0 {
		return nil, nil
	}
	if err := r.loadTiers(ctx, gens); err != nil {
		return nil, err
	}
	return gens, nil
}

func (r *generationRepo) loadTiers(ctx context.Context, gens []Generation) error {
	ids := make([]any, len(gens))
	index := make(map[string]int, len(gens))
	for i, g := range gens {
		ids[i] = g.ID
		index[g.ID] = i
	}

	query, args := builder.Select("generation_id", "tier", "raw_text").
		From(entsql.Table(tableTiers)).
		Where(entsql.In("generation_id", ids...)).
		OrderBy("generation_id", "position").
		Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query generation tiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			t  TierText
		)
		if err := rows.Scan(&id, &t.Tier, &t.Raw); err != nil {
			return fmt.Errorf("scan generation tier: %w", err)
		}
		if i, ok := index[id]; ok {
			gens[i].Tiers = append(gens[i].Tiers, t)
		}
	}
	return rows.Err()
}
