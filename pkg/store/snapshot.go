package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/richard-senior/rfef/pkg/league"
)

// MaxSnapshots is how many standings snapshots are kept
const MaxSnapshots = 20

// Snapshot is a copy of the table at a point in time
type Snapshot struct {
	ID          string        `json:"id"`
	CreatedAt   time.Time     `json:"createdAt"`
	Description string        `json:"description"`
	Standings   []league.Team `json:"standings"`
}

type snapshotRow struct {
	ID          string `column:"id" dbtype:"TEXT" primary:"true"`
	CreatedAt   int64  `column:"created_at" dbtype:"INTEGER" index:"true"`
	Description string `column:"description" dbtype:"TEXT"`
	Standings   string `column:"standings" dbtype:"TEXT NOT NULL"`
}

func (r *snapshotRow) GetTableName() string {
	return "snapshots"
}

func (r *snapshotRow) GetPrimaryKey() map[string]any {
	return map[string]any{"id": r.ID}
}

// AddSnapshot stores the standings and drops everything beyond the newest
// MaxSnapshots
func AddSnapshot(ctx context.Context, description string, standings []league.Team) (Snapshot, error) {
	data, err := json.Marshal(standings)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to encode standings: %w", err)
	}
	snap := Snapshot{
		ID:          uuid.NewString(),
		CreatedAt:   time.Now().UTC(),
		Description: description,
		Standings:   standings,
	}
	row := &snapshotRow{
		ID:          snap.ID,
		CreatedAt:   snap.CreatedAt.UnixMilli(),
		Description: description,
		Standings:   string(data),
	}
	err = WithTx(ctx, func(tx *sql.Tx) error {
		if err := save(ctx, tx, row); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id NOT IN (
			SELECT id FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?)`, MaxSnapshots)
		if err != nil {
			return fmt.Errorf("failed to trim snapshots: %w", err)
		}
		return nil
	})
	if err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

// ListSnapshots returns the stored snapshots, newest first
func ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := FindAll(ctx, &snapshotRow{}, "created_at DESC, rowid DESC")
	if err != nil {
		return nil, err
	}
	out := []Snapshot{}
	for _, r := range as[snapshotRow](rows) {
		s := Snapshot{ID: r.ID, CreatedAt: time.UnixMilli(r.CreatedAt).UTC(), Description: r.Description}
		if err := json.Unmarshal([]byte(r.Standings), &s.Standings); err != nil {
			return nil, fmt.Errorf("snapshot %s: %w", r.ID, err)
		}
		out = append(out, s)
	}
	return out, nil
}
