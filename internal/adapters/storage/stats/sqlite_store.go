package stats

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"cohortboard/internal/adapters/storage"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new stats store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// UpsertStats writes the full recomputed stats table in one transaction,
// so a partially-applied refresh is never observable.
// PRE: every row has a non-empty StudentName
// POST: All rows are persisted; prior values for the same students are replaced
func (s *SQLiteStore) UpsertStats(ctx context.Context, rows []StudentStats) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const query = `INSERT INTO student_stats
		(student_name, total_days, streak_days, last_checkin,
		 milestone_7, milestone_14, milestone_21, milestone_28, milestone_35, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(student_name) DO UPDATE SET
		 total_days=excluded.total_days, streak_days=excluded.streak_days,
		 last_checkin=excluded.last_checkin,
		 milestone_7=excluded.milestone_7, milestone_14=excluded.milestone_14,
		 milestone_21=excluded.milestone_21, milestone_28=excluded.milestone_28,
		 milestone_35=excluded.milestone_35, updated_at=excluded.updated_at`

	for _, row := range rows {
		m := milestoneFlags(row.Milestones)
		var lastCheckin any
		if row.LastCheckin != "" {
			lastCheckin = row.LastCheckin
		}
		if _, err := tx.ExecContext(ctx, query,
			row.StudentName, row.TotalDays, row.StreakDays, lastCheckin,
			m[7], m[14], m[21], m[28], m[35],
			row.UpdatedAt.Format(time.RFC3339Nano),
		); err != nil {
			return fmt.Errorf("failed to upsert stats for %s: %w", row.StudentName, err)
		}
	}
	return tx.Commit()
}

// GetStats retrieves one student's row.
// PRE: studentName is non-empty
// POST: Returns the row or an error when absent
func (s *SQLiteStore) GetStats(ctx context.Context, studentName string) (StudentStats, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT student_name, total_days, streak_days, last_checkin,
		        milestone_7, milestone_14, milestone_21, milestone_28, milestone_35, updated_at
		 FROM student_stats WHERE student_name = ?`, studentName)
	entity, err := scanStats(row.Scan)
	if err == sql.ErrNoRows {
		return StudentStats{}, fmt.Errorf("student stats not found: %w", err)
	}
	return entity, err
}

// ListStats returns every row, ordered by streak descending then name.
func (s *SQLiteStore) ListStats(ctx context.Context) ([]StudentStats, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT student_name, total_days, streak_days, last_checkin,
		        milestone_7, milestone_14, milestone_21, milestone_28, milestone_35, updated_at
		 FROM student_stats ORDER BY streak_days DESC, student_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []StudentStats
	for rows.Next() {
		entity, err := scanStats(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, entity)
	}
	return result, rows.Err()
}

// LogReport appends one send-log row.
func (s *SQLiteStore) LogReport(ctx context.Context, entry ReportEntry) error {
	var messageID any
	if entry.MessageID != "" {
		messageID = entry.MessageID
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO report_log (id, week_number, student_name, recipient, message_id, status, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.WeekNumber, entry.StudentName, entry.Recipient,
		messageID, entry.Status, entry.SentAt.Format(time.RFC3339Nano))
	return err
}

// ListReportsByWeek returns the send log for one report week.
func (s *SQLiteStore) ListReportsByWeek(ctx context.Context, weekNumber int) ([]ReportEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, week_number, student_name, recipient, message_id, status, sent_at
		 FROM report_log WHERE week_number = ? ORDER BY sent_at ASC`, weekNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ReportEntry
	for rows.Next() {
		var entry ReportEntry
		var messageID sql.NullString
		var sentAt string
		if err := rows.Scan(&entry.ID, &entry.WeekNumber, &entry.StudentName,
			&entry.Recipient, &messageID, &entry.Status, &sentAt); err != nil {
			return nil, err
		}
		if messageID.Valid {
			entry.MessageID = messageID.String
		}
		entry.SentAt, err = time.Parse(time.RFC3339Nano, sentAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse sent_at: %w", err)
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func scanStats(scan func(dest ...any) error) (StudentStats, error) {
	var entity StudentStats
	var lastCheckin sql.NullString
	var m7, m14, m21, m28, m35 int
	var updatedAt string
	err := scan(&entity.StudentName, &entity.TotalDays, &entity.StreakDays, &lastCheckin,
		&m7, &m14, &m21, &m28, &m35, &updatedAt)
	if err != nil {
		return StudentStats{}, err
	}
	if lastCheckin.Valid {
		entity.LastCheckin = lastCheckin.String
	}
	for threshold, flag := range map[int]int{7: m7, 14: m14, 21: m21, 28: m28, 35: m35} {
		if flag != 0 {
			entity.Milestones = append(entity.Milestones, threshold)
		}
	}
	sort.Ints(entity.Milestones)
	entity.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return StudentStats{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return entity, nil
}

func milestoneFlags(milestones []int) map[int]int {
	flags := map[int]int{7: 0, 14: 0, 21: 0, 28: 0, 35: 0}
	for _, m := range milestones {
		if _, ok := flags[m]; ok {
			flags[m] = 1
		}
	}
	return flags
}
