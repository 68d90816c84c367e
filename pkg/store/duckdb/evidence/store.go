package evidence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/de-tools/evidence-atlas/pkg/models/domain"
	"github.com/de-tools/evidence-atlas/pkg/models/store"
	"github.com/de-tools/evidence-atlas/pkg/store/duckdb"
)

var ErrReportNotFound = errors.New("report not found")

// Store keeps the latest evidence snapshot of every group. Persisting a group
// replaces its previous snapshot; no history is kept.
type Store interface {
	Persist(ctx context.Context, group string, bundle *domain.EvidenceBundle) error
	ListReports(ctx context.Context, group string) ([]store.ReportSummary, error)
	GetReport(ctx context.Context, group, check string) (*domain.Report, error)
}

type evidenceStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &evidenceStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *evidenceStore) Persist(ctx context.Context, group string, bundle *domain.EvidenceBundle) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err == nil {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			zerolog.Ctx(ctx).Error().Err(rbErr).Str("group", group).Msg("failed to roll back evidence snapshot")
		}
	}()

	ctx = duckdb.WithTransaction(ctx, tx)
	if err = s.clear(ctx, group); err != nil {
		return err
	}
	if err = s.insert(ctx, group, bundle); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit evidence snapshot: %w", err)
	}
	return nil
}

func (s *evidenceStore) clear(ctx context.Context, group string) error {
	conn := duckdb.Conn(ctx, s.db)
	if _, err := conn.ExecContext(ctx, `DELETE FROM evidence_findings WHERE group_name = ?`, group); err != nil {
		return fmt.Errorf("delete findings: %w", err)
	}
	if _, err := conn.ExecContext(ctx, `DELETE FROM evidence_reports WHERE group_name = ?`, group); err != nil {
		return fmt.Errorf("delete reports: %w", err)
	}
	return nil
}

func (s *evidenceStore) insert(ctx context.Context, group string, bundle *domain.EvidenceBundle) error {
	conn := duckdb.Conn(ctx, s.db)

	reportStmt, err := conn.PrepareContext(ctx, `
		INSERT INTO evidence_reports (
			group_name, check_name, position, control, description, passed, note, summary, collected_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare report statement: %w", err)
	}
	defer reportStmt.Close()

	findingStmt, err := conn.PrepareContext(ctx, `
		INSERT INTO evidence_findings (
			group_name, check_name, position, resource_id, compliant, resource_exists, evidence
		) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare finding statement: %w", err)
	}
	defer findingStmt.Close()

	collectedAt := s.now()
	for pos, name := range bundle.Names() {
		report, _ := bundle.Get(name)

		summary, err := json.Marshal(report.Summary)
		if err != nil {
			return fmt.Errorf("marshal summary of %s: %w", name, err)
		}
		_, err = reportStmt.ExecContext(ctx,
			group, name, pos,
			report.Control,
			report.Description,
			report.Passed,
			report.Note,
			string(summary),
			collectedAt,
		)
		if err != nil {
			return fmt.Errorf("insert report %s: %w", name, err)
		}

		for i, f := range report.Results {
			evidence, err := json.Marshal(f.Evidence)
			if err != nil {
				return fmt.Errorf("marshal evidence of %s: %w", name, err)
			}
			var resourceID any
			if f.ResourceID != nil {
				resourceID = *f.ResourceID
			}
			_, err = findingStmt.ExecContext(ctx,
				group, name, i,
				resourceID,
				f.Compliant,
				f.ResourceExists,
				string(evidence),
			)
			if err != nil {
				return fmt.Errorf("insert finding of %s: %w", name, err)
			}
		}
	}
	return nil
}

func (s *evidenceStore) ListReports(ctx context.Context, group string) ([]store.ReportSummary, error) {
	query := `
		SELECT r.check_name, r.position, r.control, r.passed, r.note, r.collected_at,
			COUNT(f.position) FILTER (WHERE NOT f.compliant) AS non_compliant
		FROM evidence_reports r
		LEFT JOIN evidence_findings f
			ON f.group_name = r.group_name AND f.check_name = r.check_name
		WHERE r.group_name = ?
		GROUP BY r.check_name, r.position, r.control, r.passed, r.note, r.collected_at
		ORDER BY r.position
	`
	rows, err := s.db.QueryContext(ctx, query, group)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	summaries := make([]store.ReportSummary, 0)
	for rows.Next() {
		var (
			summary store.ReportSummary
			note    sql.NullString
		)
		if err := rows.Scan(
			&summary.Check,
			&summary.Position,
			&summary.Control,
			&summary.Passed,
			&note,
			&summary.CollectedAt,
			&summary.NonCompliant,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		summary.Group = group
		summary.Note = note.String
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return summaries, nil
}

func (s *evidenceStore) GetReport(ctx context.Context, group, check string) (*domain.Report, error) {
	var (
		report      domain.Report
		description sql.NullString
		note        sql.NullString
		summary     sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT control, description, passed, note, summary
		FROM evidence_reports
		WHERE group_name = ? AND check_name = ?`,
		group, check,
	).Scan(&report.Control, &description, &report.Passed, &note, &summary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s/%s", ErrReportNotFound, group, check)
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	report.Description = description.String
	report.Note = note.String
	report.Summary = domain.Summary{}
	if summary.Valid && summary.String != "" {
		if err := json.Unmarshal([]byte(summary.String), &report.Summary); err != nil {
			return nil, fmt.Errorf("unmarshal summary: %w", err)
		}
	}

	results, err := s.findings(ctx, group, check)
	if err != nil {
		return nil, err
	}
	report.Results = results
	return &report, nil
}

func (s *evidenceStore) findings(ctx context.Context, group, check string) ([]domain.Finding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT resource_id, compliant, resource_exists, evidence
		FROM evidence_findings
		WHERE group_name = ? AND check_name = ?
		ORDER BY position`,
		group, check,
	)
	if err != nil {
		return nil, fmt.Errorf("query findings: %w", err)
	}
	defer rows.Close()

	findings := make([]domain.Finding, 0)
	for rows.Next() {
		var (
			f          domain.Finding
			resourceID sql.NullString
			evidence   sql.NullString
		)
		if err := rows.Scan(&resourceID, &f.Compliant, &f.ResourceExists, &evidence); err != nil {
			return nil, fmt.Errorf("scan finding: %w", err)
		}
		if resourceID.Valid {
			id := resourceID.String
			f.ResourceID = &id
		}
		f.Evidence = domain.Evidence{}
		if evidence.Valid && evidence.String != "" {
			if err := json.Unmarshal([]byte(evidence.String), &f.Evidence); err != nil {
				return nil, fmt.Errorf("unmarshal evidence: %w", err)
			}
		}
		findings = append(findings, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate findings: %w", err)
	}
	return findings, nil
}
