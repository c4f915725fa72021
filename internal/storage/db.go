package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq" // PostgreSQL driver
	"go.uber.org/zap"
)

type DB struct {
	connection *sql.DB
	logger     *zap.Logger
}

func NewDB(dataSourceName string, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &DB{connection: db, logger: logger.Named("storage")}, nil
}

func (db *DB) Close() {
	if err := db.connection.Close(); err != nil {
		db.logger.Error("closing database connection", zap.Error(err))
	}
}

// EnsureSchema creates the tables the service reads and writes if they are missing.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if _, err := db.connection.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// FetchCandidatePool returns candidates matching filter, each joined with its
// completed resumes and full work history.
func (db *DB) FetchCandidatePool(ctx context.Context, filter PoolFilter) ([]Candidate, error) {
	query, args := buildPoolQuery(filter)

	rows, err := db.connection.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("fetch candidate pool: %w", err)
	}
	defer rows.Close()

	var candidates []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := db.attachDetails(ctx, candidates); err != nil {
		return nil, err
	}

	db.logger.Debug("candidate pool fetched", zap.Int("candidates", len(candidates)))
	return candidates, nil
}

// FetchCandidateByID loads a single candidate. found is false when the id is unknown.
func (db *DB) FetchCandidateByID(ctx context.Context, id uuid.UUID) (Candidate, bool, error) {
	row := db.connection.QueryRowContext(ctx, candidateColumns+` FROM candidates c WHERE c.id = $1`, id)
	c, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Candidate{}, false, nil
	}
	if err != nil {
		return Candidate{}, false, fmt.Errorf("fetch candidate %s: %w", id, err)
	}

	list := []Candidate{c}
	if err := db.attachDetails(ctx, list); err != nil {
		return Candidate{}, false, err
	}
	return list[0], true, nil
}

// RecordSearchHistory stores one audit entry for a completed search.
func (db *DB) RecordSearchHistory(ctx context.Context, entry SearchHistoryEntry) error {
	_, err := db.connection.ExecContext(ctx, `
		INSERT INTO search_history (id, user_id, query_text, criteria, result_count, top_results, elapsed_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, entry.ID, entry.UserID, entry.QueryText, []byte(entry.Criteria), entry.ResultCount,
		[]byte(entry.TopResults), entry.ElapsedMS, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("record search history: %w", err)
	}
	return nil
}

// SaveParsedResume stores extracted resume text and skills as a completed resume.
func (db *DB) SaveParsedResume(ctx context.Context, candidateID uuid.UUID, filename, text string, skills []string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.connection.ExecContext(ctx, `
		INSERT INTO resumes (id, candidate_id, filename, skills, education, parsing_status, parsed_data, parsed_text, updated_at)
		VALUES ($1, $2, $3, $4, '{}', $5, '{}', $6, NOW())
	`, id, candidateID, filename, pq.Array(skills), string(ParseStatusCompleted), text)
	if err != nil {
		return uuid.Nil, fmt.Errorf("save resume for %s: %w", candidateID, err)
	}
	return id, nil
}

// UpdateTotalExperience sets the candidate's total experience in years.
func (db *DB) UpdateTotalExperience(ctx context.Context, candidateID uuid.UUID, years float64) error {
	_, err := db.connection.ExecContext(ctx,
		`UPDATE candidates SET total_experience_years = $1, updated_at = NOW() WHERE id = $2`,
		years, candidateID)
	return err
}

const candidateColumns = `
	SELECT c.id, c.full_name, COALESCE(c.email, ''), COALESCE(c.phone, ''),
	       COALESCE(c.current_position, ''), COALESCE(c.current_company, ''),
	       c.total_experience_years, COALESCE(c.location, ''), c.is_available`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (Candidate, error) {
	var (
		c     Candidate
		years sql.NullFloat64
	)
	err := row.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.CurrentPosition,
		&c.CurrentCompany, &years, &c.Location, &c.IsAvailable)
	if err != nil {
		return Candidate{}, err
	}
	if years.Valid {
		v := years.Float64
		c.TotalExperienceYears = &v
	}
	return c, nil
}

// attachDetails loads resumes and work history for all candidates in two queries.
func (db *DB) attachDetails(ctx context.Context, candidates []Candidate) error {
	if len(candidates) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]int, len(candidates))
	ids := make([]string, 0, len(candidates))
	for i, c := range candidates {
		index[c.ID] = i
		ids = append(ids, c.ID.String())
	}

	resumeRows, err := db.connection.QueryContext(ctx, `
		SELECT id, candidate_id, skills, education, parsing_status,
		       COALESCE(parsed_data, '{}'), COALESCE(parsed_text, ''), updated_at
		FROM resumes
		WHERE candidate_id = ANY($1::uuid[]) AND parsing_status = 'completed'
		ORDER BY updated_at DESC
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("fetch resumes: %w", err)
	}
	defer resumeRows.Close()

	for resumeRows.Next() {
		var (
			r                 Resume
			skills, education pq.StringArray
			status            string
			parsed            []byte
		)
		if err := resumeRows.Scan(&r.ID, &r.CandidateID, &skills, &education, &status, &parsed, &r.ParsedText, &r.UpdatedAt); err != nil {
			return fmt.Errorf("scan resume: %w", err)
		}
		r.Skills = []string(skills)
		r.Education = []string(education)
		r.Status = ParseStatus(status)
		r.ParsedData = parsed
		if i, ok := index[r.CandidateID]; ok {
			candidates[i].Resumes = append(candidates[i].Resumes, r)
		}
	}
	if err := resumeRows.Err(); err != nil {
		return err
	}

	expRows, err := db.connection.QueryContext(ctx, `
		SELECT id, candidate_id, company, COALESCE(position, ''), department,
		       start_date, end_date, is_current, colleagues, technologies
		FROM work_experiences
		WHERE candidate_id = ANY($1::uuid[])
		ORDER BY start_date
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("fetch work experiences: %w", err)
	}
	defer expRows.Close()

	for expRows.Next() {
		var (
			w                  WorkExperience
			department         sql.NullString
			end                sql.NullTime
			colleagues, techno pq.StringArray
		)
		if err := expRows.Scan(&w.ID, &w.CandidateID, &w.Company, &w.Position, &department,
			&w.StartDate, &end, &w.IsCurrent, &colleagues, &techno); err != nil {
			return fmt.Errorf("scan work experience: %w", err)
		}
		if department.Valid && strings.TrimSpace(department.String) != "" {
			d := department.String
			w.Department = &d
		}
		if end.Valid {
			t := end.Time
			w.EndDate = &t
		}
		w.Colleagues = splitAndTrim(colleagues)
		w.Technologies = splitAndTrim(techno)

		if err := w.Validate(); err != nil {
			db.logger.Warn("skipping inconsistent work experience",
				zap.Stringer("experience_id", w.ID), zap.Error(err))
			continue
		}
		if i, ok := index[w.CandidateID]; ok {
			candidates[i].Experiences = append(candidates[i].Experiences, w)
		}
	}
	return expRows.Err()
}

// helper to drop empty entries from free-text lists
func splitAndTrim(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
