package storage

import (
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// buildPoolQuery renders the candidate pool query for filter. List filters are
// matched case-insensitively; an empty list imposes no restriction.
func buildPoolQuery(filter PoolFilter) (string, []any) {
	query := candidateColumns + ` FROM candidates c`
	var where []string
	var args []any
	i := 1

	if !filter.AnyResumeStatus {
		where = append(where, `EXISTS (SELECT 1 FROM resumes r WHERE r.candidate_id = c.id AND r.parsing_status = 'completed')`)
	}

	if locations := normalizeAll(filter.Locations); len(locations) > 0 {
		var conds []string
		for _, loc := range locations {
			conds = append(conds, fmt.Sprintf("c.location ILIKE $%d", i))
			args = append(args, "%"+loc+"%")
			i++
		}
		where = append(where, "("+strings.Join(conds, " OR ")+")")
	}

	if companies := normalizeAll(filter.Companies); len(companies) > 0 {
		where = append(where, fmt.Sprintf(`(LOWER(TRIM(c.current_company)) = ANY($%d) OR EXISTS (
			SELECT 1 FROM work_experiences w
			WHERE w.candidate_id = c.id AND LOWER(TRIM(w.company)) = ANY($%d)))`, i, i))
		args = append(args, pq.Array(companies))
		i++
	}

	if departments := normalizeAll(filter.Departments); len(departments) > 0 {
		where = append(where, fmt.Sprintf(`EXISTS (
			SELECT 1 FROM work_experiences w
			WHERE w.candidate_id = c.id AND LOWER(TRIM(w.department)) = ANY($%d))`, i))
		args = append(args, pq.Array(departments))
		i++
	}

	if filter.MaxExperienceYears != nil {
		where = append(where, fmt.Sprintf("(c.total_experience_years IS NULL OR c.total_experience_years <= $%d)", i))
		args = append(args, *filter.MaxExperienceYears)
		i++
	}

	if filter.AvailableOnly {
		where = append(where, "c.is_available = TRUE")
	}

	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY c.full_name, c.id"

	return query, args
}

func normalizeAll(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		n := strings.ToLower(strings.TrimSpace(v))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
