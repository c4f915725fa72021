// Package colleagues infers professional relationships between candidates from
// explicitly named colleagues and overlapping employment at the same company.
package colleagues

import (
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"talent-search/internal/storage"
)

// Kind tells how a relationship was established.
type Kind string

const (
	// KindDirect links come from a colleague named in the work history.
	KindDirect Kind = "direct"
	// KindPotential links are inferred from overlapping employment dates.
	KindPotential Kind = "potential"
)

// Link is a colleague relationship between the reference candidate and another one.
type Link struct {
	CandidateID   uuid.UUID `json:"candidate_id"`
	ColleagueID   uuid.UUID `json:"colleague_id"`
	ColleagueName string    `json:"colleague_name"`
	Company       string    `json:"company"`
	Department    string    `json:"department,omitempty"`
	OverlapMonths int       `json:"overlap_months"`
	Kind          Kind      `json:"relationship_type"`
}

// Options controls detection.
type Options struct {
	IncludePotential bool
	MinOverlapMonths int
	// Limit caps the number of links returned; zero means no cap.
	Limit int
	// Now resolves open-ended (current) roles.
	Now time.Time
}

// Detect finds the colleagues of reference among pool. The reference itself is
// skipped by ID wherever it appears in pool.
func Detect(reference storage.Candidate, pool []storage.Candidate, opts Options) []Link {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	others := make([]storage.Candidate, 0, len(pool))
	for _, c := range pool {
		if c.ID != reference.ID {
			others = append(others, c)
		}
	}

	links, direct := detectDirect(reference, others, opts.Now)
	if opts.IncludePotential {
		links = append(links, detectPotential(reference, others, direct, opts)...)
	}

	sort.SliceStable(links, func(i, j int) bool {
		return links[i].OverlapMonths > links[j].OverlapMonths
	})

	if opts.Limit > 0 && len(links) > opts.Limit {
		links = links[:opts.Limit]
	}
	return links
}

type companyKey struct {
	candidate uuid.UUID
	company   string
}

func detectDirect(reference storage.Candidate, others []storage.Candidate, now time.Time) ([]Link, map[companyKey]struct{}) {
	var links []Link
	emitted := make(map[companyKey]struct{})

	for _, exp := range reference.Experiences {
		company := normalize(exp.Company)
		for _, named := range exp.Colleagues {
			name := normalize(named)
			if name == "" {
				continue
			}
			for _, other := range others {
				if !namesMatch(name, normalize(other.FullName)) {
					continue
				}
				key := companyKey{candidate: other.ID, company: company}
				if _, ok := emitted[key]; ok {
					continue
				}
				emitted[key] = struct{}{}

				links = append(links, Link{
					CandidateID:   reference.ID,
					ColleagueID:   other.ID,
					ColleagueName: other.FullName,
					Company:       exp.Company,
					Department:    exp.DepartmentName(),
					OverlapMonths: bestOverlap(exp, other, now),
					Kind:          KindDirect,
				})
			}
		}
	}
	return links, emitted
}

func detectPotential(reference storage.Candidate, others []storage.Candidate, direct map[companyKey]struct{}, opts Options) []Link {
	var links []Link

	for _, exp := range reference.Experiences {
		company := normalize(exp.Company)
		department := normalize(exp.DepartmentName())
		refStart, refEnd := exp.Span(opts.Now)

		for _, other := range others {
			if _, ok := direct[companyKey{candidate: other.ID, company: company}]; ok {
				continue
			}
			for _, otherExp := range other.Experiences {
				if normalize(otherExp.Company) != company {
					continue
				}
				if department != "" && normalize(otherExp.DepartmentName()) != department {
					continue
				}
				otherStart, otherEnd := otherExp.Span(opts.Now)
				months, ok := OverlapMonths(refStart, refEnd, otherStart, otherEnd)
				if !ok || months < opts.MinOverlapMonths {
					continue
				}
				links = append(links, Link{
					CandidateID:   reference.ID,
					ColleagueID:   other.ID,
					ColleagueName: other.FullName,
					Company:       exp.Company,
					Department:    exp.DepartmentName(),
					OverlapMonths: months,
					Kind:          KindPotential,
				})
			}
		}
	}
	return links
}

// bestOverlap is the longest overlap between exp and any of other's roles at the
// same company, or zero.
func bestOverlap(exp storage.WorkExperience, other storage.Candidate, now time.Time) int {
	company := normalize(exp.Company)
	refStart, refEnd := exp.Span(now)
	best := 0
	for _, o := range other.Experiences {
		if normalize(o.Company) != company {
			continue
		}
		s, e := o.Span(now)
		if months, ok := OverlapMonths(refStart, refEnd, s, e); ok && months > best {
			best = months
		}
	}
	return best
}

func namesMatch(named, fullName string) bool {
	if fullName == "" {
		return false
	}
	return strings.Contains(fullName, named) || strings.Contains(named, fullName)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
