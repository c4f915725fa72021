package storage

const schema = `
CREATE TABLE IF NOT EXISTS candidates (
	id UUID PRIMARY KEY,
	full_name TEXT NOT NULL,
	email TEXT UNIQUE,
	phone TEXT,
	current_position TEXT,
	current_company TEXT,
	total_experience_years DOUBLE PRECISION,
	location TEXT,
	is_available BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS resumes (
	id UUID PRIMARY KEY,
	candidate_id UUID NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
	filename TEXT,
	skills TEXT[] NOT NULL DEFAULT '{}',
	education TEXT[] NOT NULL DEFAULT '{}',
	parsing_status TEXT NOT NULL DEFAULT 'pending'
		CHECK (parsing_status IN ('pending', 'processing', 'completed', 'failed')),
	parsed_data JSONB,
	parsed_text TEXT,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS resumes_candidate_status_idx ON resumes (candidate_id, parsing_status);

CREATE TABLE IF NOT EXISTS work_experiences (
	id UUID PRIMARY KEY,
	candidate_id UUID NOT NULL REFERENCES candidates(id) ON DELETE CASCADE,
	company TEXT NOT NULL,
	position TEXT,
	department TEXT,
	start_date DATE NOT NULL,
	end_date DATE,
	is_current BOOLEAN NOT NULL DEFAULT FALSE,
	colleagues TEXT[] NOT NULL DEFAULT '{}',
	technologies TEXT[] NOT NULL DEFAULT '{}',
	CHECK (end_date IS NULL OR end_date >= start_date),
	CHECK (is_current = (end_date IS NULL))
);
CREATE INDEX IF NOT EXISTS work_experiences_company_idx ON work_experiences (LOWER(TRIM(company)));

CREATE TABLE IF NOT EXISTS search_history (
	id UUID PRIMARY KEY,
	user_id TEXT,
	query_text TEXT,
	criteria JSONB,
	result_count INTEGER NOT NULL,
	top_results JSONB,
	elapsed_ms BIGINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
