package cv

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"code.sajari.com/docconv"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"talent-search/internal/logger"
)

var ErrUnsupportedFileType = errors.New("unsupported file type")

// Parser stores uploaded resumes and extracts their text.
type Parser struct {
	uploadsDir string
	logger     *zap.Logger
}

// Document is an uploaded resume with its extracted text.
type Document struct {
	Filename string
	StoredAt string
	FileType string
	FileSize int64
	Text     string
}

func NewParser(uploadsDir string, log *zap.Logger) *Parser {
	return &Parser{
		uploadsDir: uploadsDir,
		logger:     logger.OrNop(log).Named("cv"),
	}
}

// SupportedType reports whether filename has an extension Parse can read.
func SupportedType(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf", ".docx", ".doc", ".rtf", ".odt", ".txt":
		return true
	}
	return false
}

// Parse saves the upload under the uploads directory and extracts its text
// from PDF/DOCX/DOC/RTF/ODT (docconv) or plain text files.
func (p *Parser) Parse(filename string, reader io.Reader) (Document, error) {
	fileType := strings.ToLower(filepath.Ext(filename))
	if !SupportedType(filename) {
		return Document{}, fmt.Errorf("%w: %q", ErrUnsupportedFileType, fileType)
	}

	if err := os.MkdirAll(p.uploadsDir, 0755); err != nil {
		return Document{}, fmt.Errorf("failed to create uploads dir: %w", err)
	}

	// the client-supplied name never becomes a path on its own
	base := filepath.Base(filepath.Clean("/" + filename))
	filePath := filepath.Join(p.uploadsDir, uuid.NewString()+"_"+base)

	file, err := os.Create(filePath)
	if err != nil {
		return Document{}, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, reader)
	if err != nil {
		return Document{}, fmt.Errorf("failed to save file: %w", err)
	}

	var text string
	switch fileType {
	case ".txt":
		content, err := os.ReadFile(filePath)
		if err != nil {
			return Document{}, fmt.Errorf("failed to read text file: %w", err)
		}
		text = string(content)
	default:
		res, err := docconv.ConvertPath(filePath)
		if err != nil {
			return Document{}, fmt.Errorf("failed to parse document: %w", err)
		}
		text = res.Body
	}

	p.logger.Info("resume stored",
		zap.String("filename", base),
		zap.String("path", filePath),
		zap.Int64("bytes", size),
		zap.Int("text_chars", len(text)))

	return Document{
		Filename: base,
		StoredAt: filePath,
		FileType: fileType,
		FileSize: size,
		Text:     text,
	}, nil
}

var skillKeywords = []string{
	"Go", "Golang", "Python", "Java", "JavaScript", "TypeScript",
	"React", "Vue", "Angular", "Node.js", "Docker", "Kubernetes",
	"PostgreSQL", "MySQL", "MongoDB", "Redis", "AWS", "Azure", "GCP",
	"GraphQL", "REST", "Microservices", "Git", "CI/CD", "FastAPI",
	"Django", "Kafka", "Terraform", "Linux", "SQL", "C++", "C#", "Rust",
	"Machine Learning", "Data Science", "DevOps",
}

var skillPatterns = compileSkillPatterns(skillKeywords)

func compileSkillPatterns(skills []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(skills))
	for i, s := range skills {
		// letters/digits on either side mean the skill is part of another word
		out[i] = regexp.MustCompile(`(?i)(^|[^\pL\pN])` + regexp.QuoteMeta(s) + `($|[^\pL\pN+#])`)
	}
	return out
}

// ExtractSkills finds well-known skill names in text by whole-word keyword
// matching, in the keyword list's order.
func ExtractSkills(text string) []string {
	var skills []string
	for i, re := range skillPatterns {
		if re.MatchString(text) {
			skills = append(skills, skillKeywords[i])
		}
	}
	return skills
}
