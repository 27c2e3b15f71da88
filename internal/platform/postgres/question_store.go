package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/prept/prept-api/internal/domain"
	"github.com/prept/prept-api/internal/platform/logger"
	"github.com/prept/prept-api/internal/store"
)

// PostgresQuestionStore implements store.QuestionStore using PostgreSQL.
type PostgresQuestionStore struct {
	db store.DBTX
}

// NewPostgresQuestionStore creates a new PostgresQuestionStore.
func NewPostgresQuestionStore(db store.DBTX) *PostgresQuestionStore {
	return &PostgresQuestionStore{db: db}
}

// WithTx returns a QuestionStore bound to the given transaction.
func (s *PostgresQuestionStore) WithTx(tx *sql.Tx) store.QuestionStore {
	return &PostgresQuestionStore{db: tx}
}

const questionColumns = `id, owner_id, text, category, difficulty, explanation, example, technical_terms, generated_date, is_active, created_at`

// CreateMultiple saves the given questions.
func (s *PostgresQuestionStore) CreateMultiple(ctx context.Context, questions []*domain.Question) error {
	log := logger.FromContext(ctx)

	if len(questions) == 0 {
		return nil
	}

	query := `
		INSERT INTO questions (` + questionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, question := range questions {
		if err := question.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		termsJSON, err := json.Marshal(question.TechnicalTerms)
		if err != nil {
			return fmt.Errorf("failed to marshal technical terms: %w", err)
		}

		_, err = s.db.ExecContext(ctx, query,
			question.ID,
			question.OwnerID,
			question.Text,
			question.Category,
			question.Difficulty,
			question.Explanation,
			question.Example,
			termsJSON,
			question.GeneratedDate,
			question.IsActive,
			question.CreatedAt,
		)
		if err != nil {
			if isForeignKeyViolation(err) {
				return fmt.Errorf("%w: owner does not exist", store.ErrInvalidEntity)
			}
			log.Error("failed to insert question",
				"question_id", question.ID,
				"owner_id", question.OwnerID,
				"error", err)
			return fmt.Errorf("failed to insert question: %w", err)
		}
	}

	return nil
}

// GetByID retrieves a question by ID.
func (s *PostgresQuestionStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE id = $1
	`

	question, err := s.scanQuestion(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err, store.ErrQuestionNotFound, "failed to get question by ID")
	}

	return question, nil
}

// ListActiveTexts returns the full set of active question texts for the
// owner.
func (s *PostgresQuestionStore) ListActiveTexts(ctx context.Context, ownerID uuid.UUID) (map[string]struct{}, error) {
	query := `
		SELECT text
		FROM questions
		WHERE owner_id = $1 AND is_active = TRUE
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active question texts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	texts := make(map[string]struct{})
	for rows.Next() {
		var text string
		if err := rows.Scan(&text); err != nil {
			return nil, fmt.Errorf("failed to scan question text: %w", err)
		}
		texts[text] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question texts: %w", err)
	}

	return texts, nil
}

// ListActiveByOwner returns the owner's active questions oldest first.
func (s *PostgresQuestionStore) ListActiveByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE owner_id = $1 AND is_active = TRUE
		ORDER BY created_at ASC, id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return s.collectQuestions(rows)
}

// List returns one page of the owner's active questions matching the
// filters, along with the total match count.
func (s *PostgresQuestionStore) List(
	ctx context.Context,
	ownerID uuid.UUID,
	filters store.QuestionFilters,
) (*store.QuestionPage, error) {
	where, args := buildQuestionFilter(ownerID, filters)

	countQuery := `SELECT COUNT(*) FROM questions q ` + where

	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count questions: %w", err)
	}

	order := "q.created_at DESC, q.id DESC"
	if filters.Sort == store.SortOldestFirst {
		order = "q.created_at ASC, q.id ASC"
	}

	offset := (filters.Page - 1) * filters.Limit

	pageQuery := fmt.Sprintf(`
		SELECT q.id, q.owner_id, q.text, q.category, q.difficulty, q.explanation, q.example,
		       q.technical_terms, q.generated_date, q.is_active, q.created_at
		FROM questions q
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d
	`, where, order, len(args)+1, len(args)+2)

	args = append(args, filters.Limit, offset)

	rows, err := s.db.QueryContext(ctx, pageQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list questions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items, err := s.collectQuestions(rows)
	if err != nil {
		return nil, err
	}

	return &store.QuestionPage{Items: items, Total: total}, nil
}

// buildQuestionFilter assembles the WHERE clause and its arguments for a
// filtered question listing.
func buildQuestionFilter(ownerID uuid.UUID, filters store.QuestionFilters) (string, []any) {
	conditions := []string{"q.owner_id = $1", "q.is_active = TRUE"}
	args := []any{ownerID}

	if filters.Category != nil {
		args = append(args, *filters.Category)
		conditions = append(conditions, fmt.Sprintf("q.category = $%d", len(args)))
	}

	if filters.Difficulty != nil {
		args = append(args, *filters.Difficulty)
		conditions = append(conditions, fmt.Sprintf("q.difficulty = $%d", len(args)))
	}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		conditions = append(conditions, fmt.Sprintf("q.text ILIKE $%d", len(args)))
	}

	if filters.BookmarkedOnly {
		conditions = append(conditions,
			"EXISTS (SELECT 1 FROM bookmarks b WHERE b.question_id = q.id AND b.owner_id = q.owner_id)")
	}

	return "WHERE " + strings.Join(conditions, " AND "), args
}

// Deactivate soft-deletes the given questions by clearing is_active.
func (s *PostgresQuestionStore) Deactivate(ctx context.Context, ids []uuid.UUID) error {
	log := logger.FromContext(ctx)

	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`
		UPDATE questions
		SET is_active = FALSE
		WHERE id IN (%s)
	`, strings.Join(placeholders, ", "))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to deactivate questions", "count", len(ids), "error", err)
		return fmt.Errorf("failed to deactivate questions: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && int(affected) < len(ids) {
		log.Debug("some questions to deactivate were missing",
			"requested", len(ids),
			"affected", affected)
	}

	return nil
}

// scanQuestion reads one question from a row.
func (s *PostgresQuestionStore) scanQuestion(row *sql.Row) (*domain.Question, error) {
	var question domain.Question
	var termsJSON []byte

	err := row.Scan(
		&question.ID,
		&question.OwnerID,
		&question.Text,
		&question.Category,
		&question.Difficulty,
		&question.Explanation,
		&question.Example,
		&termsJSON,
		&question.GeneratedDate,
		&question.IsActive,
		&question.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := unmarshalTerms(termsJSON, &question); err != nil {
		return nil, err
	}

	return &question, nil
}

// collectQuestions reads all questions from a result set.
func (s *PostgresQuestionStore) collectQuestions(rows *sql.Rows) ([]*domain.Question, error) {
	var questions []*domain.Question

	for rows.Next() {
		var question domain.Question
		var termsJSON []byte

		err := rows.Scan(
			&question.ID,
			&question.OwnerID,
			&question.Text,
			&question.Category,
			&question.Difficulty,
			&question.Explanation,
			&question.Example,
			&termsJSON,
			&question.GeneratedDate,
			&question.IsActive,
			&question.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question row: %w", err)
		}

		if err := unmarshalTerms(termsJSON, &question); err != nil {
			return nil, err
		}

		questions = append(questions, &question)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating question rows: %w", err)
	}

	return questions, nil
}

func unmarshalTerms(termsJSON []byte, question *domain.Question) error {
	if len(termsJSON) == 0 {
		return nil
	}
	if err := json.Unmarshal(termsJSON, &question.TechnicalTerms); err != nil {
		return fmt.Errorf("failed to unmarshal technical terms: %w", err)
	}
	return nil
}
