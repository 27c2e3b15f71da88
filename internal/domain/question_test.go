package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prept/prept-api/internal/domain"
)

func TestNewQuestion(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	tests := []struct {
		name       string
		ownerID    uuid.UUID
		text       string
		category   domain.QuestionCategory
		difficulty domain.QuestionDifficulty
		wantErr    error
	}{
		{
			name:       "valid question",
			ownerID:    ownerID,
			text:       "What is the difference between a goroutine and an OS thread?",
			category:   domain.CategoryTechnical,
			difficulty: domain.DifficultyAdvanced,
		},
		{
			name:       "empty owner",
			ownerID:    uuid.Nil,
			text:       "Tell me about a conflict you resolved.",
			category:   domain.CategoryBehavioral,
			difficulty: domain.DifficultyNovice,
			wantErr:    domain.ErrEmptyQuestionOwnerID,
		},
		{
			name:       "blank text",
			ownerID:    ownerID,
			text:       "   ",
			category:   domain.CategoryTechnical,
			difficulty: domain.DifficultyHard,
			wantErr:    domain.ErrEmptyQuestionText,
		},
		{
			name:       "unknown category",
			ownerID:    ownerID,
			text:       "Describe REST.",
			category:   domain.QuestionCategory("Trivia"),
			difficulty: domain.DifficultyNovice,
			wantErr:    domain.ErrInvalidCategory,
		},
		{
			name:       "unknown difficulty",
			ownerID:    ownerID,
			text:       "Describe REST.",
			category:   domain.CategoryTechnical,
			difficulty: domain.QuestionDifficulty("Impossible"),
			wantErr:    domain.ErrInvalidDifficulty,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q, err := domain.NewQuestion(tt.ownerID, tt.text, tt.category, tt.difficulty)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, q)
				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, q.ID)
			assert.Equal(t, tt.ownerID, q.OwnerID)
			assert.True(t, q.IsActive)
			assert.False(t, q.CreatedAt.IsZero())
		})
	}
}

func TestQuestionNormalizedText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "already normalized", text: "what is rest?", want: "what is rest?"},
		{name: "mixed case", text: "What is REST?", want: "what is rest?"},
		{name: "surrounding whitespace", text: "  What is REST?  \t", want: "what is rest?"},
		{name: "inner whitespace preserved", text: "What  is   REST?", want: "what  is   rest?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q := &domain.Question{Text: tt.text}
			assert.Equal(t, tt.want, q.NormalizedText())
		})
	}
}
