package username_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campushare/campushare/pkg/username"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "Jane Doe", "jane-doe"},
		{"extra whitespace", "  Jane   Doe  ", "jane-doe"},
		{"diacritics folded", "Zoë Müller", "zoe-muller"},
		{"punctuation stripped", "J.R.R. Tolkien!", "j-r-r-tolkien"},
		{"digits preserved", "Agent 47", "agent-47"},
		{"empty falls back", "", "user"},
		{"symbols only fall back", "!!!", "user"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, username.Slugify(tc.input))
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("returns bare slug when free", func(t *testing.T) {
		t.Parallel()

		name, err := username.Generate(ctx, "Jane Doe", func(ctx context.Context, candidate string) (bool, error) {
			return false, nil
		})

		require.NoError(t, err)
		assert.Equal(t, "jane-doe", name)
	})

	t.Run("appends 3-digit suffix on collision", func(t *testing.T) {
		t.Parallel()

		name, err := username.Generate(ctx, "Jane Doe", func(ctx context.Context, candidate string) (bool, error) {
			return candidate == "jane-doe", nil
		})

		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^jane-doe\d{3}$`), name)
	})

	t.Run("exhausts after max attempts", func(t *testing.T) {
		t.Parallel()

		attempts := 0
		_, err := username.Generate(ctx, "Jane Doe", func(ctx context.Context, candidate string) (bool, error) {
			attempts++
			return true, nil
		})

		assert.ErrorIs(t, err, username.ErrExhausted)
		assert.Equal(t, username.MaxAttempts, attempts)
	})

	t.Run("propagates lookup errors", func(t *testing.T) {
		t.Parallel()

		_, err := username.Generate(ctx, "Jane Doe", func(ctx context.Context, candidate string) (bool, error) {
			return false, assert.AnError
		})

		assert.ErrorIs(t, err, assert.AnError)
	})
}
