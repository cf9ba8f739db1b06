package sanitize

import (
	"errors"
	"math/rand"
	"testing"
)

func TestBranchName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "dots to underscores",
			input:    "test.data_model_reg",
			expected: "test_data_model_reg",
		},
		{
			name:     "email-style branch",
			input:    "user@company.com",
			expected: "user_at_company_com",
		},
		{
			name:     "slash preserved hyphen",
			input:    "feature/my-branch",
			expected: "feature_my-branch",
		},
		{
			name:     "uppercase conversion",
			input:    "UPPERCASE",
			expected: "uppercase",
		},
		{
			name:     "already valid unchanged",
			input:    "already_valid",
			expected: "already_valid",
		},
		{
			name:     "production branch",
			input:    "prod",
			expected: "prod",
		},
		{
			name:     "production variant",
			input:    "prod.v2",
			expected: "prod_v2",
		},
		{
			name:     "user branch",
			input:    "user.alice",
			expected: "user_alice",
		},
		{
			name:     "uppercase email domain",
			input:    "alice@ORG.example",
			expected: "alice_at_org_example",
		},
		{
			name:     "spaces to underscores",
			input:    "my branch",
			expected: "my_branch",
		},
		{
			name:     "punctuation to underscores",
			input:    "Branch#42!",
			expected: "branch_42_",
		},
		{
			name:     "mixed separators",
			input:    "Team/Alpha.Release",
			expected: "team_alpha_release",
		},
		{
			name:     "leading whitespace becomes underscore",
			input:    " prod",
			expected: "_prod",
		},
		{
			name:     "numbers preserved",
			input:    "release-2024",
			expected: "release-2024",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := BranchName(tt.input)
			if err != nil {
				t.Fatalf("BranchName(%q) returned error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("BranchName(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestBranchName_Empty(t *testing.T) {
	for _, input := range []string{"", " ", "\t", "  \n  "} {
		_, err := BranchName(input)
		if !errors.Is(err, ErrInvalidBranchName) {
			t.Errorf("BranchName(%q) error = %v, want ErrInvalidBranchName", input, err)
		}
	}
}

func TestBranchName_Idempotent(t *testing.T) {
	inputs := []string{
		"test.data_model_reg",
		"user@company.com",
		"feature/my-branch",
		"UPPERCASE",
		"already_valid",
		"a b@c.d/E",
	}

	for _, input := range inputs {
		first, err := BranchName(input)
		if err != nil {
			t.Fatalf("BranchName(%q) returned error: %v", input, err)
		}
		second, err := BranchName(first)
		if err != nil {
			t.Fatalf("BranchName(%q) returned error: %v", first, err)
		}
		if second != first {
			t.Errorf("BranchName not idempotent: %q -> %q -> %q", input, first, second)
		}
	}
}

// TestBranchName_ArbitraryInput exercises the catch-all rule with generated
// labels covering punctuation and multibyte runes the fixed vectors miss.
func TestBranchName_ArbitraryInput(t *testing.T) {
	const alphabet = "abzABZ019@./-_ !#$%&*()+=狐é"
	runes := []rune(alphabet)

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		label := make([]rune, 1+rng.Intn(24))
		for j := range label {
			label[j] = runes[rng.Intn(len(runes))]
		}
		// Anchor one alphanumeric so the input is never whitespace-only.
		label[rng.Intn(len(label))] = 'x'
		input := string(label)

		result, err := BranchName(input)
		if err != nil {
			t.Fatalf("BranchName(%q) returned error: %v", input, err)
		}
		if !Valid(result) {
			t.Errorf("BranchName(%q) = %q, contains invalid characters", input, result)
		}
		again, err := BranchName(result)
		if err != nil {
			t.Fatalf("BranchName(%q) returned error: %v", result, err)
		}
		if again != result {
			t.Errorf("BranchName not idempotent on %q: %q -> %q", input, result, again)
		}
	}
}

func TestValid(t *testing.T) {
	valid := []string{"prod", "prod_v2", "user_alice", "feature_my-branch", "a", "0"}
	for _, s := range valid {
		if !Valid(s) {
			t.Errorf("Valid(%q) = false, want true", s)
		}
	}

	invalid := []string{"", "Prod", "user.alice", "a b", "user@host", "a/b"}
	for _, s := range invalid {
		if Valid(s) {
			t.Errorf("Valid(%q) = true, want false", s)
		}
	}
}
