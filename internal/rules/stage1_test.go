package rules_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codeforesight/foresight/internal/rules"
)

func TestStage1Catalog(t *testing.T) {
	catalog := rules.Stage1()
	require.NotEmpty(t, catalog)

	t.Run("every rule is fully specified", func(t *testing.T) {
		for _, rule := range catalog {
			assert.NotEmpty(t, rule.ID, "rule ID")
			assert.NotEmpty(t, rule.CWE, "CWE for %s", rule.ID)
			assert.NotEmpty(t, rule.Name, "name for %s", rule.ID)
			assert.Contains(t, []string{"low", "medium", "high"}, rule.Severity, "severity for %s", rule.ID)
			assert.NotNil(t, rule.Pattern, "pattern for %s", rule.ID)
			assert.NotEmpty(t, rule.Fix, "fix hint for %s", rule.ID)
		}
	})

	t.Run("rule IDs are unique", func(t *testing.T) {
		seen := make(map[string]bool, len(catalog))
		for _, rule := range catalog {
			assert.False(t, seen[rule.ID], "duplicate rule %s", rule.ID)
			seen[rule.ID] = true
		}
	})
}

func TestStage1Patterns(t *testing.T) {
	byID := make(map[string]rules.Rule)
	for _, rule := range rules.Stage1() {
		byID[rule.ID] = rule
	}

	cases := []struct {
		rule  string
		match string
		miss  string
	}{
		{"S1-UNSAFE-C-FN", `strcpy(small_buf, user_input);`, `strncpy(dst, src, n - 1);`},
		{"S1-UNSAFE-C-FN", `memcpy(dst, src, strlen(src));`, `safe_copy(dst, src, sizeof(dst));`},
		{"S1-SQL-CONCAT", `query = "SELECT * FROM users WHERE name = '" + name`, `rows := stmt.Query(name)`},
		{"S1-XSS-HTML", `element.innerHTML = userInput`, `element.textContent = userInput`},
		{"S1-CMD-INJECT", `os.system("rm " + path)`, `shutil.rmtree(path)`},
		{"S1-HARDCODED-CREDS", `password = "P@ssw0rd!"`, `password = os.environ["APP_PASSWORD"]`},
		{"S1-DESERIALIZE", `data = pickle.loads(blob)`, `data = json.loads(blob)`},
		{"S1-PATH-TRAVERSAL", `open("../../etc/passwd")`, `open("etc/passwd")`},
		{"S1-EXEC-EVAL", `eval(user_code)`, `evaluate(user_code)`},
	}

	for _, tc := range cases {
		rule, ok := byID[tc.rule]
		require.True(t, ok, "rule %s missing from catalog", tc.rule)

		t.Run(tc.rule, func(t *testing.T) {
			assert.True(t, rule.Pattern.MatchString(tc.match), "%q should match", tc.match)
			assert.False(t, rule.Pattern.MatchString(tc.miss), "%q should not match", tc.miss)
		})
	}
}
