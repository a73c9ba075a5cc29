package apitest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeRegexFilters(t *testing.T, run, skip []string) RegexFilters {
	var r RegexFilters
	for _, s := range run {
		require.NoError(t, r.MustMatch.Set(s))
	}
	for _, s := range skip {
		require.NoError(t, r.MustNotMatch.Set(s))
	}
	return r
}

func TestRegexFilters(t *testing.T) {
	type expectations map[string]bool // slash-joined ID -> selected

	scenarios := []struct {
		name      string
		run, skip []string
		expect    expectations
	}{
		{
			name:   "no patterns",
			expect: expectations{"": true, "a": true, "a/b": true},
		},
		{
			name:   "run, one component",
			run:    []string{"a"},
			expect: expectations{"": true, "a": true, "b": false, "xax": true, "a/b": true},
		},
		{
			name:   "run, anchored",
			run:    []string{"^health$"},
			expect: expectations{"health": true, "healthz": false, "health/sub": true},
		},
		{
			name:   "run, two components selects parents",
			run:    []string{"a/b"},
			expect: expectations{"": true, "a": true, "b": false, "a/b": true, "xax/xbx": true, "a/c": false},
		},
		{
			name:   "run, any of several",
			run:    []string{"a", "b"},
			expect: expectations{"a": true, "b": true, "c": false, "b/c": true},
		},
		{
			name:   "skip, one component",
			skip:   []string{"a"},
			expect: expectations{"": true, "a": false, "b": true, "xax": false, "a/b": false, "c/a": true},
		},
		{
			name:   "skip, two components leaves parent",
			skip:   []string{"a/b"},
			expect: expectations{"": true, "a": true, "a/b": false, "a/b/c": false, "a/c": true},
		},
		{
			name:   "skip wins over run",
			run:    []string{"y"},
			skip:   []string{"n"},
			expect: expectations{"y": true, "yn": false},
		},
	}

	for _, s := range scenarios {
		t.Run(s.name, func(t *testing.T) {
			r := makeRegexFilters(t, s.run, s.skip)
			for id, selected := range s.expect {
				testID := TestID(nil)
				if id != "" {
					testID = strings.Split(id, "/")
				}
				assert.Equal(t, selected, r.Match(testID), "ID %q", id)
			}
		})
	}
}

func TestParseTestIDPatternRejectsBadRegex(t *testing.T) {
	_, err := ParseTestIDPattern("ok/(")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"("`)

	var l TestIDPatternList
	assert.Error(t, l.Set("["))
	assert.False(t, l.IsDefined())
}

func TestTestIDPatternListString(t *testing.T) {
	r := makeRegexFilters(t, []string{"a/b", "^c$"}, nil)
	assert.Equal(t, `"a/b" or "^c$"`, r.MustMatch.String())
	assert.Equal(t, "", r.MustNotMatch.String())
}

func TestExactTestIDPattern(t *testing.T) {
	p := ExactTestIDPattern(TestID{"get_my_user", "a.b"})
	assert.Equal(t, `^get_my_user$/^a\.b$`, p.String())
	assert.True(t, p.Match(TestID{"get_my_user", "a.b"}, false))
	assert.True(t, p.Match(TestID{"get_my_user", "a.b", "sub"}, false))
	assert.False(t, p.Match(TestID{"get_my_user", "axb"}, false))
	assert.False(t, p.Match(TestID{"get_my_user_2", "a.b"}, false))
	assert.True(t, p.Match(TestID{"get_my_user"}, true))
}

func TestFilterFunc(t *testing.T) {
	f := FilterFunc(func(id TestID) bool { return id.String() == "health" })
	assert.True(t, f.Match(TestID{"health"}))
	assert.False(t, f.Match(TestID{"verify_jwt"}))
}
