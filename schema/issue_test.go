package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIssue(t *testing.T) {
	issue := NewIssue("ABCDE")
	assert.Equal(t, "ABCDE", issue.Key)
	assert.Equal(t, StatusOpen, issue.Status)
	assert.True(t, issue.IsNew())
	assert.False(t, issue.IsChanged())
	assert.True(t, issue.IsOpen())
}

func TestIssue_ValueSemantics(t *testing.T) {
	base := NewIssue("ABCDE").WithAttribute("foo", "bar").AsPersisted()
	ctx := ChangeContext{Actor: "emmerik", Date: time.Date(2013, 5, 18, 0, 0, 0, 0, time.UTC)}

	changed := base.ChangeSeverity(ctx, BlockerSeverity).WithAttribute("foo", "baz")

	assert.Empty(t, base.Severity)
	assert.Equal(t, "bar", base.Attributes["foo"])
	assert.False(t, base.IsChanged())
	assert.Empty(t, base.Diffs())

	assert.Equal(t, BlockerSeverity, changed.Severity)
	assert.Equal(t, "baz", changed.Attributes["foo"])
	assert.True(t, changed.IsChanged())
	assert.Len(t, changed.Diffs(), 1)
}

func TestIssue_PlainSettersMarkChangedOnlyWhenExisting(t *testing.T) {
	t.Run("new issue stays unchanged", func(t *testing.T) {
		issue := NewIssue("K1").WithLine(12).WithChecksum("abc")
		assert.True(t, issue.IsNew())
		assert.False(t, issue.IsChanged())
		assert.Empty(t, issue.Diffs())
	})

	t.Run("existing issue becomes changed", func(t *testing.T) {
		issue := NewIssue("K1").WithLine(12).AsPersisted().WithLine(14)
		assert.True(t, issue.IsChanged())
		assert.Empty(t, issue.Diffs())
		require.NotNil(t, issue.Line)
		assert.Equal(t, 14, *issue.Line)
	})

	t.Run("same value is not a mutation", func(t *testing.T) {
		issue := NewIssue("K1").WithLine(12).WithChecksum("abc").AsPersisted().WithLine(12).WithChecksum("abc")
		assert.False(t, issue.IsChanged())
	})

	t.Run("identity setters never mark changed", func(t *testing.T) {
		issue := NewIssue("K1").AsPersisted().
			WithRule(MustParseRuleKey("xxx:unknown")).
			WithComponent("not:a:component", "uuid")
		assert.False(t, issue.IsChanged())
	})
}

func TestIssue_WithFieldChange(t *testing.T) {
	ctx := ChangeContext{Actor: "emmerik", Date: time.Date(2013, 5, 18, 0, 0, 0, 0, time.UTC)}

	t.Run("records exactly one diff", func(t *testing.T) {
		issue := NewIssue("ABCDE").WithSeverity(BlockerSeverity).AsPersisted().
			WithFieldChange(ctx, FieldSeverity, "INFO", "BLOCKER")
		diffs := issue.Diffs()
		require.Len(t, diffs, 1)
		assert.Equal(t, FieldDiff{Field: "severity", OldValue: "INFO", NewValue: "BLOCKER", Actor: "emmerik", Date: ctx.Date}, diffs[0])
		assert.True(t, issue.IsChanged())
		assert.Equal(t, BlockerSeverity, issue.Severity)
	})

	t.Run("equal values are ignored", func(t *testing.T) {
		issue := NewIssue("ABCDE").AsPersisted().WithFieldChange(ctx, FieldSeverity, "INFO", "INFO")
		assert.Empty(t, issue.Diffs())
		assert.False(t, issue.IsChanged())
	})

	t.Run("same field merges keeping first old value", func(t *testing.T) {
		issue := NewIssue("ABCDE").WithSeverity(InfoSeverity).AsPersisted().
			ChangeSeverity(ctx, MajorSeverity).
			ChangeSeverity(ctx, BlockerSeverity)
		diffs := issue.Diffs()
		require.Len(t, diffs, 1)
		assert.Equal(t, "INFO", diffs[0].OldValue)
		assert.Equal(t, "BLOCKER", diffs[0].NewValue)
	})

	t.Run("new issues record diffs without being changed", func(t *testing.T) {
		issue := NewIssue("ABCDE").ChangeAssignee(ctx, "julien")
		assert.Len(t, issue.Diffs(), 1)
		assert.False(t, issue.IsChanged())
	})
}

func TestIssue_TypedChanges(t *testing.T) {
	ctx := ChangeContext{Actor: "scm"}
	issue := NewIssue("K").WithDebt(10).WithMessage("old").AsPersisted().
		ChangeDebt(ctx, 25).
		ChangeMessage(ctx, "new").
		ChangeStatus(ctx, StatusClosed).
		ChangeResolution(ctx, ResolutionFixed).
		ChangeAuthorLogin(ctx, "simon")

	fields := make(map[string]FieldDiff)
	for _, d := range issue.Diffs() {
		fields[d.Field] = d
	}
	assert.Len(t, fields, 5)
	assert.Equal(t, "10", fields[FieldDebt].OldValue)
	assert.Equal(t, "25", fields[FieldDebt].NewValue)
	assert.Equal(t, "old", fields[FieldMessage].OldValue)
	assert.Equal(t, "OPEN", fields[FieldStatus].OldValue)
	assert.Equal(t, "", fields[FieldResolution].OldValue)
	assert.Equal(t, "FIXED", fields[FieldResolution].NewValue)
	assert.Equal(t, "simon", fields[FieldAuthor].NewValue)
	assert.False(t, issue.IsOpen())

	unchanged := issue.ChangeDebt(ctx, 25)
	assert.Len(t, unchanged.Diffs(), 5)
}

func TestIssue_AddComment(t *testing.T) {
	comment := NewComment("emmerik", "the comment")
	assert.NotEmpty(t, comment.Key)

	t.Run("queued on new issue", func(t *testing.T) {
		issue := NewIssue("ABCDE").AddComment(comment.WithKey("FGHIJ"))
		comments := issue.Comments()
		require.Len(t, comments, 1)
		assert.Equal(t, "FGHIJ", comments[0].Key)
		assert.Equal(t, "ABCDE", comments[0].IssueKey)
		assert.False(t, issue.IsChanged())
	})

	t.Run("marks existing issue changed", func(t *testing.T) {
		issue := NewIssue("ABCDE").AsPersisted().AddComment(comment)
		assert.True(t, issue.IsChanged())
		assert.Len(t, issue.Comments(), 1)
	})
}

func TestIssue_AsPersistedClearsPendingWork(t *testing.T) {
	issue := NewIssue("K").
		ChangeSeverity(ChangeContext{Actor: "a"}, MajorSeverity).
		AddComment(NewComment("a", "b")).
		AsPersisted()
	assert.False(t, issue.IsNew())
	assert.False(t, issue.IsChanged())
	assert.Empty(t, issue.Diffs())
	assert.Empty(t, issue.Comments())
	assert.Equal(t, MajorSeverity, issue.Severity)
}

func TestAttributes(t *testing.T) {
	assert.Equal(t, "", FormatAttributes(nil))
	assert.Equal(t, "a=1;foo=bar", FormatAttributes(map[string]string{"foo": "bar", "a": "1"}))
	assert.Equal(t, map[string]string{"foo": "bar", "a": "1"}, ParseAttributes("foo=bar;a=1;broken"))
	assert.Nil(t, ParseAttributes(""))

	issue := NewIssue("K").WithAttribute("foo", "bar").AsPersisted().WithAttribute("foo", "")
	assert.True(t, issue.IsChanged())
	assert.Empty(t, issue.AttributesString())
}

func TestParseRuleKey(t *testing.T) {
	k, err := ParseRuleKey("squid:AvoidCycle")
	require.NoError(t, err)
	assert.Equal(t, RuleKey{Repository: "squid", Rule: "AvoidCycle"}, k)
	assert.Equal(t, "squid:AvoidCycle", k.String())

	for _, bad := range []string{"", "squid", ":rule", "repo:"} {
		_, err := ParseRuleKey(bad)
		assert.ErrorIs(t, err, ErrInvalidRuleKey, bad)
	}
}
