package core

import (
	"slices"

	"github.com/huangsam/trendline/schema"
)

// TrackResult is the outcome of matching reported issues against storage.
type TrackResult struct {
	Issues   []schema.Issue
	New      int
	Closed   int
	Reopened int
}

// TrackIssues matches reported issues to stored ones by key.
//
// Matched issues take the reported values through the audited API, and a
// closed issue reported again is reopened. Issues resolved by a user keep
// their resolution. Unmatched reported issues are new
// and created at cc.Date unless they carry a creation date. Stored open issues
// that were not reported are closed as fixed, except when skipped reports that
// their module was not analyzed. Stored issues are never dropped from the result.
func TrackIssues(stored, reported []schema.Issue, cc schema.ChangeContext, skipped func(schema.Issue) bool) TrackResult {
	byKey := make(map[string]schema.Issue, len(reported))
	var order []string
	for _, r := range reported {
		if _, dup := byKey[r.Key]; dup {
			continue
		}
		byKey[r.Key] = r
		order = append(order, r.Key)
	}

	var result TrackResult
	seen := make(map[string]bool, len(stored))
	for _, s := range stored {
		seen[s.Key] = true
		r, ok := byKey[s.Key]
		switch {
		case ok:
			issue, reopened := mergeReported(s, r, cc)
			if reopened {
				result.Reopened++
			}
			result.Issues = append(result.Issues, issue)
		case s.IsOpen() && (skipped == nil || !skipped(s)):
			result.Issues = append(result.Issues, closeIssue(s, cc))
			result.Closed++
		default:
			result.Issues = append(result.Issues, s)
		}
	}

	for _, key := range order {
		if seen[key] {
			continue
		}
		issue := byKey[key]
		if issue.Status == "" {
			issue = issue.WithStatus(schema.StatusOpen)
		}
		if issue.CreatedAt == nil {
			issue = issue.WithCreationDate(cc.Date)
		}
		result.Issues = append(result.Issues, issue.WithUpdateDate(cc.Date))
		result.New++
	}
	return result
}

// mergeReported applies reported values to a stored issue.
func mergeReported(s, r schema.Issue, cc schema.ChangeContext) (schema.Issue, bool) {
	issue := s
	if r.Severity != "" {
		issue = issue.ChangeSeverity(cc, r.Severity)
	}
	if r.Message != "" {
		issue = issue.ChangeMessage(cc, r.Message)
	}
	if r.Debt != nil {
		issue = issue.ChangeDebt(cc, *r.Debt)
	}
	if r.AuthorLogin != "" {
		issue = issue.ChangeAuthorLogin(cc, r.AuthorLogin)
	}
	if r.Assignee != "" {
		issue = issue.ChangeAssignee(cc, r.Assignee)
	}
	if r.Line != nil {
		issue = issue.WithLine(*r.Line)
	} else {
		issue = issue.WithoutLine()
	}
	if r.Checksum != "" {
		issue = issue.WithChecksum(r.Checksum)
	}
	keys := make([]string, 0, len(r.Attributes))
	for k := range r.Attributes {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		issue = issue.WithAttribute(k, r.Attributes[k])
	}

	reopened := false
	switch {
	case issue.Status == schema.StatusClosed && r.Resolution == schema.NoResolution:
		issue = issue.ChangeStatus(cc, schema.StatusReopened).
			ChangeResolution(cc, schema.NoResolution).
			WithoutCloseDate()
		reopened = true
	default:
		if r.Status != "" {
			issue = issue.ChangeStatus(cc, r.Status)
		}
		if r.Resolution != schema.NoResolution {
			issue = issue.ChangeResolution(cc, r.Resolution)
			if issue.ClosedAt == nil {
				issue = issue.WithCloseDate(cc.Date)
			}
		}
	}

	for _, c := range r.Comments() {
		issue = issue.AddComment(c)
	}
	if issue.IsChanged() {
		issue = issue.WithUpdateDate(cc.Date)
	}
	return issue, reopened
}

// closeIssue closes an issue the analyzer no longer raises.
func closeIssue(s schema.Issue, cc schema.ChangeContext) schema.Issue {
	return s.ChangeStatus(cc, schema.StatusClosed).
		ChangeResolution(cc, schema.ResolutionFixed).
		WithCloseDate(cc.Date).
		WithUpdateDate(cc.Date)
}

// FilterSkippedModules removes skipped modules from a report: the module
// components, everything below them, and their issues and measures. The
// merged skip list is recorded on the returned report.
func FilterSkippedModules(rep schema.Report, skipped []string) schema.Report {
	modules := make(map[string]bool)
	for _, m := range append(slices.Clone(rep.SkippedModules), skipped...) {
		if m != "" {
			modules[m] = true
		}
	}
	if len(modules) == 0 {
		return rep
	}

	// Parents may be named by uuid or by key.
	byRef := make(map[string]schema.ReportComponent, 2*len(rep.Components))
	for _, c := range rep.Components {
		byRef[c.Key] = c
	}
	for _, c := range rep.Components {
		byRef[c.UUID] = c
	}
	removed := make(map[string]bool)
	var isSkipped func(c schema.ReportComponent, depth int) bool
	isSkipped = func(c schema.ReportComponent, depth int) bool {
		if modules[c.Key] || modules[c.ModuleKey] {
			return true
		}
		parent, ok := byRef[c.Parent]
		if !ok || depth > len(rep.Components) {
			return false
		}
		return isSkipped(parent, depth+1)
	}

	out := rep
	out.Components = nil
	for _, c := range rep.Components {
		if isSkipped(c, 0) {
			removed[c.UUID] = true
			removed[c.Key] = true
			continue
		}
		out.Components = append(out.Components, c)
	}
	out.Issues = nil
	for _, is := range rep.Issues {
		if !removed[is.Component] {
			out.Issues = append(out.Issues, is)
		}
	}
	out.Measures = nil
	for _, m := range rep.Measures {
		if !removed[m.Component] {
			out.Measures = append(out.Measures, m)
		}
	}
	out.SkippedModules = make([]string, 0, len(modules))
	for m := range modules {
		out.SkippedModules = append(out.SkippedModules, m)
	}
	slices.Sort(out.SkippedModules)
	return out
}
