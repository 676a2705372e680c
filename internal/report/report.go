// Package report loads analysis reports and rule repositories from YAML or JSON files.
package report

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var reportSchema []byte

// ErrInvalidReport is returned when a report does not match the report schema.
var ErrInvalidReport = errors.New("invalid report")

type rawReport struct {
	Project        rawProject     `yaml:"project"`
	Version        string         `yaml:"version"`
	Date           string         `yaml:"date"`
	Actor          string         `yaml:"actor"`
	SkippedModules []string       `yaml:"skipped_modules"`
	Components     []rawComponent `yaml:"components"`
	Issues         []rawIssue     `yaml:"issues"`
	Measures       []rawMeasure   `yaml:"measures"`
}

type rawProject struct {
	Key  string `yaml:"key"`
	UUID string `yaml:"uuid"`
	Name string `yaml:"name"`
	ID   int64  `yaml:"id"`
}

type rawComponent struct {
	UUID      string `yaml:"uuid"`
	Key       string `yaml:"key"`
	Name      string `yaml:"name"`
	Qualifier string `yaml:"qualifier"`
	Parent    string `yaml:"parent"`
	Module    string `yaml:"module"`
	Path      string `yaml:"path"`
	ID        int64  `yaml:"id"`
}

type rawIssue struct {
	Key          string            `yaml:"key"`
	Rule         string            `yaml:"rule"`
	Component    string            `yaml:"component"`
	Severity     string            `yaml:"severity"`
	Message      string            `yaml:"message"`
	Line         *int              `yaml:"line"`
	Checksum     string            `yaml:"checksum"`
	Debt         *int64            `yaml:"debt"`
	Status       string            `yaml:"status"`
	Resolution   string            `yaml:"resolution"`
	Assignee     string            `yaml:"assignee"`
	Reporter     string            `yaml:"reporter"`
	AuthorLogin  string            `yaml:"author_login"`
	Attributes   map[string]string `yaml:"attributes"`
	CreationDate string            `yaml:"creation_date"`
	Comments     []rawComment      `yaml:"comments"`
}

type rawComment struct {
	Key  string `yaml:"key"`
	User string `yaml:"user"`
	Text string `yaml:"text"`
	Date string `yaml:"date"`
}

type rawMeasure struct {
	Component string  `yaml:"component"`
	Metric    string  `yaml:"metric"`
	Value     float64 `yaml:"value"`
}

// Load reads and validates the report at path.
func Load(path string) (schema.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schema.Report{}, fmt.Errorf("failed to read report %s: %w", path, err)
	}
	rep, err := Parse(data)
	if err != nil {
		return schema.Report{}, fmt.Errorf("%s: %w", path, err)
	}
	return rep, nil
}

// Parse validates a YAML or JSON report document and converts it.
func Parse(data []byte) (schema.Report, error) {
	if err := Validate(data); err != nil {
		return schema.Report{}, err
	}
	var raw rawReport
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return schema.Report{}, fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	return raw.convert()
}

// Validate checks a YAML or JSON report document against the embedded schema.
func Validate(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	if doc == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidReport)
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(reportSchema), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReport, err)
	}
	if result.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.Field()+": "+e.Description())
	}
	return fmt.Errorf("%w: %s", ErrInvalidReport, strings.Join(msgs, "; "))
}

func (r rawReport) convert() (schema.Report, error) {
	rep := schema.Report{
		Project: schema.ReportProject{
			Key:  r.Project.Key,
			UUID: r.Project.UUID,
			Name: r.Project.Name,
			ID:   r.Project.ID,
		},
		Version:        r.Version,
		Actor:          r.Actor,
		SkippedModules: r.SkippedModules,
	}
	if r.Date != "" {
		t, err := contract.ParseProjectDate(r.Date)
		if err != nil {
			return schema.Report{}, fmt.Errorf("%w: %v", ErrInvalidReport, err)
		}
		rep.AnalysisDate = t
	}

	for _, c := range r.Components {
		rep.Components = append(rep.Components, schema.ReportComponent{
			UUID:      c.UUID,
			Key:       c.Key,
			Name:      c.Name,
			Qualifier: schema.Qualifier(c.Qualifier),
			Parent:    c.Parent,
			ModuleKey: c.Module,
			Path:      c.Path,
			ID:        c.ID,
		})
	}

	for idx, is := range r.Issues {
		issue, err := is.convert()
		if err != nil {
			return schema.Report{}, fmt.Errorf("%w: issues[%d]: %v", ErrInvalidReport, idx, err)
		}
		rep.Issues = append(rep.Issues, issue)
	}

	for _, m := range r.Measures {
		rep.Measures = append(rep.Measures, schema.ReportMeasure{Component: m.Component, Metric: m.Metric, Value: m.Value})
	}
	return rep, nil
}

func (is rawIssue) convert() (schema.ReportIssue, error) {
	rule, err := schema.ParseRuleKey(is.Rule)
	if err != nil {
		return schema.ReportIssue{}, err
	}
	out := schema.ReportIssue{
		Key:         is.Key,
		Rule:        rule,
		Component:   is.Component,
		Severity:    schema.Severity(is.Severity),
		Message:     is.Message,
		Line:        is.Line,
		Checksum:    is.Checksum,
		Debt:        is.Debt,
		Status:      schema.IssueStatus(is.Status),
		Resolution:  schema.Resolution(is.Resolution),
		Assignee:    is.Assignee,
		Reporter:    is.Reporter,
		AuthorLogin: is.AuthorLogin,
		Attributes:  is.Attributes,
	}
	if out.CreationDate, err = optionalDate(is.CreationDate); err != nil {
		return schema.ReportIssue{}, err
	}
	for _, c := range is.Comments {
		date, err := optionalDate(c.Date)
		if err != nil {
			return schema.ReportIssue{}, err
		}
		out.Comments = append(out.Comments, schema.ReportComment{Key: c.Key, User: c.User, Text: c.Text, Date: date})
	}
	return out, nil
}

func optionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := contract.ParseProjectDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
