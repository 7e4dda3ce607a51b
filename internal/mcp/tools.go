package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/voicaj/internal/logging"
	"github.com/fyrsmithlabs/voicaj/internal/record"
)

const (
	toolClassify = "classify_message"
	toolLearn    = "learn_correction"
)

// ToolCategory groups tools by what they do to the exemplar store.
type ToolCategory string

const (
	// CategoryClassification tools only read exemplars.
	CategoryClassification ToolCategory = "classification"
	// CategoryLearning tools store corrections.
	CategoryLearning ToolCategory = "learning"
)

// ToolMetadata describes a served tool.
type ToolMetadata struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    ToolCategory `json:"category"`
}

// catalog lists the served tools in name order.
var catalog = []ToolMetadata{
	{
		Name:        toolClassify,
		Description: "Classify a personal message into structured records (task, mood_entry, habit, goal, health, workout) with title, description, tags, priority and due date.",
		Category:    CategoryClassification,
	},
	{
		Name:        toolLearn,
		Description: "Correct a previous classification with free-text feedback. The correction is stored and applied to similar messages later.",
		Category:    CategoryLearning,
	},
}

func lookupTool(name string) ToolMetadata {
	for _, t := range catalog {
		if t.Name == name {
			return t
		}
	}
	panic("mcp: tool " + name + " missing from catalog")
}

// errInvalidArguments marks failures caused by the caller's arguments.
var errInvalidArguments = errors.New("invalid arguments")

func invalidArgs(err error) error {
	return fmt.Errorf("%w: %w", errInvalidArguments, err)
}

// toolRecord is the wire form of a record in tool arguments and results.
type toolRecord struct {
	Type        string   `json:"type" jsonschema:"One of task, mood_entry, habit, goal, health, workout"`
	Title       string   `json:"title" jsonschema:"Short title"`
	Description string   `json:"description" jsonschema:"Specific description"`
	Tags        []string `json:"tags" jsonschema:"One to four lowercase tags"`
	Priority    string   `json:"priority" jsonschema:"high, medium or low"`
	DueDate     string   `json:"dueDate,omitempty" jsonschema:"Due date as YYYY-MM-DD HH:MM"`
	Frequency   string   `json:"frequency,omitempty" jsonschema:"Habit frequency"`
	Duration    string   `json:"duration,omitempty" jsonschema:"Workout duration"`
}

type classifyInput struct {
	Text      string `json:"text" jsonschema:"The message to classify"`
	SessionID string `json:"session_id,omitempty" jsonschema:"Conversation session; earlier turns are used as context"`
}

type classifyOutput struct {
	Records   []toolRecord `json:"records" jsonschema:"Extracted records"`
	SessionID string       `json:"session_id,omitempty" jsonschema:"Session the turn was recorded under"`
}

type learnInput struct {
	Text     string       `json:"text" jsonschema:"The original message"`
	Output   []toolRecord `json:"output" jsonschema:"The records previously returned for text"`
	Feedback string       `json:"feedback" jsonschema:"Free-text correction, e.g. the date is wrong"`
}

type learnOutput struct {
	Records []toolRecord `json:"records" jsonschema:"Corrected records"`
}

// registerTools adds the catalog tools to the MCP server.
func (s *Server) registerTools() {
	classify := lookupTool(toolClassify)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: classify.Name, Description: classify.Description},
		instrumented(s.metrics, classify.Name, s.handleClassify))

	learn := lookupTool(toolLearn)
	mcp.AddTool(s.mcp, &mcp.Tool{Name: learn.Name, Description: learn.Description},
		instrumented(s.metrics, learn.Name, s.handleLearn))
}

func (s *Server) handleClassify(ctx context.Context, _ *mcp.CallToolRequest, args classifyInput) (*mcp.CallToolResult, classifyOutput, error) {
	if strings.TrimSpace(args.Text) == "" {
		return nil, classifyOutput{}, invalidArgs(record.ErrEmptyText)
	}

	var records []record.Record
	if args.SessionID != "" {
		if err := logging.ValidateID(args.SessionID, "session_id"); err != nil {
			return nil, classifyOutput{}, invalidArgs(err)
		}
		records = s.classifier.ClassifySession(logging.WithSessionID(ctx, args.SessionID), args.SessionID, args.Text)
	} else {
		records = s.classifier.Classify(ctx, args.Text)
	}

	out := classifyOutput{Records: s.toToolRecords(records), SessionID: args.SessionID}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: summarize(out.Records)}},
	}, out, nil
}

func (s *Server) handleLearn(ctx context.Context, _ *mcp.CallToolRequest, args learnInput) (*mcp.CallToolResult, learnOutput, error) {
	if strings.TrimSpace(args.Text) == "" {
		return nil, learnOutput{}, invalidArgs(record.ErrEmptyText)
	}
	if strings.TrimSpace(args.Feedback) == "" {
		return nil, learnOutput{}, invalidArgs(errors.New("feedback is required"))
	}
	prior, err := fromToolRecords(args.Output)
	if err != nil {
		return nil, learnOutput{}, invalidArgs(err)
	}

	corrected := s.classifier.Learn(ctx, args.Text, prior, args.Feedback)
	s.logger.Debug("learned correction", zap.Int("records", len(corrected)))

	out := learnOutput{Records: s.toToolRecords(corrected)}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: "Correction saved. " + summarize(out.Records)}},
	}, out, nil
}

// toToolRecords converts rs for output, scrubbing free text.
func (s *Server) toToolRecords(rs []record.Record) []toolRecord {
	out := make([]toolRecord, len(rs))
	for i, r := range rs {
		tr := toolRecord{
			Type:        string(r.Type),
			Title:       s.scrubber.Scrub(r.Title).Scrubbed,
			Description: s.scrubber.Scrub(r.Description).Scrubbed,
			Tags:        r.Tags,
			Priority:    string(r.Priority),
			Frequency:   r.Frequency,
			Duration:    r.Duration,
		}
		if r.DueDate != nil {
			tr.DueDate = r.DueDate.String()
		}
		out[i] = tr
	}
	return out
}

func fromToolRecords(trs []toolRecord) ([]record.Record, error) {
	out := make([]record.Record, len(trs))
	for i, tr := range trs {
		r := record.Record{
			Type:        record.ParseType(tr.Type),
			Title:       tr.Title,
			Description: tr.Description,
			Tags:        tr.Tags,
			Priority:    record.Priority(strings.ToLower(strings.TrimSpace(tr.Priority))),
			Frequency:   tr.Frequency,
			Duration:    tr.Duration,
		}
		if tr.DueDate != "" {
			due, err := record.ParseTimestamp(tr.DueDate)
			if err != nil {
				return nil, fmt.Errorf("output[%d]: %w", i, err)
			}
			r.DueDate = &due
		}
		out[i] = r
	}
	return out, nil
}

func summarize(rs []toolRecord) string {
	lines := make([]string, len(rs))
	for i, r := range rs {
		line := fmt.Sprintf("%s: %s (%s)", r.Type, r.Title, r.Priority)
		if r.DueDate != "" {
			line += " due " + r.DueDate
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}
