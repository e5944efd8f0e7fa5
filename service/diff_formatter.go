package service

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/ludo-technologies/variscan/domain"
)

// DiffFormatterImpl implements the DiffOutputFormatter interface
type DiffFormatterImpl struct{}

// NewDiffFormatter creates a new variability model formatter
func NewDiffFormatter() *DiffFormatterImpl {
	return &DiffFormatterImpl{}
}

// Format formats the response according to the specified format. Text is
// never colored.
func (f *DiffFormatterImpl) Format(response *domain.DiffResponse, format domain.OutputFormat) (string, error) {
	switch format {
	case domain.OutputFormatText:
		return f.formatText(response, false), nil
	case domain.OutputFormatJSON:
		return EncodeJSON(response)
	case domain.OutputFormatYAML:
		var builder strings.Builder
		if err := WriteYAML(&builder, response); err != nil {
			return "", err
		}
		return builder.String(), nil
	default:
		return "", domain.NewUnsupportedFormatError(string(format))
	}
}

// Write writes the formatted output to the writer. Text written to a
// terminal is colored.
func (f *DiffFormatterImpl) Write(response *domain.DiffResponse, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, response)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, response)
	case domain.OutputFormatText:
		if _, err := io.WriteString(writer, f.formatText(response, isTerminal(writer))); err != nil {
			return domain.NewOutputError("failed to write output", err)
		}
		return nil
	default:
		return domain.NewUnsupportedFormatError(string(format))
	}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

func (f *DiffFormatterImpl) formatText(response *domain.DiffResponse, color bool) string {
	var builder strings.Builder
	utils := NewFormatUtils(color)

	builder.WriteString(utils.FormatMainHeader("Variability Model"))
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Left", response.LeftPath))
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Right", response.RightPath))
	builder.WriteString(utils.FormatSectionSeparator())

	stats := response.Statistics
	builder.WriteString(utils.FormatSectionHeader("SUMMARY"))
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Files", fmt.Sprintf("%d left, %d right", stats.LeftFiles, stats.RightFiles)))
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Matches", fmt.Sprintf("%d (%d paired)", stats.Matches, stats.MatchedPairs)))
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Differences", stats.Differences))
	if stats.Suppressed > 0 {
		builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Suppressed", stats.Suppressed))
	}
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Variation Points", stats.VariationPoints))
	if len(stats.ByKind) > 0 {
		builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "By Kind", ""))
		builder.WriteString(utils.FormatCounts(stats.ByKind))
	}
	if len(stats.BySubject) > 0 {
		builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "By Subject", ""))
		builder.WriteString(utils.FormatCounts(stats.BySubject))
	}
	builder.WriteString(utils.FormatSectionSeparator())

	if len(response.VariationPoints) > 0 {
		builder.WriteString(utils.FormatSectionHeader("VARIATION POINTS"))
		for _, vp := range response.VariationPoints {
			builder.WriteString(fmt.Sprintf("%s%-6s %s %s in %s\n",
				strings.Repeat(" ", SectionPadding),
				vp.ID,
				utils.FormatKind(vp.Kind),
				vp.Subject,
				f.describe(response, vp.Enclosing)))
			for _, v := range vp.Variants {
				marker := " "
				if v.Leading {
					marker = "*"
				}
				for _, id := range v.Elements {
					builder.WriteString(fmt.Sprintf("%s%s %s: %s\n",
						strings.Repeat(" ", ItemPadding), marker, v.ID, f.describe(response, id)))
				}
			}
		}
		builder.WriteString(utils.FormatSectionSeparator())
	}

	builder.WriteString(utils.FormatWarningsSection(skippedRuleWarnings(response.SkippedRules)))

	builder.WriteString(utils.FormatSectionHeader("METADATA"))
	if parsedTime, err := time.Parse(time.RFC3339, response.GeneratedAt); err == nil {
		builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Generated at", parsedTime.Format("2006-01-02T15:04:05-07:00")))
	}
	builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Duration", utils.FormatDuration(response.Duration)))
	if response.Version != "" {
		builder.WriteString(utils.FormatLabelWithIndent(SectionPadding, "Version", response.Version))
	}

	return builder.String()
}

func (f *DiffFormatterImpl) describe(response *domain.DiffResponse, id string) string {
	e, ok := response.Element(id)
	if !ok {
		return id
	}
	if e.Location != "" {
		return fmt.Sprintf("%s (%s)", e, e.Location)
	}
	return e.String()
}

func skippedRuleWarnings(rules []string) []string {
	warnings := make([]string, 0, len(rules))
	for _, r := range rules {
		warnings = append(warnings, "skipped normalization rule: "+r)
	}
	return warnings
}
