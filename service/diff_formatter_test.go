package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ludo-technologies/variscan/domain"
)

func sampleDiffResponse() *domain.DiffResponse {
	return &domain.DiffResponse{
		VariationPoints: []domain.VariationPoint{
			{
				ID:        "vp-1",
				Kind:      "CHANGE",
				Subject:   "Statement",
				Enclosing: "se-1",
				Variants: []domain.Variant{
					{ID: "integration", Elements: []string{"se-2"}},
					{ID: "leading", Leading: true, Elements: []string{"se-3"}},
				},
			},
		},
		Elements: []domain.SoftwareElement{
			{ID: "se-1", Type: "Method", Name: "run", Location: "right/A.java:3:5"},
			{ID: "se-2", Type: "LocalVariable", Name: "total", Location: "left/A.java:4:9"},
			{ID: "se-3", Type: "LocalVariable", Name: "total", Location: "right/A.java:4:9"},
		},
		Resources: []domain.ResourceMatch{{LeftPath: "left/A.java", RightPath: "right/A.java"}},
		Statistics: domain.DiffStatistics{
			LeftFiles:       1,
			RightFiles:      1,
			Matches:         12,
			MatchedPairs:    11,
			Differences:     1,
			VariationPoints: 1,
			ByKind:          map[string]int{"CHANGE": 1},
			BySubject:       map[string]int{"Statement": 1},
		},
		SkippedRules: []string{`classifier normalization pattern "**": must contain exactly one '*'`},
		LeftPath:     "left",
		RightPath:    "right",
		Duration:     42,
		GeneratedAt:  "2026-01-02T03:04:05Z",
		Version:      "dev",
	}
}

func TestDiffFormatter_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDiffFormatter().Write(sampleDiffResponse(), domain.OutputFormatText, &buf))
	output := buf.String()

	assert.True(t, strings.HasPrefix(output, "Variability Model\n"))
	assert.Contains(t, output, "Files: 1 left, 1 right")
	assert.Contains(t, output, "Matches: 12 (11 paired)")
	assert.Contains(t, output, "Variation Points: 1")
	assert.Contains(t, output, "vp-1   CHANGE Statement in Method run (right/A.java:3:5)")
	assert.Contains(t, output, "  integration: LocalVariable total (left/A.java:4:9)")
	assert.Contains(t, output, "* leading: LocalVariable total (right/A.java:4:9)")
	assert.Contains(t, output, "WARNINGS")
	assert.Contains(t, output, "skipped normalization rule")
	assert.Contains(t, output, "Duration: 42ms")
	assert.NotContains(t, output, ColorReset, "a buffer is not a terminal")
}

func TestDiffFormatter_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewDiffFormatter().Write(sampleDiffResponse(), domain.OutputFormatJSON, &buf))

	var decoded domain.DiffResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "vp-1", decoded.VariationPoints[0].ID)
	assert.True(t, decoded.VariationPoints[0].Variants[1].Leading)
	assert.Contains(t, buf.String(), `"duration_ms": 42`)
}

func TestDiffFormatter_YAML(t *testing.T) {
	output, err := NewDiffFormatter().Format(sampleDiffResponse(), domain.OutputFormatYAML)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal([]byte(output), &decoded))
	assert.Contains(t, decoded, "variation_points")
	assert.Contains(t, output, "enclosing: se-1")
}

func TestDiffFormatter_Unsupported(t *testing.T) {
	_, err := NewDiffFormatter().Format(sampleDiffResponse(), domain.OutputFormat("html"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format: html")

	err = NewDiffFormatter().Write(sampleDiffResponse(), domain.OutputFormat("csv"), &bytes.Buffer{})
	assert.Error(t, err)
}

func TestFormatUtils_Kind(t *testing.T) {
	assert.Equal(t, "ADD", NewFormatUtils(false).FormatKind("ADD"))
	assert.Equal(t, ColorGreen+"ADD"+ColorReset, NewFormatUtils(true).FormatKind("ADD"))
	assert.Equal(t, ColorRed+"DELETE"+ColorReset, NewFormatUtils(true).FormatKind("DELETE"))
}

func TestFormatUtils_CountsSorted(t *testing.T) {
	out := NewFormatUtils(false).FormatCounts(map[string]int{"DELETE": 1, "ADD": 2})
	assert.Equal(t, "    ADD: 2\n    DELETE: 1\n", out)
}
