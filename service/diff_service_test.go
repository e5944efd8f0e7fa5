package service

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ludo-technologies/variscan/domain"
	"github.com/ludo-technologies/variscan/internal/config"
	"github.com/ludo-technologies/variscan/internal/constants"
)

type mockProgressManager struct {
	mock.Mock
}

func (m *mockProgressManager) Initialize(maxValue int)     { m.Called(maxValue) }
func (m *mockProgressManager) Start()                      { m.Called() }
func (m *mockProgressManager) Complete(success bool)       { m.Called(success) }
func (m *mockProgressManager) Update(processed, total int) { m.Called(processed, total) }
func (m *mockProgressManager) SetWriter(io.Writer)         {}
func (m *mockProgressManager) IsInteractive() bool         { return false }
func (m *mockProgressManager) Close()                      {}

func TestDiffService_AddedField(t *testing.T) {
	left, right := createVariants(t, baseSource, derivedSource)

	resp, err := NewDiffService(nil, nil).Diff(context.Background(), newTestRequest(left, right))
	require.NoError(t, err)

	require.Len(t, resp.VariationPoints, 1)
	vp := resp.VariationPoints[0]
	assert.Equal(t, "vp-1", vp.ID)
	assert.Equal(t, "ADD", vp.Kind)
	assert.Equal(t, "Field", vp.Subject)

	require.Len(t, vp.Variants, 1)
	assert.False(t, vp.Variants[0].Leading)
	assert.Equal(t, "integration", vp.Variants[0].ID)
	require.Len(t, vp.Variants[0].Elements, 1)

	added, ok := resp.Element(vp.Variants[0].Elements[0])
	require.True(t, ok)
	assert.Equal(t, "Field", added.Type)
	assert.Equal(t, "y", added.Name)
	assert.Contains(t, added.Location, filepath.Join("right", "src", "p", "A.java"))
	assert.False(t, added.Snapshot)

	enclosing, ok := resp.Element(vp.Enclosing)
	require.True(t, ok)
	assert.Equal(t, "Class", enclosing.Type)
	assert.Equal(t, "p.A", enclosing.QualifiedName)

	assert.Equal(t, 1, resp.Statistics.LeftFiles)
	assert.Equal(t, 1, resp.Statistics.RightFiles)
	assert.Equal(t, 1, resp.Statistics.Differences)
	assert.Equal(t, 1, resp.Statistics.VariationPoints)
	assert.Equal(t, map[string]int{"ADD": 1}, resp.Statistics.ByKind)
	assert.Equal(t, map[string]int{"Field": 1}, resp.Statistics.BySubject)
	assert.Greater(t, resp.Statistics.MatchedPairs, 0)

	require.Len(t, resp.Resources, 1)
	assert.Equal(t, filepath.Join(left, "src", "p", "A.java"), resp.Resources[0].LeftPath)
	assert.Equal(t, filepath.Join(right, "src", "p", "A.java"), resp.Resources[0].RightPath)

	assert.Equal(t, left, resp.LeftPath)
	assert.NotEmpty(t, resp.GeneratedAt)
	assert.NotEmpty(t, resp.Version)
}

func TestDiffService_IdenticalVariants(t *testing.T) {
	left, right := createVariants(t, baseSource, baseSource)

	resp, err := NewDiffService(nil, nil).Diff(context.Background(), newTestRequest(left, right))
	require.NoError(t, err)
	assert.Empty(t, resp.VariationPoints)
	assert.Zero(t, resp.Statistics.Differences)
}

func TestDiffService_SnapshotsAndVariantIDs(t *testing.T) {
	left, right := createVariants(t, baseSource, derivedSource)
	req := newTestRequest(left, right)
	req.SnapshotFragments = true
	req.LeadingVariantID = "custom"
	req.IntegrationVariantID = "base"

	resp, err := NewDiffService(nil, nil).Diff(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, resp.VariationPoints, 1)
	assert.Equal(t, "base", resp.VariationPoints[0].Variants[0].ID)
	for _, e := range resp.Elements {
		assert.True(t, e.Snapshot, e.ID)
	}
}

func TestDiffService_SkippedRules(t *testing.T) {
	left, right := createVariants(t, baseSource, derivedSource)
	req := newTestRequest(left, right)
	req.PackageNormalization = []domain.NormalizationRule{{Pattern: "([", Replacement: "x"}}
	req.ClassifierNormalization = []string{"*Custom*"}

	resp, err := NewDiffService(nil, nil).Diff(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, resp.SkippedRules, 2)
	assert.Len(t, resp.VariationPoints, 1)
}

func TestDiffService_ReportsProgress(t *testing.T) {
	left, right := createVariants(t, baseSource, derivedSource)

	progress := &mockProgressManager{}
	progress.On("Initialize", 2).Once()
	progress.On("Start").Once()
	progress.On("Update", mock.AnythingOfType("int"), 2).Twice()
	progress.On("Complete", true).Once()

	_, err := NewDiffService(progress, nil).Diff(context.Background(), newTestRequest(left, right))
	require.NoError(t, err)
	progress.AssertExpectations(t)
}

func TestDiffService_Errors(t *testing.T) {
	svc := NewDiffService(nil, nil)

	t.Run("nil request", func(t *testing.T) {
		_, err := svc.Diff(context.Background(), nil)
		assert.Error(t, err)
	})

	t.Run("invalid request", func(t *testing.T) {
		req := newTestRequest("left", "")
		_, err := svc.Diff(context.Background(), req)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "left and a right variant path")
	})

	t.Run("missing variant", func(t *testing.T) {
		left, _ := createVariants(t, baseSource, baseSource)
		_, err := svc.Diff(context.Background(), newTestRequest(left, filepath.Join(left, "missing")))
		require.Error(t, err)
		var domainErr domain.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, domain.ErrCodeFileNotFound, domainErr.Code)
	})

	t.Run("syntax error", func(t *testing.T) {
		left, right := createVariants(t, baseSource, "package p; class A {")
		_, err := svc.Diff(context.Background(), newTestRequest(left, right))
		require.Error(t, err)
		var domainErr domain.DomainError
		require.True(t, errors.As(err, &domainErr))
		assert.Equal(t, domain.ErrCodeParseError, domainErr.Code)
	})
}

func TestEngineOptionsFromRequest(t *testing.T) {
	req := config.DefaultConfig().ToDiffRequest(nil)
	req.PackageNormalization = []domain.NormalizationRule{{Pattern: "^a", Replacement: "b"}}
	req.ClassifierNormalization = []string{"*Custom"}
	req.CleanupDerivedCopies = true
	req.CleanupDerivedCopiesCleanImports = config.BoolPtr(false)
	req.EmitMoves = true
	req.StructuralThreshold = 0.8
	req.CostModel = constants.CostModelJava

	options := EngineOptionsFromRequest(req)
	require.Len(t, options.Normalization.Packages, 1)
	assert.Equal(t, "^a", options.Normalization.Packages[0].Pattern)
	assert.Equal(t, []string{"*Custom"}, options.Normalization.Classifiers)
	assert.Equal(t, 0.8, options.Matching.StructuralThreshold)
	assert.Equal(t, constants.CostModelJava, options.Matching.CostModel)
	assert.True(t, options.Differ.EmitMoves)
	assert.True(t, options.Cleanup.Enabled)
	assert.False(t, options.Cleanup.ShouldCleanImports())
	assert.Equal(t, "leading", options.Build.LeadingVariantID)
}
