package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripplanner/internal/export"
)

func offlineFlags(t *testing.T) {
	t.Helper()
	prevFake, prevRaw := useFake, rawOutput
	useFake, rawOutput = true, true
	t.Cleanup(func() { useFake, rawOutput = prevFake, prevRaw })
}

func TestPlanCommand_Fake(t *testing.T) {
	offlineFlags(t)
	dir := t.TempDir()

	cmd := newPlanCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{
		"--travel-type", "Cultural",
		"--interests", "History,Food",
		"--season", "Fall",
		"--duration", "4",
		"--budget", "$2000-$5000",
		"--out-dir", dir,
		"--format", "md,pdf",
	})
	require.NoError(t, cmd.Execute())

	assert.True(t, strings.HasPrefix(stdout.String(), "## City Selection\n\n"))
	assert.Contains(t, stdout.String(), "## Budget Planning")
	for _, step := range []string{"City Selection", "City Research", "Itinerary Creation", "Budget Planning"} {
		assert.Contains(t, stderr.String(), "==> "+step+"\n")
	}

	md, err := filepath.Glob(filepath.Join(dir, "Trip_Itinerary_*.md"))
	require.NoError(t, err)
	require.Len(t, md, 1)
	pdf, err := filepath.Glob(filepath.Join(dir, "Trip_Itinerary_*.pdf"))
	require.NoError(t, err)
	require.Len(t, pdf, 1)

	data, err := os.ReadFile(md[0])
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSuffix(stdout.String(), "\n"), string(data))
}

func TestPlanCommand_InvalidInput(t *testing.T) {
	offlineFlags(t)
	cmd := newPlanCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--season", "Monsoon"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "season")
}

func TestPlanCommand_UnknownFormat(t *testing.T) {
	offlineFlags(t)
	cmd := newPlanCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--out-dir", t.TempDir(), "--format", "odt"})
	assert.Error(t, cmd.Execute())
}

func TestAskCommand_Fake(t *testing.T) {
	offlineFlags(t)
	path := filepath.Join(t.TempDir(), "plan.md")
	require.NoError(t, os.WriteFile(path, []byte("## Itinerary Creation\n\nDay 1: Fushimi Inari"), 0o644))

	cmd := newAskCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--itinerary", path, "What", "on", "day", "1?"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "On day 1")
}

func TestAskCommand_RequiresItinerary(t *testing.T) {
	cmd := newAskCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"question"})
	assert.Error(t, cmd.Execute())
}

func TestWriteExports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	now := time.Date(2024, 6, 2, 14, 30, 5, 0, time.Local)
	paths, err := writeExports(dir, "## Plan\n\nDay 1", []export.Format{export.FormatMarkdown, export.FormatDocx}, now)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "Trip_Itinerary_20240602_143005.md"),
		filepath.Join(dir, "Trip_Itinerary_20240602_143005.docx"),
	}, paths)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"History", "Food", "Art"}, splitList([]string{"History, Food", " ", "Art"}))
	assert.Nil(t, splitList(nil))
}

func TestProgressHook_DedupesSteps(t *testing.T) {
	var buf bytes.Buffer
	h := newProgressHook(&buf)
	for _, phase := range []string{"City Selection/reasoning", "City Selection", "City Selection", "City Research/reasoning"} {
		h.Before(t.Context(), phase, "", nil)
	}
	assert.Equal(t, "==> City Selection\n==> City Research\n", buf.String())
}
