package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/pa-autofill/internal/schema"
)

func TestChunkTextShortDocument(t *testing.T) {
	chunks := chunkText("Patient: Jane Doe")

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].id)
	assert.Equal(t, "Patient: Jane Doe", chunks[0].text)
}

func TestChunkTextOverlaps(t *testing.T) {
	text := strings.Repeat("alpha beta gamma ", 200) // ~3400 chars, no breaks past midpoint
	chunks := chunkText(text)

	require.Greater(t, len(chunks), 2)
	for i, c := range chunks {
		assert.Equal(t, i, c.id)
		assert.LessOrEqual(t, len(c.text), chunkSize)
	}
	// overlap means consecutive chunks share a tail/head region
	first := chunks[0].text
	second := chunks[1].text
	assert.True(t, strings.HasPrefix(second, first[len(first)-50:]) ||
		strings.Contains(second, "alpha beta gamma"))
}

func TestChunkTextPrefersParagraphBreak(t *testing.T) {
	para := strings.Repeat("a", 700) + "\n\n" + strings.Repeat("b", 700)
	chunks := chunkText(para)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, strings.Repeat("a", 700), chunks[0].text)
}

func TestChunkTextBreaksAtSentence(t *testing.T) {
	text := strings.Repeat("c", 800) + ". " + strings.Repeat("d", 800)
	chunks := chunkText(text)

	require.GreaterOrEqual(t, len(chunks), 2)
	assert.Equal(t, strings.Repeat("c", 800)+".", chunks[0].text)
}

func TestRetrieveScoresByOverlap(t *testing.T) {
	chunks := []chunk{
		{id: 0, text: "weather report sunny", words: wordSet("weather report sunny")},
		{id: 1, text: "member id number 42", words: wordSet("member id number 42")},
		{id: 2, text: "insurance member details", words: wordSet("insurance member details")},
	}

	got := retrieve(chunks, "insurance member id number", 2)

	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].id)
	assert.Equal(t, 2, got[1].id)
}

func TestRetrieveSkipsZeroOverlap(t *testing.T) {
	chunks := []chunk{
		{id: 0, text: "nothing relevant here", words: wordSet("nothing relevant here")},
	}

	assert.Empty(t, retrieve(chunks, "member id", 3))
	assert.Empty(t, retrieve(chunks, "", 3))
}

func TestRetrieveTieBreaksOnChunkOrder(t *testing.T) {
	chunks := []chunk{
		{id: 0, text: "member alpha", words: wordSet("member alpha")},
		{id: 1, text: "member beta", words: wordSet("member beta")},
		{id: 2, text: "member gamma", words: wordSet("member gamma")},
	}

	for i := 0; i < 20; i++ {
		got := retrieve(chunks, "member", 2)
		require.Len(t, got, 2)
		assert.Equal(t, 0, got[0].id)
		assert.Equal(t, 1, got[1].id)
	}
}

func TestBuildContextPassthroughShort(t *testing.T) {
	assert.Equal(t, "short doc", buildContext("short doc", schema.StandardTemplate()))
}

func TestBuildContextIncludesRelevantChunks(t *testing.T) {
	var b strings.Builder
	for b.Len() < 28000 {
		b.WriteString("Routine administrative boilerplate repeated across pages. ")
	}
	b.WriteString("Member ID: ABC-99\nDiagnosis: M54.5 low back pain\n")

	ctx := buildContext(b.String(), schema.StandardTemplate())

	assert.Contains(t, ctx, "ABC-99")
	assert.Contains(t, ctx, "M54.5")
	assert.Contains(t, ctx, "\n\n---\n\n")
	assert.Less(t, len(ctx), 28000)
}

func TestTruncateRunesKeepsBoundary(t *testing.T) {
	s := "héllo wörld"
	got := truncateRunes(s, 2)
	assert.Equal(t, "hé", got)
	assert.Equal(t, s, truncateRunes(s, 100))
}
