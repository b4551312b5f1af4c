package manual

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapterize/chapterize/internal/detect"
)

func collect(t *testing.T, input string) ([]detect.Mark, string) {
	t.Helper()
	var out bytes.Buffer
	c := &Collector{In: strings.NewReader(input), Out: &out}
	marks := c.Collect(context.Background())
	return marks, out.String()
}

func TestCollect_TwoChapters(t *testing.T) {
	marks, _ := collect(t, "5\nFluid Properties and Statics\n12\nHeat Transfer\n\n")
	require.Len(t, marks, 2)
	assert.Equal(t, detect.Mark{Page: 4, Title: "Fluid Properties and Statics"}, marks[0])
	assert.Equal(t, detect.Mark{Page: 11, Title: "Heat Transfer"}, marks[1])
}

func TestCollect_BlankFinishesImmediately(t *testing.T) {
	marks, _ := collect(t, "\n")
	assert.Empty(t, marks)
}

func TestCollect_EOFReturnsCollected(t *testing.T) {
	// No trailing blank line: the scanner hits EOF after one entry.
	marks, _ := collect(t, "3\nMass Balances Review\n")
	require.Len(t, marks, 1)
	assert.Equal(t, 2, marks[0].Page)
}

func TestCollect_InvalidPageReprompts(t *testing.T) {
	marks, out := collect(t, "abc\n7\nDistillation Basics\n\n")
	require.Len(t, marks, 1)
	assert.Equal(t, 6, marks[0].Page)
	assert.Contains(t, out, "valid page number")
}

func TestCollect_NonPositivePageRejected(t *testing.T) {
	marks, out := collect(t, "0\n-2\n1\nFront Matter Overview\n\n")
	require.Len(t, marks, 1)
	assert.Equal(t, 0, marks[0].Page)
	assert.Contains(t, out, "must be positive")
}

func TestCollect_EmptyTitleRejected(t *testing.T) {
	marks, out := collect(t, "4\n   \n4\nReal Title Here\n\n")
	require.Len(t, marks, 1)
	assert.Equal(t, "Real Title Here", marks[0].Title)
	assert.Contains(t, out, "cannot be empty")
}

func TestCollect_SortsByPage(t *testing.T) {
	marks, _ := collect(t, "20\nLater Chapter Title\n3\nEarlier Chapter Title\n\n")
	require.Len(t, marks, 2)
	assert.Equal(t, 2, marks[0].Page)
	assert.Equal(t, 19, marks[1].Page)
}

func TestCollect_CancelledContextReturnsCollected(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	c := &Collector{In: strings.NewReader("5\nNever Read Title\n"), Out: &out}
	marks := c.Collect(ctx)
	assert.Empty(t, marks)
}

func TestMerge_ManualWinsOnPageCollision(t *testing.T) {
	auto := []detect.Mark{
		{Page: 2, Title: "Detected Title Two"},
		{Page: 8, Title: "Detected Title Eight"},
	}
	man := []detect.Mark{
		{Page: 2, Title: "Corrected Title Two"},
	}
	merged := Merge(auto, man)
	require.Len(t, merged, 2)
	assert.Equal(t, "Corrected Title Two", merged[0].Title)
	assert.Equal(t, "Detected Title Eight", merged[1].Title)
}

func TestMerge_AppendsAndResorts(t *testing.T) {
	auto := []detect.Mark{{Page: 10, Title: "Detected Chapter"}}
	man := []detect.Mark{{Page: 1, Title: "Added Front Chapter"}}
	merged := Merge(auto, man)
	require.Len(t, merged, 2)
	assert.Equal(t, 1, merged[0].Page)
	assert.Equal(t, 10, merged[1].Page)
}

func TestMerge_ExactDuplicatesCollapse(t *testing.T) {
	auto := []detect.Mark{{Page: 5, Title: "Shared Chapter Title"}}
	man := []detect.Mark{{Page: 5, Title: "Shared Chapter Title"}}
	merged := Merge(auto, man)
	assert.Len(t, merged, 1)
}

func TestMerge_EmptyInputs(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))
	one := []detect.Mark{{Page: 0, Title: "Solo Chapter Title"}}
	assert.Equal(t, one, Merge(one, nil))
	assert.Equal(t, one, Merge(nil, one))
}
