package review

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhabedank/brdgen/internal/core"
)

func sampleEpics(e *core.Engine) []core.Epic {
	a := e.Analyze(core.Input{BRDText: `EPIC-01: Billing
Requirements:
• Generate monthly invoices for all subscribers
• Apply late payment charges automatically
EPIC-02: Onboarding
Requirements:
• Complete KYC verification for new customers`})
	return a.Epics
}

func TestFormatParseRoundTrip(t *testing.T) {
	e := core.NewDefault()
	epics := sampleEpics(e)

	got, err := New(e, nil).Parse(Format(epics), core.Telecom)
	require.NoError(t, err)
	require.Len(t, got, len(epics))
	for i := range epics {
		assert.Equal(t, epics[i].ID, got[i].ID)
		assert.Equal(t, epics[i].Title, got[i].Title)
		if diff := cmp.Diff(epics[i].FunctionalRequirements, got[i].FunctionalRequirements); diff != "" {
			t.Errorf("epic %s requirements mismatch (-want +got):\n%s", epics[i].ID, diff)
		}
	}
}

func TestParseEdits(t *testing.T) {
	edited := `# header comment
EPIC-02: Renamed Second
Requirements:
• The system shall do the second thing well.

# EPIC-01: commented out
EPIC-07: Added Later
Requirements:
• Track loyalty points for every purchase
• short
`
	got, err := New(core.NewDefault(), nil).Parse(edited, core.Generic)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "EPIC-01", got[0].ID)
	assert.Equal(t, "Renamed Second", got[0].Title)
	assert.Equal(t, []string{"The system shall do the second thing well."}, got[0].FunctionalRequirements)

	assert.Equal(t, "EPIC-02", got[1].ID)
	assert.Equal(t, "Added Later", got[1].Title)
	assert.Equal(t, []string{"The system shall track loyalty points for every purchase."}, got[1].FunctionalRequirements)
}

func TestParseRejects(t *testing.T) {
	r := New(core.NewDefault(), nil)

	_, err := r.Parse("# only comments\n\n", core.Generic)
	assert.ErrorIs(t, err, ErrCancelled)

	_, err = r.Parse("• a bullet without any heading at all\n", core.Generic)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrCancelled))
}

func TestReviewUsesEditor(t *testing.T) {
	e := core.NewDefault()
	epics := sampleEpics(e)

	var seen string
	edit := func(_ context.Context, path string) error {
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		seen = string(b)
		return os.WriteFile(path, []byte("EPIC-01: Only Billing\nRequirements:\n• Generate monthly invoices for all subscribers\n"), 0o600)
	}

	got, err := New(e, edit).Review(context.Background(), core.Telecom, epics)
	require.NoError(t, err)
	assert.Contains(t, seen, "EPIC-02: Onboarding")
	require.Len(t, got, 1)
	assert.Equal(t, "Only Billing", got[0].Title)
}

func TestReviewEditorFailure(t *testing.T) {
	edit := func(context.Context, string) error { return errors.New("exit status 1") }
	_, err := New(core.NewDefault(), edit).Review(context.Background(), core.Generic, nil)
	assert.ErrorContains(t, err, "failed to open editor")
}
