package actions

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractChecklistAndIntention(t *testing.T) {
	got := Extract("- [ ] buy milk\nI need to call the dentist.")
	assert.Equal(t, []string{"buy milk", "call the dentist."}, got)
}

func TestExtractDedupsRepeatedIntention(t *testing.T) {
	got := Extract("- [ ] buy milk\nI need to call the dentist. Later I need to call the dentist.")
	assert.Equal(t, []string{"buy milk", "call the dentist."}, got)
}

func TestExtractFamilyOrder(t *testing.T) {
	content := "Remember to water the plants!\n* TODO: email the landlord\n- [x] renew passport"
	got := Extract(content)
	assert.Equal(t, []string{"renew passport", "email the landlord", "water the plants!"}, got)
}

func TestExtractCaseInsensitive(t *testing.T) {
	got := Extract("- ACTION) book the venue\nYou SHOULD stretch every hour")
	assert.Equal(t, []string{"book the venue", "stretch every hour"}, got)
}

func TestExtractLengthBounds(t *testing.T) {
	long := strings.Repeat("a", 200)
	edge := strings.Repeat("b", 199)
	content := "- [ ] tiny\n- [ ] sixch\n- [ ] six ch\n- [ ] " + long + "\n- [ ] " + edge
	got := Extract(content)
	assert.Equal(t, []string{"six ch", edge}, got)
}

func TestExtractCapsAtLimit(t *testing.T) {
	var lines []string
	for i := 0; i < 15; i++ {
		lines = append(lines, fmt.Sprintf("- [ ] errand number %d", i))
	}
	got := Extract(strings.Join(lines, "\n"))
	assert.Len(t, got, MaxItems)
	assert.Equal(t, "errand number 0", got[0])
	assert.Equal(t, "errand number 9", got[9])
}

func TestExtractNothing(t *testing.T) {
	got := Extract("Just a quiet day at the studio.")
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApplyPerFamily(t *testing.T) {
	e := New()
	content := "- [ ] buy milk\n- todo: fix the bike\nI must finish the report. Then rest"

	assert.Equal(t, []string{"buy milk"}, e.Apply(e.Rules[0], content))
	assert.Equal(t, []string{"fix the bike"}, e.Apply(e.Rules[1], content))
	assert.Equal(t, []string{"finish the report."}, e.Apply(e.Rules[2], content))
}

func TestApplyPerLineIgnoresIndentedMarkers(t *testing.T) {
	e := New()
	assert.Empty(t, e.Apply(e.Rules[0], "  - [ ] indented item"))
}
