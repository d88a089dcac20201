package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		title string
		want  Kind
	}{
		{TitleHypocenter, KindHypocenter},
		{TitleIntensity, KindIntensity},
		{TitleCombined, KindCombined},
		{"噴火速報", KindUnknown},
		{"", KindUnknown},
		{TitleHypocenter + " ", KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.title))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "hypocenter", KindHypocenter.String())
	assert.Equal(t, "intensity", KindIntensity.String())
	assert.Equal(t, "combined", KindCombined.String())
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func TestBulletin_MentionsAny(t *testing.T) {
	b := &Bulletin{
		Kind: KindIntensity,
		Intensity: &Intensity{
			MaxIntensity: "5弱",
			Prefectures: []Prefecture{
				{Name: "茨城県", MaxIntensity: "5弱", Areas: []Area{{Name: "茨城県南部", MaxIntensity: "5弱"}}},
				{Name: "千葉県", MaxIntensity: "4", Areas: []Area{{Name: "千葉県北西部", MaxIntensity: "4"}}},
			},
		},
	}

	assert.True(t, b.MentionsAny([]string{"千葉県"}), "prefecture match")
	assert.True(t, b.MentionsAny([]string{"東京都23区", "茨城県南部"}), "area match")
	assert.False(t, b.MentionsAny([]string{"東京都23区"}))
	assert.False(t, b.MentionsAny(nil))

	noIntensity := &Bulletin{Kind: KindHypocenter, Hypocenter: &Hypocenter{EpicenterName: "千葉県"}}
	assert.False(t, noIntensity.MentionsAny([]string{"千葉県"}), "epicenter name is not an intensity location")

	var nilBulletin *Bulletin
	assert.False(t, nilBulletin.MentionsAny([]string{"千葉県"}))
}
