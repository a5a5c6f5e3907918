package care

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/volatiletech/null/v8"
)

func TestAssessment_ComputeOverallScore(t *testing.T) {
	tests := []struct {
		name string
		a    Assessment
		want null.Float64
	}{
		{
			name: "no scores set",
			a:    Assessment{},
			want: null.Float64{},
		},
		{
			name: "all scores set",
			a: Assessment{
				MotorScore:     null.IntFrom(4),
				CognitiveScore: null.IntFrom(3),
				LanguageScore:  null.IntFrom(5),
				SocialScore:    null.IntFrom(2),
				AdaptiveScore:  null.IntFrom(1),
			},
			want: null.Float64From(3),
		},
		{
			name: "partial scores average over present values only",
			a: Assessment{
				MotorScore:    null.IntFrom(4),
				LanguageScore: null.IntFrom(3),
				SocialScore:   null.IntFrom(5),
			},
			want: null.Float64From(4),
		},
		{
			name: "single score",
			a:    Assessment{AdaptiveScore: null.IntFrom(2)},
			want: null.Float64From(2),
		},
		{
			name: "non-integral mean",
			a: Assessment{
				MotorScore:     null.IntFrom(4),
				CognitiveScore: null.IntFrom(5),
			},
			want: null.Float64From(4.5),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.a.ComputeOverallScore()
			assert.Equal(t, tt.want, tt.a.OverallScore)
		})
	}
}

func TestAssessment_ComputeOverallScore_clearsStaleValue(t *testing.T) {
	a := Assessment{
		MotorScore:   null.IntFrom(5),
		OverallScore: null.Float64From(5),
	}
	a.MotorScore = null.Int{}
	a.ComputeOverallScore()
	assert.False(t, a.OverallScore.Valid)
}
