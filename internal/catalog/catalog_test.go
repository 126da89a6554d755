package catalog

import (
	"strings"
	"testing"

	"iso-audit/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnexA(t *testing.T) {
	domains, err := AnnexA()
	require.NoError(t, err)
	require.Len(t, domains, 4)

	want := map[string]int{"A.5": 37, "A.6": 8, "A.7": 14, "A.8": 34}
	seen := map[string]bool{}
	total := 0

	for _, d := range domains {
		assert.Equal(t, want[d.Code], len(d.Controls), d.Code)
		for _, c := range d.Controls {
			assert.True(t, strings.HasPrefix(c.Code, d.Code+"."), c.Code)
			assert.NotEmpty(t, c.Name, c.Code)
			assert.False(t, seen[c.Code], "duplicate control %s", c.Code)
			seen[c.Code] = true
			total++
		}
	}
	assert.Equal(t, 93, total)
}

func TestAnnexA_NamesWithCommas(t *testing.T) {
	domains, err := AnnexA()
	require.NoError(t, err)

	for _, d := range domains {
		for _, c := range d.Controls {
			if c.Code == "A.8.31" {
				assert.Equal(t, "Separation of development, test and production environments", c.Name)
				return
			}
		}
	}
	t.Fatal("A.8.31 not found")
}

func TestOWASPTop10(t *testing.T) {
	vulns, err := OWASPTop10()
	require.NoError(t, err)
	require.Len(t, vulns, 10)

	for _, v := range vulns {
		assert.NotEmpty(t, v.Code)
		assert.NotEmpty(t, v.Name)
		assert.NotEmpty(t, v.RemediationGuidance, v.Code)
		assert.True(t, scoring.ValidRating(v.BaseLikelihood), v.Code)
		assert.True(t, scoring.ValidRating(v.BaseImpact), v.Code)
		require.Len(t, v.ReferenceLinks, 1, v.Code)
		assert.Contains(t, v.ReferenceLinks[0], "https://owasp.org/Top10/"+v.Code[:3]+"_2021-", v.Code)
	}
	assert.Equal(t, "A01:2021", vulns[0].Code)
}
