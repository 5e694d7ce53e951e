package jobplanet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"reviewscraper/pkg/models"
)

const searchPage = `<html><body>
<div class="searchWrap">
  <div class="grid-cols-2">
    <a href="/companies/30139/info/%EC%97%90%EC%9D%B4%ED%81%AC%EB%AF%B8">
      <h4> 에이크미 <span>(주)</span></h4>
      <div class="flex items-center"><span>★</span><span> 3.6 </span></div>
    </a>
    <a href="https://www.jobplanet.co.kr/companies/88">
      <h4>에이크미테크</h4>
    </a>
    <a href="/search/other">
      <div class="flex items-center"><span>★</span><span>2.0</span></div>
    </a>
  </div>
</div>
</body></html>`

const emptySearchPage = `<html><body><div class="searchWrap"><p>검색 결과가 없습니다</p></div></body></html>`

const detailPage = `<html><body>
<h2 class="stats_ttl">전체 리뷰 통계 (1,024명) <span>(512명)</span></h2>
<div class="rate_star_top"><span class="rate_point">3.4</span></div>
<div class="rate_bar_group">
  <div><div class="rate_bar_title">복지 및 급여</div><span class="txt_point">3.1</span></div>
  <div><div class="rate_bar_title">업무와 삶의 균형</div><span class="txt_point"> 2.9 </span></div>
  <div><div class="rate_bar_title">라벨만 있음</div></div>
</div>
<div class="rate_pie_set"><div class="rate_label">CEO 지지율</div><span class="txt_point">65%</span></div>
<div class="rate_pie_set"><div class="rate_label">성장 가능성</div><span class="txt_point">54%</span></div>
</body></html>`

func TestParseCandidates(t *testing.T) {
	candidates, err := ParseCandidates(searchPage)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	first := candidates[0]
	assert.Equal(t, "30139", models.Value(first.CompanyID))
	assert.Equal(t, "에이크미(주)", models.Value(first.Name))
	assert.Equal(t, "3.6", models.Value(first.Rating))

	assert.Equal(t, "88", models.Value(candidates[1].CompanyID))
	assert.Nil(t, candidates[1].Rating)

	// href without an id pattern leaves the id absent
	assert.Nil(t, candidates[2].CompanyID)
	assert.Nil(t, candidates[2].Name)
	assert.Equal(t, "2.0", models.Value(candidates[2].Rating))
}

func TestParseCandidatesEmpty(t *testing.T) {
	candidates, err := ParseCandidates(emptySearchPage)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	_, ok := SelectCandidate(candidates)
	assert.False(t, ok)
}

func TestSelectCandidateTakesFirst(t *testing.T) {
	candidates := []models.Candidate{
		{Name: models.Str("에이크미 홀딩스")},
		{Name: models.Str("에이크미")},
	}

	chosen, ok := SelectCandidate(candidates)
	require.True(t, ok)
	assert.Equal(t, "에이크미 홀딩스", models.Value(chosen.Name))
}

func TestParseStats(t *testing.T) {
	stats, err := ParseStats(detailPage)
	require.NoError(t, err)

	// the first parenthesised count with digits only wins
	assert.Equal(t, "512", models.Value(stats.ReviewCount))
	assert.Equal(t, "3.4", models.Value(stats.OverallRating))
	assert.Equal(t, map[string]string{
		"복지 및 급여":   "3.1",
		"업무와 삶의 균형": "2.9",
		"CEO 지지율":   "65%",
		"성장 가능성":    "54%",
	}, stats.Labels)
}

func TestParseStatsMissingRegions(t *testing.T) {
	stats, err := ParseStats(`<html><body><h2 class="stats_ttl">전체 리뷰 통계</h2></body></html>`)
	require.NoError(t, err)

	assert.Nil(t, stats.ReviewCount)
	assert.Nil(t, stats.OverallRating)
	assert.Empty(t, stats.Labels)
}
