package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	facademodel "github.com/davidkwan/orggraph/modules/facade/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestParseDate_RejectsMalformedDate(t *testing.T) {
	_, err := parseDate("31-07-2026")
	require.ErrorIs(t, err, facademodel.ErrInvalidDate)
}

func TestParseDate_EmptyStringIsNotAnError(t *testing.T) {
	d, err := parseDate("")
	require.NoError(t, err)
	require.True(t, d.IsZero())
}

func TestParseDate_AcceptsISO8601(t *testing.T) {
	d, err := parseDate("2026-07-31")
	require.NoError(t, err)
	require.Equal(t, 2026, d.Year())
	require.Equal(t, 31, d.Day())
}

func TestParseIDList_SkipsMalformedEntriesAndTrimsSpace(t *testing.T) {
	ids := parseIDList("1, 2,x,3")
	require.Equal(t, []int64{1, 2, 3}, ids)
}

func TestParseIDList_EmptyStringReturnsNil(t *testing.T) {
	require.Nil(t, parseIDList(""))
}

func ginContextWithQuery(t *testing.T, rawQuery string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	c.Request = req
	return c
}

func TestParseBoolQuery_OnlyLiteralTrueCounts(t *testing.T) {
	require.True(t, parseBoolQuery(ginContextWithQuery(t, "fuzzy=true"), "fuzzy"))
	require.False(t, parseBoolQuery(ginContextWithQuery(t, "fuzzy=1"), "fuzzy"))
	require.False(t, parseBoolQuery(ginContextWithQuery(t, ""), "fuzzy"))
}

func TestParseFuzzyQuery_DisabledByDefault(t *testing.T) {
	opts := parseFuzzyQuery(ginContextWithQuery(t, ""))
	require.False(t, opts.Enabled)
}

func TestParseFuzzyQuery_RespectsExplicitLimit(t *testing.T) {
	opts := parseFuzzyQuery(ginContextWithQuery(t, "fuzzy=true&fuzzy_limit=7"))
	require.True(t, opts.Enabled)
	require.Equal(t, 7, opts.Resolve.LimitResults)
}
