package audnexus

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetBook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/B08G9PRS1K", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"asin": "B08G9PRS1K",
			"title": "Project Hail Mary",
			"authors": [{"asin": "B00G0WYW92", "name": "Andy Weir"}],
			"narrators": [{"name": "Ray Porter"}],
			"genres": [
				{"asin": "18580606011", "name": "Science Fiction", "type": "genre"},
				{"asin": "18580629011", "name": "Hard Science Fiction", "type": "tag"}
			],
			"seriesPrimary": {"name": "Hail Mary", "position": "1"},
			"releaseDate": "2021-05-04T00:00:00.000Z",
			"runtimeLengthMin": 973,
			"isAdult": 0
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	book, err := c.GetBook(context.Background(), "B08G9PRS1K")
	require.NoError(t, err)

	assert.Equal(t, "Project Hail Mary", book.Title)
	require.Len(t, book.Authors, 1)
	assert.Equal(t, "Andy Weir", book.Authors[0].Name)
	require.NotNil(t, book.SeriesPrimary)
	assert.Equal(t, "1", book.SeriesPrimary.Position)
	assert.Equal(t, 973, book.RuntimeLengthMin)
	assert.False(t, bool(book.IsAdult))
}

func TestGetBookNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"statusCode": 404, "error": "Not Found", "message": "Bad ASIN"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetBook(context.Background(), "B000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetBookServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"statusCode": 503, "message": "catalog down"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetBook(context.Background(), "B08G9PRS1K")

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.Contains(t, statusErr.Error(), "catalog down")
}

func TestGetChapters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/books/B08G9PRS1K/chapters", r.URL.Path)
		w.Write([]byte(`{
			"asin": "B08G9PRS1K",
			"chapters": [
				{"title": "Opening Credits", "startOffsetMs": 0, "lengthMs": 15500},
				{"title": "Chapter 1", "startOffsetMs": 15500, "lengthMs": 3736000}
			],
			"runtimeLengthMs": 58403200,
			"isAccurate": "1"
		}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	chapters, err := c.GetChapters(context.Background(), "B08G9PRS1K")
	require.NoError(t, err)

	require.Len(t, chapters.Chapters, 2)
	assert.Equal(t, int64(15500), chapters.Chapters[1].StartOffsetMs)
	assert.True(t, bool(chapters.IsAccurate))
}

func TestRateLimiterHonorsContext(t *testing.T) {
	c := NewClient("http://localhost:1", WithRateLimit(0.001, 1))

	// Burn the single burst token, then expect the next wait to fail
	// fast on a cancelled context instead of blocking.
	ctx, cancel := context.WithCancel(context.Background())
	_, _ = c.GetBook(ctx, "B000000001")
	cancel()
	_, err := c.GetBook(ctx, "B000000002")
	assert.Error(t, err)
}

func TestFlexBoolUnmarshal(t *testing.T) {
	tests := []struct {
		input string
		want  bool
		bad   bool
	}{
		{`true`, true, false},
		{`false`, false, false},
		{`1`, true, false},
		{`0`, false, false},
		{`"1"`, true, false},
		{`"0"`, false, false},
		{`"true"`, true, false},
		{`""`, false, false},
		{`null`, false, false},
		{`"maybe"`, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var b FlexBool
			err := json.Unmarshal([]byte(tt.input), &b)
			if tt.bad {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, bool(b))
		})
	}
}

func TestFlexBoolMarshal(t *testing.T) {
	out, err := json.Marshal(struct {
		Flag FlexBool `json:"flag"`
	}{Flag: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"flag": true}`, string(out))
}
